package dto

import (
	"encoding/json"
	"testing"
)

func TestUpdateTicketRequestOptionalFields(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantSet   bool
		wantValue *string
	}{
		{"absent", `{}`, false, nil},
		{"explicit null", `{"assignedTo": null}`, true, nil},
		{"value", `{"assignedTo": "user-7"}`, true, strPtr("user-7")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateTicketRequest
			if err := json.Unmarshal([]byte(tc.payload), &req); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if req.AssignedTo.Set != tc.wantSet {
				t.Fatalf("Set=%v, want %v", req.AssignedTo.Set, tc.wantSet)
			}
			if tc.wantValue == nil {
				if req.AssignedTo.Value != nil {
					t.Fatalf("Value=%v, want nil", *req.AssignedTo.Value)
				}
				return
			}
			if req.AssignedTo.Value == nil || *req.AssignedTo.Value != *tc.wantValue {
				t.Fatalf("Value=%v, want %s", req.AssignedTo.Value, *tc.wantValue)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
