package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/itsd-platform/helpdesk-service/internal/api/http/handlers"
	"github.com/itsd-platform/helpdesk-service/internal/auth"
	"github.com/itsd-platform/helpdesk-service/internal/config"
	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/observability"
	"github.com/itsd-platform/helpdesk-service/internal/repository/memstore"
	"github.com/itsd-platform/helpdesk-service/internal/service"
	"github.com/itsd-platform/helpdesk-service/internal/workflow"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	history := memstore.NewHistoryLog()
	tickets := memstore.NewTicketStore(workflow.NewValidator(workflow.DefaultRegistry()), history)
	users := memstore.NewUserStore()

	hash, err := auth.HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	seedUsers := []domain.User{
		{ID: "user-1", Email: "admin@enterprise.com", Role: domain.RoleAdmin, PasswordHash: hash, IsActive: true},
		{ID: "user-4", Email: "viewer@enterprise.com", Role: domain.RoleViewer, PasswordHash: hash, IsActive: true},
	}
	for i := range seedUsers {
		if err := users.Create(context.Background(), &seedUsers[i]); err != nil {
			t.Fatalf("seed user failed: %v", err)
		}
	}

	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  24,
		BcryptCost:            4,
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		HistoryLog: history,
	})
	authService := service.NewAuthService(authCfg, service.AuthDependencies{
		UserRepo:     users,
		RefreshStore: auth.NewMemoryRefreshTokenStore(),
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-service", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(service.NewUserService(users)),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(tickets)),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d", resp.StatusCode)
	}
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decodeBody(t, resp, &body)
	if body.Data.Token == "" {
		t.Fatal("login returned no token")
	}
	return body.Data.Token
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/tickets", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", resp.StatusCode)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, resp, &body)
	if body.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("code=%s, want UNAUTHORIZED", body.Error.Code)
	}
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin@enterprise.com")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/tickets", adminToken, map[string]any{
		"title":       "Projector broken in room 4",
		"description": "No signal on any input",
		"priority":    "HIGH",
		"category":    "HARDWARE",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d, want 201", resp.StatusCode)
	}
	var created struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)
	if created.Data.ID != "TKT-000001" || created.Data.Status != "OPEN" {
		t.Fatalf("created: %+v", created.Data)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/tickets/"+created.Data.ID+"/transitions", adminToken, map[string]any{
		"status": "IN_PROGRESS",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transition status=%d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/tickets/"+created.Data.ID+"/history", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status=%d, want 200", resp.StatusCode)
	}
	var history struct {
		Data []struct {
			Action     string  `json:"action"`
			FromStatus *string `json:"fromStatus"`
			ToStatus   string  `json:"toStatus"`
		} `json:"data"`
	}
	decodeBody(t, resp, &history)
	if len(history.Data) != 2 {
		t.Fatalf("history entries=%d, want 2", len(history.Data))
	}
	if history.Data[0].Action != "Created" || history.Data[0].FromStatus != nil {
		t.Fatalf("first entry: %+v", history.Data[0])
	}
	if history.Data[1].Action != "Status Changed" || history.Data[1].ToStatus != "IN_PROGRESS" {
		t.Fatalf("second entry: %+v", history.Data[1])
	}
}

func TestViewerTransitionForbidden(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin@enterprise.com")
	viewerToken := login(t, app, "viewer@enterprise.com")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/tickets", adminToken, map[string]any{
		"title":       "Ticket",
		"description": "Description",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/tickets/TKT-000001/transitions", viewerToken, map[string]any{
		"status": "IN_PROGRESS",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status=%d, want 403", resp.StatusCode)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, resp, &body)
	if body.Error.Code != "FORBIDDEN" {
		t.Fatalf("code=%s, want FORBIDDEN", body.Error.Code)
	}
}

func TestMissingCommentRejectedOverHTTP(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin@enterprise.com")

	doJSON(t, app, http.MethodPost, "/api/v1/tickets", adminToken, map[string]any{
		"title": "Ticket", "description": "Description",
	})
	resp := doJSON(t, app, http.MethodPost, "/api/v1/tickets/TKT-000001/transitions", adminToken, map[string]any{
		"status": "REJECTED",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", resp.StatusCode)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, resp, &body)
	if body.Error.Code != "COMMENT_REQUIRED" {
		t.Fatalf("code=%s, want COMMENT_REQUIRED", body.Error.Code)
	}
}

func TestListTicketsQueryParams(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin@enterprise.com")

	for i := 0; i < 3; i++ {
		priority := "LOW"
		if i == 0 {
			priority = "CRITICAL"
		}
		resp := doJSON(t, app, http.MethodPost, "/api/v1/tickets", adminToken, map[string]any{
			"title":       fmt.Sprintf("Ticket %d", i+1),
			"description": "Description",
			"priority":    priority,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status=%d", resp.StatusCode)
		}
	}

	resp := doJSON(t, app, http.MethodGet, "/api/v1/tickets?priority=CRITICAL&sortBy=createdAt&sortDirection=desc", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status=%d", resp.StatusCode)
	}
	var page struct {
		Data       []struct{ ID string }
		Total      int `json:"total"`
		Page       int `json:"page"`
		PageSize   int `json:"pageSize"`
		TotalPages int `json:"totalPages"`
	}
	decodeBody(t, resp, &page)
	if page.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", page.Total, len(page.Data))
	}
	if page.Page != 1 || page.PageSize != 25 || page.TotalPages != 1 {
		t.Fatalf("metadata: %+v", page)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/tickets?sortBy=nonsense", adminToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid sort status=%d, want 400", resp.StatusCode)
	}
}

func TestUsersNeverExposePasswordHash(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin@enterprise.com")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var raw map[string]any
	decodeBody(t, resp, &raw)
	data, ok := raw["data"].([]any)
	if !ok || len(data) == 0 {
		t.Fatalf("unexpected body: %v", raw)
	}
	first := data[0].(map[string]any)
	for _, key := range []string{"password", "passwordHash", "PasswordHash"} {
		if _, present := first[key]; present {
			t.Fatalf("user payload leaks %s", key)
		}
	}
}
