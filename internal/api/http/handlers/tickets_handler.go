package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/itsd-platform/helpdesk-service/internal/api/dto"
	"github.com/itsd-platform/helpdesk-service/internal/auth"
	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/query"
	"github.com/itsd-platform/helpdesk-service/internal/service"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	form := domain.TicketForm{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), principal.User.ID, form)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	spec, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListTickets(c.UserContext(), spec)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(page.Data))
	for i := range page.Data {
		items = append(items, dto.FromTicket(&page.Data[i]))
	}
	return c.JSON(dto.PageResponse[dto.TicketResponse]{
		Data:       items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := domain.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if req.AssignedTo.Set {
		patch.AssignedTo = &req.AssignedTo.Value
	}
	if req.DueDate.Set {
		patch.DueDate = &req.DueDate.Value
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), principal.User.ID, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// TransitionTicket POST /tickets/:id/transitions.
func (h *TicketsHandler) TransitionTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TransitionTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.service.TransitionTicket(c.UserContext(), principal.User, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// GetHistory GET /tickets/:id/history.
func (h *TicketsHandler) GetHistory(c *fiber.Ctx) error {
	entries, err := h.service.GetHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromHistoryEntry(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) (query.Spec, error) {
	spec := query.Spec{
		Pagination: query.Pagination{
			Page:     parseInt(c.Query("page"), 1),
			PageSize: parseInt(c.Query("pageSize"), query.DefaultPageSize),
		},
	}

	if sortBy := c.Query("sortBy"); sortBy != "" {
		field, ok := query.ParseSortField(sortBy)
		if !ok {
			return query.Spec{}, apperrors.NewValidationError("unknown sort field", map[string]any{"sortBy": sortBy})
		}
		direction := query.SortAsc
		if dir := c.Query("sortDirection"); dir != "" {
			switch query.SortDirection(dir) {
			case query.SortAsc, query.SortDesc:
				direction = query.SortDirection(dir)
			default:
				return query.Spec{}, apperrors.NewValidationError("sortDirection must be asc or desc", nil)
			}
		}
		spec.Sort = &query.Sort{Field: field, Direction: direction}
	}

	for _, part := range splitCSV(c.Query("status")) {
		status := domain.TicketStatus(part)
		if !status.Valid() {
			return query.Spec{}, apperrors.NewValidationError("unknown status filter", map[string]any{"status": part})
		}
		spec.Filters.Status = append(spec.Filters.Status, status)
	}
	for _, part := range splitCSV(c.Query("priority")) {
		priority := domain.TicketPriority(part)
		if !priority.Valid() {
			return query.Spec{}, apperrors.NewValidationError("unknown priority filter", map[string]any{"priority": part})
		}
		spec.Filters.Priority = append(spec.Filters.Priority, priority)
	}
	for _, part := range splitCSV(c.Query("category")) {
		category := domain.TicketCategory(part)
		if !category.Valid() {
			return query.Spec{}, apperrors.NewValidationError("unknown category filter", map[string]any{"category": part})
		}
		spec.Filters.Category = append(spec.Filters.Category, category)
	}

	spec.Filters.Search = strings.TrimSpace(c.Query("search"))
	spec.Filters.AssignedTo = c.Query("assignedTo")
	spec.Filters.CreatedBy = c.Query("createdBy")

	var err error
	if spec.Filters.DateFrom, err = parseTimeParam(c.Query("dateFrom"), "dateFrom"); err != nil {
		return query.Spec{}, err
	}
	if spec.Filters.DateTo, err = parseTimeParam(c.Query("dateTo"), "dateTo"); err != nil {
		return query.Spec{}, err
	}
	return spec, nil
}

func splitCSV(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTimeParam(val, name string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid timestamp, want RFC 3339", map[string]any{name: val})
	}
	return &t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
