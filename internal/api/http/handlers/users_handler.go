package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itsd-platform/helpdesk-service/internal/api/dto"
	"github.com/itsd-platform/helpdesk-service/internal/query"
	"github.com/itsd-platform/helpdesk-service/internal/service"
)

// UsersHandler exposes the user directory.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	pagination := query.Pagination{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("pageSize"), query.DefaultPageSize),
	}
	page, err := h.service.ListUsers(c.UserContext(), pagination)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(page.Data))
	for i := range page.Data {
		items = append(items, dto.FromUser(&page.Data[i]))
	}
	return c.JSON(dto.PageResponse[dto.UserResponse]{
		Data:       items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}
