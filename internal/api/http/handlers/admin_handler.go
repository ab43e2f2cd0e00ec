package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticketing/internal/api/dto"
	"github.com/helpdesk-kit/ticketing/internal/auth"
	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/service"
	apperrors "github.com/helpdesk-kit/ticketing/pkg/util"
)

// AdminHandler manages the admin panel endpoints. The whole route group
// is gated to ADMIN, so handlers trust the principal's rank.
type AdminHandler struct {
	admins  *service.AdminService
	tickets *service.TicketService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, ticketService *service.TicketService) *AdminHandler {
	return &AdminHandler{admins: adminService, tickets: ticketService}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admins.ListUsers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.AdminUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admins.CreateUser(c.Context(), adminUserInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// UpdateUser PUT /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.AdminUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admins.UpdateUser(c.Context(), id, adminUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.admins.DeleteUser(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "user deleted"})
}

// SupportAgents GET /admin/support-agents.
func (h *AdminHandler) SupportAgents(c *fiber.Ctx) error {
	agents, err := h.admins.ListAssignableAgents(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(agents))
}

// AllTickets GET /admin/tickets.
func (h *AdminHandler) AllTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListAllTickets(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponses(tickets))
}

// DeleteTicket DELETE /admin/tickets/:id.
func (h *AdminHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "ticket deleted"})
}

// ForceStatus PUT /admin/tickets/:id/status. Same semantics as the
// regular status endpoint; an admin principal passes every policy check.
func (h *AdminHandler) ForceStatus(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.ParseTicketStatus(req.Status)
	if !ok {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	ticket, err := h.tickets.UpdateStatus(c.Context(), principal, id, status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketDetailResponse(ticket, principal))
}

// ForceAssign PUT /admin/tickets/:id/assign.
func (h *AdminHandler) ForceAssign(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Assign(c.Context(), principal, id, req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketDetailResponse(ticket, principal))
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	summary, err := h.admins.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func adminUserInput(req dto.AdminUserRequest) service.UserInput {
	return service.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
	}
}

// mustPrincipal is safe behind the admin group's auth middleware.
func mustPrincipal(c *fiber.Ctx) *domain.User {
	principal, _ := auth.PrincipalFromContext(c)
	return principal
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}
