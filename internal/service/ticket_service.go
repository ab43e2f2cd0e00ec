package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/ticketing/internal/cache"
	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/events"
	"github.com/helpdesk-kit/ticketing/internal/policy"
	"github.com/helpdesk-kit/ticketing/internal/repository"
	apperrors "github.com/helpdesk-kit/ticketing/pkg/util"
)

// TicketService coordinates ticket workflows. All access decisions go
// through the policy package; the backend is the authority, clients only
// mirror these checks for rendering.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	cache      *cache.TicketCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Cache       *cache.TicketCache
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
}

// TicketSearchInput describes search filters. Non-admin callers are scoped
// to their own tickets regardless of AssigneeID/CreatorID.
type TicketSearchInput struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssigneeID *int64
	CreatorID  *int64
	SearchTerm *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket files a new ticket for the caller. New tickets always start
// OPEN, unassigned and unrated; the creator is fixed forever.
func (s *TicketService) CreateTicket(ctx context.Context, creator *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description required", nil)
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Creator:     *creator,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateAdminSummary(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorFor(creator),
		Payload: events.TicketCreatedPayload{
			Subject:  ticket.Subject,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// ListTickets returns the caller's visible ticket list: admins see all,
// support agents tickets they created or are assigned to, end-users their
// own tickets.
func (s *TicketService) ListTickets(ctx context.Context, user *domain.User) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{}
	switch user.Role {
	case domain.RoleAdmin:
	case domain.RoleSupportAgent:
		filter.RelatedUserID = &user.ID
	default:
		filter.CreatorID = &user.ID
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// SearchTickets filters tickets. Admins may filter by arbitrary assignee
// and creator; everyone else searches within their visible scope.
func (s *TicketService) SearchTickets(ctx context.Context, user *domain.User, input TicketSearchInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Status:     input.Status,
		Priority:   input.Priority,
		SearchTerm: input.SearchTerm,
	}
	if user.Role == domain.RoleAdmin {
		filter.AssigneeID = input.AssigneeID
		filter.CreatorID = input.CreatorID
	} else if user.Role == domain.RoleSupportAgent {
		filter.RelatedUserID = &user.ID
	} else {
		filter.CreatorID = &user.ID
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAllTickets returns every ticket, for admin surfaces.
func (s *TicketService) ListAllTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches a ticket with the access check applied. A denial is a
// first-class FORBIDDEN, distinct from not-found and from transient
// failures.
func (s *TicketService) GetTicket(ctx context.Context, user *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(user, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// UpdateStatus moves a ticket to any canonical status. Transitions are
// unconstrained, backward moves included; resolvedAt is latched on the
// first transition into RESOLVED and survives later changes.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	oldStatus := ticket.Status
	ticket.Status = status
	if status == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		now := time.Now()
		ticket.ResolvedAt = &now
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateTicket(ctx, ticket.ID)
	if oldStatus != status {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actorFor(actor),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: status,
			},
		})
	}
	return ticket, nil
}

// Assign sets the ticket's assignee. The target must be a support agent or
// admin; assigning an OPEN ticket moves it to IN_PROGRESS.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, id, assigneeID int64) (*domain.Ticket, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("assignee not found", map[string]any{"assigneeId": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanBeAssignee(assignee) {
		return nil, apperrors.NewValidationError("can only assign to support agents or admins", nil)
	}

	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	var oldAssigneeID *int64
	if ticket.Assignee != nil {
		oldAssigneeID = &ticket.Assignee.ID
	}
	ticket.Assignee = assignee
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateTicket(ctx, ticket.ID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload: events.TicketAssignedPayload{
			OldAssigneeID: oldAssigneeID,
			AssigneeID:    assignee.ID,
		},
	})
	return ticket, nil
}

// AddComment appends to the ticket thread. Anyone with view access may
// comment; comments are never edited or deleted.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		Author:   *actor,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateTicket(ctx, ticket.ID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload: events.TicketCommentedPayload{
			CommentID:   comment.ID,
			BodyPreview: preview(comment.Content, 120),
		},
	})
	return comment, nil
}

// ListComments returns the ticket thread for callers with view access.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// Rate records the creator's one-time satisfaction rating on a resolved or
// closed ticket.
func (s *TicketService) Rate(ctx context.Context, actor *domain.User, ticketID int64, rating int, feedback *string) (*domain.Ticket, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Creator.ID != actor.ID {
		return nil, apperrors.NewForbidden("only the ticket creator can rate the ticket")
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewValidationError("can only rate resolved or closed tickets", nil)
	}
	if ticket.Rated() {
		return nil, apperrors.NewConflict("ticket already rated", nil)
	}

	ticket.Rating = &rating
	ticket.Feedback = feedback
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateTicket(ctx, ticket.ID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketRated,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload:  events.TicketRatedPayload{Rating: rating},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket and its comments. Route-gated to admins.
func (s *TicketService) DeleteTicket(ctx context.Context, id int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return apperrors.MapError(err)
	}
	s.cache.InvalidateTicket(ctx, id)
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	if cached := s.cache.GetTicket(ctx, id); cached != nil {
		return cached, nil
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	s.cache.SetTicket(ctx, ticket)
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
