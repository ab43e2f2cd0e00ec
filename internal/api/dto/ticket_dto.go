package dto

import (
	"time"

	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/ticketview"
)

// CreateTicketRequest payload. Priority is optional and defaults to MEDIUM.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// StatusUpdateRequest payload.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID int64 `json:"assigneeId"`
}

// CommentRequest payload.
type CommentRequest struct {
	Content string `json:"content"`
}

// RateRequest payload. Feedback is optional.
type RateRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback"`
}

// UserResponse is the public account snapshot embedded in tickets and
// comments. Password material never leaves the server.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// TicketResponse is the full ticket aggregate. View is only populated on
// detail responses, where it reflects the requesting viewer.
type TicketResponse struct {
	ID          int64             `json:"id"`
	Subject     string            `json:"subject"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	Creator     UserResponse      `json:"creator"`
	Assignee    *UserResponse     `json:"assignee"`
	Rating      *int              `json:"rating"`
	Feedback    *string           `json:"feedback"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	ResolvedAt  *time.Time        `json:"resolvedAt"`
	View        *ticketview.View  `json:"view,omitempty"`
	Comments    []CommentResponse `json:"comments,omitempty"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID        int64        `json:"id"`
	TicketID  int64        `json:"ticketId"`
	Author    UserResponse `json:"author"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}

// NewUserResponses maps a user list.
func NewUserResponses(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, NewUserResponse(&users[i]))
	}
	return result
}

// NewTicketResponse maps a domain ticket without viewer-specific state.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	response := TicketResponse{
		ID:          ticket.ID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		Priority:    string(ticket.Priority),
		Creator:     NewUserResponse(&ticket.Creator),
		Rating:      ticket.Rating,
		Feedback:    ticket.Feedback,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ResolvedAt:  ticket.ResolvedAt,
	}
	if ticket.Assignee != nil {
		assignee := NewUserResponse(ticket.Assignee)
		response.Assignee = &assignee
	}
	return response
}

// NewTicketDetailResponse maps a ticket and attaches the viewer's derived
// workflow state.
func NewTicketDetailResponse(ticket *domain.Ticket, viewer *domain.User) TicketResponse {
	response := NewTicketResponse(ticket)
	view := ticketview.Build(ticket, viewer, domain.TicketStatuses)
	response.View = &view
	return response
}

// NewTicketResponses maps a ticket list.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketResponse(&tickets[i]))
	}
	return result
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		Author:    NewUserResponse(&comment.Author),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentResponses maps a comment list.
func NewCommentResponses(comments []domain.Comment) []CommentResponse {
	result := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, NewCommentResponse(&comments[i]))
	}
	return result
}
