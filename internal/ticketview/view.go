// Package ticketview derives the UI-facing state of a ticket for a given
// viewer: which status buttons to offer, whether assignment and rating
// actions apply, and which users qualify as assignment candidates. The
// server embeds the result in ticket-detail responses so clients render
// from the same predicates the backend enforces.
package ticketview

import (
	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/policy"
)

// StatusOption is one status-change button. Every canonical status is
// offered; the option matching the ticket's current status is disabled.
// Transitions are deliberately unconstrained, backward moves included.
type StatusOption struct {
	Status   domain.TicketStatus `json:"status"`
	Disabled bool                `json:"disabled"`
}

// View is the derived, per-viewer state of a ticket.
type View struct {
	StatusOptions   []StatusOption `json:"statusOptions"`
	CanChangeStatus bool           `json:"canChangeStatus"`
	CanAssign       bool           `json:"canAssign"`
	ShowRateAction  bool           `json:"showRateAction"`
	ShowRating      bool           `json:"showRating"`
}

// Build computes the view of ticket for user over the given status set.
// Pass domain.TicketStatuses for the canonical ordering.
func Build(ticket *domain.Ticket, user *domain.User, statuses []domain.TicketStatus) View {
	options := make([]StatusOption, 0, len(statuses))
	for _, status := range statuses {
		options = append(options, StatusOption{
			Status:   status,
			Disabled: status == ticket.Status,
		})
	}

	// Status and assignment controls require agent rank on top of modify
	// rights: an end-user owns their ticket but never drives its workflow.
	staffControl := user != nil &&
		policy.RoleAtLeast(user.Role, domain.RoleSupportAgent) &&
		policy.CanModify(user, ticket)

	return View{
		StatusOptions:   options,
		CanChangeStatus: staffControl,
		CanAssign:       staffControl,
		ShowRateAction:  policy.CanRate(user, ticket),
		ShowRating:      ticket.Rated(),
	}
}

// AssignmentCandidates filters a separately-fetched user list down to valid
// assignment targets, preserving order.
func AssignmentCandidates(users []domain.User) []domain.User {
	candidates := make([]domain.User, 0, len(users))
	for _, user := range users {
		u := user
		if policy.CanBeAssignee(&u) {
			candidates = append(candidates, u)
		}
	}
	return candidates
}
