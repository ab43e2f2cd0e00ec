// Package stats reduces ticket and user lists into dashboard summaries.
// Non-admin dashboards are computed from the viewer's own ticket list; the
// admin dashboard uses the richer server-side breakdown from AdminSummary.
package stats

import "github.com/helpdesk-kit/ticketing/internal/domain"

// recentLimit caps the recent-tickets strip on the dashboard.
const recentLimit = 5

// Summary holds status counts for a non-admin dashboard. Mine is present
// only for end-users and counts tickets the viewer created.
type Summary struct {
	Total      int  `json:"total"`
	Open       int  `json:"open"`
	InProgress int  `json:"inProgress"`
	Resolved   int  `json:"resolved"`
	Mine       *int `json:"mine,omitempty"`
}

// Aggregate reduces the viewer's visible ticket list by exact status match.
func Aggregate(tickets []domain.Ticket, current *domain.User) Summary {
	summary := Summary{Total: len(tickets)}
	mine := 0
	for i := range tickets {
		switch tickets[i].Status {
		case domain.TicketStatusOpen:
			summary.Open++
		case domain.TicketStatusInProgress:
			summary.InProgress++
		case domain.TicketStatusResolved:
			summary.Resolved++
		}
		if current != nil && tickets[i].Creator.ID == current.ID {
			mine++
		}
	}
	if current != nil && current.Role == domain.RoleUser {
		summary.Mine = &mine
	}
	return summary
}

// Recent returns the first five tickets of the server-ordered list, order
// preserved. No client-side sort is applied.
func Recent(tickets []domain.Ticket) []domain.Ticket {
	if len(tickets) <= recentLimit {
		return tickets
	}
	return tickets[:recentLimit]
}

// UserBreakdown counts accounts by role.
type UserBreakdown struct {
	Total         int `json:"total"`
	Admins        int `json:"admins"`
	SupportAgents int `json:"supportAgents"`
	RegularUsers  int `json:"regularUsers"`
}

// TicketBreakdown counts tickets by status.
type TicketBreakdown struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}

// AdminSummary is the server-computed dashboard for administrators. Admin
// clients defer to it entirely instead of recomputing from raw lists.
type AdminSummary struct {
	Users   UserBreakdown   `json:"users"`
	Tickets TicketBreakdown `json:"tickets"`
}

// BuildAdminSummary computes the admin dashboard from full entity lists.
func BuildAdminSummary(users []domain.User, tickets []domain.Ticket) AdminSummary {
	var summary AdminSummary
	summary.Users.Total = len(users)
	for i := range users {
		switch users[i].Role {
		case domain.RoleAdmin:
			summary.Users.Admins++
		case domain.RoleSupportAgent:
			summary.Users.SupportAgents++
		default:
			summary.Users.RegularUsers++
		}
	}
	summary.Tickets.Total = len(tickets)
	for i := range tickets {
		switch tickets[i].Status {
		case domain.TicketStatusOpen:
			summary.Tickets.Open++
		case domain.TicketStatusInProgress:
			summary.Tickets.InProgress++
		case domain.TicketStatusResolved:
			summary.Tickets.Resolved++
		case domain.TicketStatusClosed:
			summary.Tickets.Closed++
		}
	}
	return summary
}
