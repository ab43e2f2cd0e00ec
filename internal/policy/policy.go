// Package policy is the single source of truth for access decisions. Both
// the HTTP role gates and the ticket view-model consume these predicates so
// the two can never drift apart.
package policy

import "github.com/helpdesk-kit/ticketing/internal/domain"

// roleLevels orders roles as a strict total order:
// USER(0) < SUPPORT_AGENT(1) < ADMIN(2).
var roleLevels = map[domain.Role]int{
	domain.RoleUser:         0,
	domain.RoleSupportAgent: 1,
	domain.RoleAdmin:        2,
}

// RoleAtLeast reports whether role meets or exceeds required. Unknown roles
// rank below USER and satisfy nothing.
func RoleAtLeast(role, required domain.Role) bool {
	level, ok := roleLevels[role]
	if !ok {
		return false
	}
	requiredLevel, ok := roleLevels[required]
	if !ok {
		return false
	}
	return level >= requiredLevel
}

// CanView reports whether the user may see the ticket at all. Admins see
// everything; support agents only tickets assigned to them; end-users only
// tickets they created.
func CanView(user *domain.User, ticket *domain.Ticket) bool {
	return CanModify(user, ticket)
}

// CanModify reports whether the user may mutate the ticket. The matrix
// mirrors CanView: visibility and modification rights coincide for
// non-admins.
func CanModify(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	switch user.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSupportAgent:
		return ticket.Assignee != nil && ticket.Assignee.ID == user.ID
	default:
		return ticket.Creator.ID == user.ID
	}
}

// CanRate reports whether the user may rate the ticket: creator only, only
// once the ticket is RESOLVED or CLOSED, and only while no rating exists.
func CanRate(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	if ticket.Creator.ID != user.ID {
		return false
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return false
	}
	return !ticket.Rated()
}

// CanBeAssignee reports whether the user is a valid assignment target.
func CanBeAssignee(user *domain.User) bool {
	if user == nil {
		return false
	}
	return RoleAtLeast(user.Role, domain.RoleSupportAgent)
}
