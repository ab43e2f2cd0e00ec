package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helpdesk-kit/ticketing/internal/domain"
)

func TestRoleAtLeastMonotonic(t *testing.T) {
	roles := []domain.Role{domain.RoleUser, domain.RoleSupportAgent, domain.RoleAdmin}

	for i, role := range roles {
		for j, required := range roles {
			assert.Equal(t, i >= j, RoleAtLeast(role, required),
				"RoleAtLeast(%s, %s)", role, required)
		}
	}

	// USER fails every non-USER requirement; ADMIN passes all.
	assert.False(t, RoleAtLeast(domain.RoleUser, domain.RoleSupportAgent))
	assert.False(t, RoleAtLeast(domain.RoleUser, domain.RoleAdmin))
	for _, required := range roles {
		assert.True(t, RoleAtLeast(domain.RoleAdmin, required))
	}
}

func TestRoleAtLeastUnknownRole(t *testing.T) {
	assert.False(t, RoleAtLeast(domain.Role("SUPERVISOR"), domain.RoleUser))
	assert.False(t, RoleAtLeast(domain.RoleAdmin, domain.Role("SUPERVISOR")))
}

func TestCanModify(t *testing.T) {
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
	agent := &domain.User{ID: 2, Role: domain.RoleSupportAgent}
	otherAgent := &domain.User{ID: 3, Role: domain.RoleSupportAgent}
	creator := &domain.User{ID: 4, Role: domain.RoleUser}
	stranger := &domain.User{ID: 5, Role: domain.RoleUser}

	unassigned := &domain.Ticket{ID: 10, Creator: *creator}
	assigned := &domain.Ticket{ID: 11, Creator: *creator, Assignee: agent}

	assert.True(t, CanModify(admin, unassigned))
	assert.True(t, CanModify(admin, assigned))

	assert.False(t, CanModify(agent, unassigned), "agent without assignment has no rights")
	assert.True(t, CanModify(agent, assigned))
	assert.False(t, CanModify(otherAgent, assigned))

	assert.True(t, CanModify(creator, unassigned))
	assert.True(t, CanModify(creator, assigned))
	assert.False(t, CanModify(stranger, assigned))
}

func TestCanViewMirrorsCanModify(t *testing.T) {
	agent := &domain.User{ID: 2, Role: domain.RoleSupportAgent}
	creator := &domain.User{ID: 4, Role: domain.RoleUser}
	ticket := &domain.Ticket{ID: 11, Creator: *creator, Assignee: agent}

	for _, user := range []*domain.User{
		{ID: 1, Role: domain.RoleAdmin},
		agent,
		{ID: 3, Role: domain.RoleSupportAgent},
		creator,
		{ID: 5, Role: domain.RoleUser},
	} {
		assert.Equal(t, CanModify(user, ticket), CanView(user, ticket))
	}
}

func TestCanRate(t *testing.T) {
	creator := &domain.User{ID: 4, Role: domain.RoleUser}
	stranger := &domain.User{ID: 5, Role: domain.RoleUser}
	rating := 4

	cases := []struct {
		name   string
		user   *domain.User
		ticket *domain.Ticket
		want   bool
	}{
		{"resolved unrated by creator", creator, &domain.Ticket{Creator: *creator, Status: domain.TicketStatusResolved}, true},
		{"closed unrated by creator", creator, &domain.Ticket{Creator: *creator, Status: domain.TicketStatusClosed}, true},
		{"open ticket", creator, &domain.Ticket{Creator: *creator, Status: domain.TicketStatusOpen}, false},
		{"in-progress ticket", creator, &domain.Ticket{Creator: *creator, Status: domain.TicketStatusInProgress}, false},
		{"already rated", creator, &domain.Ticket{Creator: *creator, Status: domain.TicketStatusResolved, Rating: &rating}, false},
		{"not the creator", stranger, &domain.Ticket{Creator: *creator, Status: domain.TicketStatusResolved}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanRate(tc.user, tc.ticket))
		})
	}
}

func TestCanBeAssignee(t *testing.T) {
	assert.False(t, CanBeAssignee(&domain.User{Role: domain.RoleUser}))
	assert.True(t, CanBeAssignee(&domain.User{Role: domain.RoleSupportAgent}))
	assert.True(t, CanBeAssignee(&domain.User{Role: domain.RoleAdmin}))
	assert.False(t, CanBeAssignee(nil))
}
