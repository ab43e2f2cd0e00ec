package ticketview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/ticketing/internal/domain"
)

func TestBuildStatusOptions(t *testing.T) {
	creator := domain.User{ID: 4, Role: domain.RoleUser}
	ticket := &domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress, Creator: creator}

	view := Build(ticket, &creator, domain.TicketStatuses)

	require.Len(t, view.StatusOptions, 4)
	for i, option := range view.StatusOptions {
		assert.Equal(t, domain.TicketStatuses[i], option.Status, "canonical order preserved")
		assert.Equal(t, option.Status == domain.TicketStatusInProgress, option.Disabled,
			"only the current status is disabled")
	}
}

func TestBuildWorkflowControls(t *testing.T) {
	creator := domain.User{ID: 4, Role: domain.RoleUser}
	agent := domain.User{ID: 2, Role: domain.RoleSupportAgent}
	admin := domain.User{ID: 1, Role: domain.RoleAdmin}

	assigned := &domain.Ticket{ID: 1, Status: domain.TicketStatusOpen, Creator: creator, Assignee: &agent}
	unassigned := &domain.Ticket{ID: 2, Status: domain.TicketStatusOpen, Creator: creator}

	// The creator owns the ticket but gets no workflow controls.
	view := Build(assigned, &creator, domain.TicketStatuses)
	assert.False(t, view.CanChangeStatus)
	assert.False(t, view.CanAssign)

	// The assigned agent drives the workflow; an unrelated agent does not.
	view = Build(assigned, &agent, domain.TicketStatuses)
	assert.True(t, view.CanChangeStatus)
	assert.True(t, view.CanAssign)

	view = Build(unassigned, &agent, domain.TicketStatuses)
	assert.False(t, view.CanChangeStatus)

	view = Build(unassigned, &admin, domain.TicketStatuses)
	assert.True(t, view.CanChangeStatus)
	assert.True(t, view.CanAssign)
}

func TestBuildRatingFlags(t *testing.T) {
	creator := domain.User{ID: 4, Role: domain.RoleUser}
	rating := 5

	resolved := &domain.Ticket{ID: 1, Status: domain.TicketStatusResolved, Creator: creator}
	view := Build(resolved, &creator, domain.TicketStatuses)
	assert.True(t, view.ShowRateAction)
	assert.False(t, view.ShowRating)

	rated := &domain.Ticket{ID: 2, Status: domain.TicketStatusResolved, Creator: creator, Rating: &rating}
	view = Build(rated, &creator, domain.TicketStatuses)
	assert.False(t, view.ShowRateAction, "rating is settable only once")
	assert.True(t, view.ShowRating)
}

func TestAssignmentCandidates(t *testing.T) {
	users := []domain.User{
		{ID: 1, Role: domain.RoleAdmin},
		{ID: 2, Role: domain.RoleUser},
		{ID: 3, Role: domain.RoleSupportAgent},
		{ID: 4, Role: domain.RoleUser},
	}

	candidates := AssignmentCandidates(users)

	require.Len(t, candidates, 2)
	assert.Equal(t, int64(1), candidates[0].ID)
	assert.Equal(t, int64(3), candidates[1].ID)
}
