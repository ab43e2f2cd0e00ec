package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/ticketing/internal/domain"
)

func ticketsWithStatuses(statuses ...domain.TicketStatus) []domain.Ticket {
	tickets := make([]domain.Ticket, 0, len(statuses))
	for i, status := range statuses {
		tickets = append(tickets, domain.Ticket{ID: int64(i + 1), Status: status})
	}
	return tickets
}

func TestAggregateCounts(t *testing.T) {
	tickets := ticketsWithStatuses(
		domain.TicketStatusOpen,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusResolved,
		domain.TicketStatusResolved,
	)

	summary := Aggregate(tickets, &domain.User{ID: 1, Role: domain.RoleSupportAgent})

	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 2, summary.Open)
	assert.Equal(t, 1, summary.InProgress)
	assert.Equal(t, 3, summary.Resolved)
	assert.Nil(t, summary.Mine, "mine is only reported for end-users")
}

func TestAggregateMine(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: 1, Status: domain.TicketStatusOpen, Creator: domain.User{ID: 7}},
		{ID: 2, Status: domain.TicketStatusOpen, Creator: domain.User{ID: 7}},
		{ID: 3, Status: domain.TicketStatusOpen, Creator: domain.User{ID: 3}},
		{ID: 4, Status: domain.TicketStatusOpen, Creator: domain.User{ID: 9}},
	}

	summary := Aggregate(tickets, &domain.User{ID: 7, Role: domain.RoleUser})

	require.NotNil(t, summary.Mine)
	assert.Equal(t, 2, *summary.Mine)
}

func TestRecentKeepsServerOrder(t *testing.T) {
	tickets := ticketsWithStatuses(
		domain.TicketStatusClosed,
		domain.TicketStatusOpen,
		domain.TicketStatusResolved,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusOpen,
		domain.TicketStatusOpen,
	)

	recent := Recent(tickets)

	require.Len(t, recent, 5)
	for i := range recent {
		assert.Equal(t, tickets[i].ID, recent[i].ID, "order must be exactly as received")
	}

	short := tickets[:3]
	assert.Len(t, Recent(short), 3)
}

func TestBuildAdminSummary(t *testing.T) {
	users := []domain.User{
		{ID: 1, Role: domain.RoleAdmin},
		{ID: 2, Role: domain.RoleSupportAgent},
		{ID: 3, Role: domain.RoleSupportAgent},
		{ID: 4, Role: domain.RoleUser},
		{ID: 5, Role: domain.RoleUser},
		{ID: 6, Role: domain.RoleUser},
	}
	tickets := ticketsWithStatuses(
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
		domain.TicketStatusClosed,
	)

	summary := BuildAdminSummary(users, tickets)

	assert.Equal(t, UserBreakdown{Total: 6, Admins: 1, SupportAgents: 2, RegularUsers: 3}, summary.Users)
	assert.Equal(t, TicketBreakdown{Total: 5, Open: 1, InProgress: 1, Resolved: 1, Closed: 2}, summary.Tickets)
}
