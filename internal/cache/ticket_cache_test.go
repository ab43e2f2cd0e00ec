package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/stats"
)

func newTestCache(t *testing.T) *TicketCache {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTicketCache(client, 5*time.Minute, time.Minute, zap.NewNop())
}

func TestTicketRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ticket := &domain.Ticket{
		ID:      42,
		Subject: "printer on fire",
		Status:  domain.TicketStatusOpen,
		Creator: domain.User{ID: 7, Username: "jdoe", Role: domain.RoleUser},
	}

	assert.Nil(t, c.GetTicket(ctx, 42), "cold cache misses")

	c.SetTicket(ctx, ticket)
	got := c.GetTicket(ctx, 42)
	require.NotNil(t, got)
	assert.Equal(t, ticket.Subject, got.Subject)
	assert.Equal(t, ticket.Creator.ID, got.Creator.ID)
}

func TestInvalidateTicketDropsTicketAndStats(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetTicket(ctx, &domain.Ticket{ID: 1, Status: domain.TicketStatusOpen})
	c.SetAdminSummary(ctx, stats.AdminSummary{Tickets: stats.TicketBreakdown{Total: 1, Open: 1}})

	c.InvalidateTicket(ctx, 1)

	assert.Nil(t, c.GetTicket(ctx, 1))
	assert.Nil(t, c.GetAdminSummary(ctx), "stats summary is stale after any ticket mutation")
}

func TestAdminSummaryRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	summary := stats.AdminSummary{
		Users:   stats.UserBreakdown{Total: 3, Admins: 1, SupportAgents: 1, RegularUsers: 1},
		Tickets: stats.TicketBreakdown{Total: 2, Open: 1, Closed: 1},
	}
	c.SetAdminSummary(ctx, summary)

	got := c.GetAdminSummary(ctx)
	require.NotNil(t, got)
	assert.Equal(t, summary, *got)

	c.InvalidateAdminSummary(ctx)
	assert.Nil(t, c.GetAdminSummary(ctx))
}

func TestNilCacheDegradesToMiss(t *testing.T) {
	var c *TicketCache
	ctx := context.Background()

	assert.Nil(t, c.GetTicket(ctx, 1))
	c.SetTicket(ctx, &domain.Ticket{ID: 1})
	c.InvalidateTicket(ctx, 1)
	assert.Nil(t, c.GetAdminSummary(ctx))
}
