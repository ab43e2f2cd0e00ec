// Package cache holds the Redis-backed read cache. Entries are keyed by
// stable ids (ticket id, the admin stats singleton) and are invalidated
// after every successful mutation of the underlying resource; readers fall
// through to Postgres on a miss. The cache is strictly an accelerator —
// a nil or unreachable Redis degrades to always-miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/stats"
)

const (
	ticketKeyPrefix = "ticket:"
	adminStatsKey   = "stats:admin"
)

// TicketCache caches ticket aggregates and the admin dashboard summary.
type TicketCache struct {
	client    *redis.Client
	logger    *zap.Logger
	ticketTTL time.Duration
	statsTTL  time.Duration
}

// NewTicketCache wraps a Redis client. A nil client is tolerated.
func NewTicketCache(client *redis.Client, ticketTTL, statsTTL time.Duration, logger *zap.Logger) *TicketCache {
	return &TicketCache{
		client:    client,
		logger:    logger,
		ticketTTL: ticketTTL,
		statsTTL:  statsTTL,
	}
}

func (c *TicketCache) enabled() bool {
	return c != nil && c.client != nil
}

// GetTicket returns the cached ticket, or nil on a miss.
func (c *TicketCache) GetTicket(ctx context.Context, id int64) *domain.Ticket {
	if !c.enabled() {
		return nil
	}
	raw, err := c.client.Get(ctx, ticketKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		c.warn("decode cached ticket", err)
		return nil
	}
	return &ticket
}

// SetTicket stores the ticket under its id. Failures only cost a miss.
func (c *TicketCache) SetTicket(ctx context.Context, ticket *domain.Ticket) {
	if !c.enabled() || ticket == nil {
		return
	}
	raw, err := json.Marshal(ticket)
	if err != nil {
		c.warn("encode ticket", err)
		return
	}
	if err := c.client.Set(ctx, ticketKey(ticket.ID), raw, c.ticketTTL).Err(); err != nil {
		c.warn("cache ticket", err)
	}
}

// InvalidateTicket drops the cached ticket and the stats summary; every
// ticket mutation changes both.
func (c *TicketCache) InvalidateTicket(ctx context.Context, id int64) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, ticketKey(id), adminStatsKey).Err(); err != nil {
		c.warn("invalidate ticket", err)
	}
}

// GetAdminSummary returns the cached admin dashboard, or nil on a miss.
func (c *TicketCache) GetAdminSummary(ctx context.Context) *stats.AdminSummary {
	if !c.enabled() {
		return nil
	}
	raw, err := c.client.Get(ctx, adminStatsKey).Bytes()
	if err != nil {
		return nil
	}
	var summary stats.AdminSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		c.warn("decode cached stats", err)
		return nil
	}
	return &summary
}

// SetAdminSummary stores the admin dashboard summary.
func (c *TicketCache) SetAdminSummary(ctx context.Context, summary stats.AdminSummary) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		c.warn("encode stats", err)
		return
	}
	if err := c.client.Set(ctx, adminStatsKey, raw, c.statsTTL).Err(); err != nil {
		c.warn("cache stats", err)
	}
}

// InvalidateAdminSummary drops the stats summary, used when user accounts
// change without touching any ticket.
func (c *TicketCache) InvalidateAdminSummary(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, adminStatsKey).Err(); err != nil {
		c.warn("invalidate stats", err)
	}
}

func (c *TicketCache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, zap.Error(err))
	}
}

func ticketKey(id int64) string {
	return fmt.Sprintf("%s%d", ticketKeyPrefix, id)
}
