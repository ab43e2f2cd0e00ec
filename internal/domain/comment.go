package domain

import "time"

// Comment is an append-only entry in a ticket's conversation thread.
// Comments are never edited or deleted.
type Comment struct {
	ID        int64
	TicketID  int64
	Author    User
	Content   string
	CreatedAt time.Time
}
