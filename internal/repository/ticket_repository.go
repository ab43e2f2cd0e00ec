package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/ticketing/internal/domain"
)

// TicketFilter captures search parameters. RelatedUserID matches tickets
// the user created or is assigned to (the support-agent listing scope).
type TicketFilter struct {
	Status        *domain.TicketStatus
	Priority      *domain.TicketPriority
	AssigneeID    *int64
	CreatorID     *int64
	RelatedUserID *int64
	SearchTerm    *string
}

// TicketRepository encapsulates ticket persistence. Tickets are always
// hydrated with their creator and assignee accounts.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketSelect = `
        SELECT t.id, t.subject, t.description, t.status, t.priority,
               t.rating, t.feedback, t.created_at, t.updated_at, t.resolved_at,
               c.id, c.username, c.email, c.first_name, c.last_name, c.role,
               a.id, a.username, a.email, a.first_name, a.last_name, a.role
        FROM tickets t
        JOIN users c ON c.id = t.creator_id
        LEFT JOIN users a ON a.id = t.assignee_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, status, priority, creator_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Creator.ID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	var assigneeID *int64
	if ticket.Assignee != nil {
		assigneeID = &ticket.Assignee.ID
	}
	const query = `
        UPDATE tickets SET subject=$1, description=$2, status=$3, priority=$4,
            assignee_id=$5, rating=$6, feedback=$7, resolved_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		assigneeID,
		ticket.Rating,
		ticket.Feedback,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id)
	return scanTicketRow(row)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id=$%d", len(args)))
	}
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("t.creator_id=$%d", len(args)))
	}
	if filter.RelatedUserID != nil {
		args = append(args, *filter.RelatedUserID)
		clauses = append(clauses, fmt.Sprintf("(t.creator_id=$%d OR t.assignee_id=$%d)", len(args), len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.subject) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.updated_at DESC`, ticketSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket            domain.Ticket
		assigneeID        *int64
		assigneeUsername  *string
		assigneeEmail     *string
		assigneeFirstName *string
		assigneeLastName  *string
		assigneeRole      *string
	)

	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Rating,
		&ticket.Feedback,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.Creator.ID,
		&ticket.Creator.Username,
		&ticket.Creator.Email,
		&ticket.Creator.FirstName,
		&ticket.Creator.LastName,
		&ticket.Creator.Role,
		&assigneeID,
		&assigneeUsername,
		&assigneeEmail,
		&assigneeFirstName,
		&assigneeLastName,
		&assigneeRole,
	); err != nil {
		return nil, err
	}

	if assigneeID != nil {
		ticket.Assignee = &domain.User{
			ID:        *assigneeID,
			Username:  deref(assigneeUsername),
			Email:     deref(assigneeEmail),
			FirstName: deref(assigneeFirstName),
			LastName:  deref(assigneeLastName),
			Role:      domain.Role(deref(assigneeRole)),
		}
	}
	return &ticket, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
