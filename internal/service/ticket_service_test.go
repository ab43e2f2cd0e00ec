package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/repository"
	apperrors "github.com/helpdesk-kit/ticketing/pkg/util"
)

type fakeTicketRepo struct {
	nextID  int64
	tickets map[int64]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1, tickets: map[int64]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	r.nextID++
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		if filter.CreatorID != nil && ticket.Creator.ID != *filter.CreatorID {
			continue
		}
		if filter.AssigneeID != nil && (ticket.Assignee == nil || ticket.Assignee.ID != *filter.AssigneeID) {
			continue
		}
		if filter.RelatedUserID != nil {
			related := ticket.Creator.ID == *filter.RelatedUserID ||
				(ticket.Assignee != nil && ticket.Assignee.ID == *filter.RelatedUserID)
			if !related {
				continue
			}
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(*filter.SearchTerm)
			if !strings.Contains(strings.ToLower(ticket.Subject), term) &&
				!strings.Contains(strings.ToLower(ticket.Description), term) {
				continue
			}
		}
		result = append(result, *ticket)
	}
	return result, nil
}

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[int64]*domain.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
		if user.ID > repo.nextID {
			repo.nextID = user.ID
		}
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

func (r *fakeUserRepo) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		for _, role := range roles {
			if user.Role == role {
				result = append(result, *user)
				break
			}
		}
	}
	return result, nil
}

type fakeCommentRepo struct {
	nextID   int64
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.nextID++
	comment.ID = r.nextID
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

var (
	endUser  = &domain.User{ID: 1, Username: "alice", Role: domain.RoleUser}
	agent    = &domain.User{ID: 2, Username: "bob", Role: domain.RoleSupportAgent}
	agentTwo = &domain.User{ID: 3, Username: "carol", Role: domain.RoleSupportAgent}
	admin    = &domain.User{ID: 4, Username: "dave", Role: domain.RoleAdmin}
)

func newTestTicketService() (*TicketService, *fakeTicketRepo) {
	ticketRepo := newFakeTicketRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: &fakeCommentRepo{},
		UserRepo:    newFakeUserRepo(endUser, agent, agentTwo, admin),
	})
	return svc, ticketRepo
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _ := newTestTicketService()

	ticket, err := svc.CreateTicket(context.Background(), endUser, TicketCreateInput{
		Subject:     "Printer on fire",
		Description: "It is very much on fire.",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, endUser.ID, ticket.Creator.ID)
	assert.Nil(t, ticket.Assignee)
	assert.Nil(t, ticket.Rating)
	assert.Nil(t, ticket.ResolvedAt)

	fetched, err := svc.GetTicket(context.Background(), endUser, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, fetched.ID)
}

func TestCreateTicketRequiresSubjectAndDescription(t *testing.T) {
	svc, _ := newTestTicketService()

	_, err := svc.CreateTicket(context.Background(), endUser, TicketCreateInput{Subject: "   "})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestListTicketsScopedByRole(t *testing.T) {
	svc, _ := newTestTicketService()
	ctx := context.Background()

	mine, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "mine", Description: "d"})
	require.NoError(t, err)
	_, err = svc.CreateTicket(ctx, admin, TicketCreateInput{Subject: "other", Description: "d"})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, admin, mine.ID, agent.ID)
	require.NoError(t, err)

	userList, err := svc.ListTickets(ctx, endUser)
	require.NoError(t, err)
	assert.Len(t, userList, 1)

	agentList, err := svc.ListTickets(ctx, agent)
	require.NoError(t, err)
	assert.Len(t, agentList, 1)
	assert.Equal(t, mine.ID, agentList[0].ID)

	adminList, err := svc.ListTickets(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, adminList, 2)
}

func TestGetTicketAccess(t *testing.T) {
	svc, _ := newTestTicketService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)

	// An agent not assigned to the ticket is denied, not told it is missing.
	_, err = svc.GetTicket(ctx, agent, ticket.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.GetTicket(ctx, admin, ticket.ID)
	assert.NoError(t, err)

	_, err = svc.GetTicket(ctx, admin, 9999)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestUpdateStatusLatchesResolvedAt(t *testing.T) {
	svc, _ := newTestTicketService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)

	resolved, err := svc.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolvedAt := *resolved.ResolvedAt

	// Backward move is allowed and keeps the original resolution time.
	reopened, err := svc.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	require.NotNil(t, reopened.ResolvedAt)

	again, err := svc.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, again.ResolvedAt)
	assert.True(t, again.ResolvedAt.Equal(firstResolvedAt))
}

func TestAssignValidatesRoleAndBumpsStatus(t *testing.T) {
	svc, _ := newTestTicketService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, admin, ticket.ID, endUser.ID)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	assigned, err := svc.Assign(ctx, admin, ticket.ID, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.Assignee)
	assert.Equal(t, agent.ID, assigned.Assignee.ID)
	assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)

	// Reassigning an already in-progress ticket keeps its status.
	reassigned, err := svc.Assign(ctx, admin, ticket.ID, agentTwo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, reassigned.Status)
	assert.Equal(t, agentTwo.ID, reassigned.Assignee.ID)
}

func TestRateRules(t *testing.T) {
	svc, _ := newTestTicketService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)

	_, err = svc.Rate(ctx, endUser, ticket.ID, 0, nil)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.Rate(ctx, endUser, ticket.ID, 5, nil)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err), "open ticket cannot be rated")

	_, err = svc.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	_, err = svc.Rate(ctx, admin, ticket.ID, 5, nil)
	assert.Equal(t, "FORBIDDEN", errCode(t, err), "only the creator rates")

	feedback := "quick fix, thanks"
	rated, err := svc.Rate(ctx, endUser, ticket.ID, 4, &feedback)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 4, *rated.Rating)

	_, err = svc.Rate(ctx, endUser, ticket.ID, 5, nil)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestCommentsGatedByViewAccess(t *testing.T) {
	svc, _ := newTestTicketService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, endUser, ticket.ID, "  ")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.AddComment(ctx, agent, ticket.ID, "hello")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	comment, err := svc.AddComment(ctx, endUser, ticket.ID, "any update?")
	require.NoError(t, err)
	assert.Equal(t, endUser.ID, comment.Author.ID)

	_, err = svc.Assign(ctx, admin, ticket.ID, agent.ID)
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, agent, ticket.ID, "looking into it")
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, endUser, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestDeleteTicket(t *testing.T) {
	svc, repo := newTestTicketService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTicket(ctx, ticket.ID))
	assert.Empty(t, repo.tickets)

	assert.Equal(t, "NOT_FOUND", errCode(t, svc.DeleteTicket(ctx, ticket.ID)))
}

func TestSearchScopes(t *testing.T) {
	svc, _ := newTestTicketService()
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, endUser, TicketCreateInput{Subject: "VPN broken", Description: "d"})
	require.NoError(t, err)
	_, err = svc.CreateTicket(ctx, admin, TicketCreateInput{Subject: "VPN flaky", Description: "d"})
	require.NoError(t, err)

	term := "vpn"
	all, err := svc.SearchTickets(ctx, admin, TicketSearchInput{SearchTerm: &term})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.SearchTickets(ctx, endUser, TicketSearchInput{SearchTerm: &term})
	require.NoError(t, err)
	assert.Len(t, own, 1)
}
