// Package client is the typed REST client used by helpdeskctl. It mirrors
// the server's wire format, classifies failures into sentinel errors and
// keeps the persisted session in sync: any 401 drops the stored
// credentials so the next command starts anonymous.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/helpdesk-kit/ticketing/internal/api/dto"
	"github.com/helpdesk-kit/ticketing/internal/stats"
)

const defaultTimeout = 10 * time.Second

// Client talks to the ticketing API.
type Client struct {
	baseURL string
	http    *http.Client
	session *SessionStore
}

// New constructs a client against baseURL using the given session store.
func New(baseURL string, session *SessionStore) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		session: session,
	}
}

// SignIn authenticates and persists the resulting session.
func (c *Client) SignIn(ctx context.Context, username, password string) (*dto.SignInResponse, error) {
	var resp dto.SignInResponse
	err := c.do(ctx, http.MethodPost, "/auth/signin", dto.SignInRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.Save(Session{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		UserID:      resp.ID,
		Username:    resp.Username,
		Email:       resp.Email,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		Role:        resp.Role,
	}); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return &resp, nil
}

// SignUp registers a new account. It does not sign in.
func (c *Client) SignUp(ctx context.Context, req dto.SignUpRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", req, nil)
}

// SignOut drops the persisted session. Purely local; tokens are stateless.
func (c *Client) SignOut() {
	c.session.Clear()
}

// ListTickets returns the caller's visible tickets.
func (c *Client) ListTickets(ctx context.Context) ([]dto.TicketResponse, error) {
	var tickets []dto.TicketResponse
	if err := c.do(ctx, http.MethodGet, "/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// TicketSearchQuery carries optional search filters.
type TicketSearchQuery struct {
	Term     string
	Status   string
	Priority string
}

// SearchTickets filters tickets server-side.
func (c *Client) SearchTickets(ctx context.Context, query TicketSearchQuery) ([]dto.TicketResponse, error) {
	params := url.Values{}
	if query.Term != "" {
		params.Set("search", query.Term)
	}
	if query.Status != "" {
		params.Set("status", query.Status)
	}
	if query.Priority != "" {
		params.Set("priority", query.Priority)
	}
	path := "/tickets/search"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var tickets []dto.TicketResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicket fetches one ticket with its viewer-specific state. A single
// retry covers transient faults; authorization and not-found answers are
// final and never retried.
func (c *Client) GetTicket(ctx context.Context, id int64) (*dto.TicketResponse, error) {
	var ticket dto.TicketResponse
	err := c.do(ctx, http.MethodGet, ticketPath(id), nil, &ticket)
	if err != nil && retryable(err) {
		err = c.do(ctx, http.MethodGet, ticketPath(id), nil, &ticket)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket files a new ticket.
func (c *Client) CreateTicket(ctx context.Context, req dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	var ticket dto.TicketResponse
	if err := c.do(ctx, http.MethodPost, "/tickets", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicketStatus moves a ticket to the given status.
func (c *Client) UpdateTicketStatus(ctx context.Context, id int64, status string) (*dto.TicketResponse, error) {
	var ticket dto.TicketResponse
	if err := c.do(ctx, http.MethodPut, ticketPath(id)+"/status", dto.StatusUpdateRequest{Status: status}, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AssignTicket assigns a ticket to the given user.
func (c *Client) AssignTicket(ctx context.Context, id, assigneeID int64) (*dto.TicketResponse, error) {
	var ticket dto.TicketResponse
	if err := c.do(ctx, http.MethodPut, ticketPath(id)+"/assign", dto.AssignRequest{AssigneeID: assigneeID}, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AddComment appends to the ticket thread.
func (c *Client) AddComment(ctx context.Context, id int64, content string) (*dto.CommentResponse, error) {
	var comment dto.CommentResponse
	if err := c.do(ctx, http.MethodPost, ticketPath(id)+"/comments", dto.CommentRequest{Content: content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns the ticket thread.
func (c *Client) ListComments(ctx context.Context, id int64) ([]dto.CommentResponse, error) {
	var comments []dto.CommentResponse
	if err := c.do(ctx, http.MethodGet, ticketPath(id)+"/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// RateTicket submits the creator's satisfaction rating. The 1..5 bound is
// checked before any network traffic.
func (c *Client) RateTicket(ctx context.Context, id int64, rating int, feedback string) (*dto.TicketResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, apiError(ErrValidation, "rating must be between 1 and 5")
	}
	req := dto.RateRequest{Rating: rating}
	if feedback != "" {
		req.Feedback = &feedback
	}
	var ticket dto.TicketResponse
	if err := c.do(ctx, http.MethodPost, ticketPath(id)+"/rate", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AdminStats fetches the server-computed admin dashboard.
func (c *Client) AdminStats(ctx context.Context) (*stats.AdminSummary, error) {
	var summary stats.AdminSummary
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// AdminListTickets fetches every ticket, admin only.
func (c *Client) AdminListTickets(ctx context.Context) ([]dto.TicketResponse, error) {
	var tickets []dto.TicketResponse
	if err := c.do(ctx, http.MethodGet, "/admin/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// SupportAgents fetches the assignable agent roster, admin only.
func (c *Client) SupportAgents(ctx context.Context) ([]dto.UserResponse, error) {
	var agents []dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/admin/users/support-agents", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session := c.session.Current(); session != nil {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	// The stored session is dead the moment the server says so.
	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
	}

	var envelope errorEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return apiError(sentinelForStatus(resp.StatusCode), envelope.Error.Message)
}

// retryable reports whether an error is transient. Authorization and
// client-side failures are final.
func retryable(err error) bool {
	return errors.Is(err, ErrServer)
}

func ticketPath(id int64) string {
	return "/tickets/" + strconv.FormatInt(id, 10)
}
