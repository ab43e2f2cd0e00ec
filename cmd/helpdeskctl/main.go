// helpdeskctl is a small terminal client for the ticketing API. It keeps
// a session file under the user config dir; any 401 from the server
// drops it and the next command starts signed out.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/helpdesk-kit/ticketing/internal/api/dto"
	"github.com/helpdesk-kit/ticketing/internal/client"
	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/stats"
)

const commandTimeout = 15 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("command required")
	}

	baseURL := os.Getenv("HELPDESK_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}

	store := client.NewSessionStore(sessionPath())
	if err := store.Restore(); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	api := client.New(baseURL, store)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch args[0] {
	case "login":
		return cmdLogin(ctx, api, args[1:])
	case "logout":
		api.SignOut()
		fmt.Println("signed out")
		return nil
	case "whoami":
		return cmdWhoami(store)
	case "tickets":
		return cmdTickets(ctx, api, args[1:])
	case "ticket":
		return cmdTicket(ctx, api, args[1:])
	case "create":
		return cmdCreate(ctx, api, args[1:])
	case "status":
		return cmdStatus(ctx, api, args[1:])
	case "assign":
		return cmdAssign(ctx, api, args[1:])
	case "comment":
		return cmdComment(ctx, api, args[1:])
	case "rate":
		return cmdRate(ctx, api, args[1:])
	case "dashboard":
		return cmdDashboard(ctx, api, store)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: helpdeskctl <command> [flags]

commands:
  login      -u <username> -p <password>
  logout
  whoami
  tickets    [-q term] [-status S] [-priority P]
  ticket     <id>
  create     -subject S -description D [-priority P]
  status     <id> <status>
  assign     <id> <user-id>
  comment    <id> <text>
  rate       <id> -rating N [-feedback text]
  dashboard`)
}

func sessionPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "helpdeskctl", "session.json")
	}
	return filepath.Join(os.TempDir(), "helpdeskctl-session.json")
}

func cmdLogin(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("login requires -u and -p")
	}

	resp, err := api.SignIn(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", resp.Username, resp.Role)
	return nil
}

func cmdWhoami(store *client.SessionStore) error {
	session := store.Current()
	if session == nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", session.Username, session.Email, session.Role)
	return nil
}

func cmdTickets(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("tickets", flag.ContinueOnError)
	term := fs.String("q", "", "search term")
	status := fs.String("status", "", "status filter")
	priority := fs.String("priority", "", "priority filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		tickets []dto.TicketResponse
		err     error
	)
	if *term != "" || *status != "" || *priority != "" {
		tickets, err = api.SearchTickets(ctx, client.TicketSearchQuery{
			Term:     *term,
			Status:   *status,
			Priority: *priority,
		})
	} else {
		tickets, err = api.ListTickets(ctx)
	}
	if err != nil {
		return err
	}
	printTicketTable(tickets)
	return nil
}

func cmdTicket(ctx context.Context, api *client.Client, args []string) error {
	id, err := argID(args, "ticket <id>")
	if err != nil {
		return err
	}
	ticket, err := api.GetTicket(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("#%d %s\n", ticket.ID, ticket.Subject)
	fmt.Printf("status: %s  priority: %s\n", ticket.Status, ticket.Priority)
	fmt.Printf("creator: %s", ticket.Creator.Username)
	if ticket.Assignee != nil {
		fmt.Printf("  assignee: %s", ticket.Assignee.Username)
	}
	fmt.Println()
	if ticket.Rating != nil {
		fmt.Printf("rating: %d/5\n", *ticket.Rating)
		if ticket.Feedback != nil {
			fmt.Printf("feedback: %s\n", *ticket.Feedback)
		}
	}
	fmt.Println()
	fmt.Println(ticket.Description)

	comments, err := api.ListComments(ctx, id)
	if err != nil {
		return err
	}
	if len(comments) > 0 {
		fmt.Println()
		for _, comment := range comments {
			fmt.Printf("[%s] %s: %s\n",
				comment.CreatedAt.Format("2006-01-02 15:04"),
				comment.Author.Username,
				comment.Content)
		}
	}
	return nil
}

func cmdCreate(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	subject := fs.String("subject", "", "ticket subject")
	description := fs.String("description", "", "ticket description")
	priority := fs.String("priority", "", "LOW|MEDIUM|HIGH|URGENT")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ticket, err := api.CreateTicket(ctx, dto.CreateTicketRequest{
		Subject:     *subject,
		Description: *description,
		Priority:    *priority,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created ticket #%d\n", ticket.ID)
	return nil
}

func cmdStatus(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: status <id> <status>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ticket, err := api.UpdateTicketStatus(ctx, id, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("ticket #%d is now %s\n", ticket.ID, ticket.Status)
	return nil
}

func cmdAssign(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: assign <id> <user-id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	assigneeID, err := parseID(args[1])
	if err != nil {
		return err
	}
	ticket, err := api.AssignTicket(ctx, id, assigneeID)
	if err != nil {
		return err
	}
	assignee := "-"
	if ticket.Assignee != nil {
		assignee = ticket.Assignee.Username
	}
	fmt.Printf("ticket #%d assigned to %s\n", ticket.ID, assignee)
	return nil
}

func cmdComment(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: comment <id> <text>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if _, err := api.AddComment(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Println("comment added")
	return nil
}

func cmdRate(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: rate <id> -rating N [-feedback text]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("rate", flag.ContinueOnError)
	rating := fs.Int("rating", 0, "rating 1-5")
	feedback := fs.String("feedback", "", "optional feedback")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	ticket, err := api.RateTicket(ctx, id, *rating, *feedback)
	if err != nil {
		return err
	}
	fmt.Printf("rated ticket #%d %d/5\n", ticket.ID, *ticket.Rating)
	return nil
}

func cmdDashboard(ctx context.Context, api *client.Client, store *client.SessionStore) error {
	session := store.Current()
	if session == nil {
		return errors.New("not signed in")
	}

	// Admins get the server-computed breakdown; everyone else reduces
	// their own visible ticket list.
	if session.Role == string(domain.RoleAdmin) {
		summary, err := api.AdminStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("users: %d (admins %d, agents %d, regular %d)\n",
			summary.Users.Total, summary.Users.Admins,
			summary.Users.SupportAgents, summary.Users.RegularUsers)
		fmt.Printf("tickets: %d (open %d, in progress %d, resolved %d, closed %d)\n",
			summary.Tickets.Total, summary.Tickets.Open,
			summary.Tickets.InProgress, summary.Tickets.Resolved,
			summary.Tickets.Closed)
		return nil
	}

	responses, err := api.ListTickets(ctx)
	if err != nil {
		return err
	}
	tickets := make([]domain.Ticket, 0, len(responses))
	for _, resp := range responses {
		tickets = append(tickets, domain.Ticket{
			ID:      resp.ID,
			Subject: resp.Subject,
			Status:  domain.TicketStatus(resp.Status),
			Creator: domain.User{ID: resp.Creator.ID},
		})
	}

	viewer := &domain.User{ID: session.UserID, Role: domain.Role(session.Role)}
	summary := stats.Aggregate(tickets, viewer)
	fmt.Printf("total %d  open %d  in progress %d  resolved %d\n",
		summary.Total, summary.Open, summary.InProgress, summary.Resolved)
	if summary.Mine != nil {
		fmt.Printf("created by me: %d\n", *summary.Mine)
	}

	recent := stats.Recent(tickets)
	if len(recent) > 0 {
		fmt.Println("\nrecent:")
		for _, ticket := range recent {
			fmt.Printf("  #%d %s (%s)\n", ticket.ID, ticket.Subject, ticket.Status)
		}
	}
	return nil
}

func printTicketTable(tickets []dto.TicketResponse) {
	if len(tickets) == 0 {
		fmt.Println("no tickets")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tASSIGNEE\tSUBJECT")
	for _, ticket := range tickets {
		assignee := "-"
		if ticket.Assignee != nil {
			assignee = ticket.Assignee.Username
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			ticket.ID, ticket.Status, ticket.Priority, assignee, ticket.Subject)
	}
	_ = w.Flush()
}

func argID(args []string, usage string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return parseID(args[0])
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
