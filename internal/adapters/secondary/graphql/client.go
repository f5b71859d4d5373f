package graphql

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lorrc/ticket-board/internal/auth"
	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
	gql "github.com/machinebox/graphql"
)

const errorPrefix = "graphql: "

// Config holds the remote API settings.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client talks to the back-office GraphQL API on behalf of the caller,
// forwarding the caller's bearer token.
type Client struct {
	client  *gql.Client
	timeout time.Duration
	logger  *slog.Logger
}

var (
	_ ports.TicketGateway    = (*Client)(nil)
	_ ports.DirectoryGateway = (*Client)(nil)
	_ ports.HealthChecker    = (*Client)(nil)
)

// NewClient creates a client for the given endpoint.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	c := &Client{
		client:  gql.NewClient(cfg.URL, gql.WithHTTPClient(httpClient)),
		timeout: cfg.Timeout,
		logger:  logger.With("component", "graphql_client"),
	}
	c.client.Log = func(s string) {
		c.logger.Debug(s)
	}
	return c
}

// ListTickets fetches every ticket. Records with an unknown status are
// skipped so the board only ever holds the three known statuses.
func (c *Client) ListTickets(ctx context.Context) ([]*domain.Ticket, error) {
	var resp ticketsResponse
	if err := c.query(ctx, "tickets", queryTickets, nil, &resp); err != nil {
		return nil, err
	}

	tickets := make([]*domain.Ticket, 0, len(resp.Tickets))
	for _, dto := range resp.Tickets {
		t := dto.toDomain()
		if !t.Status.IsValid() {
			c.logger.WarnContext(ctx, "skipping ticket with unknown status",
				"ticket_id", t.ID,
				"status", dto.Status,
			)
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket.
func (c *Client) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var resp ticketResponse
	vars := map[string]any{"id": id}
	if err := c.query(ctx, "ticket", queryTicket, vars, &resp); err != nil {
		return nil, err
	}
	if resp.Ticket == nil {
		return nil, apperrors.ErrTicketNotFound
	}
	return resp.Ticket.toDomain(), nil
}

// CreateTicket creates a ticket from validated form values.
func (c *Client) CreateTicket(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error) {
	var resp createTicketResponse
	vars := map[string]any{"ticketInput": createInput(params)}
	if err := c.mutate(ctx, "createTicket", mutationCreateTicket, vars, &resp); err != nil {
		return nil, err
	}
	if resp.CreateTicket == nil {
		return nil, apperrors.NewMutationError("createTicket", errors.New("empty response"))
	}
	return resp.CreateTicket.toDomain(), nil
}

// UpdateTicket sends a partial update.
func (c *Client) UpdateTicket(ctx context.Context, id string, update domain.TicketUpdate) (*domain.Ticket, error) {
	var resp updateTicketResponse
	vars := map[string]any{
		"id":          id,
		"ticketInput": updateInput(update),
	}
	if err := c.mutate(ctx, "updateTicket", mutationUpdateTicket, vars, &resp); err != nil {
		return nil, err
	}
	if resp.UpdateTicket == nil {
		return nil, apperrors.NewMutationError("updateTicket", apperrors.ErrTicketNotFound)
	}
	return resp.UpdateTicket.toDomain(), nil
}

// DeleteTicket deletes a ticket. A false answer from the API is a failure.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	var resp deleteTicketResponse
	vars := map[string]any{"id": id}
	if err := c.mutate(ctx, "deleteTicket", mutationDeleteTicket, vars, &resp); err != nil {
		return err
	}
	if !resp.DeleteTicket {
		return apperrors.NewMutationError("deleteTicket", apperrors.ErrTicketNotFound)
	}
	return nil
}

// ListCustomers fetches the customer directory.
func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var resp customersResponse
	if err := c.query(ctx, "customers", queryCustomers, nil, &resp); err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(resp.Customers))
	for _, dto := range resp.Customers {
		customers = append(customers, domain.Customer{
			ID:       dto.ID,
			Name:     dto.Name,
			Email:    dto.Email,
			Phone:    dto.Phone,
			Username: dto.Username,
		})
	}
	return customers, nil
}

// ListEmployees fetches the staff members that tickets can be assigned to.
func (c *Client) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	var resp employeesResponse
	if err := c.query(ctx, "staffMembers", queryEmployees, nil, &resp); err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(resp.StaffMembers))
	for _, dto := range resp.StaffMembers {
		employees = append(employees, domain.Employee{
			ID:       dto.ID,
			Name:     dto.Name,
			Email:    dto.Email,
			Username: dto.Username,
			Role:     dto.Role,
		})
	}
	return employees, nil
}

// Ping checks that the endpoint answers GraphQL requests.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Typename string `json:"__typename"`
	}
	return c.query(ctx, "__typename", `query { __typename }`, nil, &resp)
}

func (c *Client) query(ctx context.Context, operation, document string, vars map[string]any, resp any) error {
	if err := c.run(ctx, operation, document, vars, resp); err != nil {
		remoteErr := apperrors.NewQueryError(operation, err)
		remoteErr.ServerMessage = serverMessage(err)
		return remoteErr
	}
	return nil
}

func (c *Client) mutate(ctx context.Context, operation, document string, vars map[string]any, resp any) error {
	if err := c.run(ctx, operation, document, vars, resp); err != nil {
		remoteErr := apperrors.NewMutationError(operation, err)
		remoteErr.ServerMessage = serverMessage(err)
		return remoteErr
	}
	return nil
}

func (c *Client) run(ctx context.Context, operation, document string, vars map[string]any, resp any) error {
	req := gql.NewRequest(document)
	for k, v := range vars {
		req.Var(k, v)
	}
	if token := auth.BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.client.Run(ctx, req, resp)
	c.logger.DebugContext(ctx, "graphql request",
		"operation", operation,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err,
	)
	return err
}

// serverMessage extracts the message of the first GraphQL error. Transport
// failures and non-200 answers yield "".
func serverMessage(err error) string {
	msg := err.Error()
	if !strings.HasPrefix(msg, errorPrefix) || strings.HasPrefix(msg, errorPrefix+"server returned") {
		return ""
	}
	return strings.TrimPrefix(msg, errorPrefix)
}
