package graphql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lorrc/ticket-board/internal/auth"
	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	Authorization string         `json:"-"`
}

// fakeAPI answers every request with the same body and records what it got.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req recordedRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	req.Authorization = r.Header.Get("Authorization")

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return NewClient(Config{URL: server.URL, Timeout: 5 * time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_ListTickets(t *testing.T) {
	api := &fakeAPI{body: `{"data":{"tickets":[
		{"id":"t1","customer":"c1","assignedEmployee":"e1","status":"in-progress","title":"Slow link",
		 "description":"d","priority":"high","agency":"a1","createdAt":"2025-01-05T15:04:00.123456","updatedAt":null},
		{"id":"t2","customer":"c2","assignedEmployee":null,"status":"archived","title":"Old",
		 "description":"d","priority":"low","agency":"a1","createdAt":"2025-01-05T15:04:00Z","updatedAt":null},
		{"id":"t3","customer":"c3","assignedEmployee":"","status":"open","title":"New",
		 "description":"d","priority":"medium","agency":"a1","createdAt":"","updatedAt":"2025-02-01T10:00:00+03:00"}
	]}}`}
	client := newTestClient(t, api)

	ctx := auth.WithBearerToken(context.Background(), "token-123")
	tickets, err := client.ListTickets(ctx)

	require.NoError(t, err)
	require.Len(t, tickets, 2, "unknown statuses are skipped")

	assert.Equal(t, "t1", tickets[0].ID)
	assert.Equal(t, domain.StatusInProgress, tickets[0].Status)
	assert.Equal(t, domain.PriorityHigh, tickets[0].Priority)
	assert.Equal(t, "c1", tickets[0].CustomerID)
	require.NotNil(t, tickets[0].AssignedEmployeeID)
	assert.Equal(t, "e1", *tickets[0].AssignedEmployeeID)
	assert.Equal(t, 2025, tickets[0].CreatedAt.Year())
	assert.Nil(t, tickets[0].UpdatedAt)

	assert.Equal(t, "t3", tickets[1].ID)
	assert.Nil(t, tickets[1].AssignedEmployeeID)
	assert.True(t, tickets[1].CreatedAt.IsZero())
	require.NotNil(t, tickets[1].UpdatedAt)

	req := api.last(t)
	assert.Equal(t, "Bearer token-123", req.Authorization)
	assert.Contains(t, req.Query, "tickets {")
}

func TestClient_UpdateTicket(t *testing.T) {
	body := `{"data":{"updateTicket":{"id":"t1","customer":"c1","assignedEmployee":null,"status":"open",
		"title":"x","description":"d","priority":"low","agency":"a","createdAt":"2025-01-05T15:04:00Z","updatedAt":null}}}`

	t.Run("unassign sends explicit null", func(t *testing.T) {
		api := &fakeAPI{body: body}
		client := newTestClient(t, api)

		updated, err := client.UpdateTicket(context.Background(), "t1", domain.TicketUpdate{Assignee: domain.Unassign()})

		require.NoError(t, err)
		assert.False(t, updated.IsAssigned())

		req := api.last(t)
		assert.Equal(t, "t1", req.Variables["id"])
		input, ok := req.Variables["ticketInput"].(map[string]any)
		require.True(t, ok)
		value, present := input["assignedEmployee"]
		assert.True(t, present, "assignedEmployee must be sent")
		assert.Nil(t, value)
		assert.NotContains(t, input, "status")
		assert.Empty(t, req.Authorization)
	})

	t.Run("status only", func(t *testing.T) {
		api := &fakeAPI{body: body}
		client := newTestClient(t, api)

		_, err := client.UpdateTicket(context.Background(), "t1", domain.StatusUpdate(domain.StatusClosed))

		require.NoError(t, err)
		input := api.last(t).Variables["ticketInput"].(map[string]any)
		assert.Equal(t, map[string]any{"status": "closed"}, input)
	})

	t.Run("server rejection carries the message", func(t *testing.T) {
		api := &fakeAPI{body: `{"data":null,"errors":[{"message":"Ticket not found"}]}`}
		client := newTestClient(t, api)

		_, err := client.UpdateTicket(context.Background(), "t404", domain.StatusUpdate(domain.StatusClosed))

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrRemoteMutation)
		var remoteErr *apperrors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, "Ticket not found", remoteErr.ServerMessage)
		assert.Equal(t, "updateTicket", remoteErr.Operation)
	})

	t.Run("non-200 is a transport failure", func(t *testing.T) {
		api := &fakeAPI{status: http.StatusBadGateway, body: `<html>bad gateway</html>`}
		client := newTestClient(t, api)

		_, err := client.UpdateTicket(context.Background(), "t1", domain.StatusUpdate(domain.StatusClosed))

		require.Error(t, err)
		var remoteErr *apperrors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Empty(t, remoteErr.ServerMessage)
	})
}

func TestClient_CreateTicket(t *testing.T) {
	api := &fakeAPI{body: `{"data":{"createTicket":{"id":"t9","customer":"c1","assignedEmployee":"e2","status":"open",
		"title":"Fiber cut","description":"d","priority":"medium","agency":"a","createdAt":"2025-01-05T15:04:00Z","updatedAt":null}}}`}
	client := newTestClient(t, api)

	created, err := client.CreateTicket(context.Background(), domain.TicketParams{
		Title:              "Fiber cut",
		Description:        "d",
		CustomerID:         "c1",
		Status:             domain.StatusOpen,
		Priority:           domain.PriorityMedium,
		AssignedEmployeeID: strPtr("e2"),
	})

	require.NoError(t, err)
	assert.Equal(t, "t9", created.ID)

	input := api.last(t).Variables["ticketInput"].(map[string]any)
	assert.Equal(t, "c1", input["customer"])
	assert.Equal(t, "e2", input["assignedEmployee"])
	assert.Equal(t, "open", input["status"])
	assert.Equal(t, "medium", input["priority"])
}

func TestClient_DeleteTicket(t *testing.T) {
	t.Run("true", func(t *testing.T) {
		client := newTestClient(t, &fakeAPI{body: `{"data":{"deleteTicket":true}}`})
		assert.NoError(t, client.DeleteTicket(context.Background(), "t1"))
	})

	t.Run("false is a failure", func(t *testing.T) {
		client := newTestClient(t, &fakeAPI{body: `{"data":{"deleteTicket":false}}`})
		err := client.DeleteTicket(context.Background(), "t1")
		assert.ErrorIs(t, err, apperrors.ErrRemoteMutation)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestClient_Directory(t *testing.T) {
	t.Run("customers", func(t *testing.T) {
		client := newTestClient(t, &fakeAPI{body: `{"data":{"customers":[
			{"id":"c1","name":"Jane","email":"jane@example.com","phone":"0700","username":"jane"}]}}`})

		customers, err := client.ListCustomers(context.Background())

		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "Jane (jane@example.com)", customers[0].DisplayName())
	})

	t.Run("employees", func(t *testing.T) {
		api := &fakeAPI{body: `{"data":{"staffMembers":[
			{"id":"e1","name":"Sam","email":"sam@example.com","username":"sam","role":"technician"}]}}`}
		client := newTestClient(t, api)

		employees, err := client.ListEmployees(context.Background())

		require.NoError(t, err)
		require.Len(t, employees, 1)
		assert.Equal(t, "technician", employees[0].Role)
		assert.True(t, strings.Contains(api.last(t).Query, "staffMembers"))
	})

	t.Run("query failure", func(t *testing.T) {
		client := newTestClient(t, &fakeAPI{body: `{"errors":[{"message":"Not authenticated"}]}`})

		_, err := client.ListEmployees(context.Background())

		assert.ErrorIs(t, err, apperrors.ErrRemoteQuery)
	})
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t, &fakeAPI{body: `{"data":{"__typename":"Query"}}`})
	assert.NoError(t, client.Ping(context.Background()))
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.Equal(t, 5, parseTime("2025-01-05").Day())
	assert.Equal(t, 15, parseTime("2025-01-05 15:04:05").Hour())
}

func strPtr(s string) *string { return &s }
