package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

func TestErrorHandler_Handle(t *testing.T) {
	serverRejected := apperrors.NewMutationError("updateTicket", errors.New("graphql: Ticket is locked"))
	serverRejected.ServerMessage = "Ticket is locked"

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "app error keeps its status",
			err:        apperrors.NewUnauthorizedError("Not authorized"),
			wantStatus: stdhttp.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
			wantError:  "Not authorized",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("drag start: %w", apperrors.ErrTicketNotFound),
			wantStatus: stdhttp.StatusNotFound,
			wantCode:   "TICKET_NOT_FOUND",
		},
		{
			name:       "missing ticket id",
			err:        apperrors.ErrTicketIDRequired,
			wantStatus: stdhttp.StatusBadRequest,
			wantCode:   "TICKET_ID_REQUIRED",
			wantError:  "Ticket ID is required",
		},
		{
			name:       "invalid status",
			err:        apperrors.ErrInvalidStatus,
			wantStatus: stdhttp.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "server rejection",
			err:        serverRejected,
			wantStatus: stdhttp.StatusBadGateway,
			wantCode:   "REMOTE_MUTATION_FAILED",
			wantError:  "Ticket is locked",
		},
		{
			name:       "remote timeout is still a gateway error",
			err:        apperrors.NewQueryError("tickets", context.DeadlineExceeded),
			wantStatus: stdhttp.StatusBadGateway,
			wantCode:   "REMOTE_QUERY_FAILED",
		},
		{
			name:       "local timeout",
			err:        context.DeadlineExceeded,
			wantStatus: stdhttp.StatusGatewayTimeout,
			wantCode:   "TIMEOUT",
		},
		{
			name:       "rate limited",
			err:        apperrors.ErrRateLimited,
			wantStatus: stdhttp.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: stdhttp.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantError:  "An unexpected error occurred",
		},
	}

	handler := NewErrorHandler(testLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(stdhttp.MethodPost, "/board/drop", nil)

			handler.Handle(recorder, req, tt.err)

			require.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
			assert.Equal(t, tt.wantCode, response.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, response.Error)
			}
		})
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	errs := apperrors.NewValidationErrors()
	errs.Add("title", "This field is required")
	errs.Add("customer", "This field is required")

	recorder := httptest.NewRecorder()
	NewErrorHandler(testLogger()).Handle(recorder, httptest.NewRequest(stdhttp.MethodPost, "/board/tickets", nil), errs)

	require.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
	var response ValidationErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "VALIDATION_ERROR", response.Code)
	assert.Equal(t, []string{"This field is required"}, response.Fields["title"])
	assert.Len(t, response.Fields, 2)
}

func TestHandleError(t *testing.T) {
	handler := NewErrorHandler(testLogger())
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)

	recorder := httptest.NewRecorder()
	assert.False(t, HandleError(recorder, req, nil, handler))
	assert.Equal(t, stdhttp.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	assert.True(t, HandleError(recorder, req, apperrors.ErrTicketNotFound, handler))
	assert.Equal(t, stdhttp.StatusNotFound, recorder.Code)
}
