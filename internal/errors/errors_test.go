package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-backend/internal/service"
)

func TestToHTTP_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid_email", service.ErrInvalidEmail, http.StatusBadRequest, "invalid_argument"},
		{"weak_password", service.ErrWeakPassword, http.StatusBadRequest, "invalid_argument"},
		{"empty_text", service.ErrEmptyText, http.StatusBadRequest, "invalid_argument"},
		{"invalid_credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "unauthenticated"},
		{"invalid_verification", service.ErrInvalidVerification, http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "permission_denied"},
		{"not_found", service.ErrNotFound, http.StatusNotFound, "not_found"},
		{"email_taken", service.ErrEmailTaken, http.StatusConflict, "already_exists"},
		{"already_exists", service.ErrAlreadyExists, http.StatusConflict, "already_exists"},
		{"chat_ended", service.ErrChatEnded, http.StatusPreconditionFailed, "failed_precondition"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
		{"nil", nil, http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status, resp := ToHTTP(tc.err)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_WrappedError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("service.DeleteChat: %w", service.ErrForbidden)

	status, resp := ToHTTP(wrapped)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "permission_denied", resp.Error.Code)
}

func TestToHTTP_NoDetailLeak(t *testing.T) {
	t.Parallel()

	_, resp := ToHTTP(errors.New("pq: password authentication failed for user"))
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_PropagatesRequestID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/chats", nil)
	r.Header.Set("X-Request-Id", "rid-123")
	w := httptest.NewRecorder()

	WriteError(w, r, service.ErrNotFound)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "rid-123", resp.Error.RequestID)
	require.Equal(t, "not_found", resp.Error.Code)
}
