package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apierrors "chat-backend/internal/errors"
	"chat-backend/internal/guard"
	"chat-backend/internal/service"
)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	t.Parallel()

	var captured string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}), RequestID())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, captured, 32)
	require.Equal(t, captured, w.Header().Get("X-Request-Id"))
}

func TestRequestID_KeepsIncoming(t *testing.T) {
	t.Parallel()

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "rid-123", RequestIDFrom(r.Context()))
	}), RequestID())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "rid-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, "rid-123", w.Header().Get("X-Request-Id"))
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	t.Parallel()

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "internal", resp.Error.Code)
	// Текст паники не утекает в ответ.
	require.NotContains(t, w.Body.String(), "boom")
}

func TestTimeout_SetsDeadline(t *testing.T) {
	t.Parallel()

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		require.True(t, ok)
	}), Timeout(100*time.Millisecond))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	t.Parallel()

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		require.False(t, ok)
	}), Timeout(0))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestWithMeta_CreatesPerRequestStore(t *testing.T) {
	t.Parallel()

	var first, second *guard.Meta

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := guard.MetaFrom(r.Context())
		require.NotNil(t, m)
		if first == nil {
			first = m
		} else {
			second = m
		}
	}), WithMeta())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Метаданные не переживают запрос.
	require.NotSame(t, first, second)
}

// guardFunc адаптирует функцию под контракт guard.Guard.
type guardFunc func(ctx context.Context, req guard.Carrier) guard.Decision

func (f guardFunc) Evaluate(ctx context.Context, req guard.Carrier) guard.Decision {
	return f(ctx, req)
}

func TestGuard_DecisionMapping(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		decision   guard.Decision
		wantStatus int
	}{
		{"allow", guard.Allow, http.StatusOK},
		{"deny", guard.Deny, http.StatusForbidden},
		{"not_found", guard.NotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := guardFunc(func(context.Context, guard.Carrier) guard.Decision {
				return tc.decision
			})

			h := Chain(next, WithMeta(), Guard(g, service.ErrForbidden))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
