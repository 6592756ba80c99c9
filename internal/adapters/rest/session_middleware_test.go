package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"saved-cart-service/internal/core/port"
)

type stubSessionValidator struct {
	calls     int
	lastToken string
	session   *port.Session
	err       error
}

func (s *stubSessionValidator) ValidateSession(ctx context.Context, token string) (*port.Session, error) {
	s.calls++
	s.lastToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func TestSessionMiddleware(t *testing.T) {
	newProtected := func(validator *stubSessionValidator) (http.Handler, *bool, **port.Session) {
		reached := false
		var seen *port.Session
		mw := NewSessionMiddleware(validator)
		handler := mw.ValidateSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			seen, _ = SessionFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		return handler, &reached, &seen
	}

	t.Run("Missing Authorization header is rejected", func(t *testing.T) {
		validator := &stubSessionValidator{}
		handler, reached, _ := newProtected(validator)

		req := httptest.NewRequest(http.MethodGet, "/api/retrieve-cart?shop=demo-shop", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"Authorization header required"}`, rec.Body.String())
		require.False(t, *reached)
		require.Zero(t, validator.calls)
	})

	t.Run("Non-bearer token format is rejected", func(t *testing.T) {
		validator := &stubSessionValidator{}
		handler, reached, _ := newProtected(validator)

		req := httptest.NewRequest(http.MethodGet, "/api/retrieve-cart?shop=demo-shop", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"Invalid token format"}`, rec.Body.String())
		require.False(t, *reached)
		require.Zero(t, validator.calls)
	})

	t.Run("Invalid session is rejected", func(t *testing.T) {
		validator := &stubSessionValidator{err: fmt.Errorf("session is invalid or expired")}
		handler, reached, _ := newProtected(validator)

		req := httptest.NewRequest(http.MethodGet, "/api/retrieve-cart?shop=demo-shop", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"Invalid session"}`, rec.Body.String())
		require.False(t, *reached)
		require.Equal(t, "expired-token", validator.lastToken)
	})

	t.Run("Valid session passes through with session in context", func(t *testing.T) {
		validator := &stubSessionValidator{session: &port.Session{Shop: "demo-shop", Scope: "read_carts,write_carts"}}
		handler, reached, seen := newProtected(validator)

		req := httptest.NewRequest(http.MethodGet, "/api/retrieve-cart?shop=demo-shop", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, *reached)
		require.Equal(t, "good-token", validator.lastToken)
		require.NotNil(t, *seen)
		require.Equal(t, "demo-shop", (*seen).Shop)
	})
}
