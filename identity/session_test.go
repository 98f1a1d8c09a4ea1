package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modelkit.io/modelkit/schema"
)

type countingStore struct {
	calls int
	user  *schema.Instance
}

func (s *countingStore) FindUser(ctx context.Context, id string) (*schema.Instance, error) {
	s.calls++
	return s.user, nil
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?token=query", nil)
	assert.Equal(t, "query", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer header")
	assert.Equal(t, "header", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", TokenFromRequest(r))
}

func TestSessionLoadsUserOnce(t *testing.T) {
	_, user := userType(t)
	store := &countingStore{user: user.MustNew(map[string]interface{}{"id": int64(3)})}
	session := &Session{UserID: "3", store: store}

	for i := 0; i < 3; i++ {
		found, err := session.User(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), found.Get("id"))
	}
	assert.Equal(t, 1, store.calls)

	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)
	got, ok := SessionFromContext(WithSession(context.Background(), session))
	assert.True(t, ok)
	assert.Same(t, session, got)
}

func TestMiddleware(t *testing.T) {
	store, _, user := setupTestStore(t)
	verifier := NewTokenVerifier("secret", time.Hour)
	require.NoError(t, store.Save(context.Background(), "1", user.MustNew(map[string]interface{}{
		"id":    int64(1),
		"email": "alice@example.com",
	})))

	r := chi.NewRouter()
	r.Use(Middleware(verifier, store))
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "no session", http.StatusInternalServerError)
			return
		}
		found, err := session.User(r.Context())
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, found.Get("email"))
	})

	token, err := verifier.Issue("1")
	require.NoError(t, err)
	unknown, err := verifier.Issue("2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{name: "missing token", target: "/me", status: http.StatusUnauthorized},
		{name: "invalid token", target: "/me", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "bearer token", target: "/me", header: "Bearer " + token, status: http.StatusOK, body: "alice@example.com"},
		{name: "query token", target: "/me?token=" + token, status: http.StatusOK, body: "alice@example.com"},
		{name: "unknown user", target: "/me?token=" + unknown, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
