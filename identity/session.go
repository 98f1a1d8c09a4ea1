package identity

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"modelkit.io/modelkit/schema"
)

type sessionKey struct{}

// Session request scoped identity, the user record is loaded on first use
type Session struct {
	Token  string
	UserID string

	store Store
	once  sync.Once
	user  *schema.Instance
	err   error
}

// User resolves the session user through the store, at most once per request
func (s *Session) User(ctx context.Context) (*schema.Instance, error) {
	s.once.Do(func() {
		s.user, s.err = s.store.FindUser(ctx, s.UserID)
	})
	return s.user, s.err
}

// SessionFromContext session installed by Middleware
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*Session)
	return session, ok
}

// WithSession returns ctx carrying session
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// TokenFromRequest bearer token from the Authorization header, else the token query parameter
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// Middleware authenticates every request and installs its Session
func Middleware(verifier *TokenVerifier, store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			session := &Session{Token: token, UserID: userID, store: store}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
