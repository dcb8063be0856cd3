package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// UserResolver turns an access token into its user.
type UserResolver interface {
	GetUser(ctx context.Context, accessToken string) (*auth.User, error)
}

// Identity attaches a per-request auth.Identity built from the bearer
// token. Requests without a token get an anonymous identity; a token that
// does not resolve is rejected with 401.
func Identity(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.NewIdentity()

			if token := bearer(r); token != "" {
				u, err := users.GetUser(r.Context(), token)
				if err != nil {
					logger.WithCtx(r.Context()).Info("auth: token rejected", "error", err)
					response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				id.Apply(auth.Change{Event: auth.SignedIn, Session: &auth.Session{
					AccessToken: token,
					TokenType:   "bearer",
					User:        u,
				}})
				r = r.WithContext(logger.InjectLogger(r.Context(), logger.WithCtx(r.Context()).With("user_id", u.ID)))
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	// browsers cannot set headers on a WebSocket handshake
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

// Gate decides whether an identity may pass. On refusal it returns the
// path to send the visitor to.
type Gate func(id *auth.Identity) (redirect string, err error)

// RequireAuth refuses anonymous requests: API calls get 401 JSON, page
// requests are redirected (303) to the gate's login path.
func RequireAuth(gate Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			to, err := gate(auth.IdentityFrom(r.Context()))
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}
			if wantsJSON(r) {
				response.Unauthorized(w)
				return
			}
			http.Redirect(w, r, to+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		})
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
