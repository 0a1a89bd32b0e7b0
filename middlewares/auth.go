package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/Ricardo-1112/waterbar-reservation/models"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

const sessionName = "waterbar.sid"

const sessionMaxAge = 7 * 24 * time.Hour

var store *sessions.CookieStore

// InitSessions builds the signed cookie store. The principal lives entirely
// in the cookie, so a role change only takes effect at the next login.
func InitSessions(secret []byte) {
	store = sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Principal is the authenticated caller as recorded at login time.
type Principal struct {
	UserID int64
	Role   models.Role
}

type contextKey string

const principalContextKey contextKey = "principal"

func SaveSession(w http.ResponseWriter, r *http.Request, userID int64, role models.Role) error {
	session, _ := store.Get(r, sessionName)
	session.Values["userId"] = userID
	session.Values["role"] = string(role)
	return session.Save(r, w)
}

func ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := store.Get(r, sessionName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func principalFromSession(r *http.Request) (*Principal, bool) {
	session, err := store.Get(r, sessionName)
	if err != nil || session.IsNew {
		return nil, false
	}
	userID, ok := session.Values["userId"].(int64)
	if !ok {
		return nil, false
	}
	role, ok := session.Values["role"].(string)
	if !ok {
		return nil, false
	}
	return &Principal{UserID: userID, Role: models.Role(role)}, true
}

// GetPrincipal returns the principal injected by RequireLogin/RequireRole.
func GetPrincipal(r *http.Request) (*Principal, error) {
	principal, ok := r.Context().Value(principalContextKey).(*Principal)
	if !ok {
		return nil, errors.New("no principal in context")
	}
	return principal, nil
}

// RequireLogin rejects unauthenticated requests and stores the session
// principal in the request context for downstream handlers.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromSession(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates an endpoint to exactly one role. Unauthenticated and
// wrong-role callers learn nothing beyond those two facts.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFromSession(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "not logged in")
				return
			}
			if principal.Role != role {
				utils.RespondError(w, http.StatusForbidden, "forbidden")
				return
			}
			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
