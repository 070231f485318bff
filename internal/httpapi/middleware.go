package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
)

const sessionCookie = "storefront_session"

// Identity is the resolved caller: an authenticated user id when the
// upstream auth layer set X-User-ID, otherwise an anonymous session token.
type Identity struct {
	UserID       *int64
	SessionToken string
}

func (id Identity) Owner() domain.Owner {
	if id.UserID != nil {
		return domain.UserOwner(*id.UserID)
	}
	return domain.SessionOwner(id.SessionToken)
}

type contextKey struct{ name string }

var identityKey = &contextKey{"identity"}

// IdentityMiddleware resolves the caller on every request. Anonymous
// visitors get a session cookie on first contact so their cart survives
// across requests.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id Identity

		if header := r.Header.Get("X-User-ID"); header != "" {
			if userID, err := strconv.ParseInt(header, 10, 64); err == nil && userID > 0 {
				id.UserID = &userID
			}
		}

		// Keep the session token even for logged-in users; cart transfer
		// needs both sides of the identity.
		if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
			id.SessionToken = cookie.Value
		} else if id.UserID == nil {
			id.SessionToken = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id.SessionToken,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey).(Identity); ok {
		return id
	}
	return Identity{}
}
