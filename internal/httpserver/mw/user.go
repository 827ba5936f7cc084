package mw

import (
	"context"
	"net/http"
	"strings"
)

// UserHeader carries the authenticated user id, set by the auth proxy in
// front of archivist.
const UserHeader = "X-User-ID"

type userKey struct{}

// RequireUser rejects requests without a user id with 401 and stores the
// id in the request context otherwise.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(UserHeader))
		if id == "" {
			http.Error(w, "missing "+UserHeader+" header", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}

// UserID returns the id stored by RequireUser.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}
