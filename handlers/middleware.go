package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/services"
)

type contextKey string

const CurrentUserKey contextKey = "currentUser"

// GetCurrentUser extracts the buyer identity from the request context.
func GetCurrentUser(r *http.Request) services.CurrentUser {
	if val, ok := r.Context().Value(CurrentUserKey).(services.CurrentUser); ok {
		return val
	}
	return services.CurrentUser{}
}

// CurrentUserMiddleware resolves who is acting on the request from the
// PocketBase auth record, filling any blank field from fallback (the
// configured procurement contact), and stores it in the request context.
func CurrentUserMiddleware(fallback services.CurrentUser) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		user := fallback
		if e.Auth != nil {
			if name := e.Auth.GetString("name"); name != "" {
				user.Name = name
			}
			if email := e.Auth.Email(); email != "" {
				user.Email = email
			}
			if phone := e.Auth.GetString("phone"); phone != "" {
				user.Phone = phone
			}
		}

		ctx := context.WithValue(e.Request.Context(), CurrentUserKey, user)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}
