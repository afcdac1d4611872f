package authz

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

type ContextKey string

var AdminKey = ContextKey("X-Admin")

// SetAdmin marks the request context as carrying the admin capability.
func SetAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, AdminKey, admin)
}

// IsAdmin reports whether the request context carries the admin capability.
// Write routes gate on this; read routes do not.
func IsAdmin(ctx context.Context) bool {
	value, ok := ctx.Value(AdminKey).(bool)
	if !ok {
		return false
	}
	return value
}

// RequireAdmin returns a 403 error unless the context carries the admin
// capability.
func RequireAdmin(ctx context.Context) error {
	if !IsAdmin(ctx) {
		return httperror.NewHTTPError(http.StatusForbidden, "admin capability required")
	}
	return nil
}
