// Package identity resolves the profile of the user behind a session token.
package identity

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-dashboard-session/session"
)

// Client fetches the authenticated user's profile from the identity service.
// Implementations return errors wrapping errors.ErrUnauthorized when the
// token is rejected and errors.ErrUnavailable for any other failure.
type Client interface {
	FetchProfile(ctx context.Context, token string) (session.Profile, error)
}

func isRejected(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}
