package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/session"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyProfile stores the profile resolved for the current navigation
const ContextKeyProfile ContextKey = "profile"

// ProfileFromContext returns the profile resolved by SessionBootstrap, if any.
func ProfileFromContext(ctx context.Context) (session.Profile, bool) {
	p, ok := ctx.Value(ContextKeyProfile).(session.Profile)
	return p, ok
}

// SessionBootstrap runs on every page navigation. It applies a token passed in the
// jwt query parameter, redirects to the login page when no token is stored, and
// otherwise refreshes the cached user profile from the identity service.
func (s *Server) SessionBootstrap() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			store := session.NewCookieStore(w, r)
			opts := session.Options{MaxAge: s.config.GetNavigationCookieMaxAge()}

			if jwt := r.URL.Query().Get(QueryParamJWT); jwt != "" {
				store.Set(session.TokenKey, jwt, opts)
			}

			token, ok := store.Get(session.TokenKey)
			if !ok {
				if r.URL.Path == RouteLogin {
					s.metrics.navigation(outcomeAnonymous)
					next(w, r)
					return
				}
				s.metrics.navigation(outcomeRedirect)
				redirectSuccess(w, r, RouteLogin)
				return
			}

			logger := zerolog.Ctx(r.Context()).With().Str("sub", session.TokenSubject(token)).Str("path", r.URL.Path).Logger()

			profile, err := s.identity.FetchProfile(r.Context(), token)
			if err != nil {
				if errors.Is(err, errors.ErrUnauthorized) {
					logger.Warn().Err(err).Msg("Session token rejected, clearing session")
					s.metrics.navigation(outcomeRejected)
					store.Delete(session.TokenKey)
					store.Delete(session.UserKey)
					if r.URL.Path == RouteLogin {
						next(w, r)
						return
					}
					redirectSuccess(w, r, RouteLogin)
					return
				}
				logger.Error().Err(err).Msg("Failed to fetch profile")
				s.metrics.navigation(outcomeFailed)
				// The sign-in page stays reachable while the provider is down
				if r.URL.Path == RouteLogin {
					next(w, r)
					return
				}
				writeJSONError(w, http.StatusBadGateway, err.Error())
				return
			}

			if err := session.SetProfile(store, profile, opts); err != nil {
				logger.Error().Err(err).Msg("Failed to store profile")
				writeJSONError(w, http.StatusInternalServerError, err.Error())
				return
			}

			s.metrics.navigation(outcomeAuthenticated)
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyProfile, profile)))
		}
	}
}
