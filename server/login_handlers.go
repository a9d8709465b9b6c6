package server

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/session"
	"github.com/rs/zerolog"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.AppName}} - Sign in</title></head>
<body>
<main>
<h1>{{.AppName}}</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<a href="{{.StartURL}}">Sign in</a>
</main>
</body>
</html>
`))

// LoginPageHandler renders the sign-in page. Visitors who already have a valid session go to the dashboard.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ProfileFromContext(r.Context()); ok {
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		data := map[string]any{
			"AppName":  s.config.GetAppName(),
			"Error":    r.URL.Query().Get("error"),
			"StartURL": RouteAuthStart,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := loginTemplate.Execute(w, data); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to render login template")
		}
	}
}

// LoginStartHandler redirects the browser to the identity provider.
func (s *Server) LoginStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.loginFlow == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "login is not configured")
			return
		}
		authURL, err := s.loginFlow.Begin(localPath(r.URL.Query().Get(QueryParamReturnTo)))
		if err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to start login")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// LoginCallbackHandler is the identity provider's redirect target. It stores the token
// like AccessTokenHandler, then sends the browser back to where the login started.
func (s *Server) LoginCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.loginFlow == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "login is not configured")
			return
		}
		token, returnURL, err := s.loginFlow.Complete(r)
		if err == nil && (token == nil || token.AccessToken == "") {
			err = errors.Wrapf(errors.ErrExchangeFailed, "[LoginCallbackHandler] empty access token")
		}
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Login callback failed")
			s.metrics.exchange("error")
			redirectSuccess(w, r, RouteLogin+"?error="+url.QueryEscape("Sign in failed, please try again"))
			return
		}

		s.setExchangedToken(w, r, token)
		s.metrics.exchange("ok")

		returnURL = localPath(returnURL)
		if returnURL == "" {
			returnURL = RouteDashboard
		}
		redirectSuccess(w, r, returnURL)
	}
}

// LogoutHandler clears the session cookies.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := session.NewCookieStore(w, r)
		store.Delete(session.TokenKey)
		store.Delete(session.UserKey)
		redirectSuccess(w, r, RouteLogin)
	}
}
