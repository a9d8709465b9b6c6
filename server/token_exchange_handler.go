package server

import (
	"net/http"

	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/session"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// AccessTokenHandler exchanges the identity provider handshake for an access token
// and stores it in the token cookie. Success is an empty 200.
func (s *Server) AccessTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.exchanger.ExchangeToken(r)
		if err == nil && (token == nil || token.AccessToken == "") {
			err = errors.Wrapf(errors.ErrExchangeFailed, "[AccessTokenHandler] empty access token")
		}
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Token exchange failed")
			s.metrics.exchange("error")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		s.setExchangedToken(w, r, token)
		s.metrics.exchange("ok")
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) setExchangedToken(w http.ResponseWriter, r *http.Request, token *oauth2.Token) {
	session.NewCookieStore(w, r).Set(session.TokenKey, token.AccessToken, session.Options{
		MaxAge: s.config.GetExchangeCookieMaxAge(),
		Path:   "/",
	})
}
