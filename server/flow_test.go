package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-dashboard-session/exchange"
	"github.com/jrsteele09/go-dashboard-session/exchange/authflow"
	"github.com/jrsteele09/go-dashboard-session/identity"
	"github.com/jrsteele09/go-dashboard-session/internal/config"
	"github.com/jrsteele09/go-dashboard-session/internal/testidp"
	"github.com/jrsteele09/go-dashboard-session/server"
	"github.com/jrsteele09/go-dashboard-session/session"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLoginFlow(t *testing.T) {
	t.Setenv("ENV", "TEST")

	idp := testidp.New()
	t.Cleanup(idp.Close)
	idp.AddUser("access-1", testidp.User{Subject: "user-1", Email: "jane.doe@example.com", Name: "Jane Doe"})

	provider, err := identity.NewProvider(context.Background(), idp.URL, idp.Client())
	require.NoError(t, err)

	exchanger := exchange.NewOAuth2Exchanger(&oauth2.Config{
		ClientID:     idp.ClientID,
		ClientSecret: idp.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  "http://localhost:8080" + server.RouteAuthCallback,
		Scopes:       []string{"openid", "profile", "email"},
	}, authflow.NewInMemoryRepo(), 10*time.Minute, exchange.WithHTTPClient(idp.Client()))

	s, err := server.New(config.New(), identity.NewOIDCClient(provider, idp.Client()), exchanger, server.WithLoginFlow(exchanger))
	require.NoError(t, err)

	// Start the handshake
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteAuthStart+"?return_to=/events", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	authURL, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, idp.URL+testidp.RouteAuthorize, authURL.Scheme+"://"+authURL.Host+authURL.Path)

	// The provider authenticates the user and redirects back with a code
	idp.AddCode("code-1", "access-1", authURL.Query().Get("code_challenge"))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteAuthCallback+"?code=code-1&state="+url.QueryEscape(authURL.Query().Get("state")), nil))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/events", rec.Header().Get("Location"))
	token := responseCookie(rec, session.TokenKey)
	require.NotNil(t, token)
	require.Equal(t, "access-1", token.Value)

	require.Equal(t, 2592000, token.MaxAge)

	// Navigate with the new session
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(token)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Profile session.Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "user-1", body.Profile.ID)
	require.Equal(t, "jane.doe@example.com", body.Profile.Email)

	user := responseCookie(rec, session.UserKey)
	require.NotNil(t, user)
	stored, err := session.DecodeProfile(user.Value)
	require.NoError(t, err)
	require.Equal(t, body.Profile, stored)
}
