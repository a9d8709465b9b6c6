package identity_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-dashboard-session/identity"
	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/internal/testidp"
	"github.com/stretchr/testify/require"
)

const testToken = "access-token-1"

var testUser = testidp.User{
	Subject: "user-1",
	Email:   "jane.doe@example.com",
	Name:    "Jane Doe",
	Roles:   []string{"organizer"},
}

func setupProvider(t *testing.T) *testidp.Provider {
	t.Helper()
	idp := testidp.New()
	t.Cleanup(idp.Close)
	idp.AddUser(testToken, testUser)
	return idp
}

func clients(t *testing.T, idp *testidp.Provider) map[string]identity.Client {
	t.Helper()
	provider, err := identity.NewProvider(context.Background(), idp.URL, idp.Client())
	require.NoError(t, err)
	return map[string]identity.Client{
		"oidc": identity.NewOIDCClient(provider, idp.Client()),
		"http": identity.NewHTTPClient(idp.URL+testidp.RouteProfile, idp.Client()),
	}
}

func TestClient_FetchProfile(t *testing.T) {
	idp := setupProvider(t)

	for name, c := range clients(t, idp) {
		t.Run(name, func(t *testing.T) {
			p, err := c.FetchProfile(context.Background(), testToken)
			require.NoError(t, err)
			require.Equal(t, "user-1", p.ID)
			require.Equal(t, "jane.doe@example.com", p.Email)
			require.Equal(t, "Jane Doe", p.Name)
			require.Equal(t, []string{"organizer"}, p.Roles)
		})
	}
}

func TestClient_FetchProfile_Rejected(t *testing.T) {
	idp := setupProvider(t)

	for name, c := range clients(t, idp) {
		t.Run(name, func(t *testing.T) {
			_, err := c.FetchProfile(context.Background(), "unknown-token")
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrUnauthorized))
		})
	}
}

func TestClient_FetchProfile_Unavailable(t *testing.T) {
	idp := setupProvider(t)
	cs := clients(t, idp)
	idp.ForceProfileStatus(http.StatusServiceUnavailable)

	for name, c := range cs {
		t.Run(name, func(t *testing.T) {
			_, err := c.FetchProfile(context.Background(), testToken)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrUnavailable))
			require.False(t, errors.Is(err, errors.ErrUnauthorized))
		})
	}
}

func TestHTTPClient_NetworkError(t *testing.T) {
	idp := setupProvider(t)
	url := idp.URL + testidp.RouteProfile
	idp.Close()

	_, err := identity.NewHTTPClient(url, nil).FetchProfile(context.Background(), testToken)
	require.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestNewProvider_BadIssuer(t *testing.T) {
	idp := setupProvider(t)
	_, err := identity.NewProvider(context.Background(), idp.URL+"/nope", idp.Client())
	require.Error(t, err)
}

func TestClient_FetchProfile_NoRoles(t *testing.T) {
	idp := setupProvider(t)
	idp.AddUser("access-token-2", testidp.User{Subject: "user-2", Email: "sam@example.com"})

	for name, c := range clients(t, idp) {
		t.Run(name, func(t *testing.T) {
			p, err := c.FetchProfile(context.Background(), "access-token-2")
			require.NoError(t, err)
			require.Equal(t, "user-2", p.ID)
			require.Nil(t, p.Roles)
		})
	}
}
