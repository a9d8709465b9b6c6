package exchange_test

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-dashboard-session/exchange"
	"github.com/jrsteele09/go-dashboard-session/exchange/authflow"
	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/internal/testidp"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type testFixture struct {
	idp       *testidp.Provider
	flows     *authflow.InMemoryRepo
	exchanger *exchange.OAuth2Exchanger
	now       time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	idp := testidp.New()
	t.Cleanup(idp.Close)

	f := &testFixture{
		idp:   idp,
		flows: authflow.NewInMemoryRepo(),
		now:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	cfg := &oauth2.Config{
		ClientID:     idp.ClientID,
		ClientSecret: idp.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  idp.URL + testidp.RouteAuthorize,
			TokenURL: idp.URL + testidp.RouteToken,
		},
		RedirectURL: "http://dashboard.test/api/accessToken",
		Scopes:      []string{"openid", "profile"},
	}
	f.exchanger = exchange.NewOAuth2Exchanger(cfg, f.flows, 10*time.Minute,
		exchange.WithHTTPClient(idp.Client()),
		exchange.WithClock(func() time.Time { return f.now }),
	)
	return f
}

// begin starts a handshake and returns its state and the S256 challenge sent to the provider.
func (f *testFixture) begin(t *testing.T, returnURL string) (string, string) {
	t.Helper()
	authURL, err := f.exchanger.Begin(returnURL)
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(authURL, f.idp.URL+testidp.RouteAuthorize))
	q := u.Query()
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.Equal(t, f.idp.ClientID, q.Get("client_id"))
	return q.Get("state"), q.Get("code_challenge")
}

func callback(query string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/accessToken?"+query, nil)
}

func TestOAuth2Exchanger_Begin(t *testing.T) {
	f := setupTestFixture(t)
	state, challenge := f.begin(t, "/events")

	flow, err := f.flows.Get(state)
	require.NoError(t, err)
	require.Equal(t, "/events", flow.ReturnURL)
	require.Equal(t, f.now, flow.CreatedAt)

	sum := sha256.Sum256([]byte(flow.CodeVerifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), challenge)
}

func TestOAuth2Exchanger_ExchangeToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupTestFixture(t)
		state, challenge := f.begin(t, "")
		f.idp.AddCode("code-1", "xyz", challenge)

		token, err := f.exchanger.ExchangeToken(callback("code=code-1&state=" + state))
		require.NoError(t, err)
		require.Equal(t, "xyz", token.AccessToken)

		_, err = f.flows.Get(state)
		require.True(t, errors.Is(err, errors.ErrNotFound), "state must be single use")
	})

	t.Run("form post", func(t *testing.T) {
		f := setupTestFixture(t)
		state, challenge := f.begin(t, "")
		f.idp.AddCode("code-1", "xyz", challenge)

		r := httptest.NewRequest(http.MethodPost, "/api/accessToken", strings.NewReader("code=code-1&state="+state))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		token, err := f.exchanger.ExchangeToken(r)
		require.NoError(t, err)
		require.Equal(t, "xyz", token.AccessToken)
	})

	t.Run("state replay", func(t *testing.T) {
		f := setupTestFixture(t)
		state, challenge := f.begin(t, "")
		f.idp.AddCode("code-1", "xyz", challenge)
		_, err := f.exchanger.ExchangeToken(callback("code=code-1&state=" + state))
		require.NoError(t, err)

		_, err = f.exchanger.ExchangeToken(callback("code=code-1&state=" + state))
		require.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("missing code", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.exchanger.ExchangeToken(callback("state=abc"))
		require.True(t, errors.Is(err, errors.ErrMissingCode))
	})

	t.Run("missing state", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.exchanger.ExchangeToken(callback("code=code-1"))
		require.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("provider error", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.exchanger.ExchangeToken(callback("error=access_denied&error_description=nope"))
		require.True(t, errors.Is(err, errors.ErrExchangeFailed))
		require.Contains(t, err.Error(), "access_denied")
	})

	t.Run("expired state", func(t *testing.T) {
		f := setupTestFixture(t)
		state, challenge := f.begin(t, "")
		f.idp.AddCode("code-1", "xyz", challenge)
		f.now = f.now.Add(11 * time.Minute)

		_, err := f.exchanger.ExchangeToken(callback("code=code-1&state=" + state))
		require.True(t, errors.Is(err, errors.ErrStateExpired))
	})

	t.Run("verifier mismatch", func(t *testing.T) {
		f := setupTestFixture(t)
		state, _ := f.begin(t, "")
		f.idp.AddCode("code-1", "xyz", "some-other-challenge")

		_, err := f.exchanger.ExchangeToken(callback("code=code-1&state=" + state))
		require.True(t, errors.Is(err, errors.ErrExchangeFailed))
	})
}

func TestExchangerFunc(t *testing.T) {
	var e exchange.Exchanger = exchange.ExchangerFunc(func(r *http.Request) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "abc"}, nil
	})
	token, err := e.ExchangeToken(callback(""))
	require.NoError(t, err)
	require.Equal(t, "abc", token.AccessToken)
}

func TestOAuth2Exchanger_Complete(t *testing.T) {
	f := setupTestFixture(t)
	state, challenge := f.begin(t, "/events")
	f.idp.AddCode("code-1", "xyz", challenge)

	token, returnURL, err := f.exchanger.Complete(callback("code=code-1&state=" + state))
	require.NoError(t, err)
	require.Equal(t, "xyz", token.AccessToken)
	require.Equal(t, "/events", returnURL)
}

func TestOAuth2Exchanger_ConcurrentCallbacksRedeemStateOnce(t *testing.T) {
	f := setupTestFixture(t)
	state, challenge := f.begin(t, "")
	f.idp.AddCode("code-1", "xyz", challenge)

	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.exchanger.ExchangeToken(callback("code=code-1&state=" + state))
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, errors.ErrInvalidState):
			rejected++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, callers-1, rejected, "losing callers must be stopped at the state check, not at the provider")
}
