// Package exchange completes the identity provider handshake and yields an access token.
package exchange

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-dashboard-session/exchange/authflow"
	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"golang.org/x/oauth2"
)

// Exchanger turns the handshake context carried by r into an access token.
type Exchanger interface {
	ExchangeToken(r *http.Request) (*oauth2.Token, error)
}

// ExchangerFunc adapts a function to the Exchanger interface.
type ExchangerFunc func(r *http.Request) (*oauth2.Token, error)

func (f ExchangerFunc) ExchangeToken(r *http.Request) (*oauth2.Token, error) {
	return f(r)
}

// OAuth2Exchanger runs the authorization code flow with PKCE.
type OAuth2Exchanger struct {
	config     *oauth2.Config
	flows      authflow.Repo
	ttl        time.Duration
	httpClient *http.Client
	now        func() time.Time
}

var _ Exchanger = (*OAuth2Exchanger)(nil)

type Option func(*OAuth2Exchanger)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(e *OAuth2Exchanger) {
		e.httpClient = c
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *OAuth2Exchanger) {
		e.now = now
	}
}

func NewOAuth2Exchanger(config *oauth2.Config, flows authflow.Repo, ttl time.Duration, opts ...Option) *OAuth2Exchanger {
	e := &OAuth2Exchanger{
		config: config,
		flows:  flows,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Begin records a new handshake and returns the identity provider URL to send the browser to.
func (e *OAuth2Exchanger) Begin(returnURL string) (string, error) {
	state, err := generateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("[OAuth2Exchanger Begin] generating state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	err = e.flows.Upsert(state, &authflow.State{
		CodeVerifier: verifier,
		ReturnURL:    returnURL,
		CreatedAt:    e.now(),
	})
	if err != nil {
		return "", fmt.Errorf("[OAuth2Exchanger Begin] storing state: %w", err)
	}
	return e.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// ExchangeToken reads code and state from the query string or form body.
func (e *OAuth2Exchanger) ExchangeToken(r *http.Request) (*oauth2.Token, error) {
	token, _, err := e.Complete(r)
	return token, err
}

// Complete is ExchangeToken for browser callbacks: it also returns the return URL
// recorded by Begin for this handshake.
func (e *OAuth2Exchanger) Complete(r *http.Request) (*oauth2.Token, string, error) {
	if errParam := r.FormValue("error"); errParam != "" {
		return nil, "", errors.Wrapf(errors.ErrExchangeFailed, "[OAuth2Exchanger Complete] authorization failed: %s - %s", errParam, r.FormValue("error_description"))
	}

	code := r.FormValue("code")
	if code == "" {
		return nil, "", errors.Wrapf(errors.ErrMissingCode, "[OAuth2Exchanger Complete]")
	}

	flow, err := e.takeState(r.FormValue("state"))
	if err != nil {
		return nil, "", err
	}

	ctx := r.Context()
	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}
	token, err := e.config.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return nil, "", errors.Wrapf(errors.ErrExchangeFailed, "[OAuth2Exchanger Complete] %v", err)
	}
	return token, flow.ReturnURL, nil
}

// takeState loads and deletes the handshake so a state value is only ever redeemed once.
func (e *OAuth2Exchanger) takeState(state string) (*authflow.State, error) {
	if state == "" {
		return nil, errors.Wrapf(errors.ErrInvalidState, "[OAuth2Exchanger] missing state")
	}
	flow, err := e.flows.Take(state)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "[OAuth2Exchanger] %v", err)
	}
	if e.ttl > 0 && e.now().Sub(flow.CreatedAt) > e.ttl {
		return nil, errors.Wrapf(errors.ErrStateExpired, "[OAuth2Exchanger]")
	}
	return flow, nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
