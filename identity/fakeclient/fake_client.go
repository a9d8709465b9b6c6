package fakeclient

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-dashboard-session/identity"
	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/session"
)

// FakeClient is an in-memory identity.Client keyed by token.
type FakeClient struct {
	mu       sync.Mutex
	profiles map[string]session.Profile
	err      error
	calls    []string
}

var _ identity.Client = (*FakeClient)(nil)

func NewFakeClient() *FakeClient {
	return &FakeClient{profiles: make(map[string]session.Profile)}
}

// Add registers the profile returned for token.
func (f *FakeClient) Add(token string, p session.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[token] = p
}

// FailWith makes every call return err.
func (f *FakeClient) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls returns the tokens FetchProfile was called with.
func (f *FakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeClient) FetchProfile(_ context.Context, token string) (session.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, token)
	if f.err != nil {
		return session.Profile{}, f.err
	}
	p, ok := f.profiles[token]
	if !ok {
		return session.Profile{}, errors.Wrapf(errors.ErrUnauthorized, "[FakeClient FetchProfile] unknown token")
	}
	return p, nil
}
