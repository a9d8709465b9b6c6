// Package authflow stores the state of in-flight authorization code handshakes.
package authflow

import "time"

// State is what the service remembers between redirecting a browser to the
// identity provider and receiving the authorization code back.
type State struct {
	CodeVerifier string    `json:"code_verifier"`
	ReturnURL    string    `json:"return_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repo is keyed by the OAuth2 state parameter.
type Repo interface {
	Upsert(state string, flow *State) error
	Get(state string) (*State, error)
	Delete(state string) error
	// Take returns the state and removes it in one step, so at most one caller can redeem it.
	Take(state string) (*State, error)
}
