// Package testidp runs a minimal OpenID provider on httptest for tests.
package testidp

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

const (
	RouteDiscovery = "/.well-known/openid-configuration"
	RouteAuthorize = "/authorize"
	RouteToken     = "/token"
	RouteUserInfo  = "/userinfo"
	RouteProfile   = "/api/me"
	RouteJWKS      = "/jwks"
)

// User is what the provider knows about the owner of an access token.
type User struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Roles   []string `json:"roles,omitempty"`
}

type grant struct {
	accessToken   string
	codeChallenge string
}

// Provider is a fake identity provider.
type Provider struct {
	*httptest.Server

	ClientID     string
	ClientSecret string

	mu sync.Mutex
	// access token -> user
	users map[string]User
	// authorization code -> grant
	codes map[string]grant
	// status forced on userinfo/profile responses when non-zero
	profileStatus int
}

func New() *Provider {
	p := &Provider{
		ClientID:     "dashboard",
		ClientSecret: "dashboard-secret",
		users:        make(map[string]User),
		codes:        make(map[string]grant),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+RouteDiscovery, p.discovery)
	mux.HandleFunc("POST "+RouteToken, p.token)
	mux.HandleFunc("GET "+RouteUserInfo, p.userInfo)
	mux.HandleFunc("GET "+RouteProfile, p.profile)
	mux.HandleFunc("GET "+RouteJWKS, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"keys": []any{}})
	})
	p.Server = httptest.NewServer(mux)
	return p
}

// AddUser makes accessToken resolve to u.
func (p *Provider) AddUser(accessToken string, u User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[accessToken] = u
}

// AddCode registers an authorization code redeemable for accessToken.
// An empty codeChallenge disables the PKCE check.
func (p *Provider) AddCode(code, accessToken, codeChallenge string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes[code] = grant{accessToken: accessToken, codeChallenge: codeChallenge}
}

// ForceProfileStatus makes userinfo and profile requests fail with status.
func (p *Provider) ForceProfileStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profileStatus = status
}

func (p *Provider) discovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                p.URL,
		"authorization_endpoint":                p.URL + RouteAuthorize,
		"token_endpoint":                        p.URL + RouteToken,
		"userinfo_endpoint":                     p.URL + RouteUserInfo,
		"jwks_uri":                              p.URL + RouteJWKS,
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"code_challenge_methods_supported":      []string{"S256"},
	})
}

func (p *Provider) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID, clientSecret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	if clientID != p.ClientID || clientSecret != p.ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}

	code := r.PostForm.Get("code")
	p.mu.Lock()
	g, found := p.codes[code]
	delete(p.codes, code)
	p.mu.Unlock()
	if r.PostForm.Get("grant_type") != "authorization_code" || !found {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}
	if g.codeChallenge != "" && challenge(r.PostForm.Get("code_verifier")) != g.codeChallenge {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "code_verifier mismatch"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": g.accessToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (p *Provider) lookup(w http.ResponseWriter, r *http.Request) (User, bool) {
	p.mu.Lock()
	status := p.profileStatus
	p.mu.Unlock()
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return User{}, false
	}

	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return User{}, false
	}
	p.mu.Lock()
	u, ok := p.users[token]
	p.mu.Unlock()
	if !ok {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return User{}, false
	}
	return u, true
}

func (p *Provider) userInfo(w http.ResponseWriter, r *http.Request) {
	if u, ok := p.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, u)
	}
}

func (p *Provider) profile(w http.ResponseWriter, r *http.Request) {
	if u, ok := p.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":    u.Subject,
			"email": u.Email,
			"name":  u.Name,
			"roles": u.Roles,
		})
	}
}

func challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
