package identity

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/internal/utils"
	"github.com/jrsteele09/go-dashboard-session/session"
	"golang.org/x/oauth2"
)

// OIDCClient reads the profile from the provider's userinfo endpoint.
type OIDCClient struct {
	provider   *oidc.Provider
	httpClient *http.Client
}

var _ Client = (*OIDCClient)(nil)

func NewOIDCClient(provider *oidc.Provider, httpClient *http.Client) *OIDCClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OIDCClient{provider: provider, httpClient: httpClient}
}

// NewProvider runs OIDC discovery against issuer.
func NewProvider(ctx context.Context, issuer string, httpClient *http.Client) (*oidc.Provider, error) {
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[identity NewProvider] failed to create OIDC provider: %w", err)
	}
	return provider, nil
}

func (c *OIDCClient) FetchProfile(ctx context.Context, token string) (session.Profile, error) {
	ctx = oidc.ClientContext(ctx, c.httpClient)
	info, err := c.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	if err != nil {
		if isRejected(userInfoStatus(err)) {
			return session.Profile{}, errors.Wrapf(errors.ErrUnauthorized, "[OIDCClient FetchProfile] %v", err)
		}
		return session.Profile{}, errors.Wrapf(errors.ErrUnavailable, "[OIDCClient FetchProfile] %v", err)
	}

	var claims struct {
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
		Roles      any    `json:"roles"`
	}
	if err := info.Claims(&claims); err != nil {
		return session.Profile{}, errors.Wrapf(errors.ErrUnavailable, "[OIDCClient FetchProfile] claims: %v", err)
	}

	return session.Profile{
		ID:         info.Subject,
		Email:      info.Email,
		Name:       claims.Name,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Picture:    claims.Picture,
		Roles:      utils.ClaimStrings(claims.Roles),
	}, nil
}

// userInfoStatus extracts the HTTP status from a go-oidc userinfo error,
// which is formatted as "<status line>: <body>".
func userInfoStatus(err error) int {
	code, _, found := strings.Cut(err.Error(), " ")
	if !found {
		return 0
	}
	n, convErr := strconv.Atoi(code)
	if convErr != nil {
		return 0
	}
	return n
}
