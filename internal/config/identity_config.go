package config

import (
	"strings"
	"time"
)

type Identity struct{}

var _ IdentityConfig = Identity{}

// GetIssuerURL is the OIDC issuer used for discovery, authorize and token endpoints.
func (Identity) GetIssuerURL() string {
	return GetEnv("IDENTITY_ISSUER", "")
}

func (Identity) GetClientID() string {
	return GetEnv("IDENTITY_CLIENT_ID", "")
}

func (Identity) GetClientSecret() string {
	return GetEnv("IDENTITY_CLIENT_SECRET", "")
}

// GetProfileURL is an optional REST endpoint returning the current user.
// When empty the OIDC userinfo endpoint is used instead.
func (Identity) GetProfileURL() string {
	return GetEnv("IDENTITY_PROFILE_URL", "")
}

func (Identity) GetScopes() []string {
	return strings.Fields(GetEnv("IDENTITY_SCOPES", "openid profile email"))
}

func (Identity) GetIdentityTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv("IDENTITY_TIMEOUT", "10s"))
	if err != nil {
		return 10 * time.Second
	}
	return d
}
