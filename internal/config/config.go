package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	IdentityConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type IdentityConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetProfileURL() string
	GetScopes() []string
	GetIdentityTimeout() time.Duration
}

type SessionConfig interface {
	GetNavigationCookieMaxAge() time.Duration
	GetExchangeCookieMaxAge() time.Duration
	GetAuthFlowTTL() time.Duration
	GetAuthFlowStore() string
}

type mainConfig struct {
	EnvVars
	Cors
	Identity
	Session
}

func New() Config {
	return mainConfig{}
}

// Overrides lets command line flags take precedence over environment variables.
type Overrides struct {
	Port       string
	DataFolder string
}

type overriddenConfig struct {
	Config
	o Overrides
}

// WithOverrides wraps c so that any non-empty override wins.
func WithOverrides(c Config, o Overrides) Config {
	return overriddenConfig{Config: c, o: o}
}

func (c overriddenConfig) GetPort() string {
	if c.o.Port == "" {
		return c.Config.GetPort()
	}
	return normalisePort(c.o.Port)
}

func (c overriddenConfig) GetDataFolder() string {
	if c.o.DataFolder == "" {
		return c.Config.GetDataFolder()
	}
	return c.o.DataFolder
}
