package config

import "time"

const (
	AuthFlowStoreMemory = "memory"
	AuthFlowStoreBolt   = "bolt"
)

type Session struct{}

var _ SessionConfig = Session{}

// GetNavigationCookieMaxAge is the lifetime of cookies written while bootstrapping a page navigation.
func (Session) GetNavigationCookieMaxAge() time.Duration {
	return 7 * 24 * time.Hour // 604800s
}

// GetExchangeCookieMaxAge is the lifetime of the token cookie set by the exchange endpoint.
func (Session) GetExchangeCookieMaxAge() time.Duration {
	return 30 * 24 * time.Hour // 2592000s
}

func (Session) GetAuthFlowTTL() time.Duration {
	return 10 * time.Minute
}

func (Session) GetAuthFlowStore() string {
	return GetEnv("AUTHFLOW_STORE", AuthFlowStoreMemory)
}
