// Package session holds the client-persisted session state: the bearer token
// and the cached user profile, both kept in cookies.
package session

import "time"

// Cookie names
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Options controls how a value is persisted.
type Options struct {
	// MaxAge is the lifetime of the entry. Zero means a browser-session entry,
	// a negative value deletes the entry.
	MaxAge time.Duration
	// Path scopes the entry. Empty means "/".
	Path string
}

// Store is a key/value view over client-persisted storage.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, opts Options)
}
