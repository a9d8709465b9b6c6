package session

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-dashboard-session/internal/errors"
)

// Profile is the denormalised snapshot of the authenticated user.
type Profile struct {
	ID         string         `json:"id"`
	Email      string         `json:"email,omitempty"`
	Name       string         `json:"name,omitempty"`
	GivenName  string         `json:"given_name,omitempty"`
	FamilyName string         `json:"family_name,omitempty"`
	Picture    string         `json:"picture,omitempty"`
	Roles      []string       `json:"roles,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// EncodeProfile serialises p for storage in a cookie value.
// JSON contains characters that are not valid in cookie values so it is URL escaped.
func EncodeProfile(p Profile) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("[session EncodeProfile] marshal: %w", err)
	}
	return url.QueryEscape(string(b)), nil
}

func DecodeProfile(value string) (Profile, error) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return Profile{}, errors.Wrapf(errors.ErrInvalidProfile, "[session DecodeProfile] unescape")
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, errors.Wrapf(errors.ErrInvalidProfile, "[session DecodeProfile] unmarshal")
	}
	return p, nil
}

// SetProfile stores p under UserKey.
func SetProfile(s Store, p Profile, opts Options) error {
	value, err := EncodeProfile(p)
	if err != nil {
		return err
	}
	s.Set(UserKey, value, opts)
	return nil
}

// GetProfile reads the cached profile. It reports false when no profile is stored
// or the stored value cannot be decoded.
func GetProfile(s Store) (Profile, bool) {
	value, ok := s.Get(UserKey)
	if !ok {
		return Profile{}, false
	}
	p, err := DecodeProfile(value)
	if err != nil {
		return Profile{}, false
	}
	return p, true
}
