package session

import (
	"net/http"
)

// CookieStore is a Store bound to a single request/response pair.
// Values written with Set are visible to Get for the rest of the request.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	written map[string]*string // nil value marks a deleted entry
}

var _ Store = (*CookieStore)(nil)

func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{
		w:       w,
		r:       r,
		written: make(map[string]*string),
	}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	cookie, err := s.r.Cookie(key)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *CookieStore) Set(key, value string, opts Options) {
	path := opts.Path
	if path == "" {
		path = "/"
	}

	cookie := &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   isSecure(s.r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(opts.MaxAge.Seconds()),
	}
	if opts.MaxAge < 0 {
		cookie.Value = ""
		cookie.MaxAge = -1
		s.written[key] = nil
	} else {
		s.written[key] = &value
	}
	http.SetCookie(s.w, cookie)
}

// Delete expires the entry on the client.
func (s *CookieStore) Delete(key string) {
	s.Set(key, "", Options{MaxAge: -1})
}

func isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
