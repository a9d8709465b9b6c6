package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/session"
	"github.com/stretchr/testify/require"
)

func testProfile() session.Profile {
	return session.Profile{
		ID:    "user-1",
		Email: "jane.doe@example.com",
		Name:  "Jane Doe, Organizer",
		Roles: []string{"organizer", "admin"},
	}
}

func TestProfileCodec(t *testing.T) {
	encoded, err := session.EncodeProfile(testProfile())
	require.NoError(t, err)
	require.NotContains(t, encoded, `"`)
	require.NotContains(t, encoded, ",")
	require.NotContains(t, encoded, " ")

	decoded, err := session.DecodeProfile(encoded)
	require.NoError(t, err)
	require.Equal(t, testProfile(), decoded)
}

func TestDecodeProfile_Invalid(t *testing.T) {
	_, err := session.DecodeProfile("%zz")
	require.True(t, errors.Is(err, errors.ErrInvalidProfile))

	_, err = session.DecodeProfile("not-json")
	require.True(t, errors.Is(err, errors.ErrInvalidProfile))
}

func TestSetProfile_SurvivesCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	store := session.NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, session.SetProfile(store, testProfile(), session.Options{MaxAge: time.Hour}))

	c := responseCookie(t, rec, session.UserKey)
	require.NotNil(t, c)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(c)
	p, ok := session.GetProfile(session.NewCookieStore(httptest.NewRecorder(), next))
	require.True(t, ok)
	require.Equal(t, testProfile(), p)
}

func TestGetProfile_Garbage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.UserKey, Value: "garbage"})
	_, ok := session.GetProfile(session.NewCookieStore(httptest.NewRecorder(), r))
	require.False(t, ok)
}

func TestTokenSubject(t *testing.T) {
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.Equal(t, "user-1", session.TokenSubject(token))
	require.Empty(t, session.TokenSubject("opaque-token"))
}
