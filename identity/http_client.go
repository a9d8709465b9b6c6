package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-dashboard-session/internal/errors"
	"github.com/jrsteele09/go-dashboard-session/session"
)

// HTTPClient reads the profile from a REST endpoint that returns the current user as JSON.
type HTTPClient struct {
	profileURL string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(profileURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{profileURL: profileURL, httpClient: httpClient}
}

type profileResponse struct {
	ID         string         `json:"id"`
	Sub        string         `json:"sub"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	GivenName  string         `json:"given_name"`
	FamilyName string         `json:"family_name"`
	Picture    string         `json:"picture"`
	Roles      []string       `json:"roles"`
	Extra      map[string]any `json:"extra"`
}

func (c *HTTPClient) FetchProfile(ctx context.Context, token string) (session.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return session.Profile{}, fmt.Errorf("[HTTPClient FetchProfile] build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.Profile{}, errors.Wrapf(errors.ErrUnavailable, "[HTTPClient FetchProfile] %v", err)
	}
	defer resp.Body.Close()

	if isRejected(resp.StatusCode) {
		return session.Profile{}, errors.Wrapf(errors.ErrUnauthorized, "[HTTPClient FetchProfile] %s", resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return session.Profile{}, errors.Wrapf(errors.ErrUnavailable, "[HTTPClient FetchProfile] %s: %s", resp.Status, body)
	}

	var pr profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return session.Profile{}, errors.Wrapf(errors.ErrUnavailable, "[HTTPClient FetchProfile] decode: %v", err)
	}

	id := pr.ID
	if id == "" {
		id = pr.Sub
	}
	return session.Profile{
		ID:         id,
		Email:      pr.Email,
		Name:       pr.Name,
		GivenName:  pr.GivenName,
		FamilyName: pr.FamilyName,
		Picture:    pr.Picture,
		Roles:      pr.Roles,
		Extra:      pr.Extra,
	}, nil
}
