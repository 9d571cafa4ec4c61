package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	credgate "github.com/aurelline/credgate"
)

const defaultTimeout = 10 * time.Second

// Bodies larger than this are a misbehaving service, not a bigger
// identity record.
const maxResponseBytes = 1 << 20

// Config holds the client settings.
type Config struct {
	// BaseURL is the identity service root, e.g. "http://users:8080".
	BaseURL string
	// HTTPClient overrides the default client; nil selects one with a
	// 10 second timeout.
	HTTPClient *http.Client
}

// Client talks JSON over HTTP to the identity service. It satisfies
// [credgate.IdentityProvider].
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("identity base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid identity base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
	}, nil
}

type identityPayload struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func (p identityPayload) toIdentity() credgate.Identity {
	return credgate.Identity{
		OwnerID:  p.ID,
		Nickname: p.Nickname,
		Email:    p.Email,
		Verified: p.Verified,
	}
}

// RegisterIdentity provisions a new identity record.
func (c *Client) RegisterIdentity(ctx context.Context, nickname, email string) (credgate.Identity, error) {
	body, err := json.Marshal(map[string]string{
		"nickname": nickname,
		"email":    email,
	})
	if err != nil {
		return credgate.Identity{}, fmt.Errorf("%w: %v", credgate.ErrDependencyUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(body))
	if err != nil {
		return credgate.Identity{}, fmt.Errorf("%w: %v", credgate.ErrDependencyUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// IdentityByEmail resolves an identity by email address.
func (c *Client) IdentityByEmail(ctx context.Context, email string) (credgate.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/by-email/"+url.PathEscape(email), nil)
	if err != nil {
		return credgate.Identity{}, fmt.Errorf("%w: %v", credgate.ErrDependencyUnavailable, err)
	}

	return c.do(req)
}

// IdentityByID resolves an identity by its id.
func (c *Client) IdentityByID(ctx context.Context, ownerID string) (credgate.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+url.PathEscape(ownerID), nil)
	if err != nil {
		return credgate.Identity{}, fmt.Errorf("%w: %v", credgate.ErrDependencyUnavailable, err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (credgate.Identity, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return credgate.Identity{}, fmt.Errorf("%w: %v", credgate.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return credgate.Identity{}, credgate.ErrIdentityNotFound
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return credgate.Identity{}, fmt.Errorf("%w: identity service rejected request", credgate.ErrInvalidInput)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	default:
		return credgate.Identity{}, fmt.Errorf("%w: identity service returned %d",
			credgate.ErrDependencyUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return credgate.Identity{}, fmt.Errorf("%w: %v", credgate.ErrDependencyUnavailable, err)
	}

	var payload identityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return credgate.Identity{}, fmt.Errorf("%w: invalid identity response: %v",
			credgate.ErrDependencyUnavailable, err)
	}
	if payload.ID == "" {
		return credgate.Identity{}, fmt.Errorf("%w: identity response missing id",
			credgate.ErrDependencyUnavailable)
	}

	return payload.toIdentity(), nil
}
