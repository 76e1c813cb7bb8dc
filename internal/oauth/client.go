// Package oauth implements the authorization-code and refresh-token grants
// against the configured token endpoint, and the session lifecycle built on
// top of them.
package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"edgegate/gateway/internal/config"
)

// ---- Errors ----

var (
	// ErrTokenExchange: the code exchange failed upstream. Fatal for the
	// request, never retried, never silently degraded.
	ErrTokenExchange = errors.New("token exchange failed")
	// ErrRefresh: the refresh grant failed. Callers must treat this exactly
	// like a verification failure so the gateway stays fail-closed.
	ErrRefresh = errors.New("token refresh failed")
)

// TokenSet is what a successful grant returns. It is never stored server
// side; the signed session cookie is the only persistence.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Client struct {
	cfg  *config.Config
	http *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.OAuthTimeout()},
	}
}

type grantRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	RedirectURI  string `json:"redirect_uri"`
	GrantType    string `json:"grant_type"`
}

// Exchange trades an authorization code for a token set.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	ts, err := c.grant(ctx, grantRequest{
		ClientID:     c.cfg.OAuth.ClientID,
		ClientSecret: c.cfg.OAuth.ClientSecret,
		Code:         code,
		RedirectURI:  c.cfg.OAuth.RedirectURI,
		GrantType:    "authorization_code",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return ts, nil
}

// Refresh trades a refresh token for a fresh token set.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	ts, err := c.grant(ctx, grantRequest{
		ClientID:     c.cfg.OAuth.ClientID,
		ClientSecret: c.cfg.OAuth.ClientSecret,
		RefreshToken: refreshToken,
		RedirectURI:  c.cfg.OAuth.RedirectURI,
		GrantType:    "refresh_token",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefresh, err)
	}
	return ts, nil
}

func (c *Client) grant(ctx context.Context, gr grantRequest) (*TokenSet, error) {
	body, err := json.Marshal(gr)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OAuth.TokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little for the error message; never the full body.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, snippet)
	}
	var ts TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if ts.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	return &ts, nil
}
