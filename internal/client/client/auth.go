package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/edachat/internal/client/models"
	"github.com/dmitrijs2005/edachat/internal/client/tokens"
)

// Login authenticates and stores the returned pair. A response without
// both tokens stores nothing and fails with ErrIncompleteLogin.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/login",
		body:   models.Credentials{Username: username, Password: password},
		out:    &resp,
		auth:   authNone,
	})
	if err != nil {
		return nil, err
	}

	pair := tokens.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if !pair.Complete() {
		c.log.Warn(ctx, "login response without token pair", "username", username)
		return nil, ErrIncompleteLogin
	}
	if err := c.store.Set(ctx, pair); err != nil {
		return nil, err
	}
	c.log.Info(ctx, "logged in", "username", username)
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (*models.StatusMessage, error) {
	var resp models.StatusMessage
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/register",
		body:   models.Credentials{Username: username, Password: password},
		out:    &resp,
		auth:   authNone,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the backend and clears local credentials. The remote call
// is best effort; only a failure to clear local storage is returned.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, call{method: http.MethodPost, path: "/logout", auth: authAttach})
	if err != nil {
		c.log.Debug(ctx, "remote logout failed", "error", err)
	}
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.log.Info(ctx, "logged out")
	return nil
}

// IsAuthenticated reports whether a non-expired access token is stored.
func (c *HTTPClient) IsAuthenticated(ctx context.Context) bool {
	token, err := c.store.AccessToken(ctx)
	if err != nil || token == "" {
		return false
	}
	return !c.policy.IsExpired(token)
}

// EnsureValidToken returns a usable access token. An expired token is
// refreshed. A token inside the refresh window is refreshed proactively,
// falling back to the current one if that fails while it is still valid.
func (c *HTTPClient) EnsureValidToken(ctx context.Context) (string, error) {
	token, err := c.store.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}

	if c.policy.IsExpired(token) {
		return c.coordinator.Refresh(ctx)
	}

	if c.policy.ShouldRefresh(token) {
		fresh, err := c.coordinator.Refresh(ctx)
		if err != nil {
			if !c.policy.IsExpired(token) {
				c.log.Warn(ctx, "proactive refresh failed, using current token", "error", err)
				return token, nil
			}
			return "", err
		}
		return fresh, nil
	}

	return token, nil
}

// exchangeRefreshToken is the coordinator's network call.
func (c *HTTPClient) exchangeRefreshToken(ctx context.Context, refreshToken string) (tokens.Pair, error) {
	var resp models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/refresh",
		body:   map[string]string{"refresh_token": refreshToken},
		out:    &resp,
		auth:   authNone,
	})
	if err != nil {
		return tokens.Pair{}, err
	}
	return tokens.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}
