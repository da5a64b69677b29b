package pocketbase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthStore keeps the auth token of the current session.
type AuthStore struct {
	mu    sync.RWMutex
	token string
}

// Token returns the stored token or "".
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Save replaces the stored token.
func (s *AuthStore) Save(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear removes the stored token.
func (s *AuthStore) Clear() {
	s.Save("")
}

// IsValid reports whether a token is stored and its exp claim lies in the future.
// The signature is not verified; only PocketBase can do that.
func (s *AuthStore) IsValid() bool {
	return tokenValidAt(s.Token(), time.Now())
}

func tokenValidAt(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.Before(exp.Time)
}

type authResponse struct {
	Token  string         `json:"token"`
	Record map[string]any `json:"record"`
}

type credentials struct {
	collection string
	identity   string
	password   string
}

// AuthWithPassword authenticates against an auth collection and stores the token.
// The credentials are kept so an expired token can be renewed on the next request.
func (c *Client) AuthWithPassword(ctx context.Context, collection, identity, password string) error {
	creds := credentials{
		collection: collection,
		identity:   identity,
		password:   password,
	}
	c.authMu.Lock()
	defer c.authMu.Unlock()
	if err := c.login(ctx, creds); err != nil {
		return err
	}
	c.credentials = &creds
	return nil
}

// AuthSuperuser authenticates as a PocketBase superuser.
func (c *Client) AuthSuperuser(ctx context.Context, email, password string) error {
	return c.AuthWithPassword(ctx, superusersCollection, email, password)
}

// ensureAuth logs in again with the last credentials once the stored token has expired.
// Clients that never authenticated send requests without a token.
func (c *Client) ensureAuth(ctx context.Context) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	if c.credentials == nil || c.auth.IsValid() {
		return nil
	}
	slog.Default().Debug("auth token expired, logging in again",
		slog.String("collection", c.credentials.collection))
	if err := c.login(ctx, *c.credentials); err != nil {
		return fmt.Errorf("c.login() > %w", err)
	}
	return nil
}

func (c *Client) login(ctx context.Context, creds credentials) error {
	var resp authResponse
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"identity": creds.identity,
			"password": creds.password,
		})
	path := "/api/collections/" + creds.collection + "/auth-with-password"
	if err := c.do(req, http.MethodPost, path, &resp); err != nil {
		return fmt.Errorf("auth-with-password(%s) > %w", creds.collection, err)
	}
	if resp.Token == "" {
		return fmt.Errorf("auth-with-password(%s): %w", creds.collection, ErrNotAuthenticated)
	}
	c.auth.Save(resp.Token)
	return nil
}
