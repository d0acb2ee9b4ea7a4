// Package identitytoolkit implements idp.Client against the identity
// toolkit REST API (the wire protocol behind the provider's browser
// SDK): accounts:signUp, accounts:signInWithPassword and the secure
// token refresh endpoint.
package identitytoolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/idp"
)

// tokenSafetyMargin keeps a cached token from being handed out right
// before its expiry.
const tokenSafetyMargin = 30 * time.Second

type Client struct {
	apiKey        string
	endpoint      *url.URL
	tokenEndpoint *url.URL
	httpClient    *http.Client

	// tokens caches minted identity tokens per refresh token so that
	// MintToken without forceRefresh stays off the network.
	tokens *gocache.Cache
}

var _ = idp.Client(&Client{})

func NewClient(conf config.Provider, apiKey string, httpClient *http.Client) (*Client, error) {
	endpoint, err := url.Parse(conf.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing identity toolkit endpoint: %w", err)
	}

	tokenEndpoint, err := url.Parse(conf.TokenEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing secure token endpoint: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.RequestTimeout}
	}

	return &Client{
		apiKey:        apiKey,
		endpoint:      endpoint,
		tokenEndpoint: tokenEndpoint,
		httpClient:    httpClient,
		tokens:        gocache.New(gocache.NoExpiration, time.Minute),
	}, nil
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (idp.Identity, error) {
	return c.verifyCredentials(ctx, "accounts:signUp", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (idp.Identity, error) {
	return c.verifyCredentials(ctx, "accounts:signInWithPassword", email, password)
}

func (c *Client) verifyCredentials(ctx context.Context, operation, email, password string) (idp.Identity, error) {
	body, err := json.Marshal(credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return idp.Identity{}, fmt.Errorf("encoding credentials request: %w", err)
	}

	u := c.endpoint.JoinPath("v1", operation)
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return idp.Identity{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return idp.Identity{}, &idp.Error{Code: idp.CodeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return idp.Identity{}, decodeAPIError(resp)
	}

	var cred credentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return idp.Identity{}, fmt.Errorf("decoding credentials response: %w", err)
	}

	identity := idp.Identity{
		UID:          cred.LocalID,
		Email:        cred.Email,
		RefreshToken: cred.RefreshToken,
	}

	c.cacheToken(ctx, cred.RefreshToken, cred.IDToken, cred.ExpiresIn)

	return identity, nil
}

func (c *Client) MintToken(ctx context.Context, identity idp.Identity, forceRefresh bool) (string, error) {
	if identity.RefreshToken == "" {
		return "", &idp.Error{Code: idp.CodeUserNotFound, Message: "identity has no refresh token"}
	}

	if !forceRefresh {
		if token, ok := c.tokens.Get(identity.RefreshToken); ok {
			return token.(string), nil
		}
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", identity.RefreshToken)

	u := c.tokenEndpoint.JoinPath("v1", "token")
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &idp.Error{Code: idp.CodeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var refreshed struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}

	c.cacheToken(ctx, identity.RefreshToken, refreshed.IDToken, refreshed.ExpiresIn)

	return refreshed.IDToken, nil
}

// SignOut drops the cached tokens for the identity. The password API
// has no server-side revocation; the session cookie teardown is owned
// by the backend.
func (c *Client) SignOut(_ context.Context, identity idp.Identity) error {
	c.tokens.Delete(identity.RefreshToken)

	return nil
}

func (c *Client) cacheToken(ctx context.Context, refreshToken, idToken, expiresIn string) {
	if refreshToken == "" || idToken == "" {
		return
	}

	ttl, err := tokenLifetime(idToken, expiresIn)
	if err != nil {
		slogctx.Warn(ctx, "Could not determine token lifetime, not caching it", "error", err)
		return
	}

	if ttl <= tokenSafetyMargin {
		return
	}

	c.tokens.Set(refreshToken, idToken, ttl-tokenSafetyMargin)
}
