// Package sessionapi is the thin RPC layer to the backend session
// endpoints. The session cookie travels in the client's cookie jar on
// every call; these endpoints never see a bearer header.
package sessionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/serviceerr"
)

type Client struct {
	baseURL     *url.URL
	sessionPath string
	logoutPath  string
	httpClient  *http.Client
}

// Status is the backend's answer to a session query.
type Status struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

func NewClient(conf config.Backend, httpClient *http.Client) (*Client, error) {
	baseURL, err := url.Parse(conf.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend base URL: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.RequestTimeout}
	}

	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}

		httpClient.Jar = jar
	}

	return &Client{
		baseURL:     baseURL,
		sessionPath: conf.SessionPath,
		logoutPath:  conf.LogoutPath,
		httpClient:  httpClient,
	}, nil
}

type createSessionRequest struct {
	IDToken string `json:"id_token"`
}

// CreateSession exchanges the identity token for a backend session
// cookie. An empty 204-style acknowledgement and a JSON body are both
// success; any other outcome is ErrSessionCreate. The backend treats
// creation as an upsert, so concurrent calls for the same identity are
// safe.
func (c *Client) CreateSession(ctx context.Context, idToken string) error {
	body, err := json.Marshal(createSessionRequest{IDToken: idToken})
	if err != nil {
		return fmt.Errorf("encoding session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(c.sessionPath).String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(serviceerr.ErrSessionCreate, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serviceerr.ErrSessionCreate
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	// Drain any JSON acknowledgement; its contents do not matter.
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// DeleteSession asks the backend to clear the session cookie. Deletion
// is best-effort: failures are logged, never returned.
func (c *Client) DeleteSession(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(c.logoutPath).String(), nil)
	if err != nil {
		slogctx.Error(ctx, "Failed to create session delete request", "error", err)
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slogctx.Error(ctx, "Failed to delete session on backend", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slogctx.Warn(ctx, "Backend refused to delete session", "status", resp.StatusCode)
	}
}

// CheckSession queries the backend session status. It never fails: any
// transport or decoding problem degrades to not-authenticated.
func (c *Client) CheckSession(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath(c.sessionPath).String(), nil)
	if err != nil {
		slogctx.Error(ctx, "Failed to create session check request", "error", err)
		return Status{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slogctx.Warn(ctx, "Session check failed, treating as unauthenticated", "error", err)
		return Status{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		slogctx.Warn(ctx, "Could not decode session status, treating as unauthenticated", "error", err)
		return Status{}
	}

	return status
}
