// Package registration talks to the profile-registration API. Unlike
// the session endpoints this API is bearer-authenticated with a fresh
// identity token.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/openkcm/auth-bridge/internal/config"
)

type Client struct {
	registerURL *url.URL
	httpClient  *http.Client
}

// Profile is the payload for a completed registration. Professional is
// an explicit null for individual accounts, and RegistrationState is
// an explicit null when a professional leaves it empty; neither field
// is ever omitted.
type Profile struct {
	Email        string        `json:"email"`
	FullName     string        `json:"full_name"`
	BirthDate    string        `json:"birth_date"`
	CPF          string        `json:"cpf"`
	Phone        string        `json:"phone"`
	AccountType  string        `json:"account_type"`
	Professional *Professional `json:"professional"`
}

type Professional struct {
	Kind               string  `json:"kind"`
	RegistrationNumber string  `json:"registration_number"`
	RegistrationIssuer string  `json:"registration_issuer"`
	RegistrationState  *string `json:"registration_state"`
}

// Error carries the server-provided message for a rejected
// registration, already fit to show to the user.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

const genericFailure = "Erro ao registrar usuário"

func NewClient(backend config.Backend, conf config.Registration, httpClient *http.Client) (*Client, error) {
	baseURL, err := url.Parse(backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend base URL: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.RequestTimeout}
	}

	return &Client{
		registerURL: baseURL.JoinPath(conf.RegisterPath),
		httpClient:  httpClient,
	}, nil
}

// Register submits the profile, bearer-authenticated with idToken. A
// non-success response comes back as *Error with the server's message,
// falling back to a generic one.
func (c *Client) Register(ctx context.Context, idToken string, profile Profile) error {
	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding registration payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.registerURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+idToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var failure struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Message == "" {
		return &Error{StatusCode: resp.StatusCode, Message: genericFailure}
	}

	return &Error{StatusCode: resp.StatusCode, Message: failure.Message}
}
