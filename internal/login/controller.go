// Package login drives the sign-in form against the bridge.
package login

import (
	"context"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/auth-bridge/internal/bridge"
	"github.com/openkcm/auth-bridge/internal/sessionapi"
)

// Bridge is the part of the session bridge the controller needs.
type Bridge interface {
	SignIn(ctx context.Context, email, password string) (bridge.Result, error)
	CheckSession(ctx context.Context) (sessionapi.Status, error)
}

// Result is the outcome of one submission attempt.
type Result struct {
	OK         bool
	Alert      string
	RedirectTo string
}

type Controller struct {
	auth       Bridge
	redirectTo string
}

func New(auth Bridge, redirectTo string) *Controller {
	if redirectTo == "" {
		redirectTo = "/"
	}

	return &Controller{auth: auth, redirectTo: redirectTo}
}

// Submit signs the user in and reports where to go next. Failures
// come back as an alert message, never as an error.
func (c *Controller) Submit(ctx context.Context, email, password string) Result {
	result, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		return Result{Alert: err.Error()}
	}
	if !result.Success {
		return Result{Alert: result.Error}
	}

	return Result{
		OK:         true,
		Alert:      "Login realizado com sucesso! Redirecionando...",
		RedirectTo: c.redirectTo,
	}
}

// RedirectIfAuthenticated mirrors the on-load session check: when the
// backend already holds a session, the caller should skip the form.
func (c *Controller) RedirectIfAuthenticated(ctx context.Context) (string, bool) {
	status, err := c.auth.CheckSession(ctx)
	if err != nil {
		slogctx.Warn(ctx, "Session check failed, showing the login form", "error", err)
		return "", false
	}
	if !status.Authenticated {
		return "", false
	}

	return c.redirectTo, true
}
