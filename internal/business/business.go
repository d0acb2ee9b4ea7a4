// Package business wires the configured components together and hosts
// the entry points behind each CLI command.
package business

import (
	"context"
	"fmt"
	"os"
	"sort"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/auth-bridge/internal/bridge"
	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/idp/identitytoolkit"
	"github.com/openkcm/auth-bridge/internal/liveness"
	"github.com/openkcm/auth-bridge/internal/login"
	"github.com/openkcm/auth-bridge/internal/registration"
	"github.com/openkcm/auth-bridge/internal/sessionapi"
	"github.com/openkcm/auth-bridge/internal/theme"
	"github.com/openkcm/auth-bridge/internal/wizard"
)

// initBridge builds the identity provider client and the session
// client and hands back an initialised bridge.
func initBridge(ctx context.Context, cfg *config.Config) (*bridge.Bridge, func(), error) {
	apiKey, err := config.LoadAPIKey(cfg.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("loading provider API key: %w", err)
	}

	provider, err := identitytoolkit.NewClient(cfg.Provider, apiKey, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("initialising the identity provider client: %w", err)
	}

	sessions, err := sessionapi.NewClient(cfg.Backend, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("initialising the session client: %w", err)
	}

	if err := bridge.InitMeters(ctx); err != nil {
		return nil, nil, fmt.Errorf("initialising the bridge meters: %w", err)
	}

	b := bridge.New(&cfg.Provider, provider, sessions)
	if err := b.Initialize(ctx); err != nil {
		return nil, nil, fmt.Errorf("initialising the bridge: %w", err)
	}

	return b, b.Close, nil
}

// LoginMain signs in with the given credentials and establishes the
// backend session.
func LoginMain(ctx context.Context, cfg *config.Config, email, password string) error {
	b, closeFn, err := initBridge(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	controller := login.New(b, "/")

	if target, ok := controller.RedirectIfAuthenticated(ctx); ok {
		fmt.Fprintf(os.Stdout, "Already signed in, go to %s\n", target)
		return nil
	}

	result := controller.Submit(ctx, email, password)
	fmt.Fprintln(os.Stdout, result.Alert)
	if !result.OK {
		return fmt.Errorf("login failed: %s", result.Alert)
	}

	fmt.Fprintf(os.Stdout, "Go to %s\n", result.RedirectTo)

	return nil
}

// RegisterMain runs the two registration steps back to back.
func RegisterMain(ctx context.Context, cfg *config.Config, creds wizard.Credentials, profile wizard.Profile) error {
	b, closeFn, err := initBridge(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	registrar, err := registration.NewClient(cfg.Backend, cfg.Registration, nil)
	if err != nil {
		return fmt.Errorf("initialising the registration client: %w", err)
	}

	w := wizard.New(b, registrar, cfg.Registration.RedirectTo)

	if outcome := w.SubmitCredentials(ctx, creds); !outcome.OK {
		printOutcome(outcome)
		return fmt.Errorf("registration step 1 failed")
	}

	outcome := w.SubmitProfile(ctx, profile)
	printOutcome(outcome)
	if !outcome.OK {
		return fmt.Errorf("registration step 2 failed")
	}

	fmt.Fprintf(os.Stdout, "Go to %s\n", outcome.RedirectTo)

	return nil
}

// LogoutMain tears down the backend session and the provider state.
func LogoutMain(ctx context.Context, cfg *config.Config) error {
	b, closeFn, err := initBridge(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := b.SignOut(ctx)
	if err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("sign out failed: %s", result.Error)
	}

	fmt.Fprintln(os.Stdout, "Signed out")

	return nil
}

// StatusMain reports whether the backend currently holds a session.
func StatusMain(ctx context.Context, cfg *config.Config) error {
	sessions, err := sessionapi.NewClient(cfg.Backend, nil)
	if err != nil {
		return fmt.Errorf("initialising the session client: %w", err)
	}

	status := sessions.CheckSession(ctx)
	if !status.Authenticated {
		fmt.Fprintln(os.Stdout, "Not authenticated")
		return nil
	}

	fmt.Fprintf(os.Stdout, "Authenticated as %s\n", status.Email)

	return nil
}

// WatchMain keeps probing the backend health endpoint until stopped.
func WatchMain(ctx context.Context, cfg *config.Config) error {
	watcher, err := liveness.NewWatcher(cfg.Backend, cfg.Liveness, nil, func(ctx context.Context) {
		slogctx.Info(ctx, "Backend recovered, reload the page state")
		fmt.Fprintln(os.Stdout, "Backend recovered")
	})
	if err != nil {
		return fmt.Errorf("initialising the liveness watcher: %w", err)
	}

	slogctx.Info(ctx, "Starting the liveness watch")

	return watcher.Run(ctx)
}

// ThemeMain flips the persisted light/dark preference.
func ThemeMain(_ context.Context, cfg *config.Config) error {
	next, err := theme.NewStore(cfg.Theme.File).Toggle()
	if err != nil {
		return fmt.Errorf("toggling the theme: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Theme is now %s\n", next)

	return nil
}

func printOutcome(outcome wizard.Outcome) {
	fields := make([]string, 0, len(outcome.FieldErrors))
	for field := range outcome.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		fmt.Fprintf(os.Stdout, "%s: %s\n", field, outcome.FieldErrors[field])
	}

	if outcome.Alert != "" {
		fmt.Fprintln(os.Stdout, outcome.Alert)
	}
}
