// Package bridge owns the identity provider lifecycle and negotiates
// backend session creation and teardown on identity transitions. A
// Bridge is the single source of truth for "is this client
// authenticated".
package bridge

import (
	"context"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/idp"
	"github.com/openkcm/auth-bridge/internal/serviceerr"
	"github.com/openkcm/auth-bridge/internal/sessionapi"
	"github.com/openkcm/auth-bridge/internal/usermsg"
)

// SessionClient is the backend session RPC surface the bridge drives.
// *sessionapi.Client implements it.
type SessionClient interface {
	CreateSession(ctx context.Context, idToken string) error
	DeleteSession(ctx context.Context)
	CheckSession(ctx context.Context) sessionapi.Status
}

// Result is the tagged outcome of a credential operation. Error is
// already localized; raw provider errors never cross this boundary.
type Result struct {
	Success  bool
	Identity idp.Identity
	Token    string
	Error    string
}

type Bridge struct {
	provider *config.Provider
	idp      idp.Client
	sessions SessionClient

	mu          sync.Mutex
	initialized bool
	current     *idp.Identity

	// events carries one element per identity transition, in order.
	// A single consumer goroutine reacts to them; silent token
	// renewals never appear here.
	events    chan *idp.Identity
	observerC context.CancelFunc
	observerW sync.WaitGroup
}

func New(provider *config.Provider, idpClient idp.Client, sessions SessionClient) *Bridge {
	return &Bridge{
		provider: provider,
		idp:      idpClient,
		sessions: sessions,
	}
}

// Initialize verifies the provider configuration and starts the
// identity observer. Calling it again is not an error; it warns and
// keeps the already-registered observer.
func (b *Bridge) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		slogctx.Warn(ctx, "Bridge already initialized")
		return nil
	}

	if b.provider == nil || b.provider.ProjectID == "" {
		return serviceerr.ErrConfiguration
	}

	// The observer outlives the Initialize call: it runs until Close,
	// detached from the caller's cancellation but keeping its values.
	obsCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.events = make(chan *idp.Identity, 16)
	b.observerC = cancel
	b.observerW.Add(1)

	go b.observe(obsCtx)

	b.initialized = true
	slogctx.Info(ctx, "Bridge initialized", "project_id", b.provider.ProjectID)

	return nil
}

// observe consumes identity transitions one at a time, in order. On a
// new identity it mints a token and creates the backend session,
// absorbing failures; on identity loss it takes no backend action, so
// the bridge never unilaterally destroys a server session.
func (b *Bridge) observe(ctx context.Context) {
	defer b.observerW.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case identity := <-b.events:
			b.mu.Lock()
			b.current = identity
			b.mu.Unlock()

			if identity == nil {
				slogctx.Info(ctx, "User signed out")
				continue
			}

			token, err := b.idp.MintToken(ctx, *identity, false)
			if err != nil {
				slogctx.Error(ctx, "Observer failed to mint identity token", "error", err)
				continue
			}

			if err := b.sessions.CreateSession(ctx, token); err != nil {
				slogctx.Error(ctx, "Observer failed to create session", "error", err)
				continue
			}

			slogctx.Info(ctx, "User authenticated", "email", identity.Email)
		}
	}
}

func (b *Bridge) publish(identity *idp.Identity) {
	b.events <- identity
}

func (b *Bridge) ensureInitialized() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return serviceerr.ErrNotInitialized
	}

	return nil
}

// SignUp creates a new identity and eagerly exchanges its token for a
// backend session. The observer fires for the same transition; the
// backend treats session creation as an upsert, so the race is benign.
func (b *Bridge) SignUp(ctx context.Context, email, password string) (Result, error) {
	if err := b.ensureInitialized(); err != nil {
		return Result{}, err
	}

	ctx, end := startOperation(ctx, "sign_up")
	defer end()

	return b.credentialFlow(ctx, func() (idp.Identity, error) {
		return b.idp.SignUp(ctx, email, password)
	}), nil
}

// SignIn verifies credentials against an existing identity; otherwise
// identical to SignUp.
func (b *Bridge) SignIn(ctx context.Context, email, password string) (Result, error) {
	if err := b.ensureInitialized(); err != nil {
		return Result{}, err
	}

	ctx, end := startOperation(ctx, "sign_in")
	defer end()

	return b.credentialFlow(ctx, func() (idp.Identity, error) {
		return b.idp.SignIn(ctx, email, password)
	}), nil
}

func (b *Bridge) credentialFlow(ctx context.Context, verify func() (idp.Identity, error)) Result {
	identity, err := verify()
	if err != nil {
		slogctx.Warn(ctx, "Credential verification failed", "error", err)
		return Result{Error: usermsg.ForError(err)}
	}

	b.publish(&identity)

	token, err := b.idp.MintToken(ctx, identity, false)
	if err != nil {
		slogctx.Error(ctx, "Failed to mint identity token", "error", err)
		return Result{Error: usermsg.ForError(err)}
	}

	if err := b.sessions.CreateSession(ctx, token); err != nil {
		slogctx.Error(ctx, "Failed to create session", "error", err)
		return Result{Error: usermsg.Unknown}
	}

	return Result{Success: true, Identity: identity, Token: token}
}

// SignOut deletes the backend session first, so a broken backend can
// not leave an unreachable live session behind, then signs out from
// the provider. Backend deletion failures are logged, never surfaced.
func (b *Bridge) SignOut(ctx context.Context) (Result, error) {
	if err := b.ensureInitialized(); err != nil {
		return Result{}, err
	}

	ctx, end := startOperation(ctx, "sign_out")
	defer end()

	b.sessions.DeleteSession(ctx)

	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	if current != nil {
		if err := b.idp.SignOut(ctx, *current); err != nil {
			slogctx.Error(ctx, "Provider sign-out failed", "error", err)
			return Result{Error: usermsg.ForError(err)}, nil
		}
	}

	b.publish(nil)

	return Result{Success: true}, nil
}

// IDToken returns a token for the current identity, or "" when there
// is no identity or minting fails. It never reports mint failures as
// errors; the only possible error is calling it before Initialize.
func (b *Bridge) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	if err := b.ensureInitialized(); err != nil {
		return "", err
	}

	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	if current == nil {
		return "", nil
	}

	token, err := b.idp.MintToken(ctx, *current, forceRefresh)
	if err != nil {
		slogctx.Error(ctx, "Failed to get identity token", "error", err)
		return "", nil
	}

	return token, nil
}

// IsAuthenticated reflects provider state only: it flips to true once
// the observer has consumed the sign-in transition. Callers needing
// server-confirmed status must use CheckSession.
func (b *Bridge) IsAuthenticated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current != nil
}

// CheckSession asks the backend whether a session cookie is live.
// Fail-closed: transport failures read as not authenticated.
func (b *Bridge) CheckSession(ctx context.Context) (sessionapi.Status, error) {
	if err := b.ensureInitialized(); err != nil {
		return sessionapi.Status{}, err
	}

	return b.sessions.CheckSession(ctx), nil
}

// Close stops the identity observer. The bridge cannot be reused
// afterwards.
func (b *Bridge) Close() {
	b.mu.Lock()
	cancel := b.observerC
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		b.observerW.Wait()
	}
}
