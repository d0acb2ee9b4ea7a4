package bridge_test

import (
	"context"
	"sync"
	"testing"

	"github.com/openkcm/auth-bridge/internal/bridge"
	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/idp"
	idpmock "github.com/openkcm/auth-bridge/internal/idp/mock"
	"github.com/openkcm/auth-bridge/internal/sessionapi"
)

// sessionClientFake records the backend calls the bridge makes,
// including their relative order.
type sessionClientFake struct {
	mu sync.Mutex

	createErr error
	status    sessionapi.Status

	createdTokens []string
	calls         []string
}

func (f *sessionClientFake) CreateSession(_ context.Context, idToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return f.createErr
	}

	f.createdTokens = append(f.createdTokens, idToken)

	return nil
}

func (f *sessionClientFake) DeleteSession(_ context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "delete")
}

func (f *sessionClientFake) CheckSession(_ context.Context) sessionapi.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "check")

	return f.status
}

func (f *sessionClientFake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *sessionClientFake) CreatedTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.createdTokens...)
}

func (f *sessionClientFake) CreateCalls() int {
	n := 0
	for _, c := range f.Calls() {
		if c == "create" {
			n++
		}
	}

	return n
}

var testProvider = &config.Provider{ProjectID: "test-project"}

// signOutTracker wraps the idp mock to record ordering against the
// session client fake.
type signOutTracker struct {
	idp.Client

	sessions *sessionClientFake
}

func (s *signOutTracker) SignOut(ctx context.Context, identity idp.Identity) error {
	s.sessions.mu.Lock()
	s.sessions.calls = append(s.sessions.calls, "idp-sign-out")
	s.sessions.mu.Unlock()

	return s.Client.SignOut(ctx, identity)
}

func newTestBridge(t *testing.T, idpClient idp.Client, sessions *sessionClientFake) *bridge.Bridge {
	t.Helper()

	b := bridge.New(testProvider, idpClient, sessions)
	t.Cleanup(b.Close)

	return b
}

func newInitializedBridge(t *testing.T, sessions *sessionClientFake) (*bridge.Bridge, *idpmock.Client) {
	t.Helper()

	idpClient := idpmock.NewClient()
	b := newTestBridge(t, &signOutTracker{Client: idpClient, sessions: sessions}, sessions)

	if err := b.Initialize(t.Context()); err != nil {
		t.Fatalf("initializing bridge: %v", err)
	}

	return b, idpClient
}
