package sessionapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/serviceerr"
	"github.com/openkcm/auth-bridge/internal/sessionapi"
)

const sessionCookie = "session"

// backendServer fakes the session endpoints: a valid token exchange
// sets the cookie, logout clears it, and the status query reports
// whether the cookie came back.
type backendServer struct {
	*httptest.Server

	createCalls atomic.Int64
	deleteCalls atomic.Int64
}

func startBackendServer(t *testing.T, acceptToken string, emptyAck bool) *backendServer {
	t.Helper()

	bs := &backendServer{}
	bs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/session" && r.Method == http.MethodPost:
			bs.createCalls.Add(1)

			if r.Header.Get("Authorization") != "" {
				t.Error("session endpoints must not receive a bearer header")
			}

			var req struct {
				IDToken string `json:"id_token"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)

			if req.IDToken != acceptToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "server-session", HttpOnly: true, Path: "/"})
			if emptyAck {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
		case r.URL.Path == "/auth/logout" && r.Method == http.MethodPost:
			bs.deleteCalls.Add(1)
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", MaxAge: -1, Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/auth/session" && r.Method == http.MethodGet:
			cookie, err := r.Cookie(sessionCookie)
			authenticated := err == nil && cookie.Value != ""
			_ = json.NewEncoder(w).Encode(sessionapi.Status{Authenticated: authenticated, Email: "a@b.com"})
		default:
			http.NotFound(w, r)
		}
	}))

	t.Cleanup(bs.Server.Close)

	return bs
}

func newTestClient(t *testing.T, server *backendServer) *sessionapi.Client {
	t.Helper()

	client, err := sessionapi.NewClient(config.Backend{
		BaseURL:        server.URL,
		SessionPath:    "/auth/session",
		LogoutPath:     "/auth/logout",
		RequestTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)

	return client
}

func TestClient_SessionLifecycle(t *testing.T) {
	server := startBackendServer(t, "good-token", false)
	client := newTestClient(t, server)

	// no cookie yet
	assert.False(t, client.CheckSession(t.Context()).Authenticated)

	require.NoError(t, client.CreateSession(t.Context(), "good-token"))

	// the cookie from the create response is carried automatically
	status := client.CheckSession(t.Context())
	assert.True(t, status.Authenticated)
	assert.Equal(t, "a@b.com", status.Email)

	client.DeleteSession(t.Context())
	assert.Equal(t, int64(1), server.deleteCalls.Load())
	assert.False(t, client.CheckSession(t.Context()).Authenticated)
}

func TestClient_CreateSession_EmptyAcknowledgement(t *testing.T) {
	server := startBackendServer(t, "good-token", true)
	client := newTestClient(t, server)

	require.NoError(t, client.CreateSession(t.Context(), "good-token"))
	assert.True(t, client.CheckSession(t.Context()).Authenticated)
}

func TestClient_CreateSession_Rejected(t *testing.T) {
	server := startBackendServer(t, "good-token", false)
	client := newTestClient(t, server)

	err := client.CreateSession(t.Context(), "bad-token")
	assert.ErrorIs(t, err, serviceerr.ErrSessionCreate)
}

func TestClient_CreateSession_TransportFailure(t *testing.T) {
	server := startBackendServer(t, "good-token", false)
	client := newTestClient(t, server)
	server.Close()

	err := client.CreateSession(t.Context(), "good-token")
	assert.ErrorIs(t, err, serviceerr.ErrSessionCreate)
}

func TestClient_DeleteSession_NeverFails(t *testing.T) {
	server := startBackendServer(t, "good-token", false)
	client := newTestClient(t, server)
	server.Close()

	// must not panic or surface anything
	client.DeleteSession(t.Context())
}

func TestClient_CheckSession_FailClosed(t *testing.T) {
	t.Run("Transport failure", func(t *testing.T) {
		server := startBackendServer(t, "good-token", false)
		client := newTestClient(t, server)
		server.Close()

		assert.False(t, client.CheckSession(t.Context()).Authenticated)
	})

	t.Run("Malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client, err := sessionapi.NewClient(config.Backend{BaseURL: srv.URL, SessionPath: "/auth/session", LogoutPath: "/auth/logout"}, nil)
		require.NoError(t, err)

		assert.False(t, client.CheckSession(t.Context()).Authenticated)
	})
}
