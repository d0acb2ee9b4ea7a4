package login_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/auth-bridge/internal/bridge"
	"github.com/openkcm/auth-bridge/internal/login"
	"github.com/openkcm/auth-bridge/internal/sessionapi"
)

type bridgeFake struct {
	signInResult bridge.Result
	signInErr    error
	status       sessionapi.Status
	statusErr    error
}

func (f *bridgeFake) SignIn(_ context.Context, _, _ string) (bridge.Result, error) {
	return f.signInResult, f.signInErr
}

func (f *bridgeFake) CheckSession(_ context.Context) (sessionapi.Status, error) {
	return f.status, f.statusErr
}

func TestController_Submit(t *testing.T) {
	tests := []struct {
		name string
		auth *bridgeFake
		want login.Result
	}{
		{
			name: "Successful sign-in redirects home",
			auth: &bridgeFake{signInResult: bridge.Result{Success: true}},
			want: login.Result{
				OK:         true,
				Alert:      "Login realizado com sucesso! Redirecionando...",
				RedirectTo: "/",
			},
		},
		{
			name: "Wrong password surfaces the translated message",
			auth: &bridgeFake{signInResult: bridge.Result{Error: "Senha incorreta"}},
			want: login.Result{Alert: "Senha incorreta"},
		},
		{
			name: "Bridge error becomes an alert",
			auth: &bridgeFake{signInErr: errors.New("bridge not initialized, call Initialize first")},
			want: login.Result{Alert: "bridge not initialized, call Initialize first"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := login.New(tt.auth, "")

			assert.Equal(t, tt.want, c.Submit(t.Context(), "a@b.com", "secret1"))
		})
	}
}

func TestController_RedirectIfAuthenticated(t *testing.T) {
	tests := []struct {
		name         string
		auth         *bridgeFake
		wantTarget   string
		wantRedirect bool
	}{
		{
			name:         "Active session redirects",
			auth:         &bridgeFake{status: sessionapi.Status{Authenticated: true, Email: "a@b.com"}},
			wantTarget:   "/",
			wantRedirect: true,
		},
		{
			name: "No session shows the form",
			auth: &bridgeFake{},
		},
		{
			name: "Check failure fails closed",
			auth: &bridgeFake{statusErr: errors.New("connection refused")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := login.New(tt.auth, "/")

			target, redirect := c.RedirectIfAuthenticated(t.Context())

			assert.Equal(t, tt.wantRedirect, redirect)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}
