// Package idp defines the boundary to the external identity provider:
// credential verification, account creation, token minting and
// sign-out. Implementations live in subpackages; the bridge only ever
// sees this interface.
package idp

import "context"

// Identity is the provider-owned, ephemeral session for one verified
// user. It exists from successful credential verification or account
// creation until explicit sign-out or provider-side invalidation.
type Identity struct {
	// UID is the opaque, provider-assigned identity handle.
	UID   string
	Email string

	// RefreshToken lets the provider mint fresh identity tokens for
	// this identity without re-verifying credentials.
	RefreshToken string
}

type Client interface {
	// SignUp creates a new identity for the given credentials.
	SignUp(ctx context.Context, email, password string) (Identity, error)
	// SignIn verifies the given credentials against an existing identity.
	SignIn(ctx context.Context, email, password string) (Identity, error)
	// MintToken returns a short-lived signed identity token. With
	// forceRefresh the provider is asked for a new token even when a
	// cached one is still valid.
	MintToken(ctx context.Context, identity Identity, forceRefresh bool) (string, error)
	// SignOut invalidates the identity on the provider side.
	SignOut(ctx context.Context, identity Identity) error
}
