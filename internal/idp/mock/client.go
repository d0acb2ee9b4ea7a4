// Package idpmock provides an in-memory idp.Client for tests.
package idpmock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/openkcm/auth-bridge/internal/idp"
)

type account struct {
	identity idp.Identity
	password string
}

type ClientOption func(*Client)

type Client struct {
	mu       sync.Mutex
	accounts map[string]account

	signUpErr, signInErr, mintErr, signOutErr error

	// counters let tests assert how often the provider was hit
	SignUpCalls  atomic.Int64
	SignInCalls  atomic.Int64
	MintCalls    atomic.Int64
	SignOutCalls atomic.Int64
}

func WithAccount(email, password string) ClientOption {
	return func(c *Client) {
		uid := "uid-" + email
		c.accounts[email] = account{
			password: password,
			identity: idp.Identity{UID: uid, Email: email, RefreshToken: "refresh-" + uid},
		}
	}
}

func WithSignUpError(err error) ClientOption {
	return func(c *Client) { c.signUpErr = err }
}

func WithSignInError(err error) ClientOption {
	return func(c *Client) { c.signInErr = err }
}

func WithMintError(err error) ClientOption {
	return func(c *Client) { c.mintErr = err }
}

func WithSignOutError(err error) ClientOption {
	return func(c *Client) { c.signOutErr = err }
}

var _ = idp.Client(&Client{})

func NewClient(opts ...ClientOption) *Client {
	c := &Client{accounts: make(map[string]account)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

func (c *Client) SignUp(_ context.Context, email, password string) (idp.Identity, error) {
	c.SignUpCalls.Add(1)

	if c.signUpErr != nil {
		return idp.Identity{}, c.signUpErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.accounts[email]; ok {
		return idp.Identity{}, &idp.Error{Code: idp.CodeEmailExists}
	}

	uid := "uid-" + email
	acc := account{
		password: password,
		identity: idp.Identity{UID: uid, Email: email, RefreshToken: "refresh-" + uid},
	}
	c.accounts[email] = acc

	return acc.identity, nil
}

func (c *Client) SignIn(_ context.Context, email, password string) (idp.Identity, error) {
	c.SignInCalls.Add(1)

	if c.signInErr != nil {
		return idp.Identity{}, c.signInErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	acc, ok := c.accounts[email]
	if !ok {
		return idp.Identity{}, &idp.Error{Code: idp.CodeUserNotFound}
	}
	if acc.password != password {
		return idp.Identity{}, &idp.Error{Code: idp.CodeWrongPassword}
	}

	return acc.identity, nil
}

// FailMinting makes every subsequent MintToken call fail, letting
// tests break token minting after a successful sign-in.
func (c *Client) FailMinting(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mintErr = err
}

func (c *Client) MintToken(_ context.Context, identity idp.Identity, _ bool) (string, error) {
	c.MintCalls.Add(1)

	c.mu.Lock()
	mintErr := c.mintErr
	c.mu.Unlock()

	if mintErr != nil {
		return "", mintErr
	}

	return "token-for-" + identity.UID, nil
}

func (c *Client) SignOut(_ context.Context, _ idp.Identity) error {
	c.SignOutCalls.Add(1)

	return c.signOutErr
}
