// Package serviceerr defines the error taxonomy shared by the bridge
// and its collaborators.
package serviceerr

type Code string

const (
	// CodeConfiguration means the provider configuration is absent or
	// unusable. Fatal to initialisation, not recoverable at runtime.
	CodeConfiguration Code = "configuration"
	// CodeNotInitialized means a bridge operation was called before
	// Initialize. This is an ordering bug in the caller.
	CodeNotInitialized Code = "not_initialized"
	// CodeIdentityProvider wraps a credential or account error coming
	// back from the identity provider.
	CodeIdentityProvider Code = "identity_provider"
	// CodeSessionCreate means the backend rejected the token exchange.
	CodeSessionCreate Code = "session_create"
	// CodeSessionCheck and CodeSessionDelete are transport-level
	// failures that always degrade to a safe default.
	CodeSessionCheck  Code = "session_check"
	CodeSessionDelete Code = "session_delete"
)

type Error struct {
	Err         Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return string(e.Err) + ": " + e.Description
}

var (
	ErrConfiguration  = &Error{Err: CodeConfiguration, Description: "provider configuration not found"}
	ErrNotInitialized = &Error{Err: CodeNotInitialized, Description: "bridge not initialized, call Initialize first"}
	ErrSessionCreate  = &Error{Err: CodeSessionCreate, Description: "failed to create session"}
	ErrSessionCheck   = &Error{Err: CodeSessionCheck, Description: "failed to check session"}
	ErrSessionDelete  = &Error{Err: CodeSessionDelete, Description: "failed to delete session"}
)
