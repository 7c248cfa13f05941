package auth

import "errors"

var (
	// ErrAuthenticationFailed is returned by login for an unknown username or
	// a wrong password. The two cases are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidCredential covers malformed, unsigned, foreign-signed and
	// expired tokens, and tokens without a usable subject.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrUnknownUser means the token is valid but its user no longer exists.
	ErrUnknownUser = errors.New("unknown user")
)
