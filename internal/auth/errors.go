package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for token issuance and authorization.
var (
	// ErrConfiguration reports an unusable signing key or lifetime.
	ErrConfiguration = errors.New("auth: invalid token configuration")
	// ErrInvalidInput reports a caller error such as an empty username.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrDenied is matched by every authorization failure.
	ErrDenied = errors.New("auth: access denied")
	// ErrInvalidToken covers bad signatures, wrong issuer or audience, expiry and malformed tokens.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrDenied)
	// ErrInsufficientRole is returned when the token holds none of the required roles.
	ErrInsufficientRole = fmt.Errorf("%w: insufficient role", ErrDenied)
)
