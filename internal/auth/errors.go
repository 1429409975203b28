package auth

import "errors"

var (
	// ErrUnauthenticated covers missing, malformed and invalid tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTokenExpired indicates a correctly signed token whose exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrKeyFetch indicates the identity provider's key set could not be retrieved.
	ErrKeyFetch = errors.New("fetch signing keys")
)
