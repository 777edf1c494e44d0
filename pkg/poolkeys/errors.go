package poolkeys

import "errors"

var (
	// ErrNullMasterKey is thrown when creating key material without both scalars
	ErrNullMasterKey = errors.New("master nullifier and master secret must not be null")
	// ErrOutOfFieldScalar is thrown when a scalar is not a canonical field element
	ErrOutOfFieldScalar = errors.New("scalar must be a positive integer lower than the field order")
	// ErrNullScope ...
	ErrNullScope = errors.New("scope must not be null")
	// ErrInvalidSignature is thrown when deriving key material from a malformed signature
	ErrInvalidSignature = errors.New("signature must be at least 64 bytes long")
)
