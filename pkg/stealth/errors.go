package stealth

import "errors"

var (
	// ErrInvalidMetaAddress is thrown when decoding a malformed meta-address string
	ErrInvalidMetaAddress = errors.New("meta-address must be of the form vp:<spend pubkey><view pubkey>")
	// ErrNullMetaAddress ...
	ErrNullMetaAddress = errors.New("meta-address must not be null")
	// ErrNullViewKey ...
	ErrNullViewKey = errors.New("view private key must not be null")
	// ErrNoMatch is thrown when recovering the one-time key for an announcement not addressed to the recipient
	ErrNoMatch = errors.New("announcement is not addressed to this recipient")
)
