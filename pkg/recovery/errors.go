package recovery

import "errors"

var (
	// ErrDuplicateCommitment is thrown when two different events in one feed
	// carry the same commitment hash. The feed is rejected rather than
	// deduplicated: two distinct on-chain deposits can only share a
	// commitment if the feeder (or the chain view it reads) is broken.
	ErrDuplicateCommitment = errors.New("event feed contains two different events with the same commitment")
	// ErrNullKeyMaterial ...
	ErrNullKeyMaterial = errors.New("master key material must not be null")
	// ErrNullEventIndex ...
	ErrNullEventIndex = errors.New("event index must not be null")
)
