package recovery

import (
	"math/big"

	"github.com/veilpay/veild/pkg/poolkeys"
)

// DefaultMaxConsecutiveMisses is the default miss-streak bound. Deposit
// indices are assigned sequentially by the depositing client, but a
// submitted transaction can fail on-chain and leave a gap; the bound
// tolerates a run of such gaps while guaranteeing the scan terminates. It is
// a policy constant, not a protocol invariant.
const DefaultMaxConsecutiveMisses = 10

// ScannerOpts defines the parameters needed for creating a scanner with the
// NewScanner method.
type ScannerOpts struct {
	Scope *big.Int
	// MaxConsecutiveMisses overrides the default miss-streak bound when
	// positive.
	MaxConsecutiveMisses int
}

func (o ScannerOpts) validate() error {
	if o.Scope == nil {
		return poolkeys.ErrNullScope
	}
	return nil
}

func (o ScannerOpts) maxMisses() int {
	if o.MaxConsecutiveMisses > 0 {
		return o.MaxConsecutiveMisses
	}
	return DefaultMaxConsecutiveMisses
}

// Scanner reconstructs the gap-free prefix of a wallet's private deposits
// from public chain events and the wallet's master key material alone.
type Scanner struct {
	scope     *big.Int
	maxMisses int
}

// NewScanner returns a scanner bound to a pool scope.
func NewScanner(opts ScannerOpts) (*Scanner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Scanner{
		scope:     new(big.Int).Set(opts.Scope),
		maxMisses: opts.maxMisses(),
	}, nil
}

// Result is what one scan produces: the recovered deposits in ascending
// index order, the next index a new deposit should use, and the number of
// derivations performed.
type Result struct {
	Deposits    []RecoveredDeposit
	NextIndex   uint64
	Derivations int
}

// Scan walks indices from 0 upward, deriving the expected commitment for
// each and probing the event index, until the configured number of
// consecutive misses is reached. The scan is a single synchronous pass over
// an immutable snapshot: no I/O happens inside the loop and re-running it
// over the same inputs yields the same result.
//
// A wallet whose deposits are interleaved with more failed transactions than
// the bound allows will stop early; that is the accepted trade-off for
// termination without an upper bound on total deposits.
func (s *Scanner) Scan(keys *poolkeys.MasterKeyMaterial, index *EventIndex) (*Result, error) {
	if keys == nil {
		return nil, ErrNullKeyMaterial
	}
	if index == nil {
		return nil, ErrNullEventIndex
	}

	result := &Result{Deposits: make([]RecoveredDeposit, 0)}

	misses := 0
	for i := uint64(0); misses < s.maxMisses; i++ {
		derived, err := keys.Derive(poolkeys.DeriveOpts{Scope: s.scope, Index: i})
		if err != nil {
			return nil, err
		}
		result.Derivations++

		event, ok := index.Lookup(derived.CommitmentKey())
		if !ok {
			misses++
			continue
		}

		misses = 0
		result.Deposits = append(result.Deposits, RecoveredDeposit{
			Index:         i,
			Nullifier:     derived.Nullifier,
			Secret:        derived.Secret,
			Precommitment: event.Precommitment,
			Value:         event.Value,
			Label:         event.Label,
			BlockNumber:   event.BlockNumber,
			TxHash:        event.TxHash,
		})
		result.NextIndex = i + 1
	}

	return result, nil
}
