package poolkeys

import (
	"encoding/hex"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// Derived is the secret triple bound to one (wallet, scope, index). The
// precommitment is what gets published on-chain at deposit time; nullifier
// and secret stay with the wallet and are only revealed at withdrawal.
type Derived struct {
	Index         uint64
	Nullifier     *big.Int
	Secret        *big.Int
	Precommitment *big.Int
}

// DeriveOpts is the struct given to the Derive method.
type DeriveOpts struct {
	Scope *big.Int
	Index uint64
}

func (o DeriveOpts) validate() error {
	if o.Scope == nil {
		return ErrNullScope
	}
	if !inField(o.Scope) {
		return ErrOutOfFieldScalar
	}
	return nil
}

// Derive maps the master key material and a (scope, index) pair to its
// deterministic secret triple. Two calls with identical inputs yield
// bit-identical outputs; recovery depends on this and nothing else.
func (m *MasterKeyMaterial) Derive(opts DeriveOpts) (*Derived, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	index := new(big.Int).SetUint64(opts.Index)

	nullifier, err := poseidon.Hash([]*big.Int{m.masterNullifier, opts.Scope, index})
	if err != nil {
		return nil, err
	}
	secret, err := poseidon.Hash([]*big.Int{m.masterSecret, opts.Scope, index})
	if err != nil {
		return nil, err
	}
	precommitment, err := poseidon.Hash([]*big.Int{nullifier, secret})
	if err != nil {
		return nil, err
	}

	return &Derived{
		Index:         opts.Index,
		Nullifier:     nullifier,
		Secret:        secret,
		Precommitment: precommitment,
	}, nil
}

// CommitmentKey returns the precommitment as a fixed-width hex string, the
// canonical form used to match derived secrets against chain events.
func (d *Derived) CommitmentKey() string {
	return CommitmentKey(d.Precommitment)
}

// CommitmentKey encodes a precommitment scalar as 32 big-endian bytes in hex.
func CommitmentKey(precommitment *big.Int) string {
	buf := make([]byte, 32)
	precommitment.FillBytes(buf)
	return hex.EncodeToString(buf)
}
