package recovery

import "math/big"

// DepositEvent is one deposit observed on-chain, as supplied by the external
// indexer. Events are a read-only snapshot for the duration of one scan.
type DepositEvent struct {
	Precommitment string
	Value         *big.Int
	Label         uint64
	BlockNumber   uint64
	TxHash        string
}

// RecoveredDeposit pairs a derived secret triple with the chain event it
// matched. It is only ever produced by a successful index probe, never
// fabricated.
type RecoveredDeposit struct {
	Index         uint64
	Nullifier     *big.Int
	Secret        *big.Int
	Precommitment string
	Value         *big.Int
	Label         uint64
	BlockNumber   uint64
	TxHash        string
}
