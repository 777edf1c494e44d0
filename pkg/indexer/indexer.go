package indexer

import (
	"context"
	"errors"
	"math/big"

	"github.com/veilpay/veild/pkg/recovery"
)

var (
	// ErrNotFound is returned by lookups when the indexer holds no
	// confirmation evidence for the requested record yet. It is the one
	// indexer outcome that consumes a verification attempt; anything else
	// is transient.
	ErrNotFound = errors.New("record not found on indexer")
	// ErrMalformedResponse is thrown when the indexer answers with a body
	// that cannot be decoded.
	ErrMalformedResponse = errors.New("malformed indexer response")
)

// Confirmation is the on-chain evidence the indexer returns for a confirmed
// record.
type Confirmation struct {
	TxHash      string
	BlockNumber uint64
}

// Service is the interface for the external chain indexer the daemon
// reconciles against. The daemon never reads the chain directly.
type Service interface {
	// GetDepositEvents returns the full deposit event feed for a pool scope.
	GetDepositEvents(ctx context.Context, scope *big.Int) ([]recovery.DepositEvent, error)
	// GetPortRegistration looks up a port registration by its indexer link
	// id, returning ErrNotFound if it has not been indexed yet.
	GetPortRegistration(ctx context.Context, linkID string) (*Confirmation, error)
	// GetTransactionStatus looks up a transaction by (txHash, chainId),
	// returning ErrNotFound if it has not been indexed yet.
	GetTransactionStatus(ctx context.Context, txHash string, chainID uint64) (*Confirmation, error)
}
