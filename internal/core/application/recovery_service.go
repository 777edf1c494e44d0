package application

import (
	"context"
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/veilpay/veild/pkg/indexer"
	"github.com/veilpay/veild/pkg/poolkeys"
	"github.com/veilpay/veild/pkg/recovery"
)

// RecoveryService rebuilds every private deposit of a wallet out of its
// master key material and the public deposit feed. Nothing beyond the key
// material (or the signature it derives from) is needed: no stored notes, no
// local state.
type RecoveryService interface {
	// RecoverDeposits derives master keys from the wallet signature and
	// scans the chain feed with them.
	RecoverDeposits(ctx context.Context, signature []byte) (*recovery.Result, error)
	// RecoverDepositsWithKeys scans the chain feed with already derived
	// master key material.
	RecoverDepositsWithKeys(
		ctx context.Context, keys *poolkeys.MasterKeyMaterial,
	) (*recovery.Result, error)
}

// RecoveryOpts defines the parameters needed for creating a recovery service
// with the NewRecoveryService method.
type RecoveryOpts struct {
	IndexerSvc indexer.Service
	Scope      *big.Int
	// MaxConsecutiveMisses overrides the scanner default when positive.
	MaxConsecutiveMisses int
}

func (o RecoveryOpts) validate() error {
	if o.IndexerSvc == nil {
		return ErrNullIndexer
	}
	if o.Scope == nil {
		return poolkeys.ErrNullScope
	}
	return nil
}

type recoveryService struct {
	indexerSvc indexer.Service
	scanner    *recovery.Scanner
	scope      *big.Int
}

// NewRecoveryService returns a RecoveryService bound to a pool scope.
func NewRecoveryService(opts RecoveryOpts) (RecoveryService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	scanner, err := recovery.NewScanner(recovery.ScannerOpts{
		Scope:                opts.Scope,
		MaxConsecutiveMisses: opts.MaxConsecutiveMisses,
	})
	if err != nil {
		return nil, err
	}
	return &recoveryService{
		indexerSvc: opts.IndexerSvc,
		scanner:    scanner,
		scope:      new(big.Int).Set(opts.Scope),
	}, nil
}

func (s *recoveryService) RecoverDeposits(
	ctx context.Context, signature []byte,
) (*recovery.Result, error) {
	keys, err := poolkeys.MasterKeyMaterialFromSignature(signature)
	if err != nil {
		return nil, err
	}
	return s.RecoverDepositsWithKeys(ctx, keys)
}

func (s *recoveryService) RecoverDepositsWithKeys(
	ctx context.Context, keys *poolkeys.MasterKeyMaterial,
) (*recovery.Result, error) {
	// The feed is materialized up front: the scan itself never does I/O.
	events, err := s.indexerSvc.GetDepositEvents(ctx, s.scope)
	if err != nil {
		return nil, err
	}

	eventIndex, err := recovery.NewEventIndex(events)
	if err != nil {
		return nil, err
	}

	result, err := s.scanner.Scan(keys, eventIndex)
	if err != nil {
		return nil, err
	}

	log.Debugf(
		"recovery: matched %d of %d events in %d derivations",
		len(result.Deposits), eventIndex.Size(), result.Derivations,
	)
	return result, nil
}
