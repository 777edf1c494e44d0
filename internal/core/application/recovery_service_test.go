package application_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veilpay/veild/internal/core/application"
	"github.com/veilpay/veild/pkg/poolkeys"
	"github.com/veilpay/veild/pkg/recovery"
)

var (
	recoveryScope = big.NewInt(31337)
	walletSig     = append(
		[]byte("veil test signature preimage used as a stand-in for a wallet "),
		[]byte("signature of at least sixty four bytes in total length....")...,
	)
)

func depositEventAt(t *testing.T, index uint64) recovery.DepositEvent {
	t.Helper()
	keys, err := poolkeys.MasterKeyMaterialFromSignature(walletSig)
	require.NoError(t, err)
	derived, err := keys.Derive(poolkeys.DeriveOpts{Scope: recoveryScope, Index: index})
	require.NoError(t, err)
	return recovery.DepositEvent{
		Precommitment: derived.CommitmentKey(),
		Value:         big.NewInt(int64(500 + index)),
		Label:         index,
		BlockNumber:   10 + index,
		TxHash:        derived.CommitmentKey()[:8],
	}
}

func TestRecoverDeposits(t *testing.T) {
	events := []recovery.DepositEvent{
		depositEventAt(t, 1),
		depositEventAt(t, 0),
	}
	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetDepositEvents", mock.Anything, recoveryScope).
		Return(events, nil)

	svc, err := application.NewRecoveryService(application.RecoveryOpts{
		IndexerSvc: indexerSvc,
		Scope:      recoveryScope,
	})
	require.NoError(t, err)

	result, err := svc.RecoverDeposits(context.Background(), walletSig)
	require.NoError(t, err)
	require.Len(t, result.Deposits, 2)
	assert.Equal(t, uint64(0), result.Deposits[0].Index)
	assert.Equal(t, uint64(1), result.Deposits[1].Index)
	assert.Equal(t, uint64(2), result.NextIndex)
	indexerSvc.AssertExpectations(t)
}

func TestRecoverDepositsWithKeys(t *testing.T) {
	keys, err := poolkeys.MasterKeyMaterialFromSignature(walletSig)
	require.NoError(t, err)

	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetDepositEvents", mock.Anything, recoveryScope).
		Return([]recovery.DepositEvent{depositEventAt(t, 0)}, nil)

	svc, err := application.NewRecoveryService(application.RecoveryOpts{
		IndexerSvc: indexerSvc,
		Scope:      recoveryScope,
	})
	require.NoError(t, err)

	result, err := svc.RecoverDepositsWithKeys(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, result.Deposits, 1)
	assert.Equal(t, uint64(1), result.NextIndex)
}

func TestRecoverDepositsIndexerError(t *testing.T) {
	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetDepositEvents", mock.Anything, recoveryScope).
		Return(nil, assert.AnError)

	svc, err := application.NewRecoveryService(application.RecoveryOpts{
		IndexerSvc: indexerSvc,
		Scope:      recoveryScope,
	})
	require.NoError(t, err)

	_, err = svc.RecoverDeposits(context.Background(), walletSig)
	require.Error(t, err)
}

func TestRecoverDepositsInvalidSignature(t *testing.T) {
	svc, err := application.NewRecoveryService(application.RecoveryOpts{
		IndexerSvc: &mockIndexer{},
		Scope:      recoveryScope,
	})
	require.NoError(t, err)

	_, err = svc.RecoverDeposits(context.Background(), []byte("too short"))
	require.EqualError(t, err, poolkeys.ErrInvalidSignature.Error())
}

func TestNewRecoveryServiceInvalidOpts(t *testing.T) {
	_, err := application.NewRecoveryService(application.RecoveryOpts{
		Scope: recoveryScope,
	})
	require.EqualError(t, err, application.ErrNullIndexer.Error())

	_, err = application.NewRecoveryService(application.RecoveryOpts{
		IndexerSvc: &mockIndexer{},
	})
	require.EqualError(t, err, poolkeys.ErrNullScope.Error())
}
