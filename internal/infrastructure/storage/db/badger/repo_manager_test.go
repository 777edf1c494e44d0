package dbbadger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilpay/veild/internal/core/domain"
	"github.com/veilpay/veild/internal/core/ports"
)

func newTestRepoManager(t *testing.T) ports.RepoManager {
	t.Helper()
	repoManager, err := NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)
	return repoManager
}

func newTestPort(t *testing.T, name string) *domain.Port {
	t.Helper()
	port, err := domain.NewPort(domain.NewPortOpts{
		UserID:  "user-1",
		Name:    name,
		Type:    domain.PortTypePermanent,
		ChainID: 1,
	})
	require.NoError(t, err)
	return port
}

func newTestPayment(t *testing.T, txHash string) *domain.SentPayment {
	t.Helper()
	payment, err := domain.NewSentPayment(domain.NewSentPaymentOpts{
		UserID:           "user-1",
		TxHash:           txHash,
		ChainID:          1,
		RecipientAddress: "0xabcdef",
		Amount:           "10",
		Currency:         "USDC",
		Source:           domain.SourceWallet,
	})
	require.NoError(t, err)
	return payment
}

func TestAddGetUpdatePort(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	portRepo := repoManager.PortRepository()

	port := newTestPort(t, "tips")
	require.NoError(t, portRepo.AddPort(ctx, port))

	stored, err := portRepo.GetPort(ctx, port.ID)
	require.NoError(t, err)
	assert.Equal(t, port.ID, stored.ID)
	assert.Equal(t, domain.StatusPending, stored.Status)

	err = portRepo.UpdatePort(ctx, port.ID,
		func(p *domain.Port) (*domain.Port, error) {
			p.Confirm("0xff00", 42)
			return p, nil
		},
	)
	require.NoError(t, err)

	stored, err = portRepo.GetPort(ctx, port.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, uint64(42), stored.BlockNumber)

	_, err = portRepo.GetPort(ctx, "unknown")
	require.EqualError(t, err, domain.ErrPortNotFound.Error())
}

func TestGetPendingPortsOldestFirst(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	portRepo := repoManager.PortRepository()

	older := newTestPort(t, "older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newTestPort(t, "newer")
	confirmed := newTestPort(t, "confirmed")
	confirmed.Confirm("0xff00", 1)

	require.NoError(t, portRepo.AddPort(ctx, newer))
	require.NoError(t, portRepo.AddPort(ctx, older))
	require.NoError(t, portRepo.AddPort(ctx, confirmed))

	pending, err := portRepo.GetPendingPorts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)

	pending, err = portRepo.GetPendingPorts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, older.ID, pending[0].ID)
}

func TestPaymentUniqueKey(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)
	paymentRepo := repoManager.SentPaymentRepository()

	payment := newTestPayment(t, "0xaa11")
	require.NoError(t, paymentRepo.AddPayment(ctx, payment))

	duplicate := newTestPayment(t, "0xaa11")
	err := paymentRepo.AddPayment(ctx, duplicate)
	require.EqualError(t, err, domain.ErrPaymentAlreadyExists.Error())

	// Same hash on another chain is a different payment.
	otherChain := newTestPayment(t, "0xaa11")
	otherChain.ChainID = 137
	require.NoError(t, paymentRepo.AddPayment(ctx, otherChain))

	_, err = paymentRepo.GetPayment(ctx, domain.PaymentKey{TxHash: "0xbb22", ChainID: 1})
	require.EqualError(t, err, domain.ErrPaymentNotFound.Error())
}

func TestRunTransaction(t *testing.T) {
	ctx := context.Background()
	repoManager := newTestRepoManager(t)

	port := newTestPort(t, "tips")
	payment := newTestPayment(t, "0xcc33")

	_, err := repoManager.RunTransaction(ctx, false,
		func(ctx context.Context) (interface{}, error) {
			if err := repoManager.PortRepository().AddPort(ctx, port); err != nil {
				return nil, err
			}
			if err := repoManager.SentPaymentRepository().AddPayment(ctx, payment); err != nil {
				return nil, err
			}
			return nil, nil
		},
	)
	require.NoError(t, err)

	_, err = repoManager.PortRepository().GetPort(ctx, port.ID)
	require.NoError(t, err)
	_, err = repoManager.SentPaymentRepository().GetPayment(ctx, payment.Key())
	require.NoError(t, err)

	// A failing handler rolls the whole transaction back.
	other := newTestPort(t, "rolled-back")
	_, err = repoManager.RunTransaction(ctx, false,
		func(ctx context.Context) (interface{}, error) {
			if err := repoManager.PortRepository().AddPort(ctx, other); err != nil {
				return nil, err
			}
			return nil, assert.AnError
		},
	)
	require.Error(t, err)

	_, err = repoManager.PortRepository().GetPort(ctx, other.ID)
	require.EqualError(t, err, domain.ErrPortNotFound.Error())
}
