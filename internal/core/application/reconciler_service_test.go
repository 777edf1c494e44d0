package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veilpay/veild/internal/core/application"
	"github.com/veilpay/veild/internal/core/domain"
	"github.com/veilpay/veild/internal/core/ports"
	"github.com/veilpay/veild/internal/infrastructure/storage/db/inmemory"
	"github.com/veilpay/veild/pkg/indexer"
)

var errIndexerDown = assert.AnError

func newTestPort(t *testing.T, linkID string) *domain.Port {
	t.Helper()
	port, err := domain.NewPort(domain.NewPortOpts{
		UserID:        "user-1",
		Name:          "coffee tips",
		Type:          domain.PortTypePermanent,
		ChainID:       1,
		IndexerLinkID: linkID,
	})
	require.NoError(t, err)
	return port
}

func newTestSentPayment(t *testing.T, txHash string) *domain.SentPayment {
	t.Helper()
	payment, err := domain.NewSentPayment(domain.NewSentPaymentOpts{
		UserID:           "user-1",
		TxHash:           txHash,
		ChainID:          1,
		RecipientAddress: "0xabcdef",
		Amount:           "42",
		Currency:         "USDC",
		Source:           domain.SourceWallet,
	})
	require.NoError(t, err)
	return payment
}

func newTestReceipt(t *testing.T, txHash, portID, amount string) *domain.PaymentReceipt {
	t.Helper()
	receipt, err := domain.NewPaymentReceipt(domain.NewPaymentReceiptOpts{
		UserID:      "user-1",
		PortID:      portID,
		TxHash:      txHash,
		ChainID:     1,
		Amount:      amount,
		Currency:    "USDC",
		PaymentType: domain.PaymentTypeStealthPay,
	})
	require.NoError(t, err)
	return receipt
}

func newReconciler(
	t *testing.T, repoManager ports.RepoManager,
	indexerSvc indexer.Service, pubsub application.Publisher, maxAttempts int,
) application.ReconcilerService {
	t.Helper()
	svc, err := application.NewReconcilerService(application.ReconcilerOpts{
		RepoManager:             repoManager,
		IndexerSvc:              indexerSvc,
		PubSub:                  pubsub,
		MaxVerificationAttempts: maxAttempts,
	})
	require.NoError(t, err)
	return svc
}

func TestReconcileConfirmsPendingPort(t *testing.T) {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	port := newTestPort(t, "link-1")
	require.NoError(t, repoManager.PortRepository().AddPort(ctx, port))

	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetPortRegistration", mock.Anything, "link-1").
		Return(&indexer.Confirmation{TxHash: "0xff00", BlockNumber: 120}, nil)
	pubsub := newMockPublisher()

	svc := newReconciler(t, repoManager, indexerSvc, pubsub, 0)

	summary, err := svc.ReconcileBatch(ctx, application.KindPortRegistration, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Confirmed)

	stored, err := repoManager.PortRepository().GetPort(ctx, port.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, "0xff00", stored.TxHash)
	assert.Equal(t, uint64(120), stored.BlockNumber)

	require.Len(t, pubsub.published(application.TopicPortConfirmed), 1)
	assert.Contains(t, pubsub.published(application.TopicPortConfirmed)[0], port.ID)
}

func TestReconcileFailsPortAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	port := newTestPort(t, "link-1")
	require.NoError(t, repoManager.PortRepository().AddPort(ctx, port))

	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetPortRegistration", mock.Anything, "link-1").
		Return(nil, indexer.ErrNotFound)
	pubsub := newMockPublisher()

	maxAttempts := 2
	svc := newReconciler(t, repoManager, indexerSvc, pubsub, maxAttempts)

	// The record survives as many misses as the ceiling allows.
	for i := 0; i < maxAttempts; i++ {
		summary, err := svc.ReconcileBatch(ctx, application.KindPortRegistration, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Retried)

		stored, err := repoManager.PortRepository().GetPort(ctx, port.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, stored.Status)
		assert.Equal(t, i+1, stored.VerificationAttempts)
	}

	// The miss beyond the ceiling fails it for good.
	summary, err := svc.ReconcileBatch(ctx, application.KindPortRegistration, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	stored, err := repoManager.PortRepository().GetPort(ctx, port.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, domain.MaxAttemptsMessage, stored.VerificationError)
	assert.Len(t, pubsub.published(application.TopicPortFailed), 1)

	// Terminal records leave the pending queue entirely.
	summary, err = svc.ReconcileBatch(ctx, application.KindPortRegistration, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
}

func TestReconcileTransientErrorConsumesNoAttempt(t *testing.T) {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	port := newTestPort(t, "link-1")
	require.NoError(t, repoManager.PortRepository().AddPort(ctx, port))

	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetPortRegistration", mock.Anything, "link-1").
		Return(nil, errIndexerDown)

	svc := newReconciler(t, repoManager, indexerSvc, nil, 0)

	summary, err := svc.ReconcileBatch(ctx, application.KindPortRegistration, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Retried)
	assert.Zero(t, summary.Failed)

	stored, err := repoManager.PortRepository().GetPort(ctx, port.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Zero(t, stored.VerificationAttempts)
}

func TestReconcileConfirmsSentPayment(t *testing.T) {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	payment := newTestSentPayment(t, "0xaa11")
	require.NoError(t, repoManager.SentPaymentRepository().AddPayment(ctx, payment))

	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetTransactionStatus", mock.Anything, "0xaa11", uint64(1)).
		Return(&indexer.Confirmation{TxHash: "0xaa11", BlockNumber: 77}, nil)
	pubsub := newMockPublisher()

	svc := newReconciler(t, repoManager, indexerSvc, pubsub, 0)

	summary, err := svc.ReconcileBatch(ctx, application.KindSentPayment, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Confirmed)

	stored, err := repoManager.SentPaymentRepository().GetPayment(ctx, payment.Key())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, uint64(77), stored.BlockNumber)
	assert.Len(t, pubsub.published(application.TopicPaymentConfirmed), 1)
}

func TestReconcileConfirmedReceiptUpdatesPortTotals(t *testing.T) {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	port := newTestPort(t, "link-1")
	require.NoError(t, repoManager.PortRepository().AddPort(ctx, port))
	receipt := newTestReceipt(t, "0xbb22", port.ID, "12.5")
	require.NoError(t, repoManager.PaymentReceiptRepository().AddReceipt(ctx, receipt))

	indexerSvc := &mockIndexer{}
	indexerSvc.
		On("GetTransactionStatus", mock.Anything, "0xbb22", uint64(1)).
		Return(&indexer.Confirmation{TxHash: "0xbb22", BlockNumber: 88}, nil)

	svc := newReconciler(t, repoManager, indexerSvc, nil, 0)

	summary, err := svc.ReconcileBatch(ctx, application.KindPaymentReceipt, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Confirmed)

	storedReceipt, err := repoManager.PaymentReceiptRepository().GetReceipt(ctx, receipt.Key())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, storedReceipt.Status)

	storedPort, err := repoManager.PortRepository().GetPort(ctx, port.ID)
	require.NoError(t, err)
	assert.True(t, storedPort.TotalReceived.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 1, storedPort.PaymentCount)

	// Re-running the cycle finds nothing pending: the port totals are
	// accounted exactly once.
	summary, err = svc.ReconcileBatch(ctx, application.KindPaymentReceipt, 10)
	require.NoError(t, err)
	assert.Zero(t, summary.Processed)
}

func TestReconcileRejectsOverlappingCycle(t *testing.T) {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	payment := newTestSentPayment(t, "0xcc33")
	require.NoError(t, repoManager.SentPaymentRepository().AddPayment(ctx, payment))

	indexerSvc := newBlockingIndexer()
	svc := newReconciler(t, repoManager, indexerSvc, nil, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.ReconcileBatch(ctx, application.KindSentPayment, 10)
	}()

	select {
	case <-indexerSvc.entered:
	case <-time.After(time.Second):
		t.Fatal("first cycle never reached the indexer")
	}

	// Same kind while the first cycle is in flight.
	_, err := svc.ReconcileBatch(ctx, application.KindSentPayment, 10)
	require.EqualError(t, err, application.ErrReconcileInProgress.Error())

	// A different kind is reconciled independently.
	summary, err := svc.ReconcileBatch(ctx, application.KindPortRegistration, 10)
	require.NoError(t, err)
	assert.Zero(t, summary.Processed)

	close(indexerSvc.release)
	<-done

	// Once released, the kind accepts a new cycle.
	_, err = svc.ReconcileBatch(ctx, application.KindSentPayment, 10)
	require.NoError(t, err)
}

func TestReconcileInvalidArgs(t *testing.T) {
	ctx := context.Background()
	svc := newReconciler(t, inmemory.NewRepoManager(), &mockIndexer{}, nil, 0)

	_, err := svc.ReconcileBatch(ctx, application.KindPortRegistration, 0)
	require.EqualError(t, err, application.ErrInvalidBatchSize.Error())

	_, err = svc.ReconcileBatch(ctx, application.RecordKind("bogus"), 10)
	require.EqualError(t, err, application.ErrUnknownRecordKind.Error())
}

func TestNewReconcilerServiceInvalidOpts(t *testing.T) {
	_, err := application.NewReconcilerService(application.ReconcilerOpts{
		IndexerSvc: &mockIndexer{},
	})
	require.EqualError(t, err, application.ErrNullRepoManager.Error())

	_, err = application.NewReconcilerService(application.ReconcilerOpts{
		RepoManager: inmemory.NewRepoManager(),
	})
	require.EqualError(t, err, application.ErrNullIndexer.Error())
}
