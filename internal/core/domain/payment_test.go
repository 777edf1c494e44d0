package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veilpay/veild/internal/core/domain"
)

func newTestPayment(t *testing.T) *domain.SentPayment {
	t.Helper()
	payment, err := domain.NewSentPayment(domain.NewSentPaymentOpts{
		UserID:           "user-1",
		TxHash:           "0x1122",
		ChainID:          1,
		RecipientAddress: "0xrecipient",
		Amount:           "42.00",
		Currency:         "USDC",
		Source:           domain.SourceWallet,
	})
	require.NoError(t, err)
	return payment
}

func TestNewSentPaymentValidation(t *testing.T) {
	tests := []struct {
		name        string
		opts        domain.NewSentPaymentOpts
		expectedErr error
	}{
		{
			name:        "missing tx hash",
			opts:        domain.NewSentPaymentOpts{Amount: "1", Source: domain.SourceWallet},
			expectedErr: domain.ErrPaymentNullTxHash,
		},
		{
			name:        "unknown source",
			opts:        domain.NewSentPaymentOpts{TxHash: "0x1", Amount: "1", Source: "bank"},
			expectedErr: domain.ErrPaymentInvalidSource,
		},
		{
			name:        "bad amount",
			opts:        domain.NewSentPaymentOpts{TxHash: "0x1", Amount: "lots", Source: domain.SourcePool},
			expectedErr: domain.ErrPaymentInvalidAmount,
		},
		{
			name:        "negative amount",
			opts:        domain.NewSentPaymentOpts{TxHash: "0x1", Amount: "-3", Source: domain.SourcePool},
			expectedErr: domain.ErrPaymentInvalidAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, err := domain.NewSentPayment(tt.opts)
			assert.Nil(t, payment)
			assert.EqualError(t, err, tt.expectedErr.Error())
		})
	}
}

func TestSentPaymentKey(t *testing.T) {
	payment := newTestPayment(t)
	key := payment.Key()
	assert.Equal(t, payment.TxHash, key.TxHash)
	assert.Equal(t, payment.ChainID, key.ChainID)
}

func TestSentPaymentLifecycle(t *testing.T) {
	payment := newTestPayment(t)
	require.True(t, payment.IsPending())

	require.True(t, payment.Confirm(512))
	assert.Equal(t, domain.StatusConfirmed, payment.Status)
	assert.Equal(t, uint64(512), payment.BlockNumber)
	assert.False(t, payment.Confirm(999))
	assert.Equal(t, uint64(512), payment.BlockNumber)

	changed, failed := payment.RecordVerificationMiss(3)
	assert.False(t, changed)
	assert.False(t, failed)
	assert.Zero(t, payment.VerificationAttempts)
}

func TestSentPaymentFailsAtCeiling(t *testing.T) {
	payment := newTestPayment(t)

	var failed bool
	for !failed {
		_, failed = payment.RecordVerificationMiss(3)
	}
	assert.Equal(t, 4, payment.VerificationAttempts)
	assert.Equal(t, domain.StatusFailed, payment.Status)
	assert.Equal(t, domain.MaxAttemptsMessage, payment.VerificationError)
}

func TestNewPaymentReceipt(t *testing.T) {
	receipt, err := domain.NewPaymentReceipt(domain.NewPaymentReceiptOpts{
		UserID:      "user-1",
		PortID:      "port-1",
		TxHash:      "0xaa",
		ChainID:     10,
		Amount:      "5",
		Currency:    "ETH",
		PaymentType: domain.PaymentTypeStealthPay,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, receipt.Status)
	assert.Equal(t, domain.PaymentKey{TxHash: "0xaa", ChainID: 10}, receipt.Key())

	_, err = domain.NewPaymentReceipt(domain.NewPaymentReceiptOpts{
		TxHash: "0xaa", Amount: "5", PaymentType: "cash",
	})
	assert.EqualError(t, err, domain.ErrPaymentInvalidType.Error())
}

func TestPaymentReceiptLifecycle(t *testing.T) {
	receipt, err := domain.NewPaymentReceipt(domain.NewPaymentReceiptOpts{
		UserID:      "user-1",
		TxHash:      "0xbb",
		ChainID:     1,
		Amount:      "1",
		PaymentType: domain.PaymentTypePrivateSend,
	})
	require.NoError(t, err)

	changed, failed := receipt.RecordVerificationMiss(1)
	assert.True(t, changed)
	assert.False(t, failed)
	changed, failed = receipt.RecordVerificationMiss(1)
	assert.True(t, changed)
	assert.True(t, failed)
	assert.True(t, receipt.IsTerminal())
	assert.False(t, receipt.Confirm(100))
}
