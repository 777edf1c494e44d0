package domain

import "context"

// SentPaymentRepository is the abstraction for any kind of database intended
// to persist SentPayments.
type SentPaymentRepository interface {
	// AddPayment adds the provided payment to the repository, enforcing the
	// unique (txHash, chainId) constraint with ErrPaymentAlreadyExists.
	AddPayment(ctx context.Context, payment *SentPayment) error
	// GetPayment returns the payment with the given key, or ErrPaymentNotFound.
	GetPayment(ctx context.Context, key PaymentKey) (*SentPayment, error)
	// GetPendingPayments returns up to limit pending payments, oldest first.
	GetPendingPayments(ctx context.Context, limit int) ([]SentPayment, error)
	// UpdatePayment loads the payment with the given key, applies updateFn
	// and persists the result atomically.
	UpdatePayment(
		ctx context.Context, key PaymentKey,
		updateFn func(payment *SentPayment) (*SentPayment, error),
	) error
	// ListPaymentsForUser returns the payments sent by the given user.
	ListPaymentsForUser(ctx context.Context, userID string, page Page) ([]SentPayment, error)
}

// PaymentReceiptRepository is the abstraction for any kind of database
// intended to persist PaymentReceipts.
type PaymentReceiptRepository interface {
	// AddReceipt adds the provided receipt to the repository, enforcing the
	// unique (txHash, chainId) constraint with ErrPaymentAlreadyExists.
	AddReceipt(ctx context.Context, receipt *PaymentReceipt) error
	// GetReceipt returns the receipt with the given key, or ErrPaymentNotFound.
	GetReceipt(ctx context.Context, key PaymentKey) (*PaymentReceipt, error)
	// GetPendingReceipts returns up to limit pending receipts, oldest first.
	GetPendingReceipts(ctx context.Context, limit int) ([]PaymentReceipt, error)
	// UpdateReceipt loads the receipt with the given key, applies updateFn
	// and persists the result atomically.
	UpdateReceipt(
		ctx context.Context, key PaymentKey,
		updateFn func(receipt *PaymentReceipt) (*PaymentReceipt, error),
	) error
	// ListReceiptsForPort returns the receipts observed for the given port.
	ListReceiptsForPort(ctx context.Context, portID string, page Page) ([]PaymentReceipt, error)
}
