package ports

import (
	"context"

	"github.com/veilpay/veild/internal/core/domain"
)

// RepoManager gives access to all the repositories of the daemon and to the
// transactional boundary they share.
type RepoManager interface {
	PortRepository() domain.PortRepository
	SentPaymentRepository() domain.SentPaymentRepository
	PaymentReceiptRepository() domain.PaymentReceiptRepository

	Close()

	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)
}

// Transaction interface defines the method to commit or discard a database
// transaction.
type Transaction interface {
	Commit() error
	Discard()
}
