package inmemory

import (
	"context"

	"github.com/veilpay/veild/internal/core/domain"
	"github.com/veilpay/veild/internal/core/ports"
)

type RepoManager struct {
	portRepository    domain.PortRepository
	paymentRepository domain.SentPaymentRepository
	receiptRepository domain.PaymentReceiptRepository
}

// NewRepoManager returns a volatile implementation of ports.RepoManager,
// used by tests and by runs that do not need persistence.
func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		portRepository:    NewPortRepositoryImpl(),
		paymentRepository: NewSentPaymentRepositoryImpl(),
		receiptRepository: NewPaymentReceiptRepositoryImpl(),
	}
}

func (d *RepoManager) PortRepository() domain.PortRepository {
	return d.portRepository
}

func (d *RepoManager) SentPaymentRepository() domain.SentPaymentRepository {
	return d.paymentRepository
}

func (d *RepoManager) PaymentReceiptRepository() domain.PaymentReceiptRepository {
	return d.receiptRepository
}

func (d *RepoManager) Close() {}

// RunTransaction runs the handler straight away: every repository method of
// this implementation is atomic on its own.
func (d *RepoManager) RunTransaction(
	ctx context.Context,
	_ bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	return handler(ctx)
}
