package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/veilpay/veild/internal/core/domain"
)

type paymentReceiptRepositoryImpl struct {
	receipts map[domain.PaymentKey]*domain.PaymentReceipt
	lock     *sync.RWMutex
}

// NewPaymentReceiptRepositoryImpl returns a volatile implementation of
// domain.PaymentReceiptRepository.
func NewPaymentReceiptRepositoryImpl() domain.PaymentReceiptRepository {
	return &paymentReceiptRepositoryImpl{
		receipts: map[domain.PaymentKey]*domain.PaymentReceipt{},
		lock:     &sync.RWMutex{},
	}
}

func (r *paymentReceiptRepositoryImpl) AddReceipt(
	_ context.Context, receipt *domain.PaymentReceipt,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.receipts[receipt.Key()]; ok {
		return domain.ErrPaymentAlreadyExists
	}
	clone := *receipt
	r.receipts[receipt.Key()] = &clone
	return nil
}

func (r *paymentReceiptRepositoryImpl) GetReceipt(
	_ context.Context, key domain.PaymentKey,
) (*domain.PaymentReceipt, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	receipt, ok := r.receipts[key]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	clone := *receipt
	return &clone, nil
}

func (r *paymentReceiptRepositoryImpl) GetPendingReceipts(
	_ context.Context, limit int,
) ([]domain.PaymentReceipt, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pending := make([]domain.PaymentReceipt, 0)
	for _, receipt := range r.receipts {
		if receipt.IsPending() {
			pending = append(pending, *receipt)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *paymentReceiptRepositoryImpl) UpdateReceipt(
	_ context.Context, key domain.PaymentKey,
	updateFn func(receipt *domain.PaymentReceipt) (*domain.PaymentReceipt, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, ok := r.receipts[key]
	if !ok {
		return domain.ErrPaymentNotFound
	}

	clone := *current
	updated, err := updateFn(&clone)
	if err != nil {
		return err
	}
	r.receipts[key] = updated
	return nil
}

func (r *paymentReceiptRepositoryImpl) ListReceiptsForPort(
	_ context.Context, portID string, page domain.Page,
) ([]domain.PaymentReceipt, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]domain.PaymentReceipt, 0)
	for _, receipt := range r.receipts {
		if receipt.PortID == portID {
			list = append(list, *receipt)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return paginateReceipts(list, page), nil
}

func paginateReceipts(list []domain.PaymentReceipt, page domain.Page) []domain.PaymentReceipt {
	if page.Size <= 0 {
		return list
	}
	from := (page.Number - 1) * page.Size
	if from < 0 {
		from = 0
	}
	if from >= len(list) {
		return []domain.PaymentReceipt{}
	}
	to := from + page.Size
	if to > len(list) {
		to = len(list)
	}
	return list[from:to]
}
