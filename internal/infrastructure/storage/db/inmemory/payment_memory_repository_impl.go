package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/veilpay/veild/internal/core/domain"
)

type sentPaymentRepositoryImpl struct {
	payments map[domain.PaymentKey]*domain.SentPayment
	lock     *sync.RWMutex
}

// NewSentPaymentRepositoryImpl returns a volatile implementation of
// domain.SentPaymentRepository.
func NewSentPaymentRepositoryImpl() domain.SentPaymentRepository {
	return &sentPaymentRepositoryImpl{
		payments: map[domain.PaymentKey]*domain.SentPayment{},
		lock:     &sync.RWMutex{},
	}
}

func (r *sentPaymentRepositoryImpl) AddPayment(
	_ context.Context, payment *domain.SentPayment,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.payments[payment.Key()]; ok {
		return domain.ErrPaymentAlreadyExists
	}
	clone := *payment
	r.payments[payment.Key()] = &clone
	return nil
}

func (r *sentPaymentRepositoryImpl) GetPayment(
	_ context.Context, key domain.PaymentKey,
) (*domain.SentPayment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	payment, ok := r.payments[key]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

func (r *sentPaymentRepositoryImpl) GetPendingPayments(
	_ context.Context, limit int,
) ([]domain.SentPayment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pending := make([]domain.SentPayment, 0)
	for _, payment := range r.payments {
		if payment.IsPending() {
			pending = append(pending, *payment)
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

func (r *sentPaymentRepositoryImpl) UpdatePayment(
	_ context.Context, key domain.PaymentKey,
	updateFn func(payment *domain.SentPayment) (*domain.SentPayment, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, ok := r.payments[key]
	if !ok {
		return domain.ErrPaymentNotFound
	}

	clone := *current
	updated, err := updateFn(&clone)
	if err != nil {
		return err
	}
	r.payments[key] = updated
	return nil
}

func (r *sentPaymentRepositoryImpl) ListPaymentsForUser(
	_ context.Context, userID string, page domain.Page,
) ([]domain.SentPayment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]domain.SentPayment, 0)
	for _, payment := range r.payments {
		if payment.UserID == userID {
			list = append(list, *payment)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return paginatePayments(list, page), nil
}

func paginatePayments(list []domain.SentPayment, page domain.Page) []domain.SentPayment {
	if page.Size <= 0 {
		return list
	}
	from := (page.Number - 1) * page.Size
	if from < 0 {
		from = 0
	}
	if from >= len(list) {
		return []domain.SentPayment{}
	}
	to := from + page.Size
	if to > len(list) {
		to = len(list)
	}
	return list[from:to]
}
