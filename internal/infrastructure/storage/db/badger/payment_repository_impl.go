package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/veilpay/veild/internal/core/domain"
)

type sentPaymentRepositoryImpl struct {
	store *badgerhold.Store
}

// NewSentPaymentRepositoryImpl initialize a badger implementation of the
// domain.SentPaymentRepository.
func NewSentPaymentRepositoryImpl(store *badgerhold.Store) domain.SentPaymentRepository {
	return sentPaymentRepositoryImpl{store}
}

func (r sentPaymentRepositoryImpl) AddPayment(
	ctx context.Context, payment *domain.SentPayment,
) error {
	key := payment.Key().String()
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxInsert(tx, key, payment)
	} else {
		err = r.store.Insert(key, payment)
	}
	if err == badgerhold.ErrKeyExists {
		return domain.ErrPaymentAlreadyExists
	}
	return err
}

func (r sentPaymentRepositoryImpl) GetPayment(
	ctx context.Context, key domain.PaymentKey,
) (*domain.SentPayment, error) {
	var payment domain.SentPayment
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxGet(tx, key.String(), &payment)
	} else {
		err = r.store.Get(key.String(), &payment)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r sentPaymentRepositoryImpl) GetPendingPayments(
	ctx context.Context, limit int,
) ([]domain.SentPayment, error) {
	query := badgerhold.Where("Status").Eq(domain.StatusPending).
		SortBy("CreatedAt").Limit(limit)
	return r.findPayments(ctx, query)
}

func (r sentPaymentRepositoryImpl) UpdatePayment(
	ctx context.Context, key domain.PaymentKey,
	updateFn func(payment *domain.SentPayment) (*domain.SentPayment, error),
) error {
	payment, err := r.GetPayment(ctx, key)
	if err != nil {
		return err
	}

	updated, err := updateFn(payment)
	if err != nil {
		return err
	}

	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxUpdate(tx, key.String(), updated)
	}
	return r.store.Update(key.String(), updated)
}

func (r sentPaymentRepositoryImpl) ListPaymentsForUser(
	ctx context.Context, userID string, page domain.Page,
) ([]domain.SentPayment, error) {
	query := badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt")
	if page.Size > 0 {
		from := page.Number*page.Size - page.Size
		query = query.Skip(from).Limit(page.Size)
	}
	return r.findPayments(ctx, query)
}

func (r sentPaymentRepositoryImpl) findPayments(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.SentPayment, error) {
	var list []domain.SentPayment
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxFind(tx, &list, query)
	} else {
		err = r.store.Find(&list, query)
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}
