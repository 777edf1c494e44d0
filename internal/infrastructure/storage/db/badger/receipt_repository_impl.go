package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/veilpay/veild/internal/core/domain"
)

type paymentReceiptRepositoryImpl struct {
	store *badgerhold.Store
}

// NewPaymentReceiptRepositoryImpl initialize a badger implementation of the
// domain.PaymentReceiptRepository.
func NewPaymentReceiptRepositoryImpl(store *badgerhold.Store) domain.PaymentReceiptRepository {
	return paymentReceiptRepositoryImpl{store}
}

func (r paymentReceiptRepositoryImpl) AddReceipt(
	ctx context.Context, receipt *domain.PaymentReceipt,
) error {
	key := receipt.Key().String()
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxInsert(tx, key, receipt)
	} else {
		err = r.store.Insert(key, receipt)
	}
	if err == badgerhold.ErrKeyExists {
		return domain.ErrPaymentAlreadyExists
	}
	return err
}

func (r paymentReceiptRepositoryImpl) GetReceipt(
	ctx context.Context, key domain.PaymentKey,
) (*domain.PaymentReceipt, error) {
	var receipt domain.PaymentReceipt
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxGet(tx, key.String(), &receipt)
	} else {
		err = r.store.Get(key.String(), &receipt)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

func (r paymentReceiptRepositoryImpl) GetPendingReceipts(
	ctx context.Context, limit int,
) ([]domain.PaymentReceipt, error) {
	query := badgerhold.Where("Status").Eq(domain.StatusPending).
		SortBy("CreatedAt").Limit(limit)
	return r.findReceipts(ctx, query)
}

func (r paymentReceiptRepositoryImpl) UpdateReceipt(
	ctx context.Context, key domain.PaymentKey,
	updateFn func(receipt *domain.PaymentReceipt) (*domain.PaymentReceipt, error),
) error {
	receipt, err := r.GetReceipt(ctx, key)
	if err != nil {
		return err
	}

	updated, err := updateFn(receipt)
	if err != nil {
		return err
	}

	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxUpdate(tx, key.String(), updated)
	}
	return r.store.Update(key.String(), updated)
}

func (r paymentReceiptRepositoryImpl) ListReceiptsForPort(
	ctx context.Context, portID string, page domain.Page,
) ([]domain.PaymentReceipt, error) {
	query := badgerhold.Where("PortID").Eq(portID).SortBy("CreatedAt")
	if page.Size > 0 {
		from := page.Number*page.Size - page.Size
		query = query.Skip(from).Limit(page.Size)
	}
	return r.findReceipts(ctx, query)
}

func (r paymentReceiptRepositoryImpl) findReceipts(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.PaymentReceipt, error) {
	var list []domain.PaymentReceipt
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
