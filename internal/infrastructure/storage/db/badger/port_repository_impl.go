package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/veilpay/veild/internal/core/domain"
)

type portRepositoryImpl struct {
	store *badgerhold.Store
}

// NewPortRepositoryImpl initialize a badger implementation of the
// domain.PortRepository.
func NewPortRepositoryImpl(store *badgerhold.Store) domain.PortRepository {
	return portRepositoryImpl{store}
}

func (r portRepositoryImpl) AddPort(ctx context.Context, port *domain.Port) error {
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxInsert(tx, port.ID, port)
	} else {
		err = r.store.Insert(port.ID, port)
	}
	if err != nil && err != badgerhold.ErrKeyExists {
		return err
	}
	return nil
}

func (r portRepositoryImpl) GetPort(ctx context.Context, id string) (*domain.Port, error) {
	var port domain.Port
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxGet(tx, id, &port)
	} else {
		err = r.store.Get(id, &port)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrPortNotFound
		}
		return nil, err
	}
	return &port, nil
}

func (r portRepositoryImpl) GetPendingPorts(
	ctx context.Context, limit int,
) ([]domain.Port, error) {
	query := badgerhold.Where("Status").Eq(domain.StatusPending).
		SortBy("CreatedAt").Limit(limit)
	return r.findPorts(ctx, query)
}

func (r portRepositoryImpl) UpdatePort(
	ctx context.Context, id string,
	updateFn func(port *domain.Port) (*domain.Port, error),
) error {
	port, err := r.GetPort(ctx, id)
	if err != nil {
		return err
	}

	updated, err := updateFn(port)
	if err != nil {
		return err
	}

	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxUpdate(tx, id, updated)
	}
	return r.store.Update(id, updated)
}

func (r portRepositoryImpl) ListPortsForUser(
	ctx context.Context, userID string, page domain.Page,
) ([]domain.Port, error) {
	query := badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt")
	if page.Size > 0 {
		from := page.Number*page.Size - page.Size
		query = query.Skip(from).Limit(page.Size)
	}
	return r.findPorts(ctx, query)
}

func (r portRepositoryImpl) findPorts(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Port, error) {
	var list []domain.Port
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
