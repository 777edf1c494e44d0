package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/veilpay/veild/internal/core/domain"
)

type portRepositoryImpl struct {
	ports map[string]*domain.Port
	lock  *sync.RWMutex
}

// NewPortRepositoryImpl returns a volatile implementation of
// domain.PortRepository.
func NewPortRepositoryImpl() domain.PortRepository {
	return &portRepositoryImpl{
		ports: map[string]*domain.Port{},
		lock:  &sync.RWMutex{},
	}
}

func (r *portRepositoryImpl) AddPort(_ context.Context, port *domain.Port) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	clone := *port
	r.ports[port.ID] = &clone
	return nil
}

func (r *portRepositoryImpl) GetPort(_ context.Context, id string) (*domain.Port, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	port, ok := r.ports[id]
	if !ok {
		return nil, domain.ErrPortNotFound
	}
	clone := *port
	return &clone, nil
}

func (r *portRepositoryImpl) GetPendingPorts(
	_ context.Context, limit int,
) ([]domain.Port, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pending := make([]domain.Port, 0)
	for _, port := range r.ports {
		if port.IsPending() {
			pending = append(pending, *port)
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

func (r *portRepositoryImpl) UpdatePort(
	ctx context.Context, id string,
	updateFn func(port *domain.Port) (*domain.Port, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, ok := r.ports[id]
	if !ok {
		return domain.ErrPortNotFound
	}

	clone := *current
	updated, err := updateFn(&clone)
	if err != nil {
		return err
	}
	r.ports[id] = updated
	return nil
}

func (r *portRepositoryImpl) ListPortsForUser(
	_ context.Context, userID string, page domain.Page,
) ([]domain.Port, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]domain.Port, 0)
	for _, port := range r.ports {
		if port.UserID == userID {
			list = append(list, *port)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return paginatePorts(list, page), nil
}

func paginatePorts(list []domain.Port, page domain.Page) []domain.Port {
	if page.Size <= 0 {
		return list
	}
	from := (page.Number - 1) * page.Size
	if from < 0 {
		from = 0
	}
	if from >= len(list) {
		return []domain.Port{}
	}
	to := from + page.Size
	if to > len(list) {
		to = len(list)
	}
	return list[from:to]
}
