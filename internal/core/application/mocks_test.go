package application_test

import (
	"context"
	"math/big"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/veilpay/veild/pkg/indexer"
	"github.com/veilpay/veild/pkg/recovery"
)

// mockIndexer is a testify mock of the external indexer.
type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) GetDepositEvents(
	ctx context.Context, scope *big.Int,
) ([]recovery.DepositEvent, error) {
	args := m.Called(ctx, scope)

	var res []recovery.DepositEvent
	if a := args.Get(0); a != nil {
		res = a.([]recovery.DepositEvent)
	}
	return res, args.Error(1)
}

func (m *mockIndexer) GetPortRegistration(
	ctx context.Context, linkID string,
) (*indexer.Confirmation, error) {
	args := m.Called(ctx, linkID)

	var res *indexer.Confirmation
	if a := args.Get(0); a != nil {
		res = a.(*indexer.Confirmation)
	}
	return res, args.Error(1)
}

func (m *mockIndexer) GetTransactionStatus(
	ctx context.Context, txHash string, chainID uint64,
) (*indexer.Confirmation, error) {
	args := m.Called(ctx, txHash, chainID)

	var res *indexer.Confirmation
	if a := args.Get(0); a != nil {
		res = a.(*indexer.Confirmation)
	}
	return res, args.Error(1)
}

// blockingIndexer parks every transaction lookup until released, to let tests
// observe an in-flight reconciliation cycle.
type blockingIndexer struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingIndexer() *blockingIndexer {
	return &blockingIndexer{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingIndexer) GetDepositEvents(
	_ context.Context, _ *big.Int,
) ([]recovery.DepositEvent, error) {
	return nil, nil
}

func (b *blockingIndexer) GetPortRegistration(
	_ context.Context, _ string,
) (*indexer.Confirmation, error) {
	return nil, indexer.ErrNotFound
}

func (b *blockingIndexer) GetTransactionStatus(
	_ context.Context, _ string, _ uint64,
) (*indexer.Confirmation, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return nil, indexer.ErrNotFound
}

// mockPublisher records every published notification.
type mockPublisher struct {
	lock     sync.Mutex
	messages map[string][]string
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{messages: map[string][]string{}}
}

func (m *mockPublisher) Publish(topic string, message string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.messages[topic] = append(m.messages[topic], message)
	return nil
}

func (m *mockPublisher) published(topic string) []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.messages[topic]
}
