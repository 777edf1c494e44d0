package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/veilpay/veild/internal/core/domain"
	"github.com/veilpay/veild/internal/core/ports"
	"github.com/veilpay/veild/pkg/indexer"
)

// DefaultMaxVerificationAttempts is the default ceiling on reconciliation
// attempts before a record is failed for good.
const DefaultMaxVerificationAttempts = 5

// ReconcilerService drives pending chain-backed records towards a terminal
// status by querying the external indexer for confirmation evidence.
type ReconcilerService interface {
	// ReconcileBatch runs one cycle for the given kind over at most
	// batchSize pending records, oldest first. At most one cycle per kind
	// runs at a time; overlapping calls get ErrReconcileInProgress.
	ReconcileBatch(ctx context.Context, kind RecordKind, batchSize int) (*ReconcileSummary, error)
}

// ReconcilerOpts defines the parameters needed for creating a reconciler
// service with the NewReconcilerService method.
type ReconcilerOpts struct {
	RepoManager ports.RepoManager
	IndexerSvc  indexer.Service
	// PubSub, when set, gets a message on every terminal transition.
	PubSub Publisher
	// MaxVerificationAttempts overrides the default ceiling when positive.
	MaxVerificationAttempts int
}

func (o ReconcilerOpts) validate() error {
	if o.RepoManager == nil {
		return ErrNullRepoManager
	}
	if o.IndexerSvc == nil {
		return ErrNullIndexer
	}
	return nil
}

func (o ReconcilerOpts) maxAttempts() int {
	if o.MaxVerificationAttempts > 0 {
		return o.MaxVerificationAttempts
	}
	return DefaultMaxVerificationAttempts
}

type reconcilerService struct {
	repoManager ports.RepoManager
	indexerSvc  indexer.Service
	pubsubSvc   Publisher
	maxAttempts int

	lock sync.Mutex
	busy map[RecordKind]bool
}

// NewReconcilerService returns a ReconcilerService with all the needed
// collaborators.
func NewReconcilerService(opts ReconcilerOpts) (ReconcilerService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &reconcilerService{
		repoManager: opts.RepoManager,
		indexerSvc:  opts.IndexerSvc,
		pubsubSvc:   opts.PubSub,
		maxAttempts: opts.maxAttempts(),
		busy:        make(map[RecordKind]bool),
	}, nil
}

func (s *reconcilerService) ReconcileBatch(
	ctx context.Context, kind RecordKind, batchSize int,
) (*ReconcileSummary, error) {
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}

	if !s.acquire(kind) {
		return nil, ErrReconcileInProgress
	}
	defer s.release(kind)

	switch kind {
	case KindPortRegistration:
		return s.reconcilePorts(ctx, batchSize)
	case KindSentPayment:
		return s.reconcileSentPayments(ctx, batchSize)
	case KindPaymentReceipt:
		return s.reconcileReceipts(ctx, batchSize)
	default:
		return nil, ErrUnknownRecordKind
	}
}

func (s *reconcilerService) acquire(kind RecordKind) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.busy[kind] {
		return false
	}
	s.busy[kind] = true
	return true
}

func (s *reconcilerService) release(kind RecordKind) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.busy[kind] = false
}

func (s *reconcilerService) reconcilePorts(
	ctx context.Context, batchSize int,
) (*ReconcileSummary, error) {
	portRepo := s.repoManager.PortRepository()
	pending, err := portRepo.GetPendingPorts(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &ReconcileSummary{Kind: KindPortRegistration}
	tally := newTally(summary)

	g, gctx := errgroup.WithContext(ctx)
	for i := range pending {
		port := pending[i]
		g.Go(func() error {
			confirmation, err := s.lookupPort(gctx, port)
			if err != nil {
				if !errors.Is(err, indexer.ErrNotFound) {
					// Transient indexer failure: no attempt consumed, the
					// record stays pending untouched.
					log.WithError(err).Warnf(
						"reconciler: transient error verifying port %s", port.ID,
					)
					tally.skipped()
					return nil
				}
				return s.missPort(gctx, port.ID, tally)
			}
			return s.confirmPort(gctx, port.ID, confirmation, tally)
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *reconcilerService) lookupPort(
	ctx context.Context, port domain.Port,
) (*indexer.Confirmation, error) {
	if len(port.IndexerLinkID) > 0 {
		return s.indexerSvc.GetPortRegistration(ctx, port.IndexerLinkID)
	}
	return s.indexerSvc.GetTransactionStatus(ctx, port.TxHash, port.ChainID)
}

func (s *reconcilerService) confirmPort(
	ctx context.Context, id string, confirmation *indexer.Confirmation, tally *tally,
) error {
	var confirmed bool
	if err := s.repoManager.PortRepository().UpdatePort(
		ctx, id,
		func(port *domain.Port) (*domain.Port, error) {
			// Confirm no-ops on records that reached a terminal status in
			// the meantime, so stale responses are discarded here.
			confirmed = port.Confirm(confirmation.TxHash, confirmation.BlockNumber)
			return port, nil
		},
	); err != nil {
		return err
	}
	if confirmed {
		tally.confirmed()
		s.publish(TopicPortConfirmed, portNotification{id, confirmation.TxHash})
	}
	return nil
}

func (s *reconcilerService) missPort(ctx context.Context, id string, tally *tally) error {
	var failed, changed bool
	if err := s.repoManager.PortRepository().UpdatePort(
		ctx, id,
		func(port *domain.Port) (*domain.Port, error) {
			changed, failed = port.RecordVerificationMiss(s.maxAttempts)
			return port, nil
		},
	); err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if failed {
		tally.failed()
		s.publish(TopicPortFailed, portNotification{id, ""})
		return nil
	}
	tally.retried()
	return nil
}

func (s *reconcilerService) reconcileSentPayments(
	ctx context.Context, batchSize int,
) (*ReconcileSummary, error) {
	paymentRepo := s.repoManager.SentPaymentRepository()
	pending, err := paymentRepo.GetPendingPayments(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &ReconcileSummary{Kind: KindSentPayment}
	tally := newTally(summary)

	g, gctx := errgroup.WithContext(ctx)
	for i := range pending {
		payment := pending[i]
		g.Go(func() error {
			confirmation, err := s.indexerSvc.GetTransactionStatus(
				gctx, payment.TxHash, payment.ChainID,
			)
			if err != nil {
				if !errors.Is(err, indexer.ErrNotFound) {
					log.WithError(err).Warnf(
						"reconciler: transient error verifying payment %s", payment.Key(),
					)
					tally.skipped()
					return nil
				}
				return s.missSentPayment(gctx, payment.Key(), tally)
			}
			return s.confirmSentPayment(gctx, payment.Key(), confirmation, tally)
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *reconcilerService) confirmSentPayment(
	ctx context.Context, key domain.PaymentKey,
	confirmation *indexer.Confirmation, tally *tally,
) error {
	var confirmed bool
	if err := s.repoManager.SentPaymentRepository().UpdatePayment(
		ctx, key,
		func(payment *domain.SentPayment) (*domain.SentPayment, error) {
			confirmed = payment.Confirm(confirmation.BlockNumber)
			return payment, nil
		},
	); err != nil {
		return err
	}
	if confirmed {
		tally.confirmed()
		s.publish(TopicPaymentConfirmed, paymentNotification{key.TxHash, key.ChainID})
	}
	return nil
}

func (s *reconcilerService) missSentPayment(
	ctx context.Context, key domain.PaymentKey, tally *tally,
) error {
	var failed, changed bool
	if err := s.repoManager.SentPaymentRepository().UpdatePayment(
		ctx, key,
		func(payment *domain.SentPayment) (*domain.SentPayment, error) {
			changed, failed = payment.RecordVerificationMiss(s.maxAttempts)
			return payment, nil
		},
	); err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if failed {
		tally.failed()
		s.publish(TopicPaymentFailed, paymentNotification{key.TxHash, key.ChainID})
		return nil
	}
	tally.retried()
	return nil
}

func (s *reconcilerService) reconcileReceipts(
	ctx context.Context, batchSize int,
) (*ReconcileSummary, error) {
	receiptRepo := s.repoManager.PaymentReceiptRepository()
	pending, err := receiptRepo.GetPendingReceipts(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &ReconcileSummary{Kind: KindPaymentReceipt}
	tally := newTally(summary)

	g, gctx := errgroup.WithContext(ctx)
	for i := range pending {
		receipt := pending[i]
		g.Go(func() error {
			confirmation, err := s.indexerSvc.GetTransactionStatus(
				gctx, receipt.TxHash, receipt.ChainID,
			)
			if err != nil {
				if !errors.Is(err, indexer.ErrNotFound) {
					log.WithError(err).Warnf(
						"reconciler: transient error verifying receipt %s", receipt.Key(),
					)
					tally.skipped()
					return nil
				}
				return s.missReceipt(gctx, receipt.Key(), tally)
			}
			return s.confirmReceipt(gctx, receipt.Key(), confirmation, tally)
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *reconcilerService) confirmReceipt(
	ctx context.Context, key domain.PaymentKey,
	confirmation *indexer.Confirmation, tally *tally,
) error {
	var confirmed bool
	var portID string
	var amount string
	if err := s.repoManager.PaymentReceiptRepository().UpdateReceipt(
		ctx, key,
		func(receipt *domain.PaymentReceipt) (*domain.PaymentReceipt, error) {
			confirmed = receipt.Confirm(confirmation.BlockNumber)
			portID = receipt.PortID
			amount = receipt.Amount
			return receipt, nil
		},
	); err != nil {
		return err
	}
	if !confirmed {
		return nil
	}
	tally.confirmed()
	s.publish(TopicPaymentConfirmed, paymentNotification{key.TxHash, key.ChainID})

	if len(portID) > 0 {
		if err := s.registerReceiptOnPort(ctx, portID, amount); err != nil {
			log.WithError(err).Warnf(
				"reconciler: could not update totals of port %s", portID,
			)
		}
	}
	return nil
}

func (s *reconcilerService) registerReceiptOnPort(
	ctx context.Context, portID, amount string,
) error {
	return s.repoManager.PortRepository().UpdatePort(
		ctx, portID,
		func(port *domain.Port) (*domain.Port, error) {
			parsed, err := decimal.NewFromString(amount)
			if err != nil {
				return nil, err
			}
			port.RegisterPayment(parsed)
			return port, nil
		},
	)
}

func (s *reconcilerService) missReceipt(
	ctx context.Context, key domain.PaymentKey, tally *tally,
) error {
	var failed, changed bool
	if err := s.repoManager.PaymentReceiptRepository().UpdateReceipt(
		ctx, key,
		func(receipt *domain.PaymentReceipt) (*domain.PaymentReceipt, error) {
			changed, failed = receipt.RecordVerificationMiss(s.maxAttempts)
			return receipt, nil
		},
	); err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if failed {
		tally.failed()
		s.publish(TopicPaymentFailed, paymentNotification{key.TxHash, key.ChainID})
		return nil
	}
	tally.retried()
	return nil
}

func (s *reconcilerService) publish(topic string, payload interface{}) {
	if s.pubsubSvc == nil {
		return
	}
	message, _ := json.Marshal(payload)
	if err := s.pubsubSvc.Publish(topic, string(message)); err != nil {
		log.WithError(err).Warnf("reconciler: could not publish on topic %s", topic)
	}
}

type portNotification struct {
	PortID string `json:"port_id"`
	TxHash string `json:"tx_hash,omitempty"`
}

type paymentNotification struct {
	TxHash  string `json:"tx_hash"`
	ChainID uint64 `json:"chain_id"`
}

// tally applies concurrent per-record outcomes to one summary.
type tally struct {
	lock    sync.Mutex
	summary *ReconcileSummary
}

func newTally(summary *ReconcileSummary) *tally {
	return &tally{summary: summary}
}

func (t *tally) confirmed() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.summary.Processed++
	t.summary.Confirmed++
}

func (t *tally) failed() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.summary.Processed++
	t.summary.Failed++
}

func (t *tally) retried() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.summary.Processed++
	t.summary.Retried++
}

func (t *tally) skipped() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.summary.Processed++
	t.summary.Skipped++
}
