package application

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/veilpay/veild/pkg/stats"
)

// Scheduler periodically triggers a reconciliation cycle per record kind.
// Each kind gets its own ticker-driven handler; a tick that arrives while
// the previous cycle for that kind is still running is dropped, which,
// together with the per-kind guard inside the reconciler, gives the
// single-instance guarantee.
type Scheduler interface {
	Start()
	Stop()
}

// SchedulerOpts defines the parameters needed for creating a scheduler with
// the NewScheduler method.
type SchedulerOpts struct {
	ReconcilerSvc ReconcilerService
	Interval      time.Duration
	BatchSize     int
	// Kinds defaults to all record kinds.
	Kinds []RecordKind
}

func (o SchedulerOpts) validate() error {
	if o.ReconcilerSvc == nil {
		return ErrNullReconciler
	}
	if o.Interval <= 0 {
		return ErrInvalidInterval
	}
	if o.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	return nil
}

func (o SchedulerOpts) kinds() []RecordKind {
	if len(o.Kinds) > 0 {
		return o.Kinds
	}
	return RecordKinds()
}

type scheduler struct {
	reconcilerSvc ReconcilerService
	interval      time.Duration
	batchSize     int
	kinds         []RecordKind

	stopChans []chan struct{}
	wg        *sync.WaitGroup
	started   bool
	lock      sync.Mutex
}

// NewScheduler returns a scheduler that is ready to drive reconciliation
// cycles. Use the Start and Stop methods to manage it.
func NewScheduler(opts SchedulerOpts) (Scheduler, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &scheduler{
		reconcilerSvc: opts.ReconcilerSvc,
		interval:      opts.Interval,
		batchSize:     opts.BatchSize,
		kinds:         opts.kinds(),
		wg:            &sync.WaitGroup{},
	}, nil
}

func (s *scheduler) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		return
	}
	s.started = true

	for _, kind := range s.kinds {
		stopChan := make(chan struct{})
		s.stopChans = append(s.stopChans, stopChan)
		s.wg.Add(1)
		go s.run(kind, stopChan)
	}
}

func (s *scheduler) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.started {
		return
	}
	for _, stopChan := range s.stopChans {
		close(stopChan)
	}
	s.wg.Wait()
	s.stopChans = nil
	s.started = false
}

// run executes cycles for one kind synchronously, so a slow cycle simply
// swallows the ticks it overlaps with.
func (s *scheduler) run(kind RecordKind, stopChan chan struct{}) {
	defer s.wg.Done()

	log.Debugf("scheduler: start reconciling kind %s", kind)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(kind)
		case <-stopChan:
			log.Debugf("scheduler: stop reconciling kind %s", kind)
			return
		}
	}
}

func (s *scheduler) runOnce(kind RecordKind) {
	summary, err := s.reconcilerSvc.ReconcileBatch(
		context.Background(), kind, s.batchSize,
	)
	if err != nil {
		if errors.Is(err, ErrReconcileInProgress) {
			log.Debugf("scheduler: skipped overlapping cycle for kind %s", kind)
			return
		}
		log.WithError(err).Warnf("scheduler: cycle for kind %s", kind)
		return
	}

	stats.CountReconcileCycle(
		string(kind),
		summary.Confirmed, summary.Failed, summary.Retried, summary.Skipped,
	)
	if summary.Processed > 0 {
		log.Infof(
			"scheduler: kind %s processed %d (confirmed %d, failed %d, retried %d, skipped %d)",
			kind, summary.Processed, summary.Confirmed,
			summary.Failed, summary.Retried, summary.Skipped,
		)
	}
}
