package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilpay/veild/internal/core/application"
)

// countingReconciler records the cycles a scheduler triggers.
type countingReconciler struct {
	lock   sync.Mutex
	cycles map[application.RecordKind]int
}

func newCountingReconciler() *countingReconciler {
	return &countingReconciler{cycles: map[application.RecordKind]int{}}
}

func (r *countingReconciler) ReconcileBatch(
	_ context.Context, kind application.RecordKind, _ int,
) (*application.ReconcileSummary, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.cycles[kind]++
	return &application.ReconcileSummary{Kind: kind}, nil
}

func (r *countingReconciler) count(kind application.RecordKind) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.cycles[kind]
}

func TestSchedulerTriggersCyclesForEveryKind(t *testing.T) {
	reconciler := newCountingReconciler()
	scheduler, err := application.NewScheduler(application.SchedulerOpts{
		ReconcilerSvc: reconciler,
		Interval:      10 * time.Millisecond,
		BatchSize:     5,
	})
	require.NoError(t, err)

	scheduler.Start()
	time.Sleep(100 * time.Millisecond)
	scheduler.Stop()

	for _, kind := range application.RecordKinds() {
		assert.Greater(t, reconciler.count(kind), 0, string(kind))
	}
}

func TestSchedulerStopPreventsFurtherCycles(t *testing.T) {
	reconciler := newCountingReconciler()
	scheduler, err := application.NewScheduler(application.SchedulerOpts{
		ReconcilerSvc: reconciler,
		Interval:      10 * time.Millisecond,
		BatchSize:     5,
		Kinds:         []application.RecordKind{application.KindPortRegistration},
	})
	require.NoError(t, err)

	scheduler.Start()
	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()

	stopped := reconciler.count(application.KindPortRegistration)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, reconciler.count(application.KindPortRegistration))

	// Start and Stop are idempotent.
	scheduler.Stop()
	scheduler.Start()
	scheduler.Start()
	scheduler.Stop()
}

func TestNewSchedulerInvalidOpts(t *testing.T) {
	_, err := application.NewScheduler(application.SchedulerOpts{
		Interval:  time.Second,
		BatchSize: 5,
	})
	require.EqualError(t, err, application.ErrNullReconciler.Error())

	reconciler := newCountingReconciler()
	_, err = application.NewScheduler(application.SchedulerOpts{
		ReconcilerSvc: reconciler,
		Interval:      time.Second,
	})
	require.EqualError(t, err, application.ErrInvalidBatchSize.Error())

	// A zero interval would panic the ticker inside the run loop.
	_, err = application.NewScheduler(application.SchedulerOpts{
		ReconcilerSvc: reconciler,
		BatchSize:     5,
	})
	require.EqualError(t, err, application.ErrInvalidInterval.Error())
}
