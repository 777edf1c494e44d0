package application

import "errors"

var (
	// ErrReconcileInProgress is thrown when a reconciliation cycle for a
	// record kind is requested while another one for the same kind is still
	// running.
	ErrReconcileInProgress = errors.New("a reconciliation cycle for this kind is already running")
	// ErrUnknownRecordKind ...
	ErrUnknownRecordKind = errors.New("unknown record kind")
	// ErrInvalidBatchSize ...
	ErrInvalidBatchSize = errors.New("batch size must be a positive integer")
	// ErrInvalidInterval ...
	ErrInvalidInterval = errors.New("interval must be a positive duration")
	// ErrNullRepoManager ...
	ErrNullRepoManager = errors.New("repo manager must not be null")
	// ErrNullIndexer ...
	ErrNullIndexer = errors.New("indexer service must not be null")
	// ErrNullReconciler ...
	ErrNullReconciler = errors.New("reconciler service must not be null")
)
