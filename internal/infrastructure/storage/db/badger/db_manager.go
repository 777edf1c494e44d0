package dbbadger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"

	"github.com/veilpay/veild/internal/core/domain"
	"github.com/veilpay/veild/internal/core/ports"
)

const ctxTxKey = "tx"

// repoManager holds the badgerhold stores in a single data structure.
type repoManager struct {
	store *badgerhold.Store

	portRepository    domain.PortRepository
	paymentRepository domain.SentPaymentRepository
	receiptRepository domain.PaymentReceiptRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	store, err := createDb(fmt.Sprintf("%s/records", baseDbDir), logger)
	if err != nil {
		return nil, fmt.Errorf("opening records db: %w", err)
	}

	return &repoManager{
		store:             store,
		portRepository:    NewPortRepositoryImpl(store),
		paymentRepository: NewSentPaymentRepositoryImpl(store),
		receiptRepository: NewPaymentReceiptRepositoryImpl(store),
	}, nil
}

func (d *repoManager) PortRepository() domain.PortRepository {
	return d.portRepository
}

func (d *repoManager) SentPaymentRepository() domain.SentPaymentRepository {
	return d.paymentRepository
}

func (d *repoManager) PaymentReceiptRepository() domain.PaymentReceiptRepository {
	return d.receiptRepository
}

func (d *repoManager) Close() {
	if err := d.store.Close(); err != nil {
		log.WithError(err).Warn("closing records db")
	}
}

// RunTransaction runs the handler within one badger transaction, exposed to
// the repositories through the context.
func (d *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	tx := d.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, ctxTxKey, tx))
	if err != nil {
		return nil, err
	}

	if !readOnly {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer
	if err := json.NewEncoder(&buff).Encode(value); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

func txFromContext(ctx context.Context) (*badger.Txn, bool) {
	tx, ok := ctx.Value(ctxTxKey).(*badger.Txn)
	return tx, ok
}
