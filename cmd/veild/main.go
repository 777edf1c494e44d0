package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/veilpay/veild/internal/config"
	"github.com/veilpay/veild/internal/core/application"
	"github.com/veilpay/veild/internal/core/ports"
	webhookpubsub "github.com/veilpay/veild/internal/infrastructure/pubsub/webhook"
	dbbadger "github.com/veilpay/veild/internal/infrastructure/storage/db/badger"
	"github.com/veilpay/veild/internal/infrastructure/storage/db/inmemory"
	"github.com/veilpay/veild/pkg/indexer"
	"github.com/veilpay/veild/pkg/indexer/subgraph"
	"github.com/veilpay/veild/pkg/recovery"
	"github.com/veilpay/veild/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("could not open storage")
	}
	defer repoManager.Close()

	indexerSvc, err := subgraph.NewService(subgraph.Opts{
		Endpoint:          config.GetString(config.IndexerEndpointKey),
		RequestsPerSecond: config.GetInt(config.IndexerRequestsPerSecondKey),
	})
	if err != nil {
		log.WithError(err).Fatal("could not connect to indexer")
	}
	if err := checkDepositFeed(indexerSvc); err != nil {
		log.WithError(err).Warn("deposit feed check failed")
	}

	var pubsubSvc application.Publisher
	if !config.GetBool(config.NoWebhooksKey) {
		pubsubSvc = webhookpubsub.NewWebhookPubSubService()
	}

	reconcilerSvc, err := application.NewReconcilerService(application.ReconcilerOpts{
		RepoManager:             repoManager,
		IndexerSvc:              indexerSvc,
		PubSub:                  pubsubSvc,
		MaxVerificationAttempts: config.GetInt(config.MaxVerificationAttemptsKey),
	})
	if err != nil {
		log.WithError(err).Fatal("could not create reconciler")
	}

	scheduler, err := application.NewScheduler(application.SchedulerOpts{
		ReconcilerSvc: reconcilerSvc,
		Interval:      time.Duration(config.GetInt(config.ReconcileIntervalKey)) * time.Second,
		BatchSize:     config.GetInt(config.ReconcileBatchSizeKey),
	})
	if err != nil {
		log.WithError(err).Fatal("could not create scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if config.GetBool(config.EnableProfilerKey) {
		interval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
		dumpPath := filepath.Join(
			config.GetDatadir(), config.ProfilerLocation, "metrics.dump",
		)
		stats.EnableMemoryStatistics(ctx, interval, dumpPath)
	}

	scheduler.Start()
	defer scheduler.Stop()
	log.Info("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")
}

// checkDepositFeed fetches and validates the deposit event feed for the
// configured pool scope, so a broken feed surfaces at startup instead of
// during the first recovery. It is a no-op when no scope is configured.
func checkDepositFeed(indexerSvc indexer.Service) error {
	scope, err := config.GetPoolScope()
	if err != nil || scope == nil {
		return err
	}
	events, err := indexerSvc.GetDepositEvents(context.Background(), scope)
	if err != nil {
		return err
	}
	index, err := recovery.NewEventIndex(events)
	if err != nil {
		return err
	}
	log.Infof("deposit feed for scope %s holds %d events", scope, index.Size())
	return nil
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetBool(config.NoPersistenceKey) {
		log.Warn("persistence disabled, records are kept in memory only")
		return inmemory.NewRepoManager(), nil
	}
	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	return dbbadger.NewRepoManager(dbDir, log.New())
}
