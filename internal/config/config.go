package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// IndexerEndpointKey is the URL of the subgraph endpoint the daemon reconciles against
	IndexerEndpointKey = "INDEXER_ENDPOINT"
	// IndexerRequestsPerSecondKey caps the rate of requests towards the indexer
	IndexerRequestsPerSecondKey = "INDEXER_REQUESTS_PER_SECOND"
	// PoolScopeKey is the optional decimal pool scope identifier; when set, the
	// daemon verifies the deposit event feed for it at startup
	PoolScopeKey = "POOL_SCOPE"
	// ReconcileIntervalKey is the duration in seconds between two reconciliation cycles of the same record kind
	ReconcileIntervalKey = "RECONCILE_INTERVAL"
	// ReconcileBatchSizeKey is the max number of pending records one cycle works on
	ReconcileBatchSizeKey = "RECONCILE_BATCH_SIZE"
	// MaxVerificationAttemptsKey is the ceiling on unconfirmed cycles before a record is failed for good
	MaxVerificationAttemptsKey = "MAX_VERIFICATION_ATTEMPTS"
	// NoPersistenceKey is used to start the daemon with volatile in-memory storage
	NoPersistenceKey = "NO_PERSISTENCE"
	// NoWebhooksKey is used to start the daemon without webhook notifications
	NoWebhooksKey = "NO_WEBHOOKS"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic veild statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation       = "db"
	ProfilerLocation = "stats"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("veild", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("VEIL")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(IndexerRequestsPerSecondKey, 10)
	vip.SetDefault(ReconcileIntervalKey, 30)
	vip.SetDefault(ReconcileBatchSizeKey, 50)
	vip.SetDefault(MaxVerificationAttemptsKey, 5)
	vip.SetDefault(NoPersistenceKey, false)
	vip.SetDefault(NoWebhooksKey, false)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetPoolScope parses the configured pool scope as a decimal big integer.
// It returns nil without error when no scope is configured.
func GetPoolScope() (*big.Int, error) {
	if !vip.IsSet(PoolScopeKey) {
		return nil, nil
	}
	raw := GetString(PoolScopeKey)
	scope, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("pool scope %q is not a valid decimal integer", raw)
	}
	return scope, nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if !vip.IsSet(IndexerEndpointKey) {
		return fmt.Errorf("missing indexer endpoint")
	}

	if _, err := GetPoolScope(); err != nil {
		return err
	}

	if GetInt(ReconcileIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", ReconcileIntervalKey)
	}
	if GetInt(ReconcileBatchSizeKey) <= 0 {
		return fmt.Errorf("%s must be a positive integer", ReconcileBatchSizeKey)
	}
	if GetInt(MaxVerificationAttemptsKey) <= 0 {
		return fmt.Errorf("%s must be a positive integer", MaxVerificationAttemptsKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if !GetBool(NoPersistenceKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}

	if GetBool(EnableProfilerKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
