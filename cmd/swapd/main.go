package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/config"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/escrow"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/ledger"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/sweeper"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	httpbooking "github.com/bushboy/bookingswap-sub023/internal/infrastructure/booking/http"
	httpescrow "github.com/bushboy/bookingswap-sub023/internal/infrastructure/escrow/http"
	badgerledger "github.com/bushboy/bookingswap-sub023/internal/infrastructure/ledger/badger"
	httpledger "github.com/bushboy/bookingswap-sub023/internal/infrastructure/ledger/http"
	redislock "github.com/bushboy/bookingswap-sub023/internal/infrastructure/lock/redis"
	kafkapubsub "github.com/bushboy/bookingswap-sub023/internal/infrastructure/pubsub/kafka"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/pubsub/noop"
	webhookpubsub "github.com/bushboy/bookingswap-sub023/internal/infrastructure/pubsub/webhook"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/pg"
	grpcinterface "github.com/bushboy/bookingswap-sub023/internal/interfaces/grpc"
	httpinterface "github.com/bushboy/bookingswap-sub023/internal/interfaces/http"
	"github.com/bushboy/bookingswap-sub023/pkg/stats"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.GetBool(config.EnableProfilerKey) {
		stopProfiler := startProfiler()
		defer stopProfiler()
		stats.EnableMemoryStatistics(
			ctx, time.Duration(config.GetInt(config.StatsIntervalKey))*time.Second,
		)
	}

	clk := clock.NewDefaultClock()
	dbDir := config.GetDbDir()

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}
	defer repoManager.Close()

	ledgerSvc, err := newLedger(dbDir)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to ledger")
	}
	defer ledgerSvc.Close()

	escrowProvider, err := httpescrow.NewProvider(
		config.GetString(config.EscrowProviderAddrKey),
		config.GetDuration(config.EscrowTransferTimeoutKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to set up escrow provider client")
	}
	bookingSvc, err := httpbooking.NewService(
		config.GetString(config.BookingServiceAddrKey), 0,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to set up booking service client")
	}

	notifier, subscriptions, err := newNotifier(dbDir)
	if err != nil {
		log.WithError(err).Fatal("failed to set up notifier")
	}

	var locker ports.Locker
	if addr := config.GetString(config.RedisAddrKey); len(addr) > 0 {
		locker, err = redislock.NewLocker(ctx, addr)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
	}

	escrowSvc, err := escrow.NewService(repoManager, escrowProvider, clk, escrow.Config{
		TransferTimeout: config.GetDuration(config.EscrowTransferTimeoutKey),
		VerifyTimeout:   config.GetDuration(config.EscrowVerifyTimeoutKey),
		PollInterval:    config.GetDuration(config.EscrowPollIntervalKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init escrow service")
	}

	recorder, err := ledger.NewRecorder(repoManager, ledgerSvc, clk, ledger.Config{
		MaxRetries:   config.GetInt(config.LedgerMaxRetriesKey),
		RetryBackoff: config.GetDuration(config.LedgerRetryBackoffKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init ledger recorder")
	}
	reconciler, err := ledger.NewReconciler(
		repoManager, recorder, clk, ledger.ReconcilerConfig{
			Interval: config.GetDuration(config.ReconcilerIntervalKey),
		},
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init ledger reconciler")
	}

	settlementSvc, err := settlement.NewService(
		repoManager, escrowSvc, recorder, bookingSvc, notifier, clk,
		settlement.Config{
			OperationTimeout: config.GetDuration(config.OperationTimeoutKey),
		},
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init settlement service")
	}

	sweeperSvc, err := sweeper.NewService(
		repoManager, settlementSvc, locker, clk, sweeper.Config{
			Interval:    config.GetDuration(config.SweeperIntervalKey),
			ItemTimeout: config.GetDuration(config.SweeperItemTimeoutKey),
			BatchSize:   config.GetInt(config.SweeperBatchSizeKey),
		},
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init sweeper")
	}

	httpSvc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Port:          config.GetInt(config.HTTPListeningPortKey),
		SettlementSvc: settlementSvc,
		SweeperSvc:    sweeperSvc,
		Subscriptions: subscriptions,
		JWTSecret:     config.GetString(config.JWTSecretKey),
		NoAuth:        config.GetBool(config.NoAuthKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init http interface")
	}
	healthSvc, err := grpcinterface.NewService(grpcinterface.ServiceOpts{
		Port:       config.GetInt(config.GRPCHealthPortKey),
		SweeperSvc: sweeperSvc,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init grpc health interface")
	}

	sweeperSvc.Start()
	reconciler.Start()
	if err := httpSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	if err := healthSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start grpc health interface")
	}

	log.Info("swapd started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")

	httpSvc.Stop()
	healthSvc.Stop()
	sweeperSvc.Stop()
	reconciler.Stop()
	settlementSvc.Close()

	log.Info("exiting")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		log.Warn("using in-memory db, all data is lost at shutdown")
		return inmemory.NewRepoManager(), nil
	}
	return postgresdb.NewService(postgresdb.DbConfig{
		ConnectAddr:        config.GetString(config.PgConnectAddrKey),
		MigrationSourceURL: config.GetString(config.PgMigrationSourceKey),
	})
}

func newLedger(dbDir string) (ports.Ledger, error) {
	if config.GetString(config.LedgerTypeKey) == config.LedgerHTTP {
		return httpledger.NewLedger(httpledger.Config{
			Addr:      config.GetString(config.LedgerAddrKey),
			RateLimit: config.GetInt(config.LedgerRateLimitKey),
		})
	}
	return badgerledger.NewLedger(dbDir, log.StandardLogger())
}

func newNotifier(
	dbDir string,
) (ports.Notifier, ports.SubscriptionManager, error) {
	switch config.GetString(config.NotifierTypeKey) {
	case config.NotifierWebhook:
		svc, err := webhookpubsub.NewService(dbDir, log.StandardLogger(), 0)
		if err != nil {
			return nil, nil, err
		}
		return svc, svc, nil
	case config.NotifierKafka:
		notifier, err := kafkapubsub.NewPublisher(
			config.GetStringSlice(config.KafkaBrokersKey),
		)
		return notifier, nil, err
	default:
		return noop.NewNotifier(), nil, nil
	}
}

func startProfiler() func() {
	profilePath := filepath.Join(
		config.GetDatadir(), config.ProfilerLocation, "cpu.pprof",
	)
	f, err := os.Create(profilePath)
	if err != nil {
		log.WithError(err).Warn("failed to create cpu profile")
		return func() {}
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		log.WithError(err).Warn("failed to start cpu profiler")
		f.Close()
		return func() {}
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}
