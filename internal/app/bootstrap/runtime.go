package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/luminacare/pipeline-service/internal/adapters/cache"
	eventadapter "github.com/luminacare/pipeline-service/internal/adapters/events"
	grpcadapter "github.com/luminacare/pipeline-service/internal/adapters/grpc"
	httpadapter "github.com/luminacare/pipeline-service/internal/adapters/http"
	"github.com/luminacare/pipeline-service/internal/adapters/memory"
	"github.com/luminacare/pipeline-service/internal/adapters/postgres"
	"github.com/luminacare/pipeline-service/internal/application"
	"github.com/luminacare/pipeline-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

// NewRuntime wires the full adapter graph. Postgres, Redis, and Kafka are
// attached only when configured; otherwise the in-memory adapters take their
// place so the binary stays runnable in local and test setups.
func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var closers []io.Closer

	var (
		stages        ports.StageRepository
		leads         ports.LeadRepository
		leadHistory   ports.LeadStageHistoryRepository
		orders        ports.OrderRepository
		prescriptions ports.PrescriptionRepository
		approvals     ports.RegulatoryApprovalRepository
		affiliates    ports.AffiliateRepository
		stats         ports.AffiliateStatsRepository
		outboxRepo    ports.OutboxRepository
	)

	if cfg.DatabaseURL != "" {
		db, connErr := postgres.Connect(ctx, cfg.DatabaseURL, int32(cfg.MaxDBConns))
		if connErr != nil {
			return nil, connErr
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		if migErr := postgres.RunMigrations(ctx, db); migErr != nil {
			_ = sqlDB.Close()
			return nil, migErr
		}
		closers = append(closers, sqlDB)
		repos := postgres.NewRepositories(db)
		stages, leads, leadHistory, orders = repos.Stages, repos.Leads, repos.LeadHistory, repos.Orders
		prescriptions, approvals = repos.Prescriptions, repos.Approvals
		affiliates, stats, outboxRepo = repos.Affiliates, repos.Stats, repos.Outbox
	} else {
		logger.WarnContext(ctx, "no database configured, using in-memory repositories")
		repos := memory.NewRepositories()
		stages, leads, leadHistory, orders = repos.Stages, repos.Leads, repos.LeadHistory, repos.Orders
		prescriptions, approvals = repos.Prescriptions, repos.Approvals
		affiliates, stats, outboxRepo = repos.Affiliates, repos.Stats, repos.Outbox
	}

	var leaderboard ports.LeaderboardCache = cache.NewMemoryLeaderboardCache()
	if cfg.RedisURL != "" {
		redisClient, redisErr := cache.Connect(ctx, cfg.RedisURL)
		if redisErr != nil {
			logger.WarnContext(ctx, "redis unavailable, using in-memory leaderboard cache", "error", redisErr)
		} else {
			leaderboard = cache.NewRedisLeaderboardCache(redisClient)
			closers = append(closers, redisClient)
		}
	}

	var (
		domainPub    ports.DomainPublisher    = eventadapter.NewMemoryDomainPublisher()
		analyticsPub ports.AnalyticsPublisher = eventadapter.NewMemoryAnalyticsPublisher()
		dlqPub       ports.DLQPublisher       = eventadapter.NewLoggingDLQPublisher(logger)
	)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicDomain, cfg.KafkaTopicAnalytics, cfg.KafkaTopicDLQ)
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using in-memory publishers", "error", pubErr)
		} else {
			domainPub, analyticsPub, dlqPub = kafkaPub, kafkaPub, kafkaPub
			closers = append(closers, kafkaPub)
		}
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			LeaderboardCacheTTL:  cfg.LeaderboardCacheTTL,
			LeaderboardWindow:    cfg.LeaderboardWindow,
			OutboxFlushBatchSize: cfg.OutboxBatchSize,
			OutboxFlushInterval:  cfg.OutboxPollInterval,
		},
		Stages:        stages,
		Leads:         leads,
		LeadHistory:   leadHistory,
		Orders:        orders,
		Prescriptions: prescriptions,
		Approvals:     approvals,
		Affiliates:    affiliates,
		Stats:         stats,
		Outbox:        outboxRepo,
		Leaderboard:   leaderboard,
		DomainEvents:  domainPub,
		Analytics:     analyticsPub,
		DLQ:           dlqPub,
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewHealthServer(service))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		for _, closer := range closers {
			_ = closer.Close()
		}
		return nil, err
	}

	outboxWorker := eventadapter.NewOutboxWorker(logger, service, cfg.OutboxPollInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outboxWorker,
		cleanupFn: func(_ context.Context) {
			for _, closer := range closers {
				_ = closer.Close()
			}
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)

	go func() {
		if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		r.cleanupFn(context.Background())
		return nil
	case err := <-errCh:
		r.cleanupFn(context.Background())
		return err
	}
}
