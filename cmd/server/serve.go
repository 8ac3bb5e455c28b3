package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"flightsurety/internal/access/store/allowlist"
	"flightsurety/internal/insurance/settlement"
	jwttoken "flightsurety/internal/jwt_token"
	"flightsurety/internal/ledger"
	"flightsurety/internal/platform/config"
	"flightsurety/internal/platform/httpserver"
	"flightsurety/internal/platform/logger"
	"flightsurety/internal/platform/metrics"
	redisclient "flightsurety/internal/platform/redis"
	httptransport "flightsurety/internal/transport/http"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/audit/publisher"
	kafkasink "flightsurety/pkg/platform/audit/store/kafka"
	"flightsurety/pkg/platform/audit/store/memory"
	pgstore "flightsurety/pkg/platform/audit/store/postgres"
	"flightsurety/pkg/platform/circuit"
)

const (
	shutdownGrace   = 10 * time.Second
	eventBufferSize = 1024
)

func serveCommand() *cobra.Command {
	var (
		addr     string
		enforce  bool
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			// Flags override the loaded config
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}
			if cmd.Flags().Changed("enforce-allowlist") {
				cfg.EnforceAllowlist = enforce
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			log := logger.New(cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveRun(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	cmd.Flags().BoolVar(&enforce, "enforce-allowlist", false, "reject callers missing from the allow-list")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	return cmd
}

func serveRun(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	owner, err := cfg.OwnerID()
	if err != nil {
		return err
	}
	callers, err := cfg.CallerIDs()
	if err != nil {
		return err
	}
	minimumFund, err := domain.ParseAmount(cfg.MinimumFund)
	if err != nil {
		return err
	}

	events, closeEvents, err := openEventStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeEvents()

	pub := publisher.NewPublisher(events,
		publisher.WithAsyncBuffer(eventBufferSize),
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
	)
	defer pub.Close()

	book := settlement.NewBook()
	opts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithEventPublisher(pub),
		ledger.WithMetrics(),
		ledger.WithSettler(book),
		ledger.WithMinimumFund(minimumFund),
		ledger.WithEnforcedAllowlist(cfg.EnforceAllowlist),
		ledger.WithTxTimeout(cfg.TxTimeout),
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, ledger.WithAllowlistStore(allowlist.NewRedis(rdb.Client)))
		log.Info("allow-list backed by redis")
	}

	l, err := ledger.New(owner, opts...)
	if err != nil {
		return err
	}
	if cfg.BootstrapAirline != "" {
		airline, err := domain.ParsePrincipalID(cfg.BootstrapAirline)
		if err != nil {
			return err
		}
		if err := l.Bootstrap(ctx, airline, callers...); err != nil && !dErrors.HasCode(err, dErrors.CodeAlreadyExists) {
			return fmt.Errorf("bootstrap registry: %w", err)
		}
	}

	tokens := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Ledger:     l,
		Balances:   book,
		Events:     pub,
		Validator:  jwttoken.NewJWTServiceAdapter(tokens),
		Issuer:     tokens,
		AdminToken: cfg.AdminToken,
		TokenTTL:   cfg.JWT.TTL,
		Metrics:    metrics.New(),
		Logger:     log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting ledger server", "addr", cfg.HTTPAddr, "owner", owner.String())
		return httpserver.Serve(gctx, httpserver.New(cfg.HTTPAddr, router), shutdownGrace)
	})
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		g.Go(func() error {
			log.Info("starting metrics server", "addr", cfg.MetricsAddr)
			return httpserver.Serve(gctx, httpserver.New(cfg.MetricsAddr, mux), shutdownGrace)
		})
	}

	err = g.Wait()
	log.Info("ledger server stopped")
	return err
}

// openEventStore picks postgres when a DSN is configured and memory
// otherwise, then mirrors to Kafka when brokers are configured.
func openEventStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (audit.Store, func(), error) {
	var (
		primary audit.Store
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := pgstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		primary = store
		log.Info("event store backed by postgres")
	} else {
		primary = memory.NewInMemoryStore()
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return primary, closeAll, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Kafka.Brokers...),
		kgo.DefaultProduceTopic(cfg.Kafka.Topic),
	)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("create kafka client: %w", err)
	}
	closers = append(closers, client.Close)
	if err := kafkasink.EnsureTopic(ctx, kadm.NewClient(client), cfg.Kafka.Topic, cfg.Kafka.Partitions, 1); err != nil {
		closeAll()
		return nil, nil, err
	}
	log.Info("event stream mirrored to kafka", "topic", cfg.Kafka.Topic)
	mirror := audit.NewGuardedSink(kafkasink.New(client, cfg.Kafka.Topic),
		circuit.New("kafka-mirror", circuit.WithFailureThreshold(5)),
		audit.WithGuardLogger(log),
	)
	return audit.NewTee(primary, mirror), closeAll, nil
}
