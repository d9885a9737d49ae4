package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"certichain/internal/allocator"
	"certichain/internal/audit"
	"certichain/internal/history"
	"certichain/internal/issue"
	jwttoken "certichain/internal/jwt_token"
	"certichain/internal/platform/config"
	"certichain/internal/platform/httpserver"
	"certichain/internal/platform/logger"
	"certichain/internal/platform/metrics"
	platformredis "certichain/internal/platform/redis"
	"certichain/internal/ratelimit"
	"certichain/internal/registry"
	"certichain/internal/registry/ethereum"
	"certichain/internal/registry/memory"
	httptransport "certichain/internal/transport/http"
	"certichain/internal/verify"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.DevMode)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Rate limiting: shared budget via Redis when configured, otherwise a
	// per-process window.
	var limitStore ratelimit.Store = ratelimit.NewMemoryStore()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		limitStore = ratelimit.NewRedisStore(redisClient)
		log.Info("rate limiting backed by redis")
	}
	var limitOpts []ratelimit.Option
	if cfg.TrustProxyHeaders {
		limitOpts = append(limitOpts, ratelimit.TrustProxyHeaders())
	}
	limits := ratelimit.NewMiddleware(ratelimit.NewLimiter(limitStore, cfg.RateLimitPerMinute), log, limitOpts...)

	// Issuance history: Postgres when configured, otherwise in-memory. The
	// verification path never reads from here, so losing it is acceptable.
	var hist history.Store = history.NewMemory()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		store := history.NewPostgres(db)
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate issuance history: %w", err)
		}
		hist = store
		log.Info("issuance history backed by postgres")
	}

	// Audit trail: Kafka when brokers are configured, otherwise in-memory.
	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit trail backed by kafka", "topic", audit.Topic)
	}
	audits := audit.NewPublisher(256, log)
	worker := audit.NewWorker(sink, audits.Inbox(), log)

	// The ledger registry. Dev mode swaps in an in-process ledger so the
	// full API can run without a node.
	var reg registry.Client
	if cfg.DevMode {
		reg = memory.New()
		log.Warn("dev mode: using in-process registry, records are not durable")
	} else {
		contractAddr, err := cfg.RegistryAddress()
		if err != nil {
			return err
		}
		ethClient, err := ethereum.Dial(ctx, cfg.RPCURL, contractAddr, cfg.PrivateKey, log)
		if err != nil {
			return fmt.Errorf("connect registry: %w", err)
		}
		defer ethClient.Close()
		reg = ethClient
		log.Info("registry connected", "rpc_url", cfg.RPCURL, "contract", contractAddr)
	}

	issuer := issue.NewService(allocator.New(), reg, hist, audits, m, log)
	engine := verify.NewEngine(reg, audits, m, log)
	jwt := jwttoken.NewJWTService(cfg.JWTSigningKey, "certichain")

	certs := httptransport.NewCertificateHandler(issuer, engine, hist, log, cfg.PublicBaseURL)
	auth := httptransport.NewAuthHandler(jwt, cfg.IssuerAPIKey, log)
	router := httptransport.NewRouter(certs, auth, jwt, limits, log)

	srv := httpserver.New(cfg.Addr, router, httpserver.Options{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting certichain server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
