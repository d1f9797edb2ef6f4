package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/srgjo27/showtime_booking/internal/adapter/cache"
	"github.com/srgjo27/showtime_booking/internal/adapter/handler"
	"github.com/srgjo27/showtime_booking/internal/adapter/lock/memlock"
	"github.com/srgjo27/showtime_booking/internal/adapter/lock/redislock"
	"github.com/srgjo27/showtime_booking/internal/adapter/notify"
	"github.com/srgjo27/showtime_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/showtime_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
	"github.com/srgjo27/showtime_booking/internal/core/services"
	"github.com/srgjo27/showtime_booking/internal/platform/config"
	"github.com/srgjo27/showtime_booking/internal/platform/database"
	"github.com/srgjo27/showtime_booking/internal/platform/logger"
	"github.com/srgjo27/showtime_booking/internal/platform/redisclient"
)

type repositories struct {
	shows    ports.ShowRepository
	bookings ports.BookingRepository
	promos   ports.PromoCodeRepository
	payments ports.PaymentRepository
	tx       ports.Transactor
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server exited with error", zap.Error(err))
	}
	logr.Info("server exiting")
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	repos, closeRepos, err := newRepositories(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer closeRepos()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redisclient.NewClient(ctx, cfg.Redis, logr)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	opts := []services.BookingServiceOption{services.WithLogger(logr.Named("booking"))}

	if rdb != nil {
		redisCache := cache.NewRedisCache(rdb)
		opts = append(opts, services.WithCacheInvalidator(redisCache))

		if cfg.Events.Enabled {
			streamPub, err := notify.NewRedisStreamPublisher(rdb, logger.NewWatermillAdapter(logr))
			if err != nil {
				return err
			}
			publisher := notify.NewPublisher(streamPub, cfg.Events.TopicPrefix)
			defer publisher.Close()
			opts = append(opts, services.WithEventPublisher(publisher))
		}
	}

	locker, err := newLocker(cfg, rdb)
	if err != nil {
		return err
	}

	bookingService := services.NewBookingService(
		repos.shows,
		repos.bookings,
		repos.promos,
		repos.tx,
		services.NewPaymentService(repos.payments, logr.Named("payment")),
		services.NewSeatLockCoordinator(locker, cfg.Lock.WaitTimeout, cfg.Lock.Lease, logr.Named("locks")),
		opts...,
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.NewBookingHandler(bookingService, logr.Named("http")), logr.Named("http"))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logr.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("locks", cfg.Lock.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server startup failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRepositories(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*repositories, func(), error) {
	if cfg.Storage.Backend == config.BackendMemory {
		logr.Warn("using in-memory storage; bookings are lost on restart")
		store := memory.NewStore()
		return &repositories{
			shows:    store.Shows(),
			bookings: store.Bookings(),
			promos:   store.PromoCodes(),
			payments: store.Payments(),
			tx:       store,
		}, func() {}, nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.Database, logr)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.Migrate {
		if err := postgres.MigrateSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	return postgresRepositories(db), func() { _ = db.Close() }, nil
}

func postgresRepositories(db *sqlx.DB) *repositories {
	return &repositories{
		shows:    postgres.NewShowRepository(db),
		bookings: postgres.NewBookingRepository(db),
		promos:   postgres.NewPromoCodeRepository(db),
		payments: postgres.NewPaymentRepository(db),
		tx:       postgres.NewTransactor(db),
	}
}

func newLocker(cfg *config.Config, rdb *redis.Client) (ports.Locker, error) {
	switch cfg.Lock.Backend {
	case config.BackendMemory:
		return memlock.New(memlock.WithRetryInterval(cfg.Lock.RetryInterval)), nil
	case config.BackendRedis:
		if rdb == nil {
			return nil, errors.New("redis lock backend requires a redis connection")
		}
		return redislock.New(rdb, redislock.WithRetryInterval(cfg.Lock.RetryInterval)), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Lock.Backend)
	}
}
