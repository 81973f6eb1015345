package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spalena53-be/internal/address"
	"spalena53-be/internal/api"
	"spalena53-be/internal/auth"
	"spalena53-be/internal/cart"
	"spalena53-be/internal/category"
	"spalena53-be/internal/config"
	"spalena53-be/internal/db"
	"spalena53-be/internal/delivery"
	"spalena53-be/internal/events"
	"spalena53-be/internal/logger"
	"spalena53-be/internal/metrics"
	"spalena53-be/internal/middleware"
	"spalena53-be/internal/order"
	"spalena53-be/internal/payment"
	"spalena53-be/internal/product"
	"spalena53-be/internal/redisx"
	"spalena53-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	eventBufferSize = 1024
)

var (
	initDBFunc  = db.NewDatabase
	listenFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	newRedisFn  = redisx.New
	newProducer = func(cfg *config.Config) publisherCloser {
		p := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, eventBufferSize)
		p.Start()
		return p
	}
)

type publisherCloser interface {
	events.Publisher
	Close()
}

// app holds everything the process owns between start and shutdown.
type app struct {
	handler    http.Handler
	reconciler *order.Reconciler
	limiter    *middleware.Limiter
	producer   publisherCloser
	rdb        *redis.Client
}

func newApp(ctx context.Context, cfg *config.Config, database *sql.DB) *app {
	log := logger.L()
	a := &app{}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = newProducer(cfg)
		publisher = a.producer
		log.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}

	var idem api.Idempotency
	if cfg.RedisAddr != "" {
		a.rdb = newRedisFn(cfg.RedisAddr)
		if err := redisx.Ping(ctx, a.rdb); err != nil {
			log.Warn("redis unreachable, idempotency keys degrade to pass-through", zap.Error(err))
		}
		idem = redisx.NewIdempotencyStore(a.rdb)
	}

	reg := metrics.NewRegistry()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	deliverySvc := delivery.NewService()

	productSvc := product.NewService(product.NewRepository(database))
	addressRepo := address.NewRepository(database)
	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, deliverySvc, deliverySvc, order.Options{
		TxTimeout: cfg.OrderTxTimeout,
		Publisher: publisher,
		Metrics:   reg,
	})

	a.reconciler = order.NewReconciler(orderRepo, orderSvc, cfg.ReconcileInterval)
	a.limiter = middleware.NewLimiter(cfg.InternalSecretKey)

	a.handler = api.NewRouter(api.Deps{
		Users:      user.NewService(user.NewRepository(database), addressRepo, tokens),
		Products:   productSvc,
		Categories: category.NewService(category.NewRepository(database)),
		Carts:      cart.NewService(cart.NewRepository(database), productSvc),
		Addresses:  address.NewService(addressRepo),
		Delivery:   deliverySvc,
		Orders:     orderSvc,
		Payments: payment.NewService(
			payment.NewRepository(database),
			orderRepo,
			payment.NewStripeGateway(cfg.StripeSecretKey),
			publisher,
		),

		Tokens:       tokens,
		Limiter:      a.limiter,
		Idempotency:  idem,
		Metrics:      reg,
		DB:           database,
		CORSOrigin:   cfg.CORSOrigin,
		SecureCookie: cfg.IsProduction(),
	})

	return a
}

func (a *app) Close() {
	a.limiter.Stop()
	if a.producer != nil {
		a.producer.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	log.Info("database connection established")

	a := newApp(ctx, cfg, database)
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := listenFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.reconciler.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}
