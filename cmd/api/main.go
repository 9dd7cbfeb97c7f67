package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/bitesofsouth/ordering-backend/api/routes"
	"github.com/bitesofsouth/ordering-backend/internal/cart"
	"github.com/bitesofsouth/ordering-backend/internal/checkout"
	"github.com/bitesofsouth/ordering-backend/internal/coupons"
	"github.com/bitesofsouth/ordering-backend/internal/menu"
	"github.com/bitesofsouth/ordering-backend/internal/orders"
	"github.com/bitesofsouth/ordering-backend/internal/rewards"
	"github.com/bitesofsouth/ordering-backend/pkg/config"
	"github.com/bitesofsouth/ordering-backend/pkg/db"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
	"github.com/bitesofsouth/ordering-backend/pkg/metrics"
	"github.com/bitesofsouth/ordering-backend/pkg/migrate"
	"github.com/bitesofsouth/ordering-backend/pkg/payments/razorpay"
	"github.com/bitesofsouth/ordering-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRedisStore(redisClient))
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(coupons.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	menuRepo := menu.NewRepository(dbClient.DB())

	rewardService, err := rewards.NewService(rewards.NewRepository(dbClient.DB()), menuRepo, cartService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create rewards service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.Deps{
		Carts:      cartService,
		Coupons:    couponService,
		Rewards:    rewardService,
		OrdersRepo: ordersRepo,
		Tx:         dbClient,
		Gateway:    gateway,
		Metrics:    metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer),
		Log:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Menu:     menuRepo,
			Carts:    cartService,
			Coupons:  couponService,
			Rewards:  rewardService,
			Orders:   ordersService,
			Checkout: checkoutService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	); err != nil {
		logg.Error(ctx, "error during shutdown", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
