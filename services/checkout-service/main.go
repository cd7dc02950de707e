package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	aws_pkg "github.com/yashrajoria/shopping-cart-backend/pkg/aws"
	ddb "github.com/yashrajoria/shopping-cart-backend/pkg/dynamodb"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/config"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/repository"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/routes"
	"github.com/yashrajoria/shopping-cart-backend/services/checkout-service/services"
	"github.com/yashrajoria/shopping-cart-backend/services/common/idempotency"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		logger.Log.Fatal("failed to load AWS config", zap.Error(err))
	}

	store := repository.NewDynamoOrderStore(ddb.NewClientFromConfig(awsCfg), cfg.OrderTableName)
	guard := newGuard(cfg)
	snsClient := aws_pkg.NewSNSClient(awsCfg)

	metrics, err := aws_pkg.NewMetricsClient(ctx)
	if err != nil {
		logger.Log.Warn("metrics client unavailable", zap.Error(err))
		metrics = nil
	}

	processor := services.NewProcessor(store, guard, snsClient, cfg.AckTopicARN, metrics)

	// buffered ingress: the event bus routes CartCheckout envelopes into
	// this queue
	if cfg.CheckoutQueueURL != "" {
		consumer := services.NewSQSCheckoutConsumer(aws_pkg.NewSQSConsumer(awsCfg, cfg.CheckoutQueueURL), processor)
		go consumer.Start(ctx)
	} else {
		logger.Log.Warn("CHECKOUT_QUEUE_URL not set, queue ingress disabled")
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.RegisterCheckoutRoutes(router, processor)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Checkout Service is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("shutdown error", zap.Error(err))
	}
	logger.Log.Info("server shutdown complete")
}

func newGuard(cfg config.Config) idempotency.Guard {
	if cfg.RedisURL == "" {
		logger.Log.Warn("REDIS_URL not set, using in-process idempotency guard")
		return idempotency.NewMemoryGuard()
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("invalid REDIS_URL", zap.Error(err))
	}
	return idempotency.NewRedisGuard(redis.NewClient(opts), idempotencyTTL)
}
