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
	"go.uber.org/zap"

	aws_pkg "github.com/yashrajoria/shopping-cart-backend/pkg/aws"
	ddb "github.com/yashrajoria/shopping-cart-backend/pkg/dynamodb"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/config"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/repository"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/routes"
	"github.com/yashrajoria/shopping-cart-backend/services/cart-service/services"
	"github.com/yashrajoria/shopping-cart-backend/services/common/logger"
)

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

	store := repository.NewDynamoCartStore(ddb.NewClientFromConfig(awsCfg), cfg.CartTableName)
	publisher := aws_pkg.NewEventBridgePublisher(awsCfg, cfg.EventBusName)
	svc := services.NewCartService(store, publisher, cfg)

	if metrics, err := aws_pkg.NewMetricsClient(ctx); err != nil {
		logger.Log.Warn("metrics client unavailable", zap.Error(err))
	} else {
		svc.WithMetrics(metrics)
	}

	// acknowledgment consumer: clears carts once orders are durably recorded
	if cfg.AckQueueURL != "" {
		ackConsumer := services.NewAckConsumer(aws_pkg.NewSQSConsumer(awsCfg, cfg.AckQueueURL), svc)
		go ackConsumer.Start(ctx)
	} else {
		logger.Log.Warn("ACK_QUEUE_URL not set, carts will not be cleared after checkout")
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.RegisterCartRoutes(router, svc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Cart Service is running", zap.String("port", cfg.Port))
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
