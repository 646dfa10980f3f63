package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"order-timeline-service/internal/client"
	"order-timeline-service/internal/config"
	"order-timeline-service/internal/controller"
	"order-timeline-service/internal/middleware"
	"order-timeline-service/internal/rabbit"
	"order-timeline-service/internal/service"
	"order-timeline-service/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var log *zap.Logger
	if cfg.AppEnv == "production" {
		log, _ = zap.NewProduction()
	} else {
		log, _ = zap.NewDevelopment()
	}
	defer log.Sync()

	// KV backend for timelines and drafts
	kv := buildKV(cfg, log)

	timelines := store.NewTimelineStore(kv)
	drafts := store.NewDraftStore(kv)

	// External collaborators
	orders := client.NewOrdersClient(cfg.OrdersURL)
	authService := service.NewAuthService(cfg.AuthURL)

	svc := service.NewTimelineService(orders, timelines, drafts, log)

	// Handlers
	ctrl := controller.NewTimelineController(svc)

	// Router
	r := gin.Default()
	r.Use(middleware.RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Protected routes (token required)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.GET("/orders/:orderId/timeline", ctrl.GetTimeline)
	auth.GET("/orders/:orderId/transitions", ctrl.GetTransitions)
	auth.PATCH("/orders/:orderId/status", ctrl.UpdateStatus)

	auth.PUT("/orders/:orderId/products/:productId/rating-draft", ctrl.SaveRatingDraft)
	auth.GET("/orders/:orderId/products/:productId/rating-draft", ctrl.GetRatingDraft)
	auth.DELETE("/orders/:orderId/products/:productId/rating-draft", ctrl.DeleteRatingDraft)

	// RabbitMQ consumer for backend-pushed status updates
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal("connecting to RabbitMQ", zap.Error(err))
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("opening RabbitMQ channel", zap.Error(err))
	}
	rabbit.SetupConsumers(ch, svc, log)

	log.Info("order timeline service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// buildKV picks the persistence backend from config. Memory is for local
// runs and tests only; it does not survive a restart.
func buildKV(cfg *config.Config, log *zap.Logger) store.KV {
	switch cfg.StoreBackend {
	case "redis":
		return store.NewRedisKV(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	case "memory":
		log.Warn("using in-memory store; timelines will not survive restarts")
		return store.NewMemoryKV()
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("connecting to MongoDB", zap.Error(err))
		}
		kv := store.NewMongoKV(mc.Database(cfg.MongoDBName))
		if err := kv.EnsureIndexes(ctx); err != nil {
			log.Warn("creating kv indexes", zap.Error(err))
		}
		return kv
	}
}
