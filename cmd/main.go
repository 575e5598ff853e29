package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/cache"
	"github.com/kpmisthah/twaybastore-admin/internal/chat"
	"github.com/kpmisthah/twaybastore-admin/internal/events"
	"github.com/kpmisthah/twaybastore-admin/internal/guard"
	"github.com/kpmisthah/twaybastore-admin/internal/handler"
	"github.com/kpmisthah/twaybastore-admin/internal/mail"
	"github.com/kpmisthah/twaybastore-admin/internal/repository"
	"github.com/kpmisthah/twaybastore-admin/internal/service"
	"github.com/kpmisthah/twaybastore-admin/internal/upload"
	"github.com/kpmisthah/twaybastore-admin/pkg/config"
	"github.com/kpmisthah/twaybastore-admin/pkg/middleware"
	pkgtls "github.com/kpmisthah/twaybastore-admin/pkg/tls"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	var tlsCfg pkgtls.TLSConfig
	if err := envconfig.Process("", &tlsCfg); err != nil {
		log.Fatal("Failed to load TLS config:", err)
	}

	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}

	redisCache, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisCache.Close()

	imageStore, err := upload.NewS3ImageStore(context.Background(), cfg.AWSRegion, cfg.ImageBucket, cfg.ImageBaseURL, logger)
	if err != nil {
		log.Fatal("Failed to create S3 image store:", err)
	}

	// Repositories
	productRepo := repository.NewProductRepository(dynamoClient, cfg.ProductTableName)
	orderRepo := repository.NewOrderRepository(dynamoClient, cfg.OrderTableName)
	userRepo := repository.NewUserRepository(dynamoClient, cfg.UserTableName)

	// Kafka: outbound audit events, inbound order-created stream
	producer := events.NewKafkaProducer(cfg.KafkaBrokers, logger)
	defer producer.Close()

	consumer := events.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, orderRepo, logger)
	consumer.Start()
	defer consumer.Stop()

	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})

	// Services
	analyticsService := service.NewAnalyticsService(redisCache, logger)
	productService := service.NewProductService(productRepo, redisCache, logger)
	inventoryService := service.NewInventoryService(productRepo, producer, redisCache, cfg.StockAdjustTimeout, logger)
	orderService := service.NewOrderService(orderRepo, guard.NewOrderStatusGuard(), producer, logger)
	userService := service.NewUserService(userRepo, logger)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	broadcastService := service.NewBroadcastService(userRepo, mailer, logger)

	// Handlers
	productHandler := handler.NewProductHandler(productService, analyticsService, logger)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	broadcastHandler := handler.NewBroadcastHandler(broadcastService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	uploadHandler := handler.NewUploadHandler(imageStore, logger)

	hub := chat.NewHub(logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	adminOnly := middleware.RequireAdmin(cfg.JWTSecret)

	// Routes. Paths are fixed: the dashboard and storefront depend on
	// every one of them verbatim.
	router.POST("/admin/auth/login", authHandler.Login)

	router.GET("/products", productHandler.ListProducts)
	router.GET("/products/:id", productHandler.GetProduct)
	router.POST("/products", adminOnly, productHandler.CreateProduct)
	router.PUT("/products/:id", adminOnly, productHandler.UpdateProduct)
	router.DELETE("/products/:id", adminOnly, productHandler.DeleteProduct)

	router.PATCH("/admin/products/:id/add-stock", adminOnly, inventoryHandler.AddStock)
	router.PATCH("/admin/products/:id/adjust-stock", adminOnly, inventoryHandler.AdjustStock)

	router.GET("/orders/admin/orders", adminOnly, orderHandler.ListOrders)
	router.PUT("/orders/:id/status", adminOnly, orderHandler.ChangeStatus)

	router.GET("/users", adminOnly, userHandler.ListUsers)
	router.PUT("/users/ban/:id", adminOnly, userHandler.BanUser)
	router.PUT("/users/unban/:id", adminOnly, userHandler.UnbanUser)

	router.POST("/admin/send-broadcast", adminOnly, broadcastHandler.SendBroadcast)

	router.POST("/upload/product-image", adminOnly, uploadHandler.UploadProductImage)

	router.GET("/analytics/search", adminOnly, analyticsHandler.TopSearches)
	router.GET("/analytics/pages", adminOnly, analyticsHandler.TopPages)
	router.GET("/category-clicks", adminOnly, analyticsHandler.CategoryClicks)
	router.POST("/category-clicks", analyticsHandler.RecordCategoryClick)

	router.GET("/ws/support", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	serverTLS, err := pkgtls.LoadTLSConfig(&tlsCfg, logger)
	if err != nil {
		log.Fatal("Failed to load TLS config:", err)
	}
	defer pkgtls.Cleanup()

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		var err error
		if serverTLS != nil {
			srv.TLSConfig = serverTLS
			go pkgtls.WatchCertificates(logger)
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
