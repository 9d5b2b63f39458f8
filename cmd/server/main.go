package main

import (
	"log"
	"os"
	"time"

	"fulfillment-service/internal/controllers/http"
	"fulfillment-service/internal/infra/channels"
	mmysql "fulfillment-service/internal/infra/mysql"
	"fulfillment-service/internal/infra/rabbitmq"
	mysqlrepo "fulfillment-service/internal/repository/mysql"
	"fulfillment-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	pricingRepo := mysqlrepo.NewPricingRuleRepository(db)
	notificationRepo := mysqlrepo.NewNotificationRepository(db)
	auditRepo := mysqlrepo.NewAuditLogRepository(db)
	refRepo := mysqlrepo.NewReferenceRepository(db)

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "fulfillment.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	email := channels.NewSMTPSenderFromEnv()
	sms := channels.NewHTTPSMSSender(os.Getenv("SMS_GATEWAY_URL"), os.Getenv("SMS_FROM"), 2*time.Second)
	registry := channels.NewRegistry()

	notifier := services.NewNotificationService(notificationRepo, refRepo, email, sms, registry)
	auditor := services.NewAuditService(auditRepo, refRepo)
	inventory := services.NewInventoryService(productRepo, notifier)
	pricing := services.NewPricingService(productRepo, pricingRepo)

	orders := services.NewOrderService(orderRepo, productRepo, refRepo, inventory, notifier, auditor, publisher)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST") + ":6379",
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	handler := http.NewHandler(orders, notifier, pricing, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting fulfillment service on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
