package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/example/sol/internal/config"
	"github.com/example/sol/internal/database"
	"github.com/example/sol/internal/middleware"
	"github.com/example/sol/internal/routes"
	"github.com/example/sol/internal/services"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	var idempotency middleware.IdempotencyStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Redis] ping failed, idempotency keys disabled: %v", err)
		} else {
			idempotency = middleware.NewRedisIdempotencyStore(client)
		}
		cancel()
	}

	// Email jobs and order events share one exchange.
	var email services.EmailDispatcher
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		publisher, err := services.NewRabbitPublisher(cfg.RabbitMQURL, cfg.NotificationExchange)
		if err != nil {
			log.Printf("[RabbitMQ] connect failed, notifications disabled: %v", err)
		} else {
			defer publisher.Close()
			email = publisher
			events = publisher
		}
	}

	var admin services.AdminNotifier
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	if telegram.Enabled() {
		admin = telegram
	}

	notifier := services.NewNotifier(email, services.NewAuditService(db), events, admin, cfg.NotificationTimeout)
	orders := services.NewOrderService(db, cfg, notifier)

	app := fiber.New(fiber.Config{
		AppName:      "Sol Orders",
		ErrorHandler: routes.ErrorHandler(services.Lang(cfg.DefaultLanguage)),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "status": "database unavailable"})
		}
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	routes.Register(app, db, cfg, orders, idempotency)

	go func() {
		log.Printf("Starting server on :%s", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("fiber.Listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	notifier.Wait()
}
