package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/sol/internal/config"
	"github.com/example/sol/internal/handlers"
	"github.com/example/sol/internal/middleware"
	"github.com/example/sol/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, orders *services.OrderService, idempotency middleware.IdempotencyStore) {
	lang := services.Lang(cfg.DefaultLanguage)

	orderHandler := handlers.NewOrderHandler(db, orders, lang)
	adminHandler := handlers.NewAdminHandler(db, orders, lang)
	shippingHandler := handlers.NewShippingHandler(db, orders.Shipping())
	profileHandler := handlers.NewProfileHandler(db)

	auth := middleware.AuthMiddleware(cfg)

	api := app.Group("/api")

	// Public shipping quote
	api.Get("/shipping/quote", shippingHandler.Quote)

	// Customer orders
	orderRoutes := api.Group("/orders", auth)
	orderRoutes.Post("/", middleware.Idempotency(idempotency, cfg.IdempotencyTTL), orderHandler.CreateOrder)
	orderRoutes.Post("/quote", orderHandler.Quote)
	orderRoutes.Post("/cancel", orderHandler.CancelOrder)
	orderRoutes.Get("/", orderHandler.ListOrders)
	orderRoutes.Get("/:id", orderHandler.GetOrder)
	orderRoutes.Post("/:id/cancel", orderHandler.CancelOrder)

	// Addresses and cart
	profile := api.Group("/profile", auth)
	profile.Get("/addresses", profileHandler.ListAddresses)
	profile.Post("/addresses", profileHandler.CreateAddress)
	profile.Delete("/addresses/:id", profileHandler.ArchiveAddress)

	cart := api.Group("/cart", auth)
	cart.Get("/", profileHandler.GetCart)
	cart.Post("/", profileHandler.AddCartItem)
	cart.Patch("/:id", profileHandler.UpdateCartItem)
	cart.Delete("/:id", profileHandler.RemoveCartItem)

	// Admin
	admin := api.Group("/admin", auth, middleware.AdminOnly())
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Patch("/orders/:id", adminHandler.UpdateOrder)
	admin.Get("/orders/:id/movements", adminHandler.ListMovements)
}
