package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/sol/internal/services"
)

// ShippingHandler serves public shipping quotes.
type ShippingHandler struct {
	db       *gorm.DB
	resolver *services.ShippingRateResolver
}

func NewShippingHandler(db *gorm.DB, resolver *services.ShippingRateResolver) *ShippingHandler {
	return &ShippingHandler{db: db, resolver: resolver}
}

// Quote resolves the shipping cost for a location and order value.
func (h *ShippingHandler) Quote(c *fiber.Ctx) error {
	governorateID, err := uuid.Parse(c.Query("governorate_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid governorate_id")
	}
	path := services.LocationPath{GovernorateID: governorateID}

	if raw := c.Query("center_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid center_id")
		}
		path.CenterID = &id
	}
	if raw := c.Query("village_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid village_id")
		}
		path.VillageID = &id
	}

	value := decimal.Zero
	if raw := c.Query("order_value"); raw != "" {
		value, err = decimal.NewFromString(raw)
		if err != nil || value.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid order_value")
		}
	}

	cost, err := h.resolver.Resolve(h.db.WithContext(c.UserContext()), path, value)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"location":      path,
			"order_value":   value,
			"shipping_cost": cost,
		},
	})
}
