package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/sol/internal/middleware"
	"github.com/example/sol/internal/models"
	"github.com/example/sol/internal/services"
	"github.com/example/sol/internal/utils"
)

// AdminHandler manages admin-only order endpoints.
type AdminHandler struct {
	db     *gorm.DB
	orders *services.OrderService
	lang   services.Lang
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.OrderService, defaultLang services.Lang) *AdminHandler {
	return &AdminHandler{db: db, orders: orders, lang: defaultLang}
}

// ListAllOrders returns all orders with pagination and filtering.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("order_status = ?", status)
	}
	if status := c.Query("payment_status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}
	if status := c.Query("shipping_status"); status != "" {
		query = query.Where("shipping_status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("order_number ILIKE ? OR tracking_number ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       orders,
		"pagination": pg.Meta(total),
	})
}

// GetOrder returns any order with items and timeline.
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	order, err := h.orders.FindOrder(c.UserContext(), id, nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateOrderRequest struct {
	OrderStatus    *models.OrderStatus    `json:"order_status"`
	PaymentStatus  *models.PaymentStatus  `json:"payment_status"`
	ShippingStatus *models.ShippingStatus `json:"shipping_status"`
	TrackingNumber *string                `json:"tracking_number"`
	AdminNotes     *string                `json:"admin_notes"`
}

// UpdateOrder applies a partial status update.
func (h *AdminHandler) UpdateOrder(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.AdminUpdate(c.UserContext(), services.AdminUpdateRequest{
		OrderID:        id,
		ActorID:        adminID,
		OrderStatus:    req.OrderStatus,
		PaymentStatus:  req.PaymentStatus,
		ShippingStatus: req.ShippingStatus,
		TrackingNumber: req.TrackingNumber,
		AdminNotes:     req.AdminNotes,
		Lang:           RequestLang(c, h.lang),
	})
	middleware.RecordOrderOperation("admin_update", err == nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListMovements returns the inventory ledger entries of an order.
func (h *AdminHandler) ListMovements(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if _, err := h.orders.FindOrder(c.UserContext(), id, nil); err != nil {
		return err
	}

	db := h.db.WithContext(c.UserContext())
	movements, err := h.orders.Ledger().Movements(db, id)
	if err != nil {
		return err
	}
	net, err := h.orders.Ledger().NetMovement(db, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    movements,
		"net":     net,
	})
}
