package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/sol/internal/middleware"
	"github.com/example/sol/internal/models"
	"github.com/example/sol/internal/services"
	"github.com/example/sol/internal/utils"
)

// OrderHandler manages customer order endpoints.
type OrderHandler struct {
	db     *gorm.DB
	orders *services.OrderService
	lang   services.Lang
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService, defaultLang services.Lang) *OrderHandler {
	return &OrderHandler{db: db, orders: orders, lang: defaultLang}
}

type createOrderRequest struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
	SenderNumber  string `json:"sender_number"`
	CouponCode    string `json:"coupon_code"`
	CustomerNotes string `json:"customer_notes"`
}

// CreateOrder turns the caller's cart into an order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid address_id")
	}

	result, err := h.orders.CreateOrder(c.UserContext(), services.CheckoutRequest{
		UserID:        userID,
		AddressID:     addressID,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		SenderNumber:  optionalString(req.SenderNumber),
		CouponCode:    req.CouponCode,
		CustomerNotes: optionalString(req.CustomerNotes),
		Lang:          RequestLang(c, h.lang),
	})
	middleware.RecordOrderOperation("checkout", err == nil)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": result})
}

type quoteRequest struct {
	AddressID  string `json:"address_id"`
	CouponCode string `json:"coupon_code"`
}

// Quote prices the caller's cart without placing an order.
func (h *OrderHandler) Quote(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid address_id")
	}

	quote, err := h.orders.Quote(c.UserContext(), userID, addressID, req.CouponCode)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": quote})
}

// ListOrders returns orders for authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Order{}).Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("order_status = ?", status)
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

// GetOrder returns one of the caller's orders with items and timeline.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c)
	if err != nil {
		return err
	}

	order, err := h.orders.FindOrder(c.UserContext(), id, &userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// CancelOrder cancels one of the caller's orders. The order id comes from the
// path or, on the legacy route, from the body.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req cancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	rawID := c.Params("id")
	if rawID == "" {
		rawID = req.OrderID
	}
	orderID, err := uuid.Parse(rawID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	result, err := h.orders.CancelOrder(c.UserContext(), services.CancelRequest{
		OrderID: orderID,
		UserID:  userID,
		Reason:  req.Reason,
		Lang:    RequestLang(c, h.lang),
	})
	middleware.RecordOrderOperation("cancel", err == nil)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
