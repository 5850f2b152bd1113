package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/sol/internal/config"
	"github.com/example/sol/internal/models"
)

// CheckoutRequest carries everything needed to turn a cart into an order.
type CheckoutRequest struct {
	UserID        uuid.UUID
	AddressID     uuid.UUID
	PaymentMethod models.PaymentMethod
	SenderNumber  *string
	CouponCode    string
	CustomerNotes *string
	Lang          Lang
}

type CheckoutResult struct {
	ID            uuid.UUID            `json:"id"`
	OrderNumber   string               `json:"order_number"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	OrderStatus   models.OrderStatus   `json:"order_status"`
}

type CancelRequest struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	Reason  string
	Lang    Lang
}

type CancelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AdminUpdateRequest is a partial order update. Nil fields are left alone.
type AdminUpdateRequest struct {
	OrderID        uuid.UUID
	ActorID        uuid.UUID
	OrderStatus    *models.OrderStatus
	PaymentStatus  *models.PaymentStatus
	ShippingStatus *models.ShippingStatus
	TrackingNumber *string
	AdminNotes     *string
	Lang           Lang
}

// QuoteResult prices the current cart without reserving anything.
type QuoteResult struct {
	Totals
	Currency   string             `json:"currency"`
	CouponCode *string            `json:"coupon_code,omitempty"`
	Items      []models.OrderItem `json:"items"`
}

// OrderService coordinates checkout, cancellation and admin updates. Each
// operation runs in a single database transaction; notifications go out only
// after commit.
type OrderService struct {
	db        *gorm.DB
	carts     CartStore
	addresses AddressStore
	numbers   *OrderNumberGenerator
	ledger    *InventoryLedger
	coupons   *CouponEvaluator
	shipping  *ShippingRateResolver
	notifier  *Notifier
	currency  string
	taxRate   decimal.Decimal
	now       func() time.Time
}

func NewOrderService(db *gorm.DB, cfg *config.Config, notifier *Notifier) *OrderService {
	return &OrderService{
		db:        db,
		carts:     NewCartStore(),
		addresses: NewAddressStore(),
		numbers:   NewOrderNumberGenerator(cfg.OrderNumberPrefix, cfg.Location()),
		ledger:    NewInventoryLedger(),
		coupons:   NewCouponEvaluator(),
		shipping:  NewShippingRateResolver(cfg.FreeShippingThreshold, cfg.DefaultShippingCost),
		notifier:  notifier,
		currency:  cfg.Currency,
		taxRate:   cfg.TaxRate,
		now:       time.Now,
	}
}

// Ledger exposes the inventory ledger for read-only views.
func (s *OrderService) Ledger() *InventoryLedger { return s.ledger }

// Shipping exposes the shipping resolver for standalone quotes.
func (s *OrderService) Shipping() *ShippingRateResolver { return s.shipping }

// CreateOrder converts the user's cart into an order. Either every write
// commits (order, items, stock, coupon use, cart clear, timeline) or none do.
func (s *OrderService) CreateOrder(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()

		cart, err := s.carts.LockForUser(tx, req.UserID)
		if err != nil {
			return err
		}
		drafts, err := DraftLines(cart, now)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			return ErrEmptyCart
		}

		address, err := s.addresses.FindActiveOwned(tx, req.UserID, req.AddressID)
		if err != nil {
			return err
		}

		subtotal := SumLines(drafts)

		discount := decimal.Zero
		var couponID *uuid.UUID
		var couponCode *string
		if req.CouponCode != "" {
			applied, err := s.coupons.Evaluate(tx, req.CouponCode, subtotal, now)
			if err != nil {
				return err
			}
			discount = applied.Amount
			couponID = &applied.CouponID
			couponCode = &applied.Code
		}

		shippingCost, err := s.shipping.Resolve(tx, PathForAddress(address), subtotal.Sub(discount))
		if err != nil {
			return err
		}

		totals := ComputeTotals(subtotal, discount, shippingCost, s.taxRate)

		number, err := s.numbers.Generate(tx)
		if err != nil {
			return err
		}

		order = models.Order{
			OrderNumber:    number,
			UserID:         req.UserID,
			AddressID:      address.ID,
			Subtotal:       totals.Subtotal,
			DiscountAmount: totals.Discount,
			ShippingCost:   totals.Shipping,
			TaxAmount:      totals.Tax,
			TotalAmount:    totals.Total,
			Currency:       s.currency,
			PaymentMethod:  req.PaymentMethod,
			PaymentStatus:  models.PaymentStatusPending,
			OrderStatus:    models.OrderStatusPending,
			ShippingStatus: models.ShippingStatusPending,
			CouponID:       couponID,
			CouponCode:     couponCode,
			SenderNumber:   req.SenderNumber,
			CustomerNotes:  req.CustomerNotes,
			PlacedAt:       now,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		items := make([]models.OrderItem, len(drafts))
		stock := make([]StockLine, len(drafts))
		for i, d := range drafts {
			items[i] = d.Item
			items[i].OrderID = order.ID
			stock[i] = d.Stock
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items

		if err := s.ledger.Reserve(tx, order.ID, stock); err != nil {
			return err
		}

		if err := s.carts.ClearForUser(tx, req.UserID); err != nil {
			return err
		}

		entry, err := AppendTimeline(tx, order.ID, models.TimelineCreated, req.Lang, "")
		if err != nil {
			return err
		}
		order.Timeline = []models.OrderTimeline{*entry}
		return nil
	})
	if err != nil {
		logUnexpected("checkout", req.UserID, err)
		return nil, err
	}

	log.Printf("[Order] %s placed by %s, total %s %s", order.OrderNumber, order.UserID, order.TotalAmount, order.Currency)
	s.notifier.OrderCreated(Summarize(&order, req.Lang))

	return &CheckoutResult{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		OrderStatus:   order.OrderStatus,
	}, nil
}

// CancelOrder cancels a PENDING or CONFIRMED order owned by the caller and
// puts its stock back.
func (s *OrderService) CancelOrder(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockOrder(tx, req.OrderID, &req.UserID)
		if err != nil {
			return err
		}
		if !locked.OrderStatus.Cancellable() {
			return ErrNotCancellable
		}
		order = *locked
		return s.cancelLocked(tx, &order, req.Reason, req.Lang)
	})
	if err != nil {
		logUnexpected("cancel", req.UserID, err)
		return nil, err
	}

	log.Printf("[Order] %s cancelled by %s", order.OrderNumber, req.UserID)
	s.notifier.OrderCancelled(Summarize(&order, req.Lang), req.UserID, req.Reason)

	return &CancelResult{Success: true, Message: Describe("message.order_cancelled", req.Lang)}, nil
}

// AdminUpdate applies a partial update. Order status changes must follow the
// transition table; moving to CANCELLED releases stock like a customer
// cancellation.
func (s *OrderService) AdminUpdate(ctx context.Context, req AdminUpdateRequest) (*models.Order, error) {
	if req.OrderStatus == nil && req.PaymentStatus == nil && req.ShippingStatus == nil &&
		req.TrackingNumber == nil && req.AdminNotes == nil {
		return nil, ErrEmptyUpdate
	}
	if req.OrderStatus != nil && !req.OrderStatus.Valid() {
		return nil, ErrInvalidStatus
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return nil, ErrInvalidStatus
	}
	if req.ShippingStatus != nil && !req.ShippingStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	var order models.Order
	changes := map[string]any{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockOrder(tx, req.OrderID, nil)
		if err != nil {
			return err
		}
		order = *locked

		statusChanged := req.OrderStatus != nil && *req.OrderStatus != order.OrderStatus
		if statusChanged && !order.OrderStatus.CanTransition(*req.OrderStatus) {
			return ErrInvalidTransition
		}

		updates := map[string]any{}
		if req.PaymentStatus != nil && *req.PaymentStatus != order.PaymentStatus {
			updates["payment_status"] = *req.PaymentStatus
			changes["payment_status"] = *req.PaymentStatus
		}
		if req.ShippingStatus != nil && *req.ShippingStatus != order.ShippingStatus {
			updates["shipping_status"] = *req.ShippingStatus
			changes["shipping_status"] = *req.ShippingStatus
		}
		if req.TrackingNumber != nil {
			updates["tracking_number"] = *req.TrackingNumber
			changes["tracking_number"] = *req.TrackingNumber
		}
		if req.AdminNotes != nil {
			updates["admin_notes"] = *req.AdminNotes
			changes["admin_notes"] = *req.AdminNotes
		}
		if len(updates) > 0 {
			if err := tx.Model(&order).Updates(updates).Error; err != nil {
				return err
			}
		}

		if statusChanged {
			changes["order_status"] = *req.OrderStatus
			changes["previous_order_status"] = order.OrderStatus
			if *req.OrderStatus == models.OrderStatusCancelled {
				reason := ""
				if req.AdminNotes != nil {
					reason = *req.AdminNotes
				}
				if err := s.cancelLocked(tx, &order, reason, req.Lang); err != nil {
					return err
				}
			} else {
				if err := tx.Model(&order).Update("order_status", *req.OrderStatus).Error; err != nil {
					return err
				}
				note := ""
				if req.AdminNotes != nil {
					note = *req.AdminNotes
				}
				if _, err := AppendTimeline(tx, order.ID, models.TimelineFor(*req.OrderStatus), req.Lang, note); err != nil {
					return err
				}
			}
		}

		if err := tx.First(&order, "id = ?", order.ID).Error; err != nil {
			return err
		}
		return loadOrderDetails(tx, &order)
	})
	if err != nil {
		logUnexpected("admin update", req.ActorID, err)
		return nil, err
	}

	if len(changes) > 0 {
		log.Printf("[Order] %s updated by admin %s", order.OrderNumber, req.ActorID)
		s.notifier.OrderUpdated(Summarize(&order, req.Lang), req.ActorID, changes)
	}
	return &order, nil
}

// Quote prices the current cart for addressID without side effects.
func (s *OrderService) Quote(ctx context.Context, userID, addressID uuid.UUID, couponCode string) (*QuoteResult, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	cart, err := s.carts.ListForUser(db, userID)
	if err != nil {
		return nil, err
	}
	drafts, err := DraftLines(cart, now)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, ErrEmptyCart
	}

	address, err := s.addresses.FindActiveOwned(db, userID, addressID)
	if err != nil {
		return nil, err
	}

	subtotal := SumLines(drafts)
	result := &QuoteResult{Currency: s.currency}

	discount := decimal.Zero
	if couponCode != "" {
		applied, err := s.coupons.Preview(db, couponCode, subtotal, now)
		if err != nil {
			return nil, err
		}
		discount = applied.Amount
		result.CouponCode = &applied.Code
	}

	shippingCost, err := s.shipping.Resolve(db, PathForAddress(address), subtotal.Sub(discount))
	if err != nil {
		return nil, err
	}

	result.Totals = ComputeTotals(subtotal, discount, shippingCost, s.taxRate)
	result.Items = make([]models.OrderItem, len(drafts))
	for i, d := range drafts {
		result.Items[i] = d.Item
	}
	return result, nil
}

// FindOrder loads an order with items and timeline. A non-nil owner
// restricts the lookup to that user's orders.
func (s *OrderService) FindOrder(ctx context.Context, orderID uuid.UUID, owner *uuid.UUID) (*models.Order, error) {
	db := s.db.WithContext(ctx)
	query := db.Where("id = ?", orderID)
	if owner != nil {
		query = query.Where("user_id = ?", *owner)
	}

	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := loadOrderDetails(db, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// cancelLocked marks a locked order cancelled, returns its stock and coupon
// use, and appends the CANCELLED timeline entry.
func (s *OrderService) cancelLocked(tx *gorm.DB, order *models.Order, reason string, lang Lang) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return err
	}

	now := s.now()
	updates := map[string]any{
		"order_status": models.OrderStatusCancelled,
		"cancelled_at": now,
	}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return err
	}
	order.OrderStatus = models.OrderStatusCancelled
	order.CancelledAt = &now
	if reason != "" {
		order.CancellationReason = &reason
	}

	lines := make([]StockLine, len(items))
	for i, it := range items {
		lines[i] = StockLine{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			Quantity:    it.Quantity,
			ProductName: it.ProductSnapshot.Name,
		}
	}
	// Coupon before stock rows, the same order checkout takes them in.
	if order.CouponID != nil {
		if err := s.coupons.Release(tx, *order.CouponID); err != nil {
			return err
		}
	}

	if err := s.ledger.Release(tx, order.ID, lines, "order cancelled"); err != nil {
		return err
	}

	if _, err := AppendTimeline(tx, order.ID, models.TimelineFor(models.OrderStatusCancelled), lang, reason); err != nil {
		return err
	}
	order.Items = items
	return nil
}

func lockOrder(tx *gorm.DB, orderID uuid.UUID, owner *uuid.UUID) (*models.Order, error) {
	query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", orderID)
	if owner != nil {
		query = query.Where("user_id = ?", *owner)
	}

	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func loadOrderDetails(db *gorm.DB, order *models.Order) error {
	if err := db.Where("order_id = ?", order.ID).Order("created_at asc, id asc").Find(&order.Items).Error; err != nil {
		return err
	}
	timeline, err := LoadTimeline(db, order.ID)
	if err != nil {
		return err
	}
	order.Timeline = timeline
	return nil
}

func logUnexpected(op string, actor uuid.UUID, err error) {
	var orderErr *OrderError
	if errors.As(err, &orderErr) {
		return
	}
	log.Printf("[Order] %s failed for %s: %v", op, actor, err)
}
