package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/sol/internal/models"
)

// AuditEvent is one audit trail record.
type AuditEvent struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Payload    map[string]any
}

// AuditLogger persists audit events.
type AuditLogger interface {
	Record(ctx context.Context, event AuditEvent) error
}

// EmailDispatcher hands an order confirmation to the mail pipeline.
type EmailDispatcher interface {
	SendOrderConfirmation(ctx context.Context, order OrderSummary) error
}

// EventPublisher broadcasts order lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AdminNotifier pings store staff about new orders.
type AdminNotifier interface {
	NotifyNewOrder(ctx context.Context, order OrderSummary) error
}

// OrderSummary is the notification view of an order.
type OrderSummary struct {
	ID            uuid.UUID            `json:"id"`
	OrderNumber   string               `json:"order_number"`
	UserID        uuid.UUID            `json:"user_id"`
	Items         []OrderSummaryItem   `json:"items"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Discount      decimal.Decimal      `json:"discount_amount"`
	Shipping      decimal.Decimal      `json:"shipping_cost"`
	Tax           decimal.Decimal      `json:"tax_amount"`
	Total         decimal.Decimal      `json:"total_amount"`
	Currency      string               `json:"currency"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	OrderStatus   models.OrderStatus   `json:"order_status"`
	Lang          Lang                 `json:"lang"`
	PlacedAt      time.Time            `json:"placed_at"`
}

type OrderSummaryItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total_price"`
}

// Summarize builds the notification view of a persisted order.
func Summarize(order *models.Order, lang Lang) OrderSummary {
	items := make([]OrderSummaryItem, 0, len(order.Items))
	for _, it := range order.Items {
		name := it.ProductSnapshot.Name
		if it.ProductSnapshot.Variant != nil && it.ProductSnapshot.Variant.Name != "" {
			name += " - " + it.ProductSnapshot.Variant.Name
		}
		items = append(items, OrderSummaryItem{
			Name:      name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.TotalPrice,
		})
	}
	return OrderSummary{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Items:         items,
		Subtotal:      order.Subtotal,
		Discount:      order.DiscountAmount,
		Shipping:      order.ShippingCost,
		Tax:           order.TaxAmount,
		Total:         order.TotalAmount,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		OrderStatus:   order.OrderStatus,
		Lang:          lang,
		PlacedAt:      order.PlacedAt,
	}
}

// Notifier runs post-commit side effects. Every call returns immediately;
// each side effect gets its own deadline and failures are only logged.
type Notifier struct {
	email   EmailDispatcher
	audit   AuditLogger
	events  EventPublisher
	admin   AdminNotifier
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier wires the collaborators. Any of them may be nil.
func NewNotifier(email EmailDispatcher, audit AuditLogger, events EventPublisher, admin AdminNotifier, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{email: email, audit: audit, events: events, admin: admin, timeout: timeout}
}

// OrderCreated fans out the confirmation email, audit entry, order event and
// staff notification.
func (n *Notifier) OrderCreated(order OrderSummary) {
	if n == nil {
		return
	}
	if n.email != nil {
		n.dispatch("order confirmation email", func(ctx context.Context) error {
			return n.email.SendOrderConfirmation(ctx, order)
		})
	}
	n.recordAudit(AuditEvent{
		ActorID:    &order.UserID,
		Action:     "order.created",
		EntityType: "order",
		EntityID:   order.ID,
		Payload: map[string]any{
			"order_number": order.OrderNumber,
			"total_amount": order.Total.String(),
		},
	})
	n.publish("order.created", order)
	if n.admin != nil {
		n.dispatch("admin notification", func(ctx context.Context) error {
			return n.admin.NotifyNewOrder(ctx, order)
		})
	}
}

// OrderCancelled records a cancellation by actor.
func (n *Notifier) OrderCancelled(order OrderSummary, actor uuid.UUID, reason string) {
	if n == nil {
		return
	}
	n.recordAudit(AuditEvent{
		ActorID:    &actor,
		Action:     "order.cancelled",
		EntityType: "order",
		EntityID:   order.ID,
		Payload:    map[string]any{"order_number": order.OrderNumber, "reason": reason},
	})
	n.publish("order.cancelled", order)
}

// OrderUpdated records an admin change to an order.
func (n *Notifier) OrderUpdated(order OrderSummary, actor uuid.UUID, changes map[string]any) {
	if n == nil {
		return
	}
	n.recordAudit(AuditEvent{
		ActorID:    &actor,
		Action:     "order.updated",
		EntityType: "order",
		EntityID:   order.ID,
		Payload:    changes,
	})
	n.publish("order.status_changed", order)
}

// Wait blocks until in-flight notifications finish or time out.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) recordAudit(event AuditEvent) {
	if n.audit == nil {
		return
	}
	n.dispatch("audit "+event.Action, func(ctx context.Context) error {
		return n.audit.Record(ctx, event)
	})
}

func (n *Notifier) publish(routingKey string, order OrderSummary) {
	if n.events == nil {
		return
	}
	n.dispatch("event "+routingKey, func(ctx context.Context) error {
		return n.events.Publish(ctx, routingKey, order)
	})
}

func (n *Notifier) dispatch(name string, fn func(ctx context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic: %v", r)
				}
			}()
			done <- fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				log.Printf("[Notify] %s failed: %v", name, err)
			}
		case <-ctx.Done():
			log.Printf("[Notify] %s timed out after %s", name, n.timeout)
		}
	}()
}
