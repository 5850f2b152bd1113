package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrImmutableRecord is returned by hooks on append-only tables.
var ErrImmutableRecord = errors.New("record is append-only")

type Order struct {
	BaseModel
	OrderNumber        string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID             uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	AddressID          uuid.UUID       `gorm:"type:uuid" json:"address_id"`
	Subtotal           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	ShippingCost       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping_cost"`
	TaxAmount          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax_amount"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency           string          `json:"currency"`
	PaymentMethod      PaymentMethod   `gorm:"type:varchar(32);not null" json:"payment_method"`
	PaymentStatus      PaymentStatus   `gorm:"type:varchar(32);not null;index" json:"payment_status"`
	OrderStatus        OrderStatus     `gorm:"type:varchar(32);not null;index" json:"order_status"`
	ShippingStatus     ShippingStatus  `gorm:"type:varchar(32);not null" json:"shipping_status"`
	CouponID           *uuid.UUID      `gorm:"type:uuid" json:"coupon_id"`
	CouponCode         *string         `json:"coupon_code"`
	SenderNumber       *string         `json:"sender_number"`
	TrackingNumber     *string         `json:"tracking_number"`
	CustomerNotes      *string         `json:"customer_notes"`
	AdminNotes         *string         `json:"admin_notes"`
	CancellationReason *string         `json:"cancellation_reason"`
	CancelledAt        *time.Time      `json:"cancelled_at"`
	PlacedAt           time.Time       `gorm:"index" json:"placed_at"`
	Items              []OrderItem     `json:"items,omitempty"`
	Timeline           []OrderTimeline `json:"timeline,omitempty"`
}

// ProductSnapshot freezes what the customer saw when buying.
type ProductSnapshot struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Brand       string           `json:"brand,omitempty"`
	Category    string           `json:"category,omitempty"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	Variant     *VariantSnapshot `json:"variant,omitempty"`
	CapturedAt  time.Time        `json:"captured_at"`
}

type VariantSnapshot struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Size       string          `json:"size,omitempty"`
	Material   string          `json:"material,omitempty"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// OrderItem is one purchased line. Rows are written once with the order and
// never updated or deleted.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	VariantID       *uuid.UUID      `gorm:"type:uuid" json:"variant_id"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	ProductSnapshot ProductSnapshot `gorm:"type:jsonb;serializer:json;not null" json:"product_snapshot"`
}

func (i *OrderItem) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableRecord }
func (i *OrderItem) BeforeDelete(tx *gorm.DB) error { return ErrImmutableRecord }

// OrderTimeline is one entry of an order's status history.
type OrderTimeline struct {
	BaseModel
	OrderID     uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	Status      TimelineStatus `gorm:"type:varchar(32);not null" json:"status"`
	Description string         `json:"description"`
	Note        string         `json:"note,omitempty"`
}

func (t *OrderTimeline) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableRecord }
func (t *OrderTimeline) BeforeDelete(tx *gorm.DB) error { return ErrImmutableRecord }
