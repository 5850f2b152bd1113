package models

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Cancellable reports whether a customer may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus tracks the manual payment confirmation state.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ShippingStatus tracks the parcel.
type ShippingStatus string

const (
	ShippingStatusPending        ShippingStatus = "PENDING"
	ShippingStatusPreparing      ShippingStatus = "PREPARING"
	ShippingStatusShipped        ShippingStatus = "SHIPPED"
	ShippingStatusOutForDelivery ShippingStatus = "OUT_FOR_DELIVERY"
	ShippingStatusDelivered      ShippingStatus = "DELIVERED"
	ShippingStatusReturned       ShippingStatus = "RETURNED"
)

func (s ShippingStatus) Valid() bool {
	switch s {
	case ShippingStatusPending, ShippingStatusPreparing, ShippingStatusShipped,
		ShippingStatusOutForDelivery, ShippingStatusDelivered, ShippingStatusReturned:
		return true
	}
	return false
}

// PaymentMethod is how the customer intends to pay. Wallet methods carry a
// sender number as proof; nothing is charged here.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodBankWallet     PaymentMethod = "BANK_WALLET"
	PaymentMethodDigitalWallet  PaymentMethod = "DIGITAL_WALLET"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCashOnDelivery, PaymentMethodBankWallet, PaymentMethodDigitalWallet:
		return true
	}
	return false
}

// TimelineStatus labels a timeline entry. It covers every OrderStatus plus
// the creation event.
type TimelineStatus string

const TimelineCreated TimelineStatus = "CREATED"

// TimelineFor maps an order status to its timeline label.
func TimelineFor(s OrderStatus) TimelineStatus {
	return TimelineStatus(s)
}

// CouponType selects how a coupon value is applied.
type CouponType string

const (
	CouponTypePercentage  CouponType = "PERCENTAGE"
	CouponTypeFixedAmount CouponType = "FIXED_AMOUNT"
)

// MovementType classifies an inventory movement.
type MovementType string

const (
	MovementSale   MovementType = "SALE"
	MovementReturn MovementType = "RETURN"
)
