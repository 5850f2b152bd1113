package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusDelivered, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusCancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusConfirmed.Cancellable())
	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, OrderStatus("PENDING").Valid())
	assert.False(t, OrderStatus("pending").Valid())
	assert.True(t, PaymentMethod("BANK_WALLET").Valid())
	assert.False(t, PaymentMethod("CARD").Valid())
	assert.True(t, ShippingStatus("OUT_FOR_DELIVERY").Valid())
	assert.False(t, PaymentStatus("").Valid())
}

func TestCouponBeforeSave(t *testing.T) {
	c := &Coupon{Code: "  summer10 ", Type: CouponTypePercentage}
	require.NoError(t, c.BeforeSave(nil))
	assert.Equal(t, "SUMMER10", c.Code)

	bad := &Coupon{Code: "X", Type: "BOGO"}
	assert.Error(t, bad.BeforeSave(nil))

	empty := &Coupon{Code: "  ", Type: CouponTypeFixedAmount}
	assert.Error(t, empty.BeforeSave(nil))
}

func TestCouponHasCapacity(t *testing.T) {
	limit := 3
	c := &Coupon{UsageLimit: &limit, UsageCount: 2}
	assert.True(t, c.HasCapacity())
	c.UsageCount = 3
	assert.False(t, c.HasCapacity())
	c.UsageLimit = nil
	assert.True(t, c.HasCapacity())
}

func TestShippingRateScope(t *testing.T) {
	id := uuid.New()

	r := &ShippingRate{GovernorateID: &id}
	scope, ok := r.Scope()
	assert.True(t, ok)
	assert.Equal(t, ScopeGovernorate, scope)

	r.CenterID = &id
	_, ok = r.Scope()
	assert.False(t, ok)
	assert.ErrorIs(t, r.BeforeSave(nil), ErrShippingRateScope)

	assert.ErrorIs(t, (&ShippingRate{}).BeforeSave(nil), ErrShippingRateScope)
}

func TestShippingRateEffectiveAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	r := &ShippingRate{IsActive: true, EffectiveFrom: past}
	assert.True(t, r.EffectiveAt(now))

	r.EffectiveTo = &future
	assert.True(t, r.EffectiveAt(now))

	r.EffectiveTo = &past
	assert.False(t, r.EffectiveAt(now))

	r.EffectiveTo = nil
	r.EffectiveFrom = future
	assert.False(t, r.EffectiveAt(now))

	r.EffectiveFrom = past
	r.IsActive = false
	assert.False(t, r.EffectiveAt(now))
}

func TestAppendOnlyHooks(t *testing.T) {
	assert.ErrorIs(t, (&OrderItem{}).BeforeUpdate(nil), ErrImmutableRecord)
	assert.ErrorIs(t, (&OrderItem{}).BeforeDelete(nil), ErrImmutableRecord)
	assert.ErrorIs(t, (&OrderTimeline{}).BeforeUpdate(nil), ErrImmutableRecord)
	assert.ErrorIs(t, (&InventoryMovement{}).BeforeDelete(nil), ErrImmutableRecord)
}
