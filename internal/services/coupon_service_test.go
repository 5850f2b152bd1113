package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/example/sol/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestComputeDiscount(t *testing.T) {
	cases := []struct {
		name     string
		coupon   models.Coupon
		subtotal string
		want     string
	}{
		{
			name:     "percentage capped by max discount",
			coupon:   models.Coupon{Type: models.CouponTypePercentage, Value: dec("10"), MaxDiscount: decPtr("50")},
			subtotal: "1000",
			want:     "50",
		},
		{
			name:     "percentage under cap",
			coupon:   models.Coupon{Type: models.CouponTypePercentage, Value: dec("10"), MaxDiscount: decPtr("50")},
			subtotal: "300",
			want:     "30",
		},
		{
			name:     "percentage rounds to cents",
			coupon:   models.Coupon{Type: models.CouponTypePercentage, Value: dec("15")},
			subtotal: "99.99",
			want:     "15",
		},
		{
			name:     "fixed amount",
			coupon:   models.Coupon{Type: models.CouponTypeFixedAmount, Value: dec("75")},
			subtotal: "400",
			want:     "75",
		},
		{
			name:     "fixed amount clamped to subtotal",
			coupon:   models.Coupon{Type: models.CouponTypeFixedAmount, Value: dec("500")},
			subtotal: "120",
			want:     "120",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeDiscount(&tc.coupon, dec(tc.subtotal))
			assert.True(t, dec(tc.want).Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestCheckMinimum(t *testing.T) {
	c := &models.Coupon{MinOrderValue: decPtr("200")}
	assert.ErrorIs(t, checkMinimum(c, dec("199.99")), ErrMinOrderNotMet)
	assert.NoError(t, checkMinimum(c, dec("200")))
	assert.NoError(t, checkMinimum(&models.Coupon{}, dec("1")))
}
