package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/sol/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Discount is the outcome of applying a coupon to a subtotal.
type Discount struct {
	CouponID uuid.UUID       `json:"coupon_id"`
	Code     string          `json:"code"`
	Amount   decimal.Decimal `json:"amount"`
}

// CouponEvaluator validates coupons and redeems them with a conditional
// usage increment.
type CouponEvaluator struct{}

func NewCouponEvaluator() *CouponEvaluator {
	return &CouponEvaluator{}
}

// Evaluate validates code against subtotal at now and consumes one use. It
// must run inside the checkout transaction so a later failure returns the use.
func (e *CouponEvaluator) Evaluate(tx *gorm.DB, code string, subtotal decimal.Decimal, now time.Time) (*Discount, error) {
	coupon, err := e.lookup(tx, code, now)
	if err != nil {
		return nil, err
	}
	if err := checkMinimum(coupon, subtotal); err != nil {
		return nil, err
	}

	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", coupon.ID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("redeem coupon %s: %w", coupon.Code, res.Error)
	}
	if res.RowsAffected == 0 {
		if coupon.HasCapacity() {
			return nil, ErrCouponConflict
		}
		return nil, ErrCouponExhausted
	}

	return &Discount{CouponID: coupon.ID, Code: coupon.Code, Amount: ComputeDiscount(coupon, subtotal)}, nil
}

// Preview runs the same checks as Evaluate without consuming a use.
func (e *CouponEvaluator) Preview(db *gorm.DB, code string, subtotal decimal.Decimal, now time.Time) (*Discount, error) {
	coupon, err := e.lookup(db, code, now)
	if err != nil {
		return nil, err
	}
	if err := checkMinimum(coupon, subtotal); err != nil {
		return nil, err
	}
	if !coupon.HasCapacity() {
		return nil, ErrCouponExhausted
	}
	return &Discount{CouponID: coupon.ID, Code: coupon.Code, Amount: ComputeDiscount(coupon, subtotal)}, nil
}

// Release gives back one use, for orders cancelled after redemption.
func (e *CouponEvaluator) Release(tx *gorm.DB, couponID uuid.UUID) error {
	return tx.Model(&models.Coupon{}).
		Where("id = ? AND usage_count > 0", couponID).
		UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
}

func (e *CouponEvaluator) lookup(db *gorm.DB, code string, now time.Time) (*models.Coupon, error) {
	normalized := models.NormalizeCouponCode(code)
	if normalized == "" {
		return nil, ErrInvalidCoupon
	}

	var coupon models.Coupon
	err := db.Where("code = ? AND is_active = ? AND valid_from <= ? AND (valid_to IS NULL OR valid_to >= ?)",
		normalized, true, now, now).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCoupon
		}
		return nil, err
	}
	return &coupon, nil
}

func checkMinimum(coupon *models.Coupon, subtotal decimal.Decimal) error {
	if coupon.MinOrderValue != nil && subtotal.LessThan(*coupon.MinOrderValue) {
		return ErrMinOrderNotMet
	}
	return nil
}

// ComputeDiscount applies the coupon to subtotal. The result never exceeds
// the subtotal.
func ComputeDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch coupon.Type {
	case models.CouponTypePercentage:
		amount = subtotal.Mul(coupon.Value).Div(hundred)
		if coupon.MaxDiscount != nil && amount.GreaterThan(*coupon.MaxDiscount) {
			amount = *coupon.MaxDiscount
		}
	case models.CouponTypeFixedAmount:
		amount = coupon.Value
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount.Round(2)
}
