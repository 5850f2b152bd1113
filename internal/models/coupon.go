package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon is a discount code. Code is stored uppercase so lookups can be
// case-insensitive against a plain unique index.
type Coupon struct {
	BaseModel
	Code          string           `gorm:"uniqueIndex;not null" json:"code"`
	Type          CouponType       `gorm:"type:varchar(20);not null" json:"type"`
	Value         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"value"`
	MaxDiscount   *decimal.Decimal `gorm:"type:numeric(12,2)" json:"max_discount"`
	MinOrderValue *decimal.Decimal `gorm:"type:numeric(12,2)" json:"min_order_value"`
	ValidFrom     time.Time        `gorm:"not null" json:"valid_from"`
	ValidTo       *time.Time       `json:"valid_to"`
	UsageLimit    *int             `json:"usage_limit"`
	UsageCount    int              `gorm:"not null;default:0" json:"usage_count"`
	IsActive      bool             `gorm:"not null" json:"is_active"`
}

// BeforeSave normalizes the code and rejects unknown coupon types.
func (c *Coupon) BeforeSave(tx *gorm.DB) error {
	c.Code = NormalizeCouponCode(c.Code)
	if c.Code == "" {
		return errors.New("coupon code is required")
	}
	if c.Type != CouponTypePercentage && c.Type != CouponTypeFixedAmount {
		return errors.New("unknown coupon type " + string(c.Type))
	}
	return nil
}

// NormalizeCouponCode trims and uppercases a user-supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HasCapacity reports whether the coupon can be redeemed once more.
func (c *Coupon) HasCapacity() bool {
	return c.UsageLimit == nil || c.UsageCount < *c.UsageLimit
}
