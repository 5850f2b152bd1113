package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/sol/internal/models"
)

// LocationPath is a delivery location from governorate down to village.
type LocationPath struct {
	GovernorateID uuid.UUID  `json:"governorate_id"`
	CenterID      *uuid.UUID `json:"center_id,omitempty"`
	VillageID     *uuid.UUID `json:"village_id,omitempty"`
}

// PathForAddress extracts the shipping location of an address.
func PathForAddress(a *models.UserAddress) LocationPath {
	return LocationPath{GovernorateID: a.GovernorateID, CenterID: a.CenterID, VillageID: a.VillageID}
}

// ShippingRateResolver prices delivery. It only reads the rate table.
type ShippingRateResolver struct {
	freeThreshold decimal.Decimal
	defaultCost   decimal.Decimal
	now           func() time.Time
}

// NewShippingRateResolver builds a resolver. A non-positive freeThreshold
// disables store-wide free shipping.
func NewShippingRateResolver(freeThreshold, defaultCost decimal.Decimal) *ShippingRateResolver {
	return &ShippingRateResolver{freeThreshold: freeThreshold, defaultCost: defaultCost, now: time.Now}
}

// Resolve returns the shipping cost for an order worth netOrderValue after
// discounts, delivered to path.
func (r *ShippingRateResolver) Resolve(db *gorm.DB, path LocationPath, netOrderValue decimal.Decimal) (decimal.Decimal, error) {
	if r.freeThreshold.IsPositive() && netOrderValue.GreaterThanOrEqual(r.freeThreshold) {
		return decimal.Zero, nil
	}

	now := r.now()
	query := db.Where("is_active = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)", true, now, now)

	scope := db.Where("governorate_id = ?", path.GovernorateID)
	if path.CenterID != nil {
		scope = scope.Or("center_id = ?", *path.CenterID)
	}
	if path.VillageID != nil {
		scope = scope.Or("village_id = ?", *path.VillageID)
	}

	var rates []models.ShippingRate
	if err := query.Where(scope).Find(&rates).Error; err != nil {
		return decimal.Zero, err
	}

	return r.Quote(SelectRate(rates, path, now), netOrderValue), nil
}

// Quote prices one matched rate. A nil rate falls back to the default cost.
func (r *ShippingRateResolver) Quote(rate *models.ShippingRate, netOrderValue decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return r.defaultCost
	}
	if rate.FreeThreshold != nil && netOrderValue.GreaterThanOrEqual(*rate.FreeThreshold) {
		return decimal.Zero
	}
	return rate.Cost
}

// SelectRate picks the most specific rate effective at now: village, then
// center, then governorate. Several live rates at the same level resolve to
// the latest effective_from, then the latest created_at, then the lowest id.
func SelectRate(rates []models.ShippingRate, path LocationPath, now time.Time) *models.ShippingRate {
	levels := []func(r *models.ShippingRate) bool{
		func(r *models.ShippingRate) bool {
			return path.VillageID != nil && r.VillageID != nil && *r.VillageID == *path.VillageID
		},
		func(r *models.ShippingRate) bool {
			return path.CenterID != nil && r.CenterID != nil && *r.CenterID == *path.CenterID
		},
		func(r *models.ShippingRate) bool {
			return r.GovernorateID != nil && *r.GovernorateID == path.GovernorateID
		},
	}

	for _, matches := range levels {
		var best *models.ShippingRate
		for i := range rates {
			rate := &rates[i]
			if _, ok := rate.Scope(); !ok || !rate.EffectiveAt(now) || !matches(rate) {
				continue
			}
			if best == nil || preferRate(rate, best) {
				best = rate
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

func preferRate(a, b *models.ShippingRate) bool {
	if !a.EffectiveFrom.Equal(b.EffectiveFrom) {
		return a.EffectiveFrom.After(b.EffectiveFrom)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
