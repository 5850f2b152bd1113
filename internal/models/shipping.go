package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingScope names the level of geography a rate applies to.
type ShippingScope string

const (
	ScopeVillage     ShippingScope = "village"
	ScopeCenter      ShippingScope = "center"
	ScopeGovernorate ShippingScope = "governorate"
)

// ShippingRate prices delivery to exactly one village, center or governorate.
type ShippingRate struct {
	BaseModel
	GovernorateID *uuid.UUID       `gorm:"type:uuid;index" json:"governorate_id"`
	CenterID      *uuid.UUID       `gorm:"type:uuid;index" json:"center_id"`
	VillageID     *uuid.UUID       `gorm:"type:uuid;index" json:"village_id"`
	Cost          decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"cost"`
	FreeThreshold *decimal.Decimal `gorm:"type:numeric(12,2)" json:"free_threshold"`
	EffectiveFrom time.Time        `gorm:"not null" json:"effective_from"`
	EffectiveTo   *time.Time       `json:"effective_to"`
	IsActive      bool             `gorm:"not null" json:"is_active"`
}

var ErrShippingRateScope = errors.New("shipping rate must target exactly one of village, center or governorate")

// BeforeSave enforces the single-scope rule.
func (r *ShippingRate) BeforeSave(tx *gorm.DB) error {
	if _, ok := r.Scope(); !ok {
		return ErrShippingRateScope
	}
	return nil
}

// Scope returns the level the rate is bound to and whether exactly one
// location column is set.
func (r *ShippingRate) Scope() (ShippingScope, bool) {
	var scope ShippingScope
	set := 0
	if r.VillageID != nil {
		scope = ScopeVillage
		set++
	}
	if r.CenterID != nil {
		scope = ScopeCenter
		set++
	}
	if r.GovernorateID != nil {
		scope = ScopeGovernorate
		set++
	}
	return scope, set == 1
}

// EffectiveAt reports whether the rate is active and inside its window at t.
func (r *ShippingRate) EffectiveAt(t time.Time) bool {
	if !r.IsActive || r.EffectiveFrom.After(t) {
		return false
	}
	return r.EffectiveTo == nil || r.EffectiveTo.After(t)
}
