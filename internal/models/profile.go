package models

import (
	"github.com/google/uuid"
)

// Governorate is the top level of the shipping geography.
type Governorate struct {
	BaseModel
	Name    string   `json:"name"`
	NameAr  string   `json:"name_ar"`
	Centers []Center `json:"centers,omitempty"`
}

// Center is a district inside a governorate.
type Center struct {
	BaseModel
	GovernorateID uuid.UUID `gorm:"type:uuid;index" json:"governorate_id"`
	Name          string    `json:"name"`
	NameAr        string    `json:"name_ar"`
	Villages      []Village `json:"villages,omitempty"`
}

// Village is the most specific shipping location.
type Village struct {
	BaseModel
	CenterID uuid.UUID `gorm:"type:uuid;index" json:"center_id"`
	Name     string    `json:"name"`
	NameAr   string    `json:"name_ar"`
}

type UserAddress struct {
	BaseModel
	UserID        uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Label         string     `json:"label"`
	FullName      string     `json:"full_name"`
	Phone         string     `json:"phone"`
	Street        string     `json:"street"`
	Building      string     `json:"building"`
	Landmark      string     `json:"landmark"`
	GovernorateID uuid.UUID  `gorm:"type:uuid;index" json:"governorate_id"`
	CenterID      *uuid.UUID `gorm:"type:uuid" json:"center_id"`
	VillageID     *uuid.UUID `gorm:"type:uuid" json:"village_id"`
	IsDefault     bool       `json:"is_default"`
	IsActive      bool       `gorm:"not null" json:"is_active"`
}

// CartItem is a line in a signed-in user's cart. Lines are removed when a
// checkout commits.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	ProductID uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	VariantID *uuid.UUID      `gorm:"type:uuid" json:"variant_id"`
	Variant   *ProductVariant `json:"variant,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}
