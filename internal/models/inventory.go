package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryMovement is an append-only stock ledger entry. Quantity is signed:
// negative for a sale, positive for a return.
type InventoryMovement struct {
	BaseModel
	ProductID   uuid.UUID    `gorm:"type:uuid;index:idx_movement_item,priority:1;not null" json:"product_id"`
	VariantID   *uuid.UUID   `gorm:"type:uuid;index:idx_movement_item,priority:2" json:"variant_id"`
	Type        MovementType `gorm:"type:varchar(16);not null" json:"type"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	ReferenceID uuid.UUID    `gorm:"type:uuid;index;not null" json:"reference_id"`
	Reason      string       `json:"reason"`
}

func (m *InventoryMovement) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableRecord }
func (m *InventoryMovement) BeforeDelete(tx *gorm.DB) error { return ErrImmutableRecord }

// OrderSequence is the per-day counter behind order numbers. Day is YYYYMMDD
// in the store's timezone.
type OrderSequence struct {
	Day       string `gorm:"primaryKey;size:8"`
	LastValue int    `gorm:"not null"`
}

// AuditLog records who did what to which entity. Written after commit.
type AuditLog struct {
	BaseModel
	ActorID    *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id"`
	Action     string         `gorm:"index" json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;index" json:"entity_id"`
	Payload    map[string]any `gorm:"type:jsonb;serializer:json" json:"payload"`
}
