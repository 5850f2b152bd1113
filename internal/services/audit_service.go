package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/sol/internal/models"
)

// AuditService writes audit events to the audit_logs table.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(ctx context.Context, event AuditEvent) error {
	entry := models.AuditLog{
		ActorID:    event.ActorID,
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Payload:    event.Payload,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}
