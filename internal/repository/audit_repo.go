package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Log(ctx context.Context, row *model.AuditTrail) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.AuditTrail, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, row *model.AuditTrail) error {
	return GetDB(ctx, r.db).Create(row).Error
}

func (r *auditRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.AuditTrail, error) {
	var rows []model.AuditTrail
	if err := GetDB(ctx, r.db).
		Where("request_id = ?", requestID).
		Order("created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
