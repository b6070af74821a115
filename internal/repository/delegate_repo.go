package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DelegateRepository interface {
	Create(ctx context.Context, d *model.Delegate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Delegate, error)
	ListAll(ctx context.Context) ([]model.Delegate, error)
	ListByStaff(ctx context.Context, staffID int) ([]model.Delegate, error)
	Save(ctx context.Context, d *model.Delegate) error

	AppendHistory(ctx context.Context, h *model.DelegateStatusHistory) error
	HistoryByDelegate(ctx context.Context, delegateID uuid.UUID) ([]model.DelegateStatusHistory, error)

	CountByNotification(ctx context.Context, staffID int, asDelegator bool, statuses []model.DelegateStatus) (int64, error)
	Feed(ctx context.Context, staffID int, delegatorSet, delegateeSet []model.DelegateStatus) ([]model.Delegate, error)
	MarkSeen(ctx context.Context, ids []uuid.UUID) error
}

type delegateRepository struct {
	db *gorm.DB
}

func NewDelegateRepository(db *gorm.DB) DelegateRepository {
	return &delegateRepository{db: db}
}

func (r *delegateRepository) Create(ctx context.Context, d *model.Delegate) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *delegateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Delegate, error) {
	var d model.Delegate
	if err := GetDB(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *delegateRepository) ListAll(ctx context.Context) ([]model.Delegate, error) {
	var delegates []model.Delegate
	if err := GetDB(ctx, r.db).Order("created_on DESC").Find(&delegates).Error; err != nil {
		return nil, err
	}
	return delegates, nil
}

func (r *delegateRepository) ListByStaff(ctx context.Context, staffID int) ([]model.Delegate, error) {
	var delegates []model.Delegate
	if err := GetDB(ctx, r.db).
		Where("delegate_from = ? OR delegate_to = ?", staffID, staffID).
		Order("created_on DESC").
		Find(&delegates).Error; err != nil {
		return nil, err
	}
	return delegates, nil
}

func (r *delegateRepository) Save(ctx context.Context, d *model.Delegate) error {
	return GetDB(ctx, r.db).Save(d).Error
}

func (r *delegateRepository) AppendHistory(ctx context.Context, h *model.DelegateStatusHistory) error {
	return GetDB(ctx, r.db).Create(h).Error
}

func (r *delegateRepository) HistoryByDelegate(ctx context.Context, delegateID uuid.UUID) ([]model.DelegateStatusHistory, error) {
	var rows []model.DelegateStatusHistory
	if err := GetDB(ctx, r.db).
		Where("delegate_id = ?", delegateID).
		Order("updated_on asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *delegateRepository) CountByNotification(ctx context.Context, staffID int, asDelegator bool, statuses []model.DelegateStatus) (int64, error) {
	var total int64
	query := GetDB(ctx, r.db).Model(&model.Delegate{}).
		Where("notification_status IN ?", statuses)
	if asDelegator {
		query = query.Where("delegate_from = ?", staffID)
	} else {
		query = query.Where("delegate_to = ?", staffID)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *delegateRepository) Feed(ctx context.Context, staffID int, delegatorSet, delegateeSet []model.DelegateStatus) ([]model.Delegate, error) {
	var delegates []model.Delegate
	db := GetDB(ctx, r.db)
	if err := db.
		Where(
			db.Session(&gorm.Session{NewDB: true}).
				Where("delegate_from = ? AND status IN ?", staffID, delegatorSet).
				Or("delegate_to = ? AND status IN ?", staffID, delegateeSet),
		).
		Order("created_on DESC").
		Find(&delegates).Error; err != nil {
		return nil, err
	}
	return delegates, nil
}

func (r *delegateRepository) MarkSeen(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.Delegate{}).
		Where("id IN ?", ids).
		Update("notification_status", model.DelegateSeen).Error
}
