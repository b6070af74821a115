package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(ctx context.Context, req *model.WFHRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WFHRequest, error)
	ListAll(ctx context.Context) ([]model.WFHRequest, error)
	ListByStaff(ctx context.Context, staffID int) ([]model.WFHRequest, error)
	ListByRequester(ctx context.Context, staffID int) ([]model.WFHRequest, error)
	ListByDepartment(ctx context.Context, dept string) ([]model.WFHRequest, error)
	ListByEntryDate(ctx context.Context, date time.Time) ([]model.WFHRequest, error)
	Save(ctx context.Context, req *model.WFHRequest) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateEntry(ctx context.Context, entry *model.WFHRequestEntry) error
	FindEntries(ctx context.Context, requestID uuid.UUID, entryIDs []uuid.UUID) ([]model.WFHRequestEntry, error)
	AllEntries(ctx context.Context, requestID uuid.UUID) ([]model.WFHRequestEntry, error)
	SaveEntry(ctx context.Context, entry *model.WFHRequestEntry) error

	CountByNotification(ctx context.Context, staffID int, asManager bool, statuses []model.NotificationStatus) (int64, error)
	FeedByLastNotification(ctx context.Context, staffID int, requesterSet, managerSet []model.NotificationStatus) ([]model.WFHRequest, error)
	MarkSeen(ctx context.Context, ids []uuid.UUID) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.WFHRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WFHRequest, error) {
	var req model.WFHRequest
	if err := GetDB(ctx, r.db).Preload("Entries").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) ListAll(ctx context.Context) ([]model.WFHRequest, error) {
	var requests []model.WFHRequest
	if err := GetDB(ctx, r.db).Preload("Entries").Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListByStaff(ctx context.Context, staffID int) ([]model.WFHRequest, error) {
	var requests []model.WFHRequest
	if err := GetDB(ctx, r.db).Preload("Entries").
		Where("requester_id = ? OR reporting_manager = ?", staffID, staffID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListByRequester returns the requester's requests with only their Approved
// entries preloaded; requests without any approved entry come back with an
// empty Entries slice and are filtered out by the service.
func (r *requestRepository) ListByRequester(ctx context.Context, staffID int) ([]model.WFHRequest, error) {
	var requests []model.WFHRequest
	if err := GetDB(ctx, r.db).
		Preload("Entries", "status = ?", model.StatusApproved).
		Where("requester_id = ?", staffID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListByDepartment(ctx context.Context, dept string) ([]model.WFHRequest, error) {
	var requests []model.WFHRequest
	if err := GetDB(ctx, r.db).Preload("Entries").
		Where("department = ?", dept).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListByEntryDate(ctx context.Context, date time.Time) ([]model.WFHRequest, error) {
	var requests []model.WFHRequest
	if err := GetDB(ctx, r.db).Preload("Entries").
		Where("id IN (?)", GetDB(ctx, r.db).Model(&model.WFHRequestEntry{}).
			Select("request_id").Where("entry_date = ?", date)).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Save(ctx context.Context, req *model.WFHRequest) error {
	return GetDB(ctx, r.db).Omit("Entries").Save(req).Error
}

func (r *requestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", id).Delete(&model.WFHRequestEntry{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.WFHRequest{}, "id = ?", id).Error
}

func (r *requestRepository) CreateEntry(ctx context.Context, entry *model.WFHRequestEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *requestRepository) FindEntries(ctx context.Context, requestID uuid.UUID, entryIDs []uuid.UUID) ([]model.WFHRequestEntry, error) {
	var entries []model.WFHRequestEntry
	if err := GetDB(ctx, r.db).
		Where("request_id = ? AND id IN ?", requestID, entryIDs).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *requestRepository) AllEntries(ctx context.Context, requestID uuid.UUID) ([]model.WFHRequestEntry, error) {
	var entries []model.WFHRequestEntry
	if err := GetDB(ctx, r.db).Where("request_id = ?", requestID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *requestRepository) SaveEntry(ctx context.Context, entry *model.WFHRequestEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *requestRepository) CountByNotification(ctx context.Context, staffID int, asManager bool, statuses []model.NotificationStatus) (int64, error) {
	var total int64
	query := GetDB(ctx, r.db).Model(&model.WFHRequest{}).
		Where("requester_id <> reporting_manager").
		Where("notification_status IN ?", statuses)
	if asManager {
		query = query.Where("reporting_manager = ?", staffID)
	} else {
		query = query.Where("requester_id = ?", staffID)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *requestRepository) FeedByLastNotification(ctx context.Context, staffID int, requesterSet, managerSet []model.NotificationStatus) ([]model.WFHRequest, error) {
	var requests []model.WFHRequest
	db := GetDB(ctx, r.db)
	if err := db.
		Preload("Entries").
		Where(
			db.Session(&gorm.Session{NewDB: true}).
				Where("requester_id = ? AND requester_id <> reporting_manager AND last_notification_status IN ?", staffID, requesterSet).
				Or("reporting_manager = ? AND reporting_manager <> requester_id AND last_notification_status IN ?", staffID, managerSet),
		).
		Order("modified_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) MarkSeen(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.WFHRequest{}).
		Where("id IN ?", ids).
		Update("notification_status", model.NotificationSeen).Error
}
