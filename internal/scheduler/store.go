// Package scheduler implements the deferred-action queue: a Postgres-backed
// outbox written inside the triggering transaction and drained by a worker
// process. Enqueue is exactly-once with respect to the caller's commit;
// execution is at-least-once, so every handler must be precondition-gated.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoRejectPayload is the payload of an auto_reject action.
type AutoRejectPayload struct {
	RequestID string   `json:"request_id"`
	EntryIDs  []string `json:"entry_ids"`
}

// ReassignPayload is the payload of a reassign_manager action. StaffIDs is
// fixed when the action is enqueued, not recomputed at fire time.
type ReassignPayload struct {
	Manager  int   `json:"reporting_manager"`
	StaffIDs []int `json:"staff_ids"`
}

// Store persists scheduled actions.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Enqueue records an action to run at or after fireAt. It participates in the
// calling transaction when ctx carries one, so the action is durably enqueued
// if and only if the triggering mutation commits.
func (s *Store) Enqueue(ctx context.Context, action string, fireAt time.Time, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}

	row := model.ScheduledAction{
		Action:  action,
		FireAt:  fireAt,
		Payload: string(data),
		Status:  model.ScheduledPending,
	}
	if err := repository.GetDB(ctx, s.db).Create(&row).Error; err != nil {
		return fmt.Errorf("enqueue %s: %w", action, err)
	}
	return nil
}

// ClaimDue atomically claims up to limit due pending actions and marks them
// RUNNING. Row locking with SKIP LOCKED lets multiple workers drain the table
// without handing the same action to two of them.
func (s *Store) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledAction, error) {
	var claimed []model.ScheduledAction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND fire_at <= ?", model.ScheduledPending, now).
			Order("fire_at asc").
			Limit(limit).
			Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(claimed))
		for _, a := range claimed {
			ids = append(ids, a.ID)
		}
		return tx.Model(&model.ScheduledAction{}).
			Where("id IN ?", ids).
			Update("status", model.ScheduledRunning).Error
	})
	if err != nil {
		return nil, fmt.Errorf("claim due actions: %w", err)
	}
	return claimed, nil
}

// MarkDone finalizes a successfully executed action.
func (s *Store) MarkDone(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&model.ScheduledAction{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.ScheduledDone, "processed_at": now}).Error
}

// MarkFailed records a failed execution. Failed actions are not retried by
// this component; retry is an operator decision.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&model.ScheduledAction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       model.ScheduledFailed,
			"last_error":   cause.Error(),
			"processed_at": now,
		}).Error
}
