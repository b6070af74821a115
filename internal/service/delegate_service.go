package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/directory"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/scheduler"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateDelegateDTO struct {
	DelegateFrom int    `json:"delegate_from" binding:"required"`
	DelegateTo   int    `json:"delegate_to" binding:"required"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
	Department   string `json:"department"`
}

type DelegateDecisionDTO struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

type DelegateResponse struct {
	DelegateID         string `json:"delegate_id"`
	DelegateFrom       int    `json:"delegate_from"`
	DelegateTo         int    `json:"delegate_to"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	Reason             string `json:"reason"`
	Department         string `json:"department"`
	Status             string `json:"status"`
	NotificationStatus string `json:"notification_status"`
	CreatedOn          string `json:"created_on"`
}

type DelegateHistoryResponse struct {
	HistoryID    string `json:"delegate_status_history_id"`
	DelegateID   string `json:"delegate_id"`
	DelegateFrom int    `json:"delegate_from"`
	DelegateTo   int    `json:"delegate_to"`
	Status       string `json:"status"`
	UpdatedOn    string `json:"updated_on"`
}

// --- Interface ---

type DelegateService interface {
	CreateDelegate(ctx context.Context, req CreateDelegateDTO) (DelegateResponse, error)
	DecideDelegate(ctx context.Context, id string, decision DelegateDecisionDTO) (DelegateResponse, error)
	ListDelegates(ctx context.Context) ([]DelegateResponse, error)
	ListByStaff(ctx context.Context, staffID int) ([]DelegateResponse, error)
	History(ctx context.Context, id string) ([]DelegateHistoryResponse, error)
	CountUnseen(ctx context.Context, staffID int) (int64, error)
	NotificationFeed(ctx context.Context, staffID int, markSeen bool) ([]DelegateResponse, error)
}

// Delegation projector sets: the delegator watches for a decision, the
// delegatee watches for incoming proposals.
var (
	delegatorNotifSet = []model.DelegateStatus{model.DelegateAccepted, model.DelegateRejected}
	delegateeNotifSet = []model.DelegateStatus{model.DelegatePending}
	delegatorFeedSet  = []model.DelegateStatus{model.DelegateAccepted, model.DelegateRejected}
	delegateeFeedSet  = []model.DelegateStatus{model.DelegatePending, model.DelegateAccepted, model.DelegateRejected}
)

type delegateService struct {
	delegateRepo repository.DelegateRepository
	txManager    repository.TransactionManager
	sched        ActionScheduler
	dir          *directory.Client
	loc          *time.Location
	log          *logrus.Logger
}

func NewDelegateService(
	delegateRepo repository.DelegateRepository,
	txManager repository.TransactionManager,
	sched ActionScheduler,
	dir *directory.Client,
	loc *time.Location,
	log *logrus.Logger,
) DelegateService {
	return &delegateService{
		delegateRepo: delegateRepo,
		txManager:    txManager,
		sched:        sched,
		dir:          dir,
		loc:          loc,
		log:          log,
	}
}

func (s *delegateService) CreateDelegate(ctx context.Context, req CreateDelegateDTO) (DelegateResponse, error) {
	start, err := s.parseDate(req.StartDate)
	if err != nil {
		return DelegateResponse{}, fmt.Errorf("%w: invalid start_date %q", ErrValidation, req.StartDate)
	}
	end, err := s.parseDate(req.EndDate)
	if err != nil {
		return DelegateResponse{}, fmt.Errorf("%w: invalid end_date %q", ErrValidation, req.EndDate)
	}
	if end.Before(start) {
		return DelegateResponse{}, fmt.Errorf("%w: end_date before start_date", ErrValidation)
	}
	if req.DelegateFrom == req.DelegateTo {
		return DelegateResponse{}, fmt.Errorf("%w: cannot delegate to yourself", ErrValidation)
	}

	delegate := model.Delegate{
		DelegateFrom:       req.DelegateFrom,
		DelegateTo:         req.DelegateTo,
		StartDate:          start,
		EndDate:            end,
		Reason:             req.Reason,
		Department:         req.Department,
		Status:             model.DelegatePending,
		NotificationStatus: model.DelegatePending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.delegateRepo.Create(txCtx, &delegate); err != nil {
			return fmt.Errorf("failed to create delegate: %w", err)
		}
		return s.delegateRepo.AppendHistory(txCtx, &model.DelegateStatusHistory{
			DelegateID:   delegate.ID,
			DelegateFrom: delegate.DelegateFrom,
			DelegateTo:   delegate.DelegateTo,
			Status:       model.DelegatePending,
		})
	})
	if err != nil {
		return DelegateResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"delegate_id": delegate.ID,
		"from":        delegate.DelegateFrom,
		"to":          delegate.DelegateTo,
	}).Info("delegation proposed")

	return toDelegateResponse(delegate), nil
}

// DecideDelegate resolves a pending delegation. Acceptance fixes the affected
// employee set immediately (from the directory, not recomputed at fire time)
// and enqueues the two reporting-manager swaps in the same transaction as the
// status change.
func (s *delegateService) DecideDelegate(ctx context.Context, id string, decision DelegateDecisionDTO) (DelegateResponse, error) {
	delegateID, err := uuid.Parse(id)
	if err != nil {
		return DelegateResponse{}, fmt.Errorf("%w: invalid delegate id", ErrValidation)
	}
	status := model.DelegateStatus(decision.Status)
	if status != model.DelegateAccepted && status != model.DelegateRejected {
		return DelegateResponse{}, fmt.Errorf("%w: status must be accepted or rejected", ErrValidation)
	}

	delegate, err := s.delegateRepo.FindByID(ctx, delegateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DelegateResponse{}, fmt.Errorf("%w: delegate %s", ErrNotFound, id)
		}
		return DelegateResponse{}, err
	}
	if delegate.Status != model.DelegatePending {
		return DelegateResponse{}, fmt.Errorf("%w: delegate is already %s", ErrValidation, delegate.Status)
	}

	// Resolve the affected employee set before opening the transaction; the
	// directory call must not extend the commit window.
	var staffIDs []int
	if status == model.DelegateAccepted {
		employees, err := s.dir.ListReports(ctx, delegate.DelegateFrom)
		if err != nil {
			return DelegateResponse{}, fmt.Errorf("failed to resolve affected employees: %w", err)
		}
		staffIDs = make([]int, 0, len(employees))
		for _, e := range employees {
			staffIDs = append(staffIDs, e.StaffID)
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		delegate.Status = status
		delegate.NotificationStatus = status
		if err := s.delegateRepo.Save(txCtx, delegate); err != nil {
			return fmt.Errorf("failed to update delegate: %w", err)
		}
		if err := s.delegateRepo.AppendHistory(txCtx, &model.DelegateStatusHistory{
			DelegateID:   delegate.ID,
			DelegateFrom: delegate.DelegateFrom,
			DelegateTo:   delegate.DelegateTo,
			Status:       status,
		}); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}

		if status != model.DelegateAccepted {
			return nil
		}

		// Swap reporting lines to the delegate at window start, back at end.
		if err := s.sched.Enqueue(txCtx, model.ActionReassignManager, delegate.StartDate,
			scheduler.ReassignPayload{Manager: delegate.DelegateTo, StaffIDs: staffIDs}); err != nil {
			return err
		}
		return s.sched.Enqueue(txCtx, model.ActionReassignManager, delegate.EndDate,
			scheduler.ReassignPayload{Manager: delegate.DelegateFrom, StaffIDs: staffIDs})
	})
	if err != nil {
		return DelegateResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"delegate_id":    delegate.ID,
		"status":         status,
		"affected_staff": len(staffIDs),
	}).Info("delegation decided")

	return toDelegateResponse(*delegate), nil
}

func (s *delegateService) ListDelegates(ctx context.Context) ([]DelegateResponse, error) {
	delegates, err := s.delegateRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDelegateResponses(delegates), nil
}

func (s *delegateService) ListByStaff(ctx context.Context, staffID int) ([]DelegateResponse, error) {
	delegates, err := s.delegateRepo.ListByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return toDelegateResponses(delegates), nil
}

func (s *delegateService) History(ctx context.Context, id string) ([]DelegateHistoryResponse, error) {
	delegateID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid delegate id", ErrValidation)
	}
	rows, err := s.delegateRepo.HistoryByDelegate(ctx, delegateID)
	if err != nil {
		return nil, err
	}
	result := make([]DelegateHistoryResponse, 0, len(rows))
	for _, h := range rows {
		result = append(result, DelegateHistoryResponse{
			HistoryID:    h.ID.String(),
			DelegateID:   h.DelegateID.String(),
			DelegateFrom: h.DelegateFrom,
			DelegateTo:   h.DelegateTo,
			Status:       string(h.Status),
			UpdatedOn:    h.UpdatedOn.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *delegateService) CountUnseen(ctx context.Context, staffID int) (int64, error) {
	asDelegator, err := s.delegateRepo.CountByNotification(ctx, staffID, true, delegatorNotifSet)
	if err != nil {
		return 0, err
	}
	asDelegatee, err := s.delegateRepo.CountByNotification(ctx, staffID, false, delegateeNotifSet)
	if err != nil {
		return 0, err
	}
	return asDelegator + asDelegatee, nil
}

func (s *delegateService) NotificationFeed(ctx context.Context, staffID int, markSeen bool) ([]DelegateResponse, error) {
	var feed []model.Delegate
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		feed, err = s.delegateRepo.Feed(txCtx, staffID, delegatorFeedSet, delegateeFeedSet)
		if err != nil {
			return err
		}
		if !markSeen {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(feed))
		for _, d := range feed {
			ids = append(ids, d.ID)
		}
		return s.delegateRepo.MarkSeen(txCtx, ids)
	})
	if err != nil {
		return nil, err
	}
	return toDelegateResponses(feed), nil
}

func (s *delegateService) parseDate(value string) (time.Time, error) {
	if d, err := time.ParseInLocation("2006-01-02 15:04:05", value, s.loc); err == nil {
		return d, nil
	}
	return time.ParseInLocation("2006-01-02", value, s.loc)
}

func toDelegateResponse(d model.Delegate) DelegateResponse {
	return DelegateResponse{
		DelegateID:         d.ID.String(),
		DelegateFrom:       d.DelegateFrom,
		DelegateTo:         d.DelegateTo,
		StartDate:          d.StartDate.Format(time.RFC3339),
		EndDate:            d.EndDate.Format(time.RFC3339),
		Reason:             d.Reason,
		Department:         d.Department,
		Status:             string(d.Status),
		NotificationStatus: string(d.NotificationStatus),
		CreatedOn:          d.CreatedOn.Format(time.RFC3339),
	}
}

func toDelegateResponses(delegates []model.Delegate) []DelegateResponse {
	result := make([]DelegateResponse, 0, len(delegates))
	for _, d := range delegates {
		result = append(result, toDelegateResponse(d))
	}
	return result
}
