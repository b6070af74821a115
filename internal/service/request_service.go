package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/scheduler"
	ws "backend/internal/websocket"
	"backend/pkg/workdays"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateEntryDTO struct {
	EntryDate string `json:"entry_date" binding:"required"`
	Reason    string `json:"reason"`
	Duration  string `json:"duration" binding:"required,oneof='Full Day' 'Half Day'"`
}

type CreateRequestDTO struct {
	RequesterID      int              `json:"requester_id" binding:"required"`
	ReportingManager int              `json:"reporting_manager" binding:"required"`
	Department       string           `json:"department"`
	Entries          []CreateEntryDTO `json:"entries" binding:"required,min=1,dive"`
}

// EntryActionDTO identifies one entry an action applies to. Reason is the
// actor's reason, required for rejecting and withdrawing actions.
type EntryActionDTO struct {
	EntryID string `json:"entry_id" binding:"required"`
	Reason  string `json:"reason"`
}

type EntryActionRequest struct {
	RequestID string           `json:"request_id" binding:"required"`
	Entries   []EntryActionDTO `json:"entry_ids" binding:"required,min=1,dive"`
}

type EntryResponse struct {
	EntryID      string `json:"entry_id"`
	RequestID    string `json:"request_id"`
	EntryDate    string `json:"entry_date"`
	Reason       string `json:"reason"`
	Duration     string `json:"duration"`
	Status       string `json:"status"`
	ActionReason string `json:"action_reason,omitempty"`
}

type RequestResponse struct {
	RequestID              string          `json:"request_id"`
	RequesterID            int             `json:"requester_id"`
	ReportingManager       int             `json:"reporting_manager"`
	Department             string          `json:"department"`
	OverallStatus          string          `json:"overall_status"`
	NotificationStatus     string          `json:"notification_status"`
	LastNotificationStatus string          `json:"last_notification_status"`
	TotalDays              string          `json:"total_days"`
	CreatedAt              string          `json:"created_at"`
	ModifiedAt             string          `json:"modified_at"`
	Entries                []EntryResponse `json:"entries,omitempty"`
}

// --- Interface ---

type RequestService interface {
	CreateRequest(ctx context.Context, req CreateRequestDTO) (RequestResponse, error)
	GetRequest(ctx context.Context, id string) (RequestResponse, error)
	ListRequests(ctx context.Context) ([]RequestResponse, error)
	ListByStaff(ctx context.Context, staffID int) ([]RequestResponse, error)
	ListApprovedByRequester(ctx context.Context, staffID int) ([]RequestResponse, error)
	ListByDepartment(ctx context.Context, dept string) ([]RequestResponse, error)
	ListByDate(ctx context.Context, date string) ([]RequestResponse, error)
	DeleteRequest(ctx context.Context, id string) error

	Approve(ctx context.Context, req EntryActionRequest) error
	Reject(ctx context.Context, req EntryActionRequest) error
	Withdraw(ctx context.Context, req EntryActionRequest) error
	Cancel(ctx context.Context, req EntryActionRequest) error
	Revoke(ctx context.Context, req EntryActionRequest) error
	Acknowledge(ctx context.Context, req EntryActionRequest) error
	AutoReject(ctx context.Context, req EntryActionRequest) error

	CountUnseen(ctx context.Context, staffID int) (int64, error)
	NotificationFeed(ctx context.Context, staffID int, markSeen bool) ([]RequestResponse, error)
}

// Notification-status qualifying sets for the projector. Counts read the
// current notification_status; feeds read last_notification_status.
var (
	requesterCountSet = []model.NotificationStatus{
		model.NotificationEdited, model.NotificationWithdrawn,
		model.NotificationAcknowledged, model.NotificationAutoRejected,
	}
	managerCountSet = []model.NotificationStatus{
		model.NotificationDelivered, model.NotificationCancelled, model.NotificationSelfWithdrawn,
	}
	requesterFeedSet = []model.NotificationStatus{
		model.NotificationEdited, model.NotificationSelfWithdrawn, model.NotificationAcknowledged,
		model.NotificationAutoRejected, model.NotificationWithdrawn,
	}
	managerFeedSet = []model.NotificationStatus{
		model.NotificationDelivered, model.NotificationCancelled, model.NotificationWithdrawn,
		model.NotificationEdited, model.NotificationSelfWithdrawn, model.NotificationAcknowledged,
		model.NotificationAutoRejected,
	}
)

type requestService struct {
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	sched       ActionScheduler
	hub         *ws.Hub
	loc         *time.Location
	log         *logrus.Logger
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	sched ActionScheduler,
	hub *ws.Hub,
	loc *time.Location,
	log *logrus.Logger,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		sched:       sched,
		hub:         hub,
		loc:         loc,
		log:         log,
	}
}

// --- Create ---

func (s *requestService) CreateRequest(ctx context.Context, req CreateRequestDTO) (RequestResponse, error) {
	if req.RequesterID == 0 || req.ReportingManager == 0 {
		return RequestResponse{}, fmt.Errorf("%w: requester_id and reporting_manager are required", ErrValidation)
	}
	if len(req.Entries) == 0 {
		return RequestResponse{}, fmt.Errorf("%w: at least one entry is required", ErrValidation)
	}

	dates := make([]time.Time, 0, len(req.Entries))
	for _, e := range req.Entries {
		d, err := s.parseEntryDate(e.EntryDate)
		if err != nil {
			return RequestResponse{}, fmt.Errorf("%w: invalid entry_date %q", ErrValidation, e.EntryDate)
		}
		dates = append(dates, d)
	}

	selfRequest := req.RequesterID == req.ReportingManager
	initial := model.StatusPending
	if selfRequest {
		initial = model.StatusApproved
	}

	request := model.WFHRequest{
		RequesterID:            req.RequesterID,
		ReportingManager:       req.ReportingManager,
		Department:             req.Department,
		OverallStatus:          initial,
		NotificationStatus:     model.NotificationDelivered,
		LastNotificationStatus: model.NotificationDelivered,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, &request); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		// The request-level audit row for a self-approved request records the
		// Pending snapshot first; the implicit approval is logged after the
		// entries below.
		firstRowStatus := initial
		if selfRequest {
			firstRowStatus = model.StatusPending
		}
		if err := s.auditRepo.Log(txCtx, &model.AuditTrail{
			RequestID:        request.ID,
			RequesterID:      request.RequesterID,
			ReportingManager: request.ReportingManager,
			Department:       request.Department,
			Status:           firstRowStatus,
		}); err != nil {
			return fmt.Errorf("failed to write audit row: %w", err)
		}

		for i, dto := range req.Entries {
			entry := model.WFHRequestEntry{
				RequestID: request.ID,
				EntryDate: dates[i],
				Reason:    dto.Reason,
				Duration:  dto.Duration,
				Status:    initial,
			}
			if err := s.requestRepo.CreateEntry(txCtx, &entry); err != nil {
				return fmt.Errorf("failed to create entry: %w", err)
			}
			if err := s.auditRepo.Log(txCtx, s.entryAuditRow(&request, &entry)); err != nil {
				return fmt.Errorf("failed to write audit row: %w", err)
			}

			// Deadline: previous business day at 00:00 local time. Enqueued in
			// this transaction so a commit implies the timer exists.
			fireAt := workdays.PreviousWorkingDay(entry.EntryDate, s.loc)
			payload := scheduler.AutoRejectPayload{
				RequestID: request.ID.String(),
				EntryIDs:  []string{entry.ID.String()},
			}
			if err := s.sched.Enqueue(txCtx, model.ActionAutoReject, fireAt, payload); err != nil {
				return err
			}
		}

		if selfRequest {
			if err := s.auditRepo.Log(txCtx, &model.AuditTrail{
				RequestID:        request.ID,
				RequesterID:      request.RequesterID,
				ReportingManager: request.ReportingManager,
				Department:       request.Department,
				Status:           model.StatusApproved,
			}); err != nil {
				return fmt.Errorf("failed to write audit row: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	created, err := s.requestRepo.FindByID(ctx, request.ID)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("failed to reload request: %w", err)
	}

	s.broadcast(created.ID, string(created.OverallStatus), string(created.NotificationStatus))
	s.log.WithFields(logrus.Fields{
		"request_id": created.ID,
		"requester":  created.RequesterID,
		"entries":    len(created.Entries),
	}).Info("wfh request created")

	return toRequestResponse(*created, true), nil
}

// --- Reads ---

func (s *requestService) GetRequest(ctx context.Context, id string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("%w: invalid request id", ErrValidation)
	}
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, fmt.Errorf("%w: request %s", ErrNotFound, id)
		}
		return RequestResponse{}, err
	}
	return toRequestResponse(*request, true), nil
}

func (s *requestService) ListRequests(ctx context.Context) ([]RequestResponse, error) {
	requests, err := s.requestRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(requests), nil
}

func (s *requestService) ListByStaff(ctx context.Context, staffID int) ([]RequestResponse, error) {
	requests, err := s.requestRepo.ListByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(requests), nil
}

// ListApprovedByRequester returns the requester's requests restricted to their
// approved entries; requests with no approved entry are dropped.
func (s *requestService) ListApprovedByRequester(ctx context.Context, staffID int) ([]RequestResponse, error) {
	requests, err := s.requestRepo.ListByRequester(ctx, staffID)
	if err != nil {
		return nil, err
	}
	result := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		if len(r.Entries) == 0 {
			continue
		}
		result = append(result, toRequestResponse(r, true))
	}
	return result, nil
}

func (s *requestService) ListByDepartment(ctx context.Context, dept string) ([]RequestResponse, error) {
	requests, err := s.requestRepo.ListByDepartment(ctx, dept)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(requests), nil
}

func (s *requestService) ListByDate(ctx context.Context, date string) ([]RequestResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
	}
	requests, err := s.requestRepo.ListByEntryDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(requests), nil
}

func (s *requestService) DeleteRequest(ctx context.Context, id string) error {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid request id", ErrValidation)
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.requestRepo.FindByID(txCtx, requestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %s", ErrNotFound, id)
			}
			return err
		}
		return s.requestRepo.Delete(txCtx, requestID)
	})
}

// --- Workflow actions ---

// entryTransition describes one action of the per-entry state machine.
type entryTransition struct {
	// status returns the target status for an entry; selfRequest is true when
	// requester and reporting manager are the same identity.
	status func(selfRequest bool) model.Status
	// notification assigned to the request when at least one entry mutates.
	notification model.NotificationStatus
	// requireReason demands a per-entry actor reason (reject, withdraw).
	requireReason bool
	// onlyPending gates the transition on the entry still being Pending;
	// entries already decided are left untouched (auto-reject).
	onlyPending bool
}

func fixed(status model.Status) func(bool) model.Status {
	return func(bool) model.Status { return status }
}

func (s *requestService) Approve(ctx context.Context, req EntryActionRequest) error {
	return s.applyTransition(ctx, req, entryTransition{
		status:       fixed(model.StatusApproved),
		notification: model.NotificationEdited,
	})
}

func (s *requestService) Reject(ctx context.Context, req EntryActionRequest) error {
	return s.applyTransition(ctx, req, entryTransition{
		status:        fixed(model.StatusRejected),
		notification:  model.NotificationEdited,
		requireReason: true,
	})
}

// Withdraw is the manager-initiated withdrawal of granted entries.
func (s *requestService) Withdraw(ctx context.Context, req EntryActionRequest) error {
	return s.applyTransition(ctx, req, entryTransition{
		status:        fixed(model.StatusWithdrawn),
		notification:  model.NotificationWithdrawn,
		requireReason: true,
	})
}

func (s *requestService) Cancel(ctx context.Context, req EntryActionRequest) error {
	return s.applyTransition(ctx, req, entryTransition{
		status:       fixed(model.StatusCancelled),
		notification: model.NotificationCancelled,
	})
}

// Revoke is the requester-initiated withdrawal: immediate for self-requests,
// otherwise parked as Pending Withdrawal until the manager acknowledges.
func (s *requestService) Revoke(ctx context.Context, req EntryActionRequest) error {
	return s.applyTransition(ctx, req, entryTransition{
		status: func(selfRequest bool) model.Status {
			if selfRequest {
				return model.StatusWithdrawn
			}
			return model.StatusPendingWithdrawn
		},
		notification: model.NotificationSelfWithdrawn,
	})
}

// Acknowledge is the manager confirming a Pending Withdrawal.
func (s *requestService) Acknowledge(ctx context.Context, req EntryActionRequest) error {
	return s.applyTransition(ctx, req, entryTransition{
		status:       fixed(model.StatusWithdrawn),
		notification: model.NotificationAcknowledged,
	})
}

// AutoReject is the system-triggered deadline action. Only still-Pending
// entries flip; if every supplied entry is already decided the action is a
// complete no-op, which is what makes its at-least-once delivery safe.
func (s *requestService) AutoReject(ctx context.Context, req EntryActionRequest) error {
	return s.applyTransition(ctx, req, entryTransition{
		status:       fixed(model.StatusAutoRejected),
		notification: model.NotificationAutoRejected,
		onlyPending:  true,
	})
}

// applyTransition runs one workflow action as a single transaction: mutate the
// matched entries, write one audit row per mutated entry, recompute the
// aggregate from the committed entry set, write the request-level audit row
// only when the aggregate changed, and stamp both notification fields.
func (s *requestService) applyTransition(ctx context.Context, req EntryActionRequest, tr entryTransition) error {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return fmt.Errorf("%w: invalid request id", ErrValidation)
	}
	if len(req.Entries) == 0 {
		return fmt.Errorf("%w: entry_ids are required", ErrValidation)
	}

	entryIDs := make([]uuid.UUID, 0, len(req.Entries))
	reasons := make(map[uuid.UUID]string, len(req.Entries))
	for _, dto := range req.Entries {
		id, err := uuid.Parse(dto.EntryID)
		if err != nil {
			return fmt.Errorf("%w: invalid entry id %q", ErrValidation, dto.EntryID)
		}
		if tr.requireReason && dto.Reason == "" {
			return fmt.Errorf("%w: reason is required for entry %s", ErrValidation, dto.EntryID)
		}
		entryIDs = append(entryIDs, id)
		reasons[id] = dto.Reason
	}

	var mutated bool
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requestRepo.FindByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %s", ErrNotFound, req.RequestID)
			}
			return err
		}
		selfRequest := request.RequesterID == request.ReportingManager

		entries, err := s.requestRepo.FindEntries(txCtx, requestID, entryIDs)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("%w: no matching entries", ErrNotFound)
		}

		for i := range entries {
			entry := &entries[i]
			if tr.onlyPending && entry.Status != model.StatusPending {
				continue
			}
			entry.Status = tr.status(selfRequest)
			if reason := reasons[entry.ID]; reason != "" {
				entry.ActionReason = reason
			}
			if err := s.requestRepo.SaveEntry(txCtx, entry); err != nil {
				return fmt.Errorf("failed to update entry: %w", err)
			}
			if err := s.auditRepo.Log(txCtx, s.entryAuditRow(request, entry)); err != nil {
				return fmt.Errorf("failed to write audit row: %w", err)
			}
			mutated = true
		}
		if !mutated {
			// Late or superseded action: nothing flipped, leave the aggregate
			// and notification fields alone.
			return nil
		}

		// Aggregate from committed rows inside this transaction, never from a
		// stale snapshot.
		all, err := s.requestRepo.AllEntries(txCtx, requestID)
		if err != nil {
			return err
		}
		statuses := make([]model.Status, 0, len(all))
		for _, e := range all {
			statuses = append(statuses, e.Status)
		}
		overall := model.AggregateStatus(statuses)

		if overall != request.OverallStatus {
			if err := s.auditRepo.Log(txCtx, &model.AuditTrail{
				RequestID:        request.ID,
				RequesterID:      request.RequesterID,
				ReportingManager: request.ReportingManager,
				Department:       request.Department,
				Status:           overall,
			}); err != nil {
				return fmt.Errorf("failed to write audit row: %w", err)
			}
			request.OverallStatus = overall
		}
		request.NotificationStatus = tr.notification
		request.LastNotificationStatus = tr.notification
		if err := s.requestRepo.Save(txCtx, request); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if mutated {
		s.broadcast(requestID, "", string(tr.notification))
	}
	return nil
}

// --- Notification projector ---

func (s *requestService) CountUnseen(ctx context.Context, staffID int) (int64, error) {
	asRequester, err := s.requestRepo.CountByNotification(ctx, staffID, false, requesterCountSet)
	if err != nil {
		return 0, err
	}
	asManager, err := s.requestRepo.CountByNotification(ctx, staffID, true, managerCountSet)
	if err != nil {
		return 0, err
	}
	return asRequester + asManager, nil
}

// NotificationFeed lists the viewer's activity feed. When markSeen is set the
// returned rows are stamped Seen in the same transaction as the read — the
// feed is deliberately not idempotent. Read-only audit views pass false.
func (s *requestService) NotificationFeed(ctx context.Context, staffID int, markSeen bool) ([]RequestResponse, error) {
	var feed []model.WFHRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		feed, err = s.requestRepo.FeedByLastNotification(txCtx, staffID, requesterFeedSet, managerFeedSet)
		if err != nil {
			return err
		}
		if !markSeen {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(feed))
		for _, r := range feed {
			ids = append(ids, r.ID)
		}
		return s.requestRepo.MarkSeen(txCtx, ids)
	})
	if err != nil {
		return nil, err
	}
	return toRequestResponses(feed), nil
}

// --- Helpers ---

// parseEntryDate accepts both the bare date and the datetime form clients send.
func (s *requestService) parseEntryDate(value string) (time.Time, error) {
	if d, err := time.ParseInLocation("2006-01-02 15:04:05", value, s.loc); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc), nil
	}
	return time.ParseInLocation("2006-01-02", value, s.loc)
}

// entryAuditRow denormalizes the entry fields into an audit row so the fact
// survives the entry.
func (s *requestService) entryAuditRow(req *model.WFHRequest, entry *model.WFHRequestEntry) *model.AuditTrail {
	entryID := entry.ID
	entryDate := entry.EntryDate
	return &model.AuditTrail{
		RequestID:        req.ID,
		EntryID:          &entryID,
		RequesterID:      req.RequesterID,
		ReportingManager: req.ReportingManager,
		Department:       req.Department,
		Status:           entry.Status,
		EntryDate:        &entryDate,
		Reason:           entry.Reason,
		Duration:         entry.Duration,
		ActionReason:     entry.ActionReason,
	}
}

// broadcast pushes a notification event to connected websocket clients. The
// hub is optional and the send never blocks the caller.
func (s *requestService) broadcast(requestID uuid.UUID, status, notification string) {
	if s.hub == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":                "wfh_request",
		"request_id":          requestID.String(),
		"overall_status":      status,
		"notification_status": notification,
	})
	select {
	case s.hub.Broadcast <- event:
	default:
	}
}

func toRequestResponse(r model.WFHRequest, withEntries bool) RequestResponse {
	resp := RequestResponse{
		RequestID:              r.ID.String(),
		RequesterID:            r.RequesterID,
		ReportingManager:       r.ReportingManager,
		Department:             r.Department,
		OverallStatus:          string(r.OverallStatus),
		NotificationStatus:     string(r.NotificationStatus),
		LastNotificationStatus: string(r.LastNotificationStatus),
		TotalDays:              model.TotalDays(r.Entries).String(),
		CreatedAt:              r.CreatedAt.Format(time.RFC3339),
		ModifiedAt:             r.ModifiedAt.Format(time.RFC3339),
	}
	if !withEntries {
		return resp
	}
	resp.Entries = make([]EntryResponse, 0, len(r.Entries))
	for _, e := range r.Entries {
		resp.Entries = append(resp.Entries, EntryResponse{
			EntryID:      e.ID.String(),
			RequestID:    e.RequestID.String(),
			EntryDate:    e.EntryDate.Format("2006-01-02"),
			Reason:       e.Reason,
			Duration:     e.Duration,
			Status:       string(e.Status),
			ActionReason: e.ActionReason,
		})
	}
	return resp
}

func toRequestResponses(requests []model.WFHRequest) []RequestResponse {
	result := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r, true))
	}
	return result
}
