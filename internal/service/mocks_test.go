package service

import (
	"context"
	"io"
	"sort"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func mustParse(t *testing.T, id string) uuid.UUID {
	t.Helper()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", id, err)
	}
	return parsed
}

// passthroughTx runs the function on the caller's context. The services only
// care that everything inside one action shares a transaction, which the
// in-memory fakes satisfy trivially.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// enqueuedAction records one deferred action handed to the scheduler.
type enqueuedAction struct {
	Action  string
	FireAt  time.Time
	Payload any
}

type fakeScheduler struct {
	enqueued []enqueuedAction
	err      error
}

func (f *fakeScheduler) Enqueue(_ context.Context, action string, fireAt time.Time, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, enqueuedAction{Action: action, FireAt: fireAt, Payload: payload})
	return nil
}

// fakeRequestRepo is an in-memory RequestRepository that mirrors the query
// semantics of the Postgres implementation closely enough for workflow tests.
type fakeRequestRepo struct {
	requests map[uuid.UUID]*model.WFHRequest
	entries  map[uuid.UUID]*model.WFHRequestEntry
	order    []uuid.UUID
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[uuid.UUID]*model.WFHRequest),
		entries:  make(map[uuid.UUID]*model.WFHRequestEntry),
	}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *model.WFHRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.CreatedAt = now
	req.ModifiedAt = now
	clone := *req
	clone.Entries = nil
	f.requests[req.ID] = &clone
	f.order = append(f.order, req.ID)
	return nil
}

func (f *fakeRequestRepo) entriesOf(requestID uuid.UUID) []model.WFHRequestEntry {
	var result []model.WFHRequestEntry
	for _, e := range f.entries {
		if e.RequestID == requestID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryDate.Before(result[j].EntryDate) })
	return result
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.WFHRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *req
	clone.Entries = f.entriesOf(id)
	return &clone, nil
}

func (f *fakeRequestRepo) list(filter func(*model.WFHRequest) bool) []model.WFHRequest {
	var result []model.WFHRequest
	for _, id := range f.order {
		req := f.requests[id]
		if filter == nil || filter(req) {
			clone := *req
			clone.Entries = f.entriesOf(id)
			result = append(result, clone)
		}
	}
	return result
}

func (f *fakeRequestRepo) ListAll(_ context.Context) ([]model.WFHRequest, error) {
	return f.list(nil), nil
}

func (f *fakeRequestRepo) ListByStaff(_ context.Context, staffID int) ([]model.WFHRequest, error) {
	return f.list(func(r *model.WFHRequest) bool {
		return r.RequesterID == staffID || r.ReportingManager == staffID
	}), nil
}

func (f *fakeRequestRepo) ListByRequester(_ context.Context, staffID int) ([]model.WFHRequest, error) {
	requests := f.list(func(r *model.WFHRequest) bool { return r.RequesterID == staffID })
	for i := range requests {
		var approved []model.WFHRequestEntry
		for _, e := range requests[i].Entries {
			if e.Status == model.StatusApproved {
				approved = append(approved, e)
			}
		}
		requests[i].Entries = approved
	}
	return requests, nil
}

func (f *fakeRequestRepo) ListByDepartment(_ context.Context, dept string) ([]model.WFHRequest, error) {
	return f.list(func(r *model.WFHRequest) bool { return r.Department == dept }), nil
}

func (f *fakeRequestRepo) ListByEntryDate(_ context.Context, date time.Time) ([]model.WFHRequest, error) {
	return f.list(func(r *model.WFHRequest) bool {
		for _, e := range f.entriesOf(r.ID) {
			if e.EntryDate.Equal(date) {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeRequestRepo) Save(_ context.Context, req *model.WFHRequest) error {
	stored, ok := f.requests[req.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *req
	clone.Entries = nil
	clone.ModifiedAt = time.Now()
	clone.CreatedAt = stored.CreatedAt
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	for entryID, e := range f.entries {
		if e.RequestID == id {
			delete(f.entries, entryID)
		}
	}
	delete(f.requests, id)
	return nil
}

func (f *fakeRequestRepo) CreateEntry(_ context.Context, entry *model.WFHRequestEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	clone := *entry
	f.entries[entry.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) FindEntries(_ context.Context, requestID uuid.UUID, entryIDs []uuid.UUID) ([]model.WFHRequestEntry, error) {
	var result []model.WFHRequestEntry
	for _, id := range entryIDs {
		if e, ok := f.entries[id]; ok && e.RequestID == requestID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (f *fakeRequestRepo) AllEntries(_ context.Context, requestID uuid.UUID) ([]model.WFHRequestEntry, error) {
	return f.entriesOf(requestID), nil
}

func (f *fakeRequestRepo) SaveEntry(_ context.Context, entry *model.WFHRequestEntry) error {
	clone := *entry
	f.entries[entry.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) CountByNotification(_ context.Context, staffID int, asManager bool, statuses []model.NotificationStatus) (int64, error) {
	var count int64
	for _, req := range f.requests {
		if req.RequesterID == req.ReportingManager {
			continue
		}
		if asManager && req.ReportingManager != staffID {
			continue
		}
		if !asManager && req.RequesterID != staffID {
			continue
		}
		for _, s := range statuses {
			if req.NotificationStatus == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeRequestRepo) FeedByLastNotification(_ context.Context, staffID int, requesterSet, managerSet []model.NotificationStatus) ([]model.WFHRequest, error) {
	matches := func(status model.NotificationStatus, set []model.NotificationStatus) bool {
		for _, s := range set {
			if status == s {
				return true
			}
		}
		return false
	}
	return f.list(func(r *model.WFHRequest) bool {
		if r.RequesterID == r.ReportingManager {
			return false
		}
		if r.RequesterID == staffID && matches(r.LastNotificationStatus, requesterSet) {
			return true
		}
		return r.ReportingManager == staffID && matches(r.LastNotificationStatus, managerSet)
	}), nil
}

func (f *fakeRequestRepo) MarkSeen(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if req, ok := f.requests[id]; ok {
			req.NotificationStatus = model.NotificationSeen
		}
	}
	return nil
}

// fakeAuditRepo collects audit rows in insertion order.
type fakeAuditRepo struct {
	rows []model.AuditTrail
}

func (f *fakeAuditRepo) Log(_ context.Context, row *model.AuditTrail) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now()
	f.rows = append(f.rows, *row)
	return nil
}

func (f *fakeAuditRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.AuditTrail, error) {
	var result []model.AuditTrail
	for _, row := range f.rows {
		if row.RequestID == requestID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (f *fakeAuditRepo) forRequest(requestID uuid.UUID) []model.AuditTrail {
	rows, _ := f.ListByRequest(context.Background(), requestID)
	return rows
}

func (f *fakeAuditRepo) requestLevel(requestID uuid.UUID) []model.AuditTrail {
	var result []model.AuditTrail
	for _, row := range f.forRequest(requestID) {
		if row.EntryID == nil {
			result = append(result, row)
		}
	}
	return result
}

// fakeDelegateRepo is an in-memory DelegateRepository.
type fakeDelegateRepo struct {
	delegates map[uuid.UUID]*model.Delegate
	history   []model.DelegateStatusHistory
	order     []uuid.UUID
}

func newFakeDelegateRepo() *fakeDelegateRepo {
	return &fakeDelegateRepo{delegates: make(map[uuid.UUID]*model.Delegate)}
}

func (f *fakeDelegateRepo) Create(_ context.Context, d *model.Delegate) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedOn = time.Now()
	clone := *d
	f.delegates[d.ID] = &clone
	f.order = append(f.order, d.ID)
	return nil
}

func (f *fakeDelegateRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Delegate, error) {
	d, ok := f.delegates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *d
	return &clone, nil
}

func (f *fakeDelegateRepo) list(filter func(*model.Delegate) bool) []model.Delegate {
	var result []model.Delegate
	for _, id := range f.order {
		d := f.delegates[id]
		if filter == nil || filter(d) {
			result = append(result, *d)
		}
	}
	return result
}

func (f *fakeDelegateRepo) ListAll(_ context.Context) ([]model.Delegate, error) {
	return f.list(nil), nil
}

func (f *fakeDelegateRepo) ListByStaff(_ context.Context, staffID int) ([]model.Delegate, error) {
	return f.list(func(d *model.Delegate) bool {
		return d.DelegateFrom == staffID || d.DelegateTo == staffID
	}), nil
}

func (f *fakeDelegateRepo) Save(_ context.Context, d *model.Delegate) error {
	if _, ok := f.delegates[d.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *d
	f.delegates[d.ID] = &clone
	return nil
}

func (f *fakeDelegateRepo) AppendHistory(_ context.Context, h *model.DelegateStatusHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.UpdatedOn = time.Now()
	f.history = append(f.history, *h)
	return nil
}

func (f *fakeDelegateRepo) HistoryByDelegate(_ context.Context, delegateID uuid.UUID) ([]model.DelegateStatusHistory, error) {
	var result []model.DelegateStatusHistory
	for _, h := range f.history {
		if h.DelegateID == delegateID {
			result = append(result, h)
		}
	}
	return result, nil
}

func (f *fakeDelegateRepo) CountByNotification(_ context.Context, staffID int, asDelegator bool, statuses []model.DelegateStatus) (int64, error) {
	var count int64
	for _, d := range f.delegates {
		if asDelegator && d.DelegateFrom != staffID {
			continue
		}
		if !asDelegator && d.DelegateTo != staffID {
			continue
		}
		for _, s := range statuses {
			if d.NotificationStatus == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeDelegateRepo) Feed(_ context.Context, staffID int, delegatorSet, delegateeSet []model.DelegateStatus) ([]model.Delegate, error) {
	matches := func(status model.DelegateStatus, set []model.DelegateStatus) bool {
		for _, s := range set {
			if status == s {
				return true
			}
		}
		return false
	}
	return f.list(func(d *model.Delegate) bool {
		if d.DelegateFrom == staffID && matches(d.Status, delegatorSet) {
			return true
		}
		return d.DelegateTo == staffID && matches(d.Status, delegateeSet)
	}), nil
}

func (f *fakeDelegateRepo) MarkSeen(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if d, ok := f.delegates[id]; ok {
			d.NotificationStatus = model.DelegateSeen
		}
	}
	return nil
}
