package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/directory"
	"backend/internal/model"
	"backend/internal/scheduler"
)

// fakeDirectory serves the directory's enveloped employee listing.
func fakeDirectory(t *testing.T, reports []directory.Employee) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(reports)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status_code": 200,
			"message":     "ok",
			"data":        json.RawMessage(data),
		})
	}))
}

func newTestDelegateService(t *testing.T, dirURL string) (DelegateService, *fakeDelegateRepo, *fakeScheduler) {
	t.Helper()
	repo := newFakeDelegateRepo()
	sched := &fakeScheduler{}
	svc := NewDelegateService(repo, passthroughTx{}, sched, directory.New(dirURL), time.UTC, testLogger())
	return svc, repo, sched
}

func proposeDelegate(t *testing.T, svc DelegateService, from, to int) DelegateResponse {
	t.Helper()
	resp, err := svc.CreateDelegate(context.Background(), CreateDelegateDTO{
		DelegateFrom: from,
		DelegateTo:   to,
		StartDate:    "2026-09-14",
		EndDate:      "2026-09-18",
		Reason:       "annual leave",
		Department:   "Engineering",
	})
	if err != nil {
		t.Fatalf("CreateDelegate: %v", err)
	}
	return resp
}

func TestCreateDelegate(t *testing.T) {
	svc, repo, _ := newTestDelegateService(t, "http://directory.invalid")

	resp := proposeDelegate(t, svc, 200, 201)

	if resp.Status != string(model.DelegatePending) {
		t.Errorf("status = %q, want pending", resp.Status)
	}
	hist, _ := svc.History(context.Background(), resp.DelegateID)
	if len(hist) != 1 || hist[0].Status != string(model.DelegatePending) {
		t.Errorf("history = %+v, want one pending row", hist)
	}
	if len(repo.delegates) != 1 {
		t.Errorf("stored delegates = %d, want 1", len(repo.delegates))
	}
}

func TestCreateDelegate_Validation(t *testing.T) {
	svc, _, _ := newTestDelegateService(t, "http://directory.invalid")

	tests := []struct {
		name string
		req  CreateDelegateDTO
	}{
		{"self delegation", CreateDelegateDTO{DelegateFrom: 200, DelegateTo: 200, StartDate: "2026-09-14", EndDate: "2026-09-18", Reason: "x"}},
		{"end before start", CreateDelegateDTO{DelegateFrom: 200, DelegateTo: 201, StartDate: "2026-09-18", EndDate: "2026-09-14", Reason: "x"}},
		{"bad start date", CreateDelegateDTO{DelegateFrom: 200, DelegateTo: 201, StartDate: "soon", EndDate: "2026-09-18", Reason: "x"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateDelegate(context.Background(), tc.req); !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDecideDelegate_Accept(t *testing.T) {
	dir := fakeDirectory(t, []directory.Employee{
		{StaffID: 101, ReportingManager: 200},
		{StaffID: 102, ReportingManager: 200},
	})
	defer dir.Close()

	svc, _, sched := newTestDelegateService(t, dir.URL)
	resp := proposeDelegate(t, svc, 200, 201)

	decided, err := svc.DecideDelegate(context.Background(), resp.DelegateID, DelegateDecisionDTO{Status: "accepted"})
	if err != nil {
		t.Fatalf("DecideDelegate: %v", err)
	}
	if decided.Status != string(model.DelegateAccepted) {
		t.Errorf("status = %q, want accepted", decided.Status)
	}

	hist, _ := svc.History(context.Background(), resp.DelegateID)
	if len(hist) != 2 {
		t.Fatalf("history rows = %d, want 2", len(hist))
	}
	if hist[1].Status != string(model.DelegateAccepted) {
		t.Errorf("latest history = %q, want accepted", hist[1].Status)
	}

	// Exactly two scheduled swaps: to the delegatee at window start, back to
	// the delegator at window end.
	if len(sched.enqueued) != 2 {
		t.Fatalf("scheduled actions = %d, want 2", len(sched.enqueued))
	}
	start := sched.enqueued[0]
	end := sched.enqueued[1]
	if start.Action != model.ActionReassignManager || end.Action != model.ActionReassignManager {
		t.Fatalf("actions = %q, %q, want reassign_manager", start.Action, end.Action)
	}
	startPayload := start.Payload.(scheduler.ReassignPayload)
	endPayload := end.Payload.(scheduler.ReassignPayload)
	if startPayload.Manager != 201 {
		t.Errorf("start manager = %d, want 201", startPayload.Manager)
	}
	if endPayload.Manager != 200 {
		t.Errorf("end manager = %d, want 200", endPayload.Manager)
	}
	if len(startPayload.StaffIDs) != 2 || len(endPayload.StaffIDs) != 2 {
		t.Errorf("staff ids = %v / %v, want both sets of 2", startPayload.StaffIDs, endPayload.StaffIDs)
	}
	wantStart := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
	if !start.FireAt.Equal(wantStart) || !end.FireAt.Equal(wantEnd) {
		t.Errorf("fire ats = %v / %v, want %v / %v", start.FireAt, end.FireAt, wantStart, wantEnd)
	}
}

func TestDecideDelegate_Reject(t *testing.T) {
	svc, _, sched := newTestDelegateService(t, "http://directory.invalid")
	resp := proposeDelegate(t, svc, 200, 201)

	decided, err := svc.DecideDelegate(context.Background(), resp.DelegateID, DelegateDecisionDTO{Status: "rejected"})
	if err != nil {
		t.Fatalf("DecideDelegate: %v", err)
	}
	if decided.Status != string(model.DelegateRejected) {
		t.Errorf("status = %q, want rejected", decided.Status)
	}
	// Rejection never touches reporting lines.
	if len(sched.enqueued) != 0 {
		t.Errorf("scheduled actions = %d, want 0", len(sched.enqueued))
	}
}

func TestDecideDelegate_OnlyPending(t *testing.T) {
	svc, _, _ := newTestDelegateService(t, "http://directory.invalid")
	resp := proposeDelegate(t, svc, 200, 201)

	if _, err := svc.DecideDelegate(context.Background(), resp.DelegateID, DelegateDecisionDTO{Status: "rejected"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DecideDelegate(context.Background(), resp.DelegateID, DelegateDecisionDTO{Status: "accepted"}); !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation on already-decided delegate", err)
	}
}

func TestDelegateNotificationFeed(t *testing.T) {
	svc, _, _ := newTestDelegateService(t, "http://directory.invalid")
	resp := proposeDelegate(t, svc, 200, 201)

	// The delegatee sees the pending proposal.
	count, err := svc.CountUnseen(context.Background(), 201)
	if err != nil {
		t.Fatalf("CountUnseen: %v", err)
	}
	if count != 1 {
		t.Errorf("delegatee unseen = %d, want 1", count)
	}

	if _, err := svc.DecideDelegate(context.Background(), resp.DelegateID, DelegateDecisionDTO{Status: "rejected"}); err != nil {
		t.Fatal(err)
	}

	// The decision now notifies the delegator.
	if count, _ = svc.CountUnseen(context.Background(), 200); count != 1 {
		t.Errorf("delegator unseen = %d, want 1", count)
	}
	feed, err := svc.NotificationFeed(context.Background(), 200, true)
	if err != nil {
		t.Fatalf("NotificationFeed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("feed size = %d, want 1", len(feed))
	}
	if count, _ = svc.CountUnseen(context.Background(), 200); count != 0 {
		t.Errorf("delegator unseen after read = %d, want 0", count)
	}
}
