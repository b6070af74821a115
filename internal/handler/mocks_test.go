package handler

import (
	"context"

	"backend/internal/service"
)

// mockRequestService returns configured responses; unset fields yield zero
// values and nil errors.
type mockRequestService struct {
	createRequest    func(ctx context.Context, req service.CreateRequestDTO) (service.RequestResponse, error)
	getRequest       func(ctx context.Context, id string) (service.RequestResponse, error)
	listRequests     func(ctx context.Context) ([]service.RequestResponse, error)
	deleteRequest    func(ctx context.Context, id string) error
	action           func(ctx context.Context, req service.EntryActionRequest) error
	countUnseen      func(ctx context.Context, staffID int) (int64, error)
	notificationFeed func(ctx context.Context, staffID int, markSeen bool) ([]service.RequestResponse, error)
}

func (m *mockRequestService) CreateRequest(ctx context.Context, req service.CreateRequestDTO) (service.RequestResponse, error) {
	if m.createRequest == nil {
		return service.RequestResponse{}, nil
	}
	return m.createRequest(ctx, req)
}

func (m *mockRequestService) GetRequest(ctx context.Context, id string) (service.RequestResponse, error) {
	if m.getRequest == nil {
		return service.RequestResponse{}, nil
	}
	return m.getRequest(ctx, id)
}

func (m *mockRequestService) ListRequests(ctx context.Context) ([]service.RequestResponse, error) {
	if m.listRequests == nil {
		return nil, nil
	}
	return m.listRequests(ctx)
}

func (m *mockRequestService) ListByStaff(context.Context, int) ([]service.RequestResponse, error) {
	return nil, nil
}

func (m *mockRequestService) ListApprovedByRequester(context.Context, int) ([]service.RequestResponse, error) {
	return nil, nil
}

func (m *mockRequestService) ListByDepartment(context.Context, string) ([]service.RequestResponse, error) {
	return nil, nil
}

func (m *mockRequestService) ListByDate(context.Context, string) ([]service.RequestResponse, error) {
	return nil, nil
}

func (m *mockRequestService) DeleteRequest(ctx context.Context, id string) error {
	if m.deleteRequest == nil {
		return nil
	}
	return m.deleteRequest(ctx, id)
}

func (m *mockRequestService) do(ctx context.Context, req service.EntryActionRequest) error {
	if m.action == nil {
		return nil
	}
	return m.action(ctx, req)
}

func (m *mockRequestService) Approve(ctx context.Context, req service.EntryActionRequest) error {
	return m.do(ctx, req)
}

func (m *mockRequestService) Reject(ctx context.Context, req service.EntryActionRequest) error {
	return m.do(ctx, req)
}

func (m *mockRequestService) Withdraw(ctx context.Context, req service.EntryActionRequest) error {
	return m.do(ctx, req)
}

func (m *mockRequestService) Cancel(ctx context.Context, req service.EntryActionRequest) error {
	return m.do(ctx, req)
}

func (m *mockRequestService) Revoke(ctx context.Context, req service.EntryActionRequest) error {
	return m.do(ctx, req)
}

func (m *mockRequestService) Acknowledge(ctx context.Context, req service.EntryActionRequest) error {
	return m.do(ctx, req)
}

func (m *mockRequestService) AutoReject(ctx context.Context, req service.EntryActionRequest) error {
	return m.do(ctx, req)
}

func (m *mockRequestService) CountUnseen(ctx context.Context, staffID int) (int64, error) {
	if m.countUnseen == nil {
		return 0, nil
	}
	return m.countUnseen(ctx, staffID)
}

func (m *mockRequestService) NotificationFeed(ctx context.Context, staffID int, markSeen bool) ([]service.RequestResponse, error) {
	if m.notificationFeed == nil {
		return nil, nil
	}
	return m.notificationFeed(ctx, staffID, markSeen)
}

type mockAuditService struct {
	listByRequest func(ctx context.Context, requestID string) ([]service.AuditResponse, error)
}

func (m *mockAuditService) ListByRequest(ctx context.Context, requestID string) ([]service.AuditResponse, error) {
	if m.listByRequest == nil {
		return nil, nil
	}
	return m.listByRequest(ctx, requestID)
}

type mockDelegateService struct {
	createDelegate   func(ctx context.Context, req service.CreateDelegateDTO) (service.DelegateResponse, error)
	decideDelegate   func(ctx context.Context, id string, decision service.DelegateDecisionDTO) (service.DelegateResponse, error)
	countUnseen      func(ctx context.Context, staffID int) (int64, error)
	notificationFeed func(ctx context.Context, staffID int, markSeen bool) ([]service.DelegateResponse, error)
}

func (m *mockDelegateService) CreateDelegate(ctx context.Context, req service.CreateDelegateDTO) (service.DelegateResponse, error) {
	if m.createDelegate == nil {
		return service.DelegateResponse{}, nil
	}
	return m.createDelegate(ctx, req)
}

func (m *mockDelegateService) DecideDelegate(ctx context.Context, id string, decision service.DelegateDecisionDTO) (service.DelegateResponse, error) {
	if m.decideDelegate == nil {
		return service.DelegateResponse{}, nil
	}
	return m.decideDelegate(ctx, id, decision)
}

func (m *mockDelegateService) ListDelegates(context.Context) ([]service.DelegateResponse, error) {
	return nil, nil
}

func (m *mockDelegateService) ListByStaff(context.Context, int) ([]service.DelegateResponse, error) {
	return nil, nil
}

func (m *mockDelegateService) History(context.Context, string) ([]service.DelegateHistoryResponse, error) {
	return nil, nil
}

func (m *mockDelegateService) CountUnseen(ctx context.Context, staffID int) (int64, error) {
	if m.countUnseen == nil {
		return 0, nil
	}
	return m.countUnseen(ctx, staffID)
}

func (m *mockDelegateService) NotificationFeed(ctx context.Context, staffID int, markSeen bool) ([]service.DelegateResponse, error) {
	if m.notificationFeed == nil {
		return nil, nil
	}
	return m.notificationFeed(ctx, staffID, markSeen)
}

type mockAuthService struct {
	login func(ctx context.Context, req service.LoginRequest) (*service.TokenResponse, error)
}

func (m *mockAuthService) Login(ctx context.Context, req service.LoginRequest) (*service.TokenResponse, error) {
	if m.login == nil {
		return &service.TokenResponse{Token: "token"}, nil
	}
	return m.login(ctx, req)
}
