package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/repository"

	"github.com/google/uuid"
)

type AuditResponse struct {
	AuditID          string `json:"audit_id"`
	RequestID        string `json:"request_id"`
	EntryID          string `json:"entry_id,omitempty"`
	RequesterID      int    `json:"requester_id"`
	ReportingManager int    `json:"reporting_manager"`
	Department       string `json:"department"`
	Status           string `json:"status"`
	EntryDate        string `json:"entry_date,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Duration         string `json:"duration,omitempty"`
	ActionReason     string `json:"action_reason,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// AuditService exposes the transition history of a request, oldest first.
type AuditService interface {
	ListByRequest(ctx context.Context, requestID string) ([]AuditResponse, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) ListByRequest(ctx context.Context, requestID string) ([]AuditResponse, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request id", ErrValidation)
	}
	rows, err := s.auditRepo.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]AuditResponse, 0, len(rows))
	for _, row := range rows {
		resp := AuditResponse{
			AuditID:          row.ID.String(),
			RequestID:        row.RequestID.String(),
			RequesterID:      row.RequesterID,
			ReportingManager: row.ReportingManager,
			Department:       row.Department,
			Status:           string(row.Status),
			Reason:           row.Reason,
			Duration:         row.Duration,
			ActionReason:     row.ActionReason,
			CreatedAt:        row.CreatedAt.Format(time.RFC3339),
		}
		if row.EntryID != nil {
			resp.EntryID = row.EntryID.String()
		}
		if row.EntryDate != nil {
			resp.EntryDate = row.EntryDate.Format("2006-01-02")
		}
		result = append(result, resp)
	}
	return result, nil
}
