package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"backend/internal/directory"

	"github.com/sirupsen/logrus"
)

// NewAutoRejectHandler returns the auto_reject handler: a synchronous callback
// into the workflow engine's auto-reject endpoint. The endpoint itself is
// precondition-gated (only still-Pending entries flip), which is what makes
// the at-least-once delivery of this handler safe.
func NewAutoRejectHandler(endpoint string, client *http.Client, log *logrus.Logger) HandlerFunc {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return func(ctx context.Context, payload []byte) error {
		var p AutoRejectPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode auto_reject payload: %w", err)
		}

		entries := make([]map[string]string, 0, len(p.EntryIDs))
		for _, id := range p.EntryIDs {
			entries = append(entries, map[string]string{"entry_id": id})
		}
		body, _ := json.Marshal(map[string]any{
			"request_id": p.RequestID,
			"entry_ids":  entries,
		})
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build auto_reject request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("auto_reject callback: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("auto_reject callback returned %d: %s", resp.StatusCode, respBody)
		}

		log.WithField("request_id", p.RequestID).Info("auto-reject executed")
		return nil
	}
}

// NewReassignHandler returns the reassign_manager handler: one directory
// update per affected staff id. A failure on one staff member stops the batch
// and records the failure; the earlier updates stand (the directory update is
// idempotent, so an operator re-run is safe).
func NewReassignHandler(dir *directory.Client, log *logrus.Logger) HandlerFunc {
	return func(ctx context.Context, payload []byte) error {
		var p ReassignPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode reassign_manager payload: %w", err)
		}

		for _, staffID := range p.StaffIDs {
			if err := dir.UpdateReportingManager(ctx, staffID, p.Manager); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"staff_id":          staffID,
				"reporting_manager": p.Manager,
			}).Info("reporting manager updated")
		}
		return nil
	}
}
