package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const claimBatchSize = 50

// HandlerFunc executes one claimed action. The raw payload is the JSON stored
// at enqueue time.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Worker polls the scheduled-action store and dispatches due actions to their
// registered handlers. It runs decoupled from the request path; a handler
// failure is recorded on the action row and logged, nothing more.
type Worker struct {
	store    *Store
	interval time.Duration
	handlers map[string]HandlerFunc
	log      *logrus.Logger
}

func NewWorker(store *Store, interval time.Duration, log *logrus.Logger) *Worker {
	return &Worker{
		store:    store,
		interval: interval,
		handlers: make(map[string]HandlerFunc),
		log:      log,
	}
}

// Register binds an action name to its handler. Must be called before Run.
func (w *Worker) Register(action string, fn HandlerFunc) {
	w.handlers[action] = fn
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithField("interval", w.interval).Info("scheduler worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("scheduler worker stopped")
			return
		case <-ticker.C:
			w.drainOnce(ctx)
		}
	}
}

// drainOnce claims and executes one batch of due actions.
func (w *Worker) drainOnce(ctx context.Context) {
	actions, err := w.store.ClaimDue(ctx, time.Now(), claimBatchSize)
	if err != nil {
		w.log.WithError(err).Error("failed to claim due actions")
		return
	}

	for _, action := range actions {
		logger := w.log.WithFields(logrus.Fields{
			"action_id": action.ID,
			"action":    action.Action,
			"fire_at":   action.FireAt,
		})

		handler, ok := w.handlers[action.Action]
		if !ok {
			err := fmt.Errorf("no handler registered for action %q", action.Action)
			logger.WithError(err).Error("dropping action")
			if markErr := w.store.MarkFailed(ctx, action.ID, err); markErr != nil {
				logger.WithError(markErr).Error("failed to mark action failed")
			}
			continue
		}

		if err := handler(ctx, []byte(action.Payload)); err != nil {
			logger.WithError(err).Error("deferred action failed")
			if markErr := w.store.MarkFailed(ctx, action.ID, err); markErr != nil {
				logger.WithError(markErr).Error("failed to mark action failed")
			}
			continue
		}

		if err := w.store.MarkDone(ctx, action.ID); err != nil {
			logger.WithError(err).Error("failed to mark action done")
			continue
		}
		logger.Info("deferred action executed")
	}
}
