// The worker drains the scheduled_actions table: auto-rejecting stale pending
// entries via the API's callback endpoint and applying delegation
// reporting-line swaps through the directory service. It runs alongside the
// API process and shares its database.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/directory"
	"backend/internal/model"
	"backend/internal/scheduler"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("connected to PostgreSQL")

	store := scheduler.NewStore(db)
	worker := scheduler.NewWorker(store, cfg.PollInterval, log)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	dir := directory.New(cfg.DirectoryBaseURL)

	worker.Register(model.ActionAutoReject, scheduler.NewAutoRejectHandler(cfg.AutoRejectURL, httpClient, log))
	worker.Register(model.ActionReassignManager, scheduler.NewReassignHandler(dir, log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("poll_interval", cfg.PollInterval.String()).Info("worker started")
	worker.Run(ctx)
	log.Info("worker stopped")
}
