package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/onestopcentre/cybercrime-api/databases"
	"github.com/onestopcentre/cybercrime-api/models"
)

// Scheduler pushes a full case snapshot to the mirror server on a fixed
// interval so the mirror keeps serving during primary outages.
type Scheduler struct {
	cron      *cron.Cron
	CaseDB    databases.CaseDatabase
	MirrorURL string
	client    *http.Client
}

// New creates a scheduler pushing snapshots to the mirror at mirrorURL.
func New(caseDB databases.CaseDatabase, mirrorURL string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		CaseDB:    caseDB,
		MirrorURL: mirrorURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("@every 1m", s.pushSnapshot)
	if err != nil {
		zap.S().Errorw("failed to register mirror sync job", "error", err)
	}

	s.cron.Start()
	zap.S().Infow("Mirror sync scheduler started", "mirror", s.MirrorURL)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Mirror sync scheduler stopped")
}

// pushSnapshot sends every case to the mirror. A failed push is logged and
// retried on the next tick, never fatal.
func (s *Scheduler) pushSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cases, err := s.CaseDB.Find(ctx, bson.D{})
	if err != nil {
		zap.S().Warnw("mirror sync: failed to load cases", "error", err)
		return
	}

	if err := s.Push(ctx, cases); err != nil {
		zap.S().Warnw("mirror sync: push failed", "error", err, "count", len(cases))
		return
	}
	zap.S().Debugw("mirror sync: snapshot pushed", "count", len(cases))
}

// Push posts the case snapshot to the mirror's update endpoint.
func (s *Scheduler) Push(ctx context.Context, cases []models.Case) error {
	if cases == nil {
		cases = []models.Case{}
	}
	body, err := json.Marshal(cases)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.MirrorURL+"/update-cases", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mirror request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach mirror: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mirror rejected snapshot with status %d", resp.StatusCode)
	}
	return nil
}
