package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweeper re-verifies the archived chain on a schedule. It is offline
// tooling over the Archive read side; the live recorder takes no part in it
// and a failed sweep changes nothing about past decisions; it alerts.
type Sweeper struct {
	archive  Archive
	schedule string
	cron     *cron.Cron

	mu      sync.Mutex
	running bool
	logger  *slog.Logger
}

// NewSweeper creates a sweeper over archive. schedule is standard cron
// syntax (e.g. "0 3 * * *" for daily at 3 AM); empty disables sweeping.
func NewSweeper(archive Archive, schedule string) *Sweeper {
	return &Sweeper{
		archive:  archive,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "audit.sweeper"),
	}
}

// Start begins scheduled sweeps.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("audit chain sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("audit chain sweeper started", "schedule", s.schedule)
	return nil
}

// Stop stops scheduled sweeps and waits for a running one to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}

// Sweep loads the full archive and verifies the chain once.
func (s *Sweeper) Sweep(ctx context.Context) error {
	records, err := s.archive.LoadAll(ctx)
	if err != nil {
		return err
	}
	if err := VerifyChain(records); err != nil {
		return err
	}
	s.logger.Info("audit chain verified", "records", len(records))
	return nil
}
