package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	model "task-tracker.com/task-tracker/internal/models"
	repository "task-tracker.com/task-tracker/internal/repositories"
)

var ErrSweepStopped = errors.New("sweep service is shut down")

// SweepService reopens closed recurring tasks whose reopen time has passed.
type SweepService struct {
	repo   TaskStore
	clock  Clock
	logger *slog.Logger

	mu      sync.Mutex
	running sync.WaitGroup

	stateMu sync.Mutex
	closed  bool
}

func NewSweepService(repo TaskStore, clock Clock, logger *slog.Logger) *SweepService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepService{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// Run flips every due task back to Open with today's due date in a single
// bulk update. Running it twice in a row changes nothing the second time.
func (s *SweepService) Run(ctx context.Context) (int64, error) {
	if !s.begin() {
		return 0, ErrSweepStopped
	}
	defer s.running.Done()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	filter := repository.Filter{
		Status:       model.StatusClosed,
		ReopenBefore: &now,
	}

	reopened, err := s.repo.UpdateMany(ctx, filter, repository.Fields{
		model.ColumnStatus:   model.StatusOpen,
		model.ColumnReopenAt: nil,
		model.ColumnDueDate:  s.clock.Today(),
	})
	if err != nil {
		s.logger.Error("sweep failed", "error", err)
		return 0, err
	}

	s.logger.Info("sweep finished", "reopened", reopened)
	return reopened, nil
}

// RunJob adapts Run to a scheduler callback.
func (s *SweepService) RunJob() {
	_, _ = s.Run(context.Background())
}

// begin registers a run unless Shutdown has started.
func (s *SweepService) begin() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.closed {
		return false
	}
	s.running.Add(1)
	return true
}

// Shutdown refuses new sweeps, then waits for in-flight ones or for ctx to
// expire.
func (s *SweepService) Shutdown(ctx context.Context) {
	s.stateMu.Lock()
	s.closed = true
	s.stateMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sweep service shut down cleanly")
	case <-ctx.Done():
		s.logger.Warn("sweep service shutdown timed out")
	}
}
