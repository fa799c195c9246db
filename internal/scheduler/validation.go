package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

// LinkValidator runs a full link validation.
type LinkValidator interface {
	ValidateLinks(ctx context.Context) (*validator.Report, error)
}

// RunInfo describes the last validation run.
type RunInfo struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Total      int           `json:"total"`
	Dead       int           `json:"dead"`
	Timeout    int           `json:"timeout"`
	Error      string        `json:"error,omitempty"`
	Manual     bool          `json:"manual"`
	InProgress bool          `json:"in_progress"`
}

// ValidationScheduler runs link validation periodically and on demand.
// A zero interval disables the periodic run; manual triggers still work.
type ValidationScheduler struct {
	svc           LinkValidator
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
	manualTrigger chan struct{}
	done          chan struct{}

	mu   sync.Mutex
	last *RunInfo
}

// NewValidationScheduler creates a new validation scheduler
func NewValidationScheduler(
	svc LinkValidator,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ValidationScheduler {
	return &ValidationScheduler{
		svc:           svc,
		logger:        log.With(logger.Component("scheduler")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		done:          make(chan struct{}),
	}
}

// Start begins the scheduling loop. It returns immediately.
func (vs *ValidationScheduler) Start(ctx context.Context) {
	vs.started.Store(true)
	if vs.interval > 0 {
		vs.logger.Info("periodic link validation enabled",
			logger.Duration("interval", vs.interval))
	}

	go func() {
		defer close(vs.done)

		var tick <-chan time.Time
		if vs.interval > 0 {
			ticker := time.NewTicker(vs.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				vs.Run(ctx, false)
			case <-vs.manualTrigger:
				vs.logger.Info("manual link validation triggered")
				vs.Run(ctx, true)
			case <-vs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the scheduler and waits for a running validation to end.
func (vs *ValidationScheduler) Stop() {
	if !vs.started.Load() {
		return
	}
	vs.stopOnce.Do(func() { close(vs.stopCh) })
	<-vs.done
}

// Run validates once and records the outcome.
func (vs *ValidationScheduler) Run(ctx context.Context, manual bool) {
	info := &RunInfo{StartedAt: time.Now(), Manual: manual, InProgress: true}
	vs.setLast(info)

	rep, err := vs.svc.ValidateLinks(ctx)

	done := *info
	done.InProgress = false
	done.Duration = time.Since(info.StartedAt)
	switch {
	case errors.Is(err, domain.ErrBusy):
		done.Error = err.Error()
		vs.logger.Warn("link validation skipped, another bulk operation is running")
	case err != nil:
		done.Error = err.Error()
		vs.logger.Error("link validation failed", logger.Error(err))
	default:
		done.Total = rep.TotalChecked
		done.Dead = rep.DeadLinksFound
		done.Timeout = rep.Counts[domain.StatusTimeout]
	}
	vs.setLast(&done)
}

// LastRun returns the last (or running) validation, nil if none yet.
func (vs *ValidationScheduler) LastRun() *RunInfo {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if vs.last == nil {
		return nil
	}
	cp := *vs.last
	return &cp
}

func (vs *ValidationScheduler) setLast(info *RunInfo) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.last = info
}
