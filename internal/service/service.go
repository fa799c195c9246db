// Package service orchestrates imports, exports and the bulk operations
// (duplicate detection, link validation) over a bookmark Store.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

// Service is the bookmark collection API shared by the HTTP server,
// the schedulers and the CLI.
type Service struct {
	store     Store
	validator *validator.Validator
	log       logger.Logger
	now       func() time.Time

	// bulk is a one-slot semaphore: one mutating bulk operation
	// (import, find/delete duplicates, validate, remove dead links) at a time.
	bulk chan struct{}

	mu     sync.Mutex
	states map[domain.BulkOperation]*domain.BulkState
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service.
func New(store Store, v *validator.Validator, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: v,
		log:       log.With(logger.Component("service")),
		now:       time.Now,
		bulk:      make(chan struct{}, 1),
		states: map[domain.BulkOperation]*domain.BulkState{
			domain.BulkDuplicates: domain.NewBulkState(domain.BulkDuplicates),
			domain.BulkDeadLinks:  domain.NewBulkState(domain.BulkDeadLinks),
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

// acquire takes the bulk slot, waiting until ctx is done.
func (s *Service) acquire(ctx context.Context) (release func(), err error) {
	// select picks at random when both cases are ready.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBusy, err)
	}
	select {
	case s.bulk <- struct{}{}:
		return func() { <-s.bulk }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrBusy, ctx.Err())
	}
}

// Busy reports whether a bulk operation is running.
func (s *Service) Busy() bool {
	return len(s.bulk) > 0
}

// BulkStates returns a snapshot of every bulk operation state.
func (s *Service) BulkStates() []*domain.BulkState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return []*domain.BulkState{
		s.states[domain.BulkDuplicates].Clone(),
		s.states[domain.BulkDeadLinks].Clone(),
	}
}

func (s *Service) updateState(op domain.BulkOperation, fn func(*domain.BulkState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.states[op])
}

func (s *Service) state(op domain.BulkOperation) *domain.BulkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[op].Clone()
}
