// Package ctl implements the favorgctl commands on top of the service layer.
package ctl

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/favorg/internal/app"
	"github.com/MrSnakeDoc/favorg/internal/config"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/service"
	"github.com/MrSnakeDoc/favorg/internal/utils"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

// Env opens the configured store on first use and shares it between the
// steps of one command.
type Env struct {
	Config *config.Config
	Logger logger.Logger

	mu       sync.Mutex
	store    service.Store
	svc      *service.Service
	progress func(validator.Result)
}

// NewEnv wraps an already loaded configuration.
func NewEnv(cfg *config.Config, log logger.Logger) *Env {
	return &Env{Config: cfg, Logger: log}
}

// Store opens the store once.
func (e *Env) Store(ctx context.Context) (service.Store, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		return e.store, nil
	}
	s, err := app.OpenStore(ctx, e.Config, e.Logger)
	if err != nil {
		return nil, err
	}
	e.store = s
	return s, nil
}

// OnProgress registers a per-record validation callback. It must be called
// before Service.
func (e *Env) OnProgress(fn func(validator.Result)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress = fn
}

// Service builds the service over the store once.
func (e *Env) Service(ctx context.Context) (*service.Service, error) {
	store, err := e.Store(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.svc != nil {
		return e.svc, nil
	}
	var opts []validator.Option
	if e.progress != nil {
		opts = append(opts, validator.WithProgress(e.progress))
	}
	e.svc = service.New(store, app.NewValidator(e.Config, e.Logger, opts...), e.Logger)
	return e.svc, nil
}

// Close releases the store if it was opened.
func (e *Env) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		utils.MustClose(e.store, e.Logger, "store")
		e.store = nil
		e.svc = nil
	}
}
