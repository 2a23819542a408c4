package controller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Scope bounds the goroutines a controller launches. Closing it cancels
// their context and waits for them to return.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewScope creates a scope whose context is derived from parent
func NewScope(parent context.Context, logger *slog.Logger) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Context is cancelled when the scope closes
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go runs fn in a new goroutine. It reports false if the scope is already
// closed, in which case fn is not run.
func (s *Scope) Go(name string, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.group.Go(func() error {
		s.Run(name, fn)
		return nil
	})
	return true
}

// Run calls fn on the current goroutine, recovering and logging a panic
func (s *Scope) Run(name string, fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("controller task panicked",
				"task", name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	fn(s.ctx)
}

// Close cancels the scope and waits for every goroutine started with Go
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.group.Wait()
}
