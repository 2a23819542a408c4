package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/logging"

	"github.com/google/uuid"
)

// ErrClosed is returned by operations on a closed Store
var ErrClosed = errors.NewStorageError("use of closed store", nil)

// Store owns persisted tasks and keeps live queries up to date.
// Mutations and the notification fan-out that follows them run under one
// lock, so every subscription observes commits in order.
type Store struct {
	backend Backend
	clock   func() time.Time
	metrics *Metrics
	logger  *slog.Logger

	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	closed bool
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the clock used to stamp tasks inserted without CreatedAt
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithMetrics sets the collectors the store updates
func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithLogger sets the store logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store persisting through backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		clock:   domain.Now,
		subs:    make(map[uuid.UUID]*Subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.logger == nil {
		s.logger = logging.With("component", "store")
	}
	return s
}

// Insert stores task and returns its ID. A zero ID gets a fresh one; a
// non-zero ID replaces any existing row. A zero CreatedAt is stamped with
// the store clock.
func (s *Store) Insert(ctx context.Context, task domain.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	var before *domain.Task
	if task.ID != 0 {
		var err error
		if before, err = s.backend.GetByID(ctx, task.ID); err != nil {
			return 0, err
		}
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.clock()
	}
	task.CreatedAt = task.CreatedAt.Truncate(time.Millisecond)

	if err := s.backend.Insert(ctx, &task); err != nil {
		return 0, err
	}

	s.metrics.Mutations.WithLabelValues("insert").Inc()
	s.notify(ctx, before, &task)
	return task.ID, nil
}

// Update replaces the row with task.ID. CreatedAt is never changed. Updating
// a missing row is a no-op.
func (s *Store) Update(ctx context.Context, task domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	before, err := s.backend.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}
	if before == nil {
		return nil
	}

	ok, err := s.backend.Update(ctx, task)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	task.CreatedAt = before.CreatedAt
	s.metrics.Mutations.WithLabelValues("update").Inc()
	s.notify(ctx, before, &task)
	return nil
}

// Delete removes the row with id. Deleting a missing row is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	before, err := s.backend.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if before == nil {
		return nil
	}

	ok, err := s.backend.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	s.metrics.Mutations.WithLabelValues("delete").Inc()
	s.notify(ctx, before, nil)
	return nil
}

// DeleteTask removes the row with task.ID
func (s *Store) DeleteTask(ctx context.Context, task domain.Task) error {
	return s.Delete(ctx, task.ID)
}

// GetByID returns the task with id, or nil if there is none
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return s.backend.GetByID(ctx, id)
}

// QueryAll subscribes to every task
func (s *Store) QueryAll(ctx context.Context) (*Subscription, error) {
	return s.Subscribe(ctx, domain.AllTasks())
}

// QueryByPriority subscribes to the tasks with priority p
func (s *Store) QueryByPriority(ctx context.Context, p domain.Priority) (*Subscription, error) {
	return s.Subscribe(ctx, domain.ByPriority(p))
}

// QueryByCompletion subscribes to completed or pending tasks
func (s *Store) QueryByCompletion(ctx context.Context, completed bool) (*Subscription, error) {
	return s.Subscribe(ctx, domain.ByCompletion(completed))
}

// QuerySearch subscribes to the tasks whose title contains text
func (s *Store) QuerySearch(ctx context.Context, text string) (*Subscription, error) {
	return s.Subscribe(ctx, domain.ByTitle(text))
}

// Subscribe registers a live query for filter. The initial result is
// available immediately. The subscription ends when ctx is done, when it is
// closed, or after delivering a query error.
func (s *Store) Subscribe(ctx context.Context, filter domain.Filter) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	sub := newSubscription(s, filter)

	tasks, err := s.backend.Query(ctx, filter)
	if err != nil {
		s.fail(sub, err)
		return sub, nil
	}

	sub.last = tasks
	sub.box.Put(Result{Tasks: tasks})
	s.metrics.Emissions.Inc()

	s.subs[sub.id] = sub
	s.metrics.ActiveSubscriptions.Inc()
	sub.stop = context.AfterFunc(ctx, sub.Close)

	s.logger.Debug("subscription registered", "id", sub.id, "filter", filter.String(), "rows", len(tasks))
	return sub, nil
}

// Subscriptions returns the number of registered live queries
func (s *Store) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close ends every subscription and closes the backend
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	for _, sub := range s.subs {
		s.drop(sub)
		sub.box.Close()
	}
	s.mu.Unlock()

	return s.backend.Close()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) unregister(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.id]; !ok {
		return
	}
	s.drop(sub)
	s.logger.Debug("subscription closed", "id", sub.id)
}

// drop removes sub from the registry. Callers hold s.mu.
func (s *Store) drop(sub *Subscription) {
	delete(s.subs, sub.id)
	s.metrics.ActiveSubscriptions.Dec()
	if sub.stop != nil {
		sub.stop()
	}
}

// notify re-evaluates every subscription the change can affect and emits
// to those whose result differs. Callers hold s.mu.
func (s *Store) notify(ctx context.Context, before, after *domain.Task) {
	// The commit already happened; a caller cancelling now must not fail
	// other observers' queries.
	ctx = context.WithoutCancel(ctx)

	for _, sub := range s.subs {
		if !sub.affectedBy(before, after) {
			continue
		}

		tasks, err := s.backend.Query(ctx, sub.filter)
		if err != nil {
			s.drop(sub)
			s.fail(sub, err)
			continue
		}

		if domain.EqualTasks(sub.last, tasks) {
			continue
		}
		sub.last = tasks
		sub.box.Put(Result{Tasks: tasks})
		s.metrics.Emissions.Inc()
	}
}

// fail delivers err as the final result of sub. Callers hold s.mu and have
// already removed sub from the registry.
func (s *Store) fail(sub *Subscription, err error) {
	s.metrics.QueryErrors.Inc()
	s.logger.Warn("live query failed", "id", sub.id, "filter", sub.filter.String(), "error", err)
	sub.box.Put(Result{Err: err})
	sub.box.Close()
}
