package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"task-manager/internal/domain"
	"task-manager/internal/logging"
	"task-manager/internal/services"
	"task-manager/internal/store"
)

// ListState is the observable state of the task list
type ListState struct {
	Tasks       []domain.Task
	IsLoading   bool
	SearchQuery string
	FilterMode  domain.FilterMode
	Priority    *domain.Priority
	ViewMode    domain.ViewMode
	Error       string
}

type openFunc func(ctx context.Context) (*store.Subscription, error)

// ListController keeps a task list in sync with one live query at a time.
// Search, Filter and FilterByPriority switch the query; the most recent
// call wins.
type ListController struct {
	uc     *services.Container
	scope  *Scope
	state  *Observable[ListState]
	logger *slog.Logger

	mu      sync.Mutex
	gen     uint64
	current openFunc

	// switchMu serializes query switches
	switchMu sync.Mutex
	stop     context.CancelFunc
	stopped  chan struct{}
}

// ListOption configures a ListController
type ListOption func(*ListState)

// WithViewMode sets the initial view mode
func WithViewMode(v domain.ViewMode) ListOption {
	return func(s *ListState) {
		s.ViewMode = v
	}
}

// NewListController creates a controller observing all tasks
func NewListController(ctx context.Context, uc *services.Container, opts ...ListOption) *ListController {
	logger := logging.With("component", "list_controller")

	initial := ListState{
		IsLoading:  true,
		FilterMode: domain.FilterAll,
		ViewMode:   domain.ViewList,
	}
	for _, opt := range opts {
		opt(&initial)
	}

	c := &ListController{
		uc:     uc,
		scope:  NewScope(ctx, logger),
		state:  NewObservable(initial),
		logger: logger,
	}

	c.switchTo(func(ctx context.Context) (*store.Subscription, error) {
		return uc.GetAllTasks.Execute(ctx)
	}, nil)
	return c
}

// State returns a snapshot of the current state
func (c *ListController) State() ListState {
	return c.state.Get()
}

// Watch streams state changes until ctx is done or the controller closes
func (c *ListController) Watch(ctx context.Context) <-chan ListState {
	return c.state.Watch(ctx)
}

// Search shows tasks whose title contains query. A blank query shows all tasks.
func (c *ListController) Search(query string) {
	selectSearch := func(s ListState) ListState {
		s.SearchQuery = query
		s.FilterMode = domain.FilterAll
		s.Priority = nil
		return s
	}

	if strings.TrimSpace(query) == "" {
		c.switchTo(func(ctx context.Context) (*store.Subscription, error) {
			return c.uc.GetAllTasks.Execute(ctx)
		}, selectSearch)
		return
	}
	c.switchTo(func(ctx context.Context) (*store.Subscription, error) {
		return c.uc.SearchTasks.Execute(ctx, query)
	}, selectSearch)
}

// Filter shows all, completed or pending tasks
func (c *ListController) Filter(mode domain.FilterMode) {
	c.switchTo(func(ctx context.Context) (*store.Subscription, error) {
		return c.uc.FilterTasks.Execute(ctx, mode)
	}, func(s ListState) ListState {
		s.FilterMode = mode
		s.SearchQuery = ""
		s.Priority = nil
		return s
	})
}

// FilterByPriority shows tasks of priority p
func (c *ListController) FilterByPriority(p domain.Priority) {
	c.switchTo(func(ctx context.Context) (*store.Subscription, error) {
		return c.uc.GetTasksByPriority.Execute(ctx, p)
	}, func(s ListState) ListState {
		s.Priority = &p
		s.SearchQuery = ""
		s.FilterMode = domain.FilterAll
		return s
	})
}

// ToggleView flips between list and grid layouts
func (c *ListController) ToggleView() {
	c.state.Update(func(s ListState) ListState {
		s.ViewMode = s.ViewMode.Toggle()
		return s
	})
}

// DeleteTask deletes task and reloads the active query
func (c *ListController) DeleteTask(task domain.Task) {
	c.scope.Go("delete", func(ctx context.Context) {
		if err := c.uc.DeleteTask.Execute(ctx, task); err != nil {
			c.fail("delete", err)
			return
		}
		c.reload()
	})
}

// ToggleCompletion flips the completion state of task and reloads the active query
func (c *ListController) ToggleCompletion(task domain.Task) {
	c.scope.Go("toggle", func(ctx context.Context) {
		if err := c.uc.UpdateTask.Execute(ctx, task.ToggleCompleted()); err != nil {
			c.fail("toggle", err)
			return
		}
		c.reload()
	})
}

// ClearError dismisses the current error message
func (c *ListController) ClearError() {
	c.state.Update(func(s ListState) ListState {
		s.Error = ""
		return s
	})
}

// Close stops the active query and waits for pending work
func (c *ListController) Close() {
	c.scope.Close()
	c.state.Close()
}

func (c *ListController) reload() {
	c.mu.Lock()
	open := c.current
	c.mu.Unlock()

	if open != nil {
		c.switchTo(open, nil)
	}
}

// switchTo records open as the latest intent, applies selector to the
// state and replaces the active subscription in the background. The state
// reports loading until the new query delivers.
func (c *ListController) switchTo(open openFunc, selector func(ListState) ListState) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.current = open
	c.mu.Unlock()

	c.state.Update(func(s ListState) ListState {
		if selector != nil {
			s = selector(s)
		}
		s.IsLoading = true
		return s
	})

	c.scope.Go("switch", func(ctx context.Context) {
		c.resubscribe(ctx, gen, open)
	})
}

func (c *ListController) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *ListController) resubscribe(ctx context.Context, gen uint64, open openFunc) {
	c.switchMu.Lock()
	defer c.switchMu.Unlock()

	if !c.isCurrent(gen) {
		return
	}

	// The previous collector must finish before the new one delivers
	if c.stop != nil {
		c.stop()
		<-c.stopped
		c.stop, c.stopped = nil, nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub, err := open(subCtx)
	if err != nil {
		cancel()
		if ctx.Err() == nil && c.isCurrent(gen) {
			c.fail("subscribe", err)
		}
		return
	}

	if !c.isCurrent(gen) {
		sub.Close()
		cancel()
		return
	}

	stopped := make(chan struct{})
	if !c.scope.Go("collect", func(context.Context) {
		c.collect(subCtx, gen, sub, stopped)
	}) {
		sub.Close()
		cancel()
		return
	}
	c.stop, c.stopped = cancel, stopped
}

func (c *ListController) collect(ctx context.Context, gen uint64, sub *store.Subscription, stopped chan struct{}) {
	defer close(stopped)
	defer sub.Close()

	for {
		res, ok := sub.Next(ctx)
		if !ok {
			return
		}
		if !c.isCurrent(gen) {
			continue
		}
		if res.Err != nil {
			c.fail("query", res.Err)
			return
		}

		// A newer switch may have started since the check above
		c.state.Update(func(s ListState) ListState {
			if !c.isCurrent(gen) {
				return s
			}
			s.Tasks = res.Tasks
			s.IsLoading = false
			return s
		})
	}
}

func (c *ListController) fail(op string, err error) {
	msg := userMessage(c.logger, op, err)
	c.state.Update(func(s ListState) ListState {
		s.Error = msg
		s.IsLoading = false
		return s
	})
}
