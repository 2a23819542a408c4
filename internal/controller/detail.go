package controller

import (
	"context"
	"log/slog"
	"sync"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/logging"
	"task-manager/internal/services"
)

// DetailState is the observable state of the task detail screen.
// Saved and Deleted stay set until explicitly reset.
type DetailState struct {
	Task      *domain.Task
	IsLoading bool
	Saved     bool
	SavedID   int64
	Deleted   bool
	Error     string
}

type detailOp struct {
	name string
	run  func(ctx context.Context)
}

// DetailController loads, saves and deletes a single task. Operations run
// one at a time in call order.
type DetailController struct {
	uc     *services.Container
	scope  *Scope
	state  *Observable[DetailState]
	logger *slog.Logger

	ops      chan detailOp
	inFlight int

	queueMu sync.Mutex
	stopped bool
}

// NewDetailController creates an idle detail controller
func NewDetailController(ctx context.Context, uc *services.Container) *DetailController {
	logger := logging.With("component", "detail_controller")

	c := &DetailController{
		uc:     uc,
		scope:  NewScope(ctx, logger),
		state:  NewObservable(DetailState{}),
		logger: logger,
		ops:    make(chan detailOp, 16),
	}
	c.scope.Go("worker", c.work)
	return c
}

// State returns a snapshot of the current state
func (c *DetailController) State() DetailState {
	return c.state.Get()
}

// Watch streams state changes until ctx is done or the controller closes
func (c *DetailController) Watch(ctx context.Context) <-chan DetailState {
	return c.state.Watch(ctx)
}

// Load fetches the task with id. A missing task leaves Task nil without an error.
func (c *DetailController) Load(id int64) {
	c.enqueue("load", func(ctx context.Context) {
		task, err := c.uc.GetTaskByID.Execute(ctx, id)
		if err != nil && !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			c.fail("load", err)
			return
		}
		if err != nil {
			task = nil
		}
		c.state.Update(func(s DetailState) DetailState {
			s.Task = task
			return s
		})
	})
}

// Save inserts task when it has no ID and updates it otherwise
func (c *DetailController) Save(task domain.Task) {
	c.enqueue("save", func(ctx context.Context) {
		if task.IsNew() {
			if task.CreatedAt.IsZero() {
				task.CreatedAt = domain.Now()
			}
			id, err := c.uc.AddTask.Execute(ctx, task)
			if err != nil {
				c.fail("save", err)
				return
			}
			task.ID = id
		} else if err := c.uc.UpdateTask.Execute(ctx, task); err != nil {
			c.fail("save", err)
			return
		}

		c.state.Update(func(s DetailState) DetailState {
			s.Task = &task
			s.Saved = true
			s.SavedID = task.ID
			return s
		})
	})
}

// Delete removes task
func (c *DetailController) Delete(task domain.Task) {
	c.enqueue("delete", func(ctx context.Context) {
		if err := c.uc.DeleteTask.Execute(ctx, task); err != nil {
			c.fail("delete", err)
			return
		}
		c.state.Update(func(s DetailState) DetailState {
			s.Deleted = true
			return s
		})
	})
}

// ResetSaved clears the saved flag and ID
func (c *DetailController) ResetSaved() {
	c.state.Update(func(s DetailState) DetailState {
		s.Saved = false
		s.SavedID = 0
		return s
	})
}

// ResetDeleted clears the deleted flag
func (c *DetailController) ResetDeleted() {
	c.state.Update(func(s DetailState) DetailState {
		s.Deleted = false
		return s
	})
}

// ResetError clears the error message
func (c *DetailController) ResetError() {
	c.state.Update(func(s DetailState) DetailState {
		s.Error = ""
		return s
	})
}

// Close waits for the running operation and drops queued ones
func (c *DetailController) Close() {
	c.scope.Close()
	c.state.Close()
}

func (c *DetailController) enqueue(name string, run func(ctx context.Context)) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if c.stopped || c.scope.Context().Err() != nil {
		return
	}

	c.begin()
	select {
	case c.ops <- detailOp{name: name, run: run}:
	case <-c.scope.Context().Done():
		c.end()
	}
}

func (c *DetailController) work(ctx context.Context) {
	defer c.stop()
	for {
		select {
		case op := <-c.ops:
			c.scope.Run(op.name, op.run)
			c.end()
		case <-ctx.Done():
			return
		}
	}
}

// stop rejects further operations and settles the ones still queued
func (c *DetailController) stop() {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	c.stopped = true
	for {
		select {
		case <-c.ops:
			c.end()
		default:
			return
		}
	}
}

func (c *DetailController) begin() {
	c.state.Update(func(s DetailState) DetailState {
		c.inFlight++
		s.IsLoading = true
		return s
	})
}

func (c *DetailController) end() {
	c.state.Update(func(s DetailState) DetailState {
		c.inFlight--
		s.IsLoading = c.inFlight > 0
		return s
	})
}

func (c *DetailController) fail(op string, err error) {
	msg := userMessage(c.logger, op, err)
	c.state.Update(func(s DetailState) DetailState {
		s.Error = msg
		return s
	})
}
