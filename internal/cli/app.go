package cli

import (
	"context"
	stderrors "errors"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/controller"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/services"
)

// App holds the dependencies shared by every command
type App struct {
	api      api.API
	useCases *services.Container
	config   *config.Config
	metrics  prometheus.Gatherer
	closer   io.Closer
}

// Bootstrap builds the application once configuration is known
type Bootstrap func(ctx context.Context, cfg *config.Config) (*App, error)

// NewApp creates a new CLI application instance with dependency injection.
// closer is closed when the command finishes; metrics may be nil.
func NewApp(cfg *config.Config, useCases *services.Container, metrics prometheus.Gatherer, closer io.Closer) *App {
	return &App{
		api:      api.NewWithConfig(cfg),
		useCases: useCases,
		config:   cfg,
		metrics:  metrics,
		closer:   closer,
	}
}

// Close releases the resources the application was built with
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// awaitDetail waits until every queued detail operation has finished and
// reports the resulting state. The controller's error message becomes the
// returned error.
func awaitDetail(ctx context.Context, c *controller.DetailController) (controller.DetailState, error) {
	updates := c.Watch(ctx)
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return c.State(), errors.NewTimeoutError("wait for task", ctx.Err())
			}
			if st.IsLoading {
				continue
			}
			if st.Error != "" {
				return st, stderrors.New(st.Error)
			}
			return st, nil
		case <-ctx.Done():
			return c.State(), errors.NewTimeoutError("wait for task", ctx.Err())
		}
	}
}

// loadTask fetches the task with id through c, failing when it does not exist
func loadTask(ctx context.Context, c *controller.DetailController, id int64) (domain.Task, error) {
	c.Load(id)
	st, err := awaitDetail(ctx, c)
	if err != nil {
		return domain.Task{}, err
	}
	if st.Task == nil {
		return domain.Task{}, errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
	}
	return *st.Task, nil
}
