package cli

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"task-manager/internal/api"
	"task-manager/internal/controller"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
)

// ListOptions holds the flags of the list and watch commands
type ListOptions struct {
	Query api.ListQuery
	Grid  bool
}

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App, out io.Writer) *ListCommand {
	return &ListCommand{app: app, out: out, errorHandler: NewErrorHandler()}
}

// Execute prints the tasks selected by opts once
func (c *ListCommand) Execute(ctx context.Context, opts ListOptions) error {
	list, err := openList(ctx, c.app, opts)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	defer list.Close()

	st, err := awaitList(ctx, list)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}

	r := renderer{out: c.out, timeFormat: c.app.config.Display.TimeFormat, verbose: c.app.config.Application.Verbose}
	return r.tasks(st.Tasks, st.ViewMode)
}

// openList creates a list controller showing the selection in opts
func openList(ctx context.Context, app *App, opts ListOptions) (*controller.ListController, error) {
	sel, err := app.api.ParseListQuery(opts.Query)
	if err != nil {
		return nil, err
	}

	view := domain.ViewList
	if opts.Grid || strings.EqualFold(app.config.Display.DefaultView, string(domain.ViewGrid)) {
		view = domain.ViewGrid
	}

	list := controller.NewListController(ctx, app.useCases, controller.WithViewMode(view))
	switch {
	case sel.Priority != nil:
		list.FilterByPriority(*sel.Priority)
	case sel.Search != "":
		list.Search(sel.Search)
	case sel.Mode != domain.FilterAll:
		list.Filter(sel.Mode)
	}
	return list, nil
}

// awaitList waits for the first result of the active query
func awaitList(ctx context.Context, c *controller.ListController) (controller.ListState, error) {
	updates := c.Watch(ctx)
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return c.State(), errors.NewTimeoutError("list tasks", ctx.Err())
			}
			if st.Error != "" {
				return st, stderrors.New(st.Error)
			}
			if !st.IsLoading {
				return st, nil
			}
		case <-ctx.Done():
			return c.State(), errors.NewTimeoutError("list tasks", ctx.Err())
		}
	}
}
