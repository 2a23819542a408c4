package cli

import (
	"context"
	"fmt"
	"io"

	"task-manager/internal/api"
	"task-manager/internal/controller"
	"task-manager/internal/errors"
)

// EditCommand handles the edit command
type EditCommand struct {
	app          *App
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App, out io.Writer) *EditCommand {
	return &EditCommand{app: app, out: out, errorHandler: NewErrorHandler()}
}

// Execute applies edit to the task whose ID is args[0]
func (c *EditCommand) Execute(ctx context.Context, args []string, edit api.TaskEdit) error {
	id, err := c.app.api.ParseTaskID(args[0])
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	detail := controller.NewDetailController(ctx, c.app.useCases)
	defer detail.Close()

	task, err := loadTask(ctx, detail, id)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	updated, err := c.app.api.ApplyEdit(task, edit)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	detail.Save(updated)
	st, err := awaitDetail(ctx, detail)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}
	if !st.Saved {
		return c.errorHandler.Handle("edit task", errors.NewTimeoutError("edit task", nil))
	}

	fmt.Fprintf(c.out, "Updated task %d: %s\n", updated.ID, updated.Title)
	return nil
}
