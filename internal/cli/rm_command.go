package cli

import (
	"context"
	"fmt"
	"io"

	"task-manager/internal/controller"
	"task-manager/internal/errors"
)

// RemoveCommand handles the rm command
type RemoveCommand struct {
	app          *App
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewRemoveCommand creates a new rm command handler
func NewRemoveCommand(app *App, out io.Writer) *RemoveCommand {
	return &RemoveCommand{app: app, out: out, errorHandler: NewErrorHandler()}
}

// Execute deletes the task whose ID is args[0]
func (c *RemoveCommand) Execute(ctx context.Context, args []string) error {
	id, err := c.app.api.ParseTaskID(args[0])
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}

	detail := controller.NewDetailController(ctx, c.app.useCases)
	defer detail.Close()

	task, err := loadTask(ctx, detail, id)
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}

	detail.Delete(task)
	st, err := awaitDetail(ctx, detail)
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	if !st.Deleted {
		return c.errorHandler.Handle("delete task", errors.NewTimeoutError("delete task", nil))
	}

	fmt.Fprintf(c.out, "Deleted task %d: %s\n", task.ID, task.Title)
	return nil
}
