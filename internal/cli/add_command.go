package cli

import (
	"context"
	"fmt"
	"io"

	"task-manager/internal/api"
	"task-manager/internal/controller"
	"task-manager/internal/errors"
)

// AddCommand handles the add command
type AddCommand struct {
	app          *App
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App, out io.Writer) *AddCommand {
	return &AddCommand{app: app, out: out, errorHandler: NewErrorHandler()}
}

// Execute validates input and saves it as a new task
func (c *AddCommand) Execute(ctx context.Context, input api.TaskInput) error {
	task, err := c.app.api.NewTask(input)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}

	detail := controller.NewDetailController(ctx, c.app.useCases)
	defer detail.Close()

	detail.Save(task)
	st, err := awaitDetail(ctx, detail)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}
	if !st.Saved {
		return c.errorHandler.Handle("add task", errors.NewTimeoutError("add task", nil))
	}

	fmt.Fprintf(c.out, "Added task %d: %s\n", st.SavedID, task.Title)
	return nil
}
