package cli

import (
	"context"
	"fmt"
	"io"

	"task-manager/internal/controller"
	"task-manager/internal/errors"
)

// DoneCommand handles the done command
type DoneCommand struct {
	app          *App
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewDoneCommand creates a new done command handler
func NewDoneCommand(app *App, out io.Writer) *DoneCommand {
	return &DoneCommand{app: app, out: out, errorHandler: NewErrorHandler()}
}

// Execute toggles the completion state of the task whose ID is args[0]
func (c *DoneCommand) Execute(ctx context.Context, args []string) error {
	id, err := c.app.api.ParseTaskID(args[0])
	if err != nil {
		return c.errorHandler.Handle("toggle task", err)
	}

	detail := controller.NewDetailController(ctx, c.app.useCases)
	defer detail.Close()

	task, err := loadTask(ctx, detail, id)
	if err != nil {
		return c.errorHandler.Handle("toggle task", err)
	}

	toggled := task.ToggleCompleted()
	detail.Save(toggled)
	st, err := awaitDetail(ctx, detail)
	if err != nil {
		return c.errorHandler.Handle("toggle task", err)
	}
	if !st.Saved {
		return c.errorHandler.Handle("toggle task", errors.NewTimeoutError("toggle task", nil))
	}

	if toggled.IsCompleted {
		fmt.Fprintf(c.out, "Completed task %d: %s\n", toggled.ID, toggled.Title)
	} else {
		fmt.Fprintf(c.out, "Reopened task %d: %s\n", toggled.ID, toggled.Title)
	}
	return nil
}
