package cli

import (
	"context"
	"io"

	"task-manager/internal/controller"
)

// ShowCommand handles the show command
type ShowCommand struct {
	app          *App
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App, out io.Writer) *ShowCommand {
	return &ShowCommand{app: app, out: out, errorHandler: NewErrorHandler()}
}

// Execute prints the task whose ID is args[0]
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	id, err := c.app.api.ParseTaskID(args[0])
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}

	detail := controller.NewDetailController(ctx, c.app.useCases)
	defer detail.Close()

	task, err := loadTask(ctx, detail, id)
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}

	r := renderer{out: c.out, timeFormat: c.app.config.Display.TimeFormat}
	return r.task(task)
}
