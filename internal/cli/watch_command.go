package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"task-manager/internal/controller"
	"task-manager/internal/domain"
	"task-manager/internal/logging"
)

// WatchCommand handles the watch command
type WatchCommand struct {
	app          *App
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewWatchCommand creates a new watch command handler
func NewWatchCommand(app *App, out io.Writer) *WatchCommand {
	return &WatchCommand{app: app, out: out, errorHandler: NewErrorHandler()}
}

// Execute re-renders the selected tasks on every change until ctx is done.
// When a metrics address is configured the store metrics are served there
// for as long as the watch runs.
func (c *WatchCommand) Execute(ctx context.Context, opts ListOptions) error {
	list, err := openList(ctx, c.app, opts)
	if err != nil {
		return c.errorHandler.Handle("watch tasks", err)
	}
	defer list.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if addr := c.app.config.Metrics.Addr; addr != "" && c.app.metrics != nil {
		server, ln, err := c.metricsServer(addr)
		if err != nil {
			return c.errorHandler.Handle("serve metrics", err)
		}
		fmt.Fprintf(c.out, "Serving metrics on http://%s/metrics\n", ln.Addr())

		g.Go(func() error {
			if err := server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return c.render(ctx, list)
	})

	if err := g.Wait(); err != nil {
		return c.errorHandler.Handle("watch tasks", err)
	}
	return nil
}

func (c *WatchCommand) metricsServer(addr string) (*http.Server, net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.app.metrics, promhttp.HandlerOpts{}))

	return &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}, ln, nil
}

// render prints the list whenever its tasks or layout change. It returns
// nil once ctx is done.
func (c *WatchCommand) render(ctx context.Context, list *controller.ListController) error {
	r := renderer{out: c.out, timeFormat: c.app.config.Display.TimeFormat, verbose: c.app.config.Application.Verbose}

	var (
		last     []domain.Task
		lastView domain.ViewMode
		lastErr  string
		rendered bool
	)

	for st := range list.Watch(ctx) {
		if st.Error != "" && st.Error != lastErr {
			lastErr = st.Error
			fmt.Fprintf(c.out, "Error: %s\n", st.Error)
			logging.Warn("watch query failed", "error", st.Error)
		}
		if st.IsLoading || st.Error != "" {
			continue
		}
		if rendered && st.ViewMode == lastView && domain.EqualTasks(last, st.Tasks) {
			continue
		}
		rendered, last, lastView = true, st.Tasks, st.ViewMode

		fmt.Fprintf(c.out, "--- %s: %d task(s) ---\n", time.Now().Format(c.app.config.Display.TimeFormat), len(st.Tasks))
		if err := r.tasks(st.Tasks, st.ViewMode); err != nil {
			return err
		}
	}
	return nil
}
