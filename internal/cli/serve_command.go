package cli

import (
	"context"
	"fmt"
	"net"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"task-tracker/internal/api"
)

// ServeCommand runs the HTTP API until SIGINT or SIGTERM.
type ServeCommand struct{}

func (c *ServeCommand) Execute(ctx context.Context, app *App, args []string) error {
	resolver, err := app.newResolver()
	if err != nil {
		return err
	}

	server := api.New(app.services, resolver, app.config, app.logger)

	ln, err := net.Listen("tcp", app.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.config.Server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		app.config.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		},
	)

	return awaitServer(serveErr, wait)
}

// awaitServer returns once the server has stopped and every shutdown
// operation has finished. A nil serve result only means the listener closed.
func awaitServer(serveErr <-chan error, wait <-chan int) error {
	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
		return exitError(<-wait)
	case code := <-wait:
		return exitError(code)
	}
}

func exitError(code int) error {
	if code != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", code)
	}
	return nil
}
