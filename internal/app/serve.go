package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"canvasdoc/internal/config"
	mcpserver "canvasdoc/internal/mcp"
)

const shutdownTimeout = 10 * time.Second

// ServeMCP runs the editor as an MCP server on stdin/stdout with autosave
// and file watching in the background, until interrupted or stdin closes.
func ServeMCP(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	return Serve(ctx, cfg, logger, os.Stdin, os.Stdout)
}

// Serve is ServeMCP over arbitrary streams.
func Serve(ctx context.Context, cfg config.Config, logger *zap.Logger, in io.Reader, out io.Writer) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, logger, Options{})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = multierr.Append(err, a.Shutdown(sctx))
	}()

	srv := mcpserver.New(mcpserver.Deps{
		Editor:    a.Editor(),
		PageWidth: cfg.Page.Width,
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// EOF on stdin ends the session.
		defer cancel()
		return srv.Listen(gctx, in, out)
	})
	g.Go(func() error {
		if err := a.StartBackground(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutting down")
	return nil
}
