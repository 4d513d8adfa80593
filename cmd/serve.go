package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/staffdir/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the loopback JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, repos, r.logger)
	r.writePlain("Serving staff directory API on http://%s (Ctrl+C to stop)\n", srv.Addr())
	return srv.Run(ctx)
}
