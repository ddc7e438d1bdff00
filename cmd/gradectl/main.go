package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/gradebase/internal/cli"
	"github.com/okian/gradebase/internal/config"
	"github.com/okian/gradebase/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("gradectl: " + err.Error() + "\n")
		os.Exit(2)
	}

	// Logs go to stderr so tables on stdout stay clean.
	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("gradectl: " + err.Error() + "\n")
		os.Exit(2)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("warn")
	}

	if err := cli.NewRunner(cfg, os.Stdout, os.Stderr).Run(ctx, os.Args[1:]); err != nil {
		logger.Get().Debug(ctx, "command failed", logger.Error(err))
		os.Stderr.WriteString("gradectl: " + cli.Message(err) + "\n")
		os.Exit(1)
	}
}
