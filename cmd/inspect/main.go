package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"docinspect/internal/app"
	"docinspect/internal/cli"
	"docinspect/internal/config"
	"docinspect/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.NewConsole(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewInspectCmd(func(ctx context.Context) (*cli.Session, error) {
		c, err := app.Build(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &cli.Session{
			Loader:   c.Loader.Session(),
			Location: cfg.Location(),
			Close:    c.Close,
		}, nil
	})

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		stop()
		os.Exit(1)
	}
}
