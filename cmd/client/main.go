package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/talkscribe/internal/client/cli"
	"github.com/dmitrijs2005/talkscribe/internal/client/config"
	"github.com/dmitrijs2005/talkscribe/internal/filex"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
)

func main() {

	cfg := config.LoadConfig()

	if err := filex.EnsureParentDir(cfg.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "log directory:", err)
		os.Exit(1)
	}
	log, closer := logging.NewFileLogger(logging.FileOptions{Path: cfg.LogFile})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	app.Run(ctx)

}
