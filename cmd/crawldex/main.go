package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ksysoev/crawldex/pkg/cmd"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := cmd.InitCommand(cmd.BuildInfo{
		Version: version,
		AppName: "crawldex",
	})

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
