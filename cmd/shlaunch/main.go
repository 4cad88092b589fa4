package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/doeshing/shlaunch/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	opts := cli.Options{Verbose: isVerbose()}

	root, cleanup := cli.NewRootCmd(opts)
	err := root.ExecuteContext(ctx)
	if closeErr := cleanup(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "warning: close:", closeErr)
	}
	if err != nil {
		if !cli.Silent(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("SHLAUNCH_DEBUG"), "1") || strings.EqualFold(os.Getenv("SHLAUNCH_DEBUG"), "true")
}
