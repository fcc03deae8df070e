package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/modlink/internal/app"
	"github.com/vk/modlink/internal/cli"
	"github.com/vk/modlink/internal/linker"
	"github.com/vk/modlink/modules/env_vars"
	"github.com/vk/modlink/modules/http_client"
)

// main is the entrypoint for the modlink application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Exports go to outW, logs and usage to errW.
func run(outW, errW io.Writer, args []string) (err error) {
	cfg, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on manifest errors; turn that into a clean error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	// Host modules answer imports that no manifest declares.
	hostModules := []linker.ExternalLoader{env_vars.Resolve}
	if cfg.AllowRemote {
		hostModules = append(hostModules, http_client.New(nil).Resolve)
	}

	modlinkApp := app.NewApp(context.Background(), outW, errW, cfg,
		app.WithExternalLoader(linker.ChainExternal(hostModules...)))
	return modlinkApp.Run(context.Background())
}
