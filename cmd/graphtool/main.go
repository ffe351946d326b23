package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/graphtools/internal/app"
	"github.com/specialistvlad/graphtools/internal/build"
	"github.com/specialistvlad/graphtools/internal/cli"
	"github.com/specialistvlad/graphtools/internal/hcl_adapter"
)

// main is the entrypoint for the graphtool application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Handler registration panics on programmer errors; report them as a
	// clean error instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx := context.Background()
	graphApp, err := app.NewApp(ctx, outW, appConfig, hcl_adapter.NewLoader())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, graphApp.Close(ctx))
	}()

	summary, err := graphApp.Run(ctx)
	if _, werr := summary.WriteTo(outW); werr != nil {
		return errors.Join(err, werr)
	}
	if err != nil {
		return err
	}
	if summary.Integrity != nil {
		return &cli.ExitError{Code: 3, Message: "graph integrity check failed"}
	}
	if appConfig.Build && summary.BuildStatus == build.StatusFailed {
		return &cli.ExitError{Code: 4, Message: fmt.Sprintf("build failed with %d errors", summary.BuildErrors)}
	}
	return nil
}
