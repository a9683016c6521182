// Package main is the entry point for the bundlebuilder application.
// This tool creates macOS application bundles (.app) for script applications:
// it lays out the bundle, writes Info.plist and PkgInfo, compiles a native
// launcher, copies sources and resources and can embed the runtime through
// the deploy tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bundlebuilder/specification"
	"bundlebuilder/utilities/logger"
)

// ExitError carries the exit code a failure should end the process with.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// main runs the command line and turns its error into an exit code:
// 2 for unusable specifications, configuration and flags, 1 for every other failure.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// run executes one command line. It is split from main for tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	defer logger.CloseLogFile()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var cfgErr *specification.ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}
