// Package main is the entry point of the Student Insights CLI.
//
// The CLI loads a student roster once (from a JSON file or PostgreSQL,
// optionally through a Redis snapshot), builds the query engine and prints
// the requested result as JSON on stdout. Logs go to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/student-insights/internal/domain/shared"
)

// Exit codes.
const (
	exitFailure  = 1
	exitBadInput = 2
	exitNoRoster = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case shared.IsValidation(err):
		return exitBadInput
	case shared.IsNotFound(err):
		return exitNoRoster
	default:
		return exitFailure
	}
}
