// Command mallows estimates the plurality-win probability of a designated
// candidate in a Mallows election.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/estimator"
)

const (
	exitSuccess      = 0
	exitError        = 1
	exitNotConverged = 2
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mallows",
		Short:         "Estimate plurality-win probabilities under Mallows noise",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEstimateCmd(), newServeCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
		os.Exit(exitSuccess)
	case errors.Is(err, estimator.ErrNotConverged):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitNotConverged)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}
