// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/org-contributors/internal/logging"
)

// Version is set at build time with -ldflags "-X github.com/naka-gawa/org-contributors/cmd.Version=...".
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "org-contributors",
	Short: "A CLI tool to rank the contributors of a GitHub organization.",
	Long: `org-contributors collects the contributor statistics of every repository
in a GitHub organization, merges them per user and writes a Markdown report
ranking the contributors of the organization and of each repository.
It runs locally or as a GitHub Action.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = Version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportFailure(err)
		stop()
		os.Exit(1)
	}
}

// reportFailure surfaces err once: as a workflow annotation inside Actions, on stderr otherwise.
func reportFailure(err error) {
	if logging.InActions(os.Getenv) {
		githubactions.New().Errorf("%v", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
