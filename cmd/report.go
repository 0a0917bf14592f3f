package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/naka-gawa/org-contributors/internal/config"
	"github.com/naka-gawa/org-contributors/internal/gateway"
	"github.com/naka-gawa/org-contributors/internal/logging"
	"github.com/naka-gawa/org-contributors/internal/publish"
	"github.com/naka-gawa/org-contributors/internal/report"
	"github.com/naka-gawa/org-contributors/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregates contributor statistics of an organization and writes the report",
	Long: `Aggregates the contributor statistics of every repository of an organization and
writes them as a Markdown report, optionally with a JSON document next to it.
Settings are read from INPUT_* environment variables (GitHub Action inputs) and
an optional .env file; flags override them.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := logging.New(cmd.ErrOrStderr(), verbose)
	action := githubactions.New(githubactions.WithWriter(cmd.OutOrStdout()))
	if logging.InActions(os.Getenv) {
		logger.AddHook(logging.NewActionsHook(action))
	}

	loader := config.NewLoader("INPUT", logger)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}
	if err := loader.Check(&cfg); err != nil {
		return err
	}

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(gateway.Config{
		Token:             cfg.Token,
		BaseURL:           cfg.APIURL,
		HTTPTimeout:       cfg.HTTPTimeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
		ProfileSource:     gateway.ProfileSource(cfg.ProfileSource),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	aggregator := usecase.NewAggregator(githubGateway, logger, usecase.Options{
		ExcludeUsers: cfg.ExcludeUsers,
		IncludeForks: cfg.IncludeForks,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
	})

	result, err := aggregator.Aggregate(ctx, cfg.Organisation)
	if err != nil {
		return fmt.Errorf("failed to aggregate contributors of %s: %w", cfg.Organisation, err)
	}

	opts := report.Options{ServerURL: cfg.ServerURL, TopContributors: cfg.TopContributors}
	written, err := report.NewWriter(opts, logger).WriteFiles(ctx, result, cfg.TargetPath, cfg.JSONPath)
	if err != nil {
		return err
	}

	if printSummary, _ := cmd.Flags().GetBool("print"); printSummary {
		if err := report.PrintSummary(cmd.OutOrStdout(), result, cfg.TopContributors); err != nil {
			return err
		}
	}

	if cfg.CommitTargetFiles {
		if _, err := publish.NewCommitter(publish.ExecRunner{}, ".", logger).Commit(ctx, written); err != nil {
			return fmt.Errorf("failed to publish contributor files: %w", err)
		}
	}

	action.SetOutput("output", cfg.TargetPath)
	return nil
}

// bindReportFlags declares the flags of the report command on flags.
func bindReportFlags(flags *pflag.FlagSet) {
	flags.StringP("org", "o", "", "Target GitHub organization name (default: owner of GITHUB_REPOSITORY)")
	flags.StringSliceP("exclude", "x", nil, "Logins to leave out of the report (comma separated)")
	flags.StringP("output", "O", "", "Path of the Markdown report (default: CONTRIBUTORS.md)")
	flags.String("json", "", "Also write the results as JSON to this path")
	flags.Bool("commit", false, "Commit and push the generated files")
	flags.Bool("include-forks", true, "Include forked repositories")
	flags.Int("max-retries", usecase.DefaultMaxRetries, "Attempts per repository while GitHub computes statistics")
	flags.Duration("retry-delay", usecase.DefaultRetryDelay, "Wait before asking again for a repository's statistics")
	flags.Int("top", report.DefaultTopContributors, "Contributors listed per repository")
	flags.String("profile-source", string(gateway.ProfileSourceREST), "API used to resolve user profiles (rest or graphql)")
	flags.Int("rpm", 0, "Maximum GitHub requests per minute (0 means unlimited)")
	flags.Bool("print", false, "Print a summary table of the top contributors")
}

// applyFlags overrides cfg with every flag given on the command line.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		var err error
		switch f.Name {
		case "org":
			cfg.Organisation, err = flags.GetString(f.Name)
		case "exclude":
			cfg.ExcludeUsers, err = flags.GetStringSlice(f.Name)
		case "output":
			cfg.TargetPath, err = flags.GetString(f.Name)
		case "json":
			cfg.JSONPath, err = flags.GetString(f.Name)
		case "commit":
			cfg.CommitTargetFiles, err = flags.GetBool(f.Name)
		case "include-forks":
			cfg.IncludeForks, err = flags.GetBool(f.Name)
		case "max-retries":
			cfg.MaxRetries, err = flags.GetInt(f.Name)
		case "retry-delay":
			cfg.RetryDelay, err = flags.GetDuration(f.Name)
		case "top":
			cfg.TopContributors, err = flags.GetInt(f.Name)
		case "profile-source":
			cfg.ProfileSource, err = flags.GetString(f.Name)
		case "rpm":
			cfg.RequestsPerMinute, err = flags.GetInt(f.Name)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(reportCmd)
	bindReportFlags(reportCmd.Flags())
}
