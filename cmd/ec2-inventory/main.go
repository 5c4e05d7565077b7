package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/younsl/ec2-inventory/internal/version"
	"github.com/younsl/ec2-inventory/pkg/aws"
	"github.com/younsl/ec2-inventory/pkg/config"
	"github.com/younsl/ec2-inventory/pkg/csvstore"
	"github.com/younsl/ec2-inventory/pkg/utils"
)

const (
	// DefaultOutput is the inventory file name used by earlier versions of the tool
	DefaultOutput = "aws_instance_inventory_combined.csv"

	DefaultMaxAttempts = 3
)

func newRootCmd() *cobra.Command {
	opts := options{}
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "ec2-inventory",
		Short: "CLI tool to export EC2 instances and their tags to CSV",
		Long: `ec2-inventory lists EC2 instances across every configured account and region,
flattens their tags into columns and appends the result to a CSV file.
New tag keys widen the file's column set on later runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If version flag is set, print version info and exit
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get())
				return nil
			}

			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return &config.ConfigurationError{Field: "log-level", Reason: err.Error()}
			}
			log.SetLevel(level)

			opts.progress = isatty.IsTerminal(os.Stdout.Fd())
			return run(cmd.Context(), opts, cmd.OutOrStdout(), aws.NewListerFactory(aws.ListerOptions{
				MaxAttempts:    opts.maxAttempts,
				VerifyIdentity: opts.verifyIdentity,
			}), aws.DiscoverRegion)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the accounts credential file")
	flags.StringVarP(&opts.output, "output", "o", DefaultOutput, "CSV file to create or append to")
	flags.StringSliceVarP(&opts.regions, "regions", "r", nil,
		fmt.Sprintf("AWS regions to scan (comma separated, default: regions from config, else %s)", utils.GetDefaultRegion()))
	flags.StringVar(&opts.schemaPolicy, "schema-policy", string(csvstore.PolicyWiden),
		"How to handle new tag columns in an existing file: widen or legacy")
	flags.BoolVar(&opts.failFast, "fail-fast", false, "Abort the run on the first account/region that fails")
	flags.BoolVar(&opts.verifyIdentity, "verify-identity", false, "Check each account's credentials with STS before listing")
	flags.BoolVar(&opts.showInstances, "show-instances", false, "Print the collected instances before the run summary")
	flags.IntVar(&opts.maxAttempts, "max-attempts", DefaultMaxAttempts, "Maximum attempts per AWS API request")
	flags.StringVar(&opts.logLevel, "log-level", log.InfoLevel.String(),
		fmt.Sprintf("Log level (%s)", strings.Join([]string{"debug", "info", "warn", "error"}, ", ")))

	return rootCmd
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

