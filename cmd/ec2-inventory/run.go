package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	log "github.com/sirupsen/logrus"

	"github.com/younsl/ec2-inventory/pkg/config"
	"github.com/younsl/ec2-inventory/pkg/csvstore"
	"github.com/younsl/ec2-inventory/pkg/formatter"
	"github.com/younsl/ec2-inventory/pkg/inventory"
	"github.com/younsl/ec2-inventory/pkg/utils"
)

type options struct {
	configPath     string
	output         string
	regions        []string
	schemaPolicy   string
	failFast       bool
	verifyIdentity bool
	showInstances  bool
	maxAttempts    int
	logLevel       string
	progress       bool
}

// regionDiscoverer returns the local region, or "" when unknown
type regionDiscoverer func(ctx context.Context) string

// startPairSpinner creates and starts a spinner for one account/region pair
func startPairSpinner(out io.Writer, target inventory.Target) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = fmt.Sprintf(" Listing EC2 instances in %s (%s) ...", target.Account.AccountName, target.Region)
	s.Start()
	return s
}

func run(ctx context.Context, opts options, out io.Writer, factory inventory.ListerFactory, discover regionDiscoverer) error {
	policy, err := csvstore.ParseSchemaPolicy(opts.schemaPolicy)
	if err != nil {
		return &config.ConfigurationError{Field: "schema-policy", Reason: err.Error()}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	regions, err := resolveRegions(ctx, opts.regions, cfg.Regions, discover)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"accounts": len(cfg.Accounts),
		"regions":  regions,
	}).Info("Starting EC2 inventory scan")
	scanStartTime := time.Now()

	collector := inventory.NewCollector(factory)
	collector.FailFast = opts.failFast
	if opts.progress {
		var s *spinner.Spinner
		collector.OnPairStart = func(target inventory.Target) {
			s = startPairSpinner(out, target)
		}
		collector.OnPairDone = func(pair inventory.PairResult) {
			mark := "✓"
			if pair.Err != nil {
				mark = "✗"
			}
			s.FinalMSG = fmt.Sprintf("%s [%d instances] %s (%s) - %.2f seconds\n",
				mark, pair.Instances, pair.Account.AccountName, pair.Region, pair.Duration.Seconds())
			s.Stop()
		}
	}

	result, err := collector.Collect(ctx, cfg.Accounts, regions)
	if err != nil {
		formatter.PrintPairsTable(out, result.Pairs)
		return fmt.Errorf("inventory aborted, %s not modified: %w", opts.output, err)
	}
	scanDuration := time.Since(scanStartTime)

	written, err := csvstore.NewWriter(opts.output, policy).Write(result.Table)
	if err != nil {
		return err
	}

	if opts.showInstances {
		formatter.PrintInstancesTable(out, result.Table)
		formatter.PrintInstancesSummary(out, result.Table)
		fmt.Fprintln(out)
	}
	formatter.PrintRunSummary(out, result, written, scanStartTime, scanDuration)

	if failures := result.Failures(); len(failures) > 0 {
		return fmt.Errorf("%d of %d account/region pairs failed", len(failures), len(result.Pairs))
	}
	return nil
}

// resolveRegions picks regions from the flag, then the config file, then the
// instance metadata service, then the default region
func resolveRegions(ctx context.Context, flagRegions, fileRegions []string, discover regionDiscoverer) ([]string, error) {
	switch {
	case len(flagRegions) > 0:
		if err := config.ValidateRegions(flagRegions); err != nil {
			return nil, err
		}
		return flagRegions, nil
	case len(fileRegions) > 0:
		return fileRegions, nil
	}

	if discover != nil {
		if region := discover(ctx); region != "" {
			if !utils.IsKnownRegion(region) {
				log.WithField("region", region).Warn("Region from instance metadata is not in the known region list")
			}
			log.WithField("region", region).Info("Using region from instance metadata")
			return []string{region}, nil
		}
	}
	return []string{utils.GetDefaultRegion()}, nil
}
