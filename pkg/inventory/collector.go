package inventory

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/younsl/ec2-inventory/internal/models"
)

// InstanceLister lists every instance visible to one account in one region
type InstanceLister interface {
	ListInstances(ctx context.Context) ([]models.InstanceRecord, error)
}

// ListerFactory builds the lister for an account/region pair
type ListerFactory func(ctx context.Context, account models.AccountCredential, region string) (InstanceLister, error)

// Target is one account/region pair to scan
type Target struct {
	Account models.AccountCredential
	Region  string
}

// Targets returns the Cartesian product of accounts and regions,
// accounts in the outer loop, both in the given order
func Targets(accounts []models.AccountCredential, regions []string) []Target {
	targets := make([]Target, 0, len(accounts)*len(regions))
	for _, account := range accounts {
		for _, region := range regions {
			targets = append(targets, Target{Account: account, Region: region})
		}
	}
	return targets
}

// PairResult records the outcome of scanning one target
type PairResult struct {
	Target
	Instances int
	Duration  time.Duration
	Err       error
}

// Result is the outcome of a collection run
type Result struct {
	Table *Table
	Pairs []PairResult
}

// Failures returns the errors of every target that could not be listed
func (r *Result) Failures() []*RemoteAPIError {
	var failures []*RemoteAPIError
	for _, pair := range r.Pairs {
		var apiErr *RemoteAPIError
		if errors.As(pair.Err, &apiErr) {
			failures = append(failures, apiErr)
		}
	}
	return failures
}

// Err joins all pair failures, nil when every target succeeded
func (r *Result) Err() error {
	var errs []error
	for _, failure := range r.Failures() {
		errs = append(errs, failure)
	}
	return errors.Join(errs...)
}

// Collector walks targets one at a time and accumulates their rows
type Collector struct {
	NewLister ListerFactory

	// FailFast aborts the run on the first failing target instead of skipping it
	FailFast bool

	OnPairStart func(Target)
	OnPairDone  func(PairResult)

	Logger log.FieldLogger
}

// NewCollector creates a Collector using the given lister factory
func NewCollector(factory ListerFactory) *Collector {
	return &Collector{
		NewLister: factory,
		Logger:    log.StandardLogger(),
	}
}

// Collect scans every account/region pair sequentially.
// A failing pair is recorded and skipped unless FailFast is set, in which case
// the partial result is returned together with the failure.
func (c *Collector) Collect(ctx context.Context, accounts []models.AccountCredential, regions []string) (*Result, error) {
	result := &Result{Table: NewTable()}

	for _, target := range Targets(accounts, regions) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if c.OnPairStart != nil {
			c.OnPairStart(target)
		}

		pair := c.collectPair(ctx, target, result.Table)
		result.Pairs = append(result.Pairs, pair)

		if c.OnPairDone != nil {
			c.OnPairDone(pair)
		}

		if pair.Err != nil {
			if c.FailFast {
				return result, pair.Err
			}
			c.logger().WithFields(log.Fields{
				"account": target.Account.AccountID,
				"region":  target.Region,
			}).Warnf("Skipping pair: %v", pair.Err)
		}
	}

	return result, nil
}

func (c *Collector) collectPair(ctx context.Context, target Target, table *Table) PairResult {
	start := time.Now()
	pair := PairResult{Target: target}

	lister, err := c.NewLister(ctx, target.Account, target.Region)
	if err != nil {
		pair.Err = &RemoteAPIError{AccountID: target.Account.AccountID, Region: target.Region, Err: err}
		pair.Duration = time.Since(start)
		return pair
	}

	instances, err := lister.ListInstances(ctx)
	if err != nil {
		pair.Err = &RemoteAPIError{AccountID: target.Account.AccountID, Region: target.Region, Err: err}
		pair.Duration = time.Since(start)
		return pair
	}

	table.Append(FlattenAll(target.Account, target.Region, instances)...)
	pair.Instances = len(instances)
	pair.Duration = time.Since(start)

	c.logger().WithFields(log.Fields{
		"account":   target.Account.AccountID,
		"region":    target.Region,
		"instances": pair.Instances,
	}).Debug("Listed instances")

	return pair
}

func (c *Collector) logger() log.FieldLogger {
	if c.Logger == nil {
		return log.StandardLogger()
	}
	return c.Logger
}
