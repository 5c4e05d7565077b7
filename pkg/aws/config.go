package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/younsl/ec2-inventory/internal/models"
	"github.com/younsl/ec2-inventory/pkg/inventory"
)

// NewAccountConfig loads an AWS config for one account and region.
// Static keys are used when present, otherwise the account's shared config profile.
func NewAccountConfig(ctx context.Context, account models.AccountCredential, region string, maxAttempts int) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if maxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(maxAttempts))
	}

	if account.HasStaticKeys() {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(account.AccessKeyID, account.SecretAccessKey, account.SessionToken),
		))
	} else {
		opts = append(opts, config.WithSharedConfigProfile(account.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for account %s in region %s: %w", account.AccountID, region, err)
	}
	return cfg, nil
}

// ListerOptions controls how per-pair EC2 clients are built
type ListerOptions struct {
	// MaxAttempts caps SDK retries per request, 0 keeps the SDK default
	MaxAttempts int

	// VerifyIdentity checks each account's credentials with STS before listing
	VerifyIdentity bool
}

// NewListerFactory returns a factory creating an EC2Client per account/region pair
func NewListerFactory(opts ListerOptions) inventory.ListerFactory {
	verified := make(map[string]bool)

	return func(ctx context.Context, account models.AccountCredential, region string) (inventory.InstanceLister, error) {
		cfg, err := NewAccountConfig(ctx, account, region, opts.MaxAttempts)
		if err != nil {
			return nil, err
		}

		if opts.VerifyIdentity && !verified[account.AccountID] {
			if err := VerifyIdentity(ctx, sts.NewFromConfig(cfg), account.AccountID); err != nil {
				return nil, err
			}
			verified[account.AccountID] = true
		}

		return NewEC2Client(cfg), nil
	}
}
