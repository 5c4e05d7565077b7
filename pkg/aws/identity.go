package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ErrAccountMismatch is returned when credentials belong to another account
var ErrAccountMismatch = errors.New("credentials belong to a different account")

// CallerIdentityAPI is the subset of the STS client used to verify credentials
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// VerifyIdentity confirms the credentials work and resolve to accountID
func VerifyIdentity(ctx context.Context, api CallerIdentityAPI, accountID string) error {
	output, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("error verifying credentials for account %s: %w", accountID, err)
	}

	actual := aws.ToString(output.Account)
	if actual != accountID {
		return fmt.Errorf("%w: expected %s, got %s (%s)", ErrAccountMismatch, accountID, actual, aws.ToString(output.Arn))
	}
	return nil
}
