package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	log "github.com/sirupsen/logrus"
)

// imdsTimeout bounds the metadata lookup so runs outside EC2 are not delayed
const imdsTimeout = 2 * time.Second

// RegionAPI is the subset of the IMDS client used for region discovery
type RegionAPI interface {
	GetRegion(ctx context.Context, params *imds.GetRegionInput, optFns ...func(*imds.Options)) (*imds.GetRegionOutput, error)
}

// DiscoverRegion returns the region of the EC2 instance this process runs on,
// or an empty string when the metadata service is unreachable
func DiscoverRegion(ctx context.Context) string {
	client := imds.New(imds.Options{
		Retryer: aws.NopRetryer{},
	})
	return discoverRegion(ctx, client)
}

func discoverRegion(ctx context.Context, api RegionAPI) string {
	ctx, cancel := context.WithTimeout(ctx, imdsTimeout)
	defer cancel()

	output, err := api.GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil {
		log.WithError(err).Debug("Instance metadata region unavailable")
		return ""
	}
	return output.Region
}
