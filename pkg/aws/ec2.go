package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"

	"github.com/younsl/ec2-inventory/internal/models"
	"github.com/younsl/ec2-inventory/pkg/utils"
)

// describeInstancesPageSize is the largest page DescribeInstances accepts
const describeInstancesPageSize = 1000

// notAvailable fills IP columns for instances without that address
const notAvailable = "N/A"

// EC2Client struct for EC2 client
type EC2Client struct {
	client ec2.DescribeInstancesAPIClient
	region string
}

// NewEC2Client creates a new EC2Client from an account/region config
func NewEC2Client(cfg aws.Config) *EC2Client {
	return &EC2Client{
		client: ec2.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

// NewEC2ClientWithAPI creates an EC2Client around an existing DescribeInstances client
func NewEC2ClientWithAPI(api ec2.DescribeInstancesAPIClient, region string) *EC2Client {
	return &EC2Client{client: api, region: region}
}

// ListInstances returns every instance in the region, following all result pages
func (c *EC2Client) ListInstances(ctx context.Context) ([]models.InstanceRecord, error) {
	input := &ec2.DescribeInstancesInput{
		MaxResults: aws.Int32(describeInstancesPageSize),
	}

	instances := []models.InstanceRecord{}
	paginator := ec2.NewDescribeInstancesPaginator(c.client, input)
	for page := 1; paginator.HasMorePages(); page++ {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying EC2 instances in %s: %w", c.region, err)
		}

		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				instances = append(instances, toInstanceRecord(instance))
			}
		}

		log.WithFields(log.Fields{
			"region":       c.region,
			"page":         page,
			"reservations": len(output.Reservations),
		}).Debug("Fetched DescribeInstances page")
	}

	return instances, nil
}

func toInstanceRecord(instance types.Instance) models.InstanceRecord {
	var state string
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	return models.InstanceRecord{
		InstanceID:       utils.SafeDeref(instance.InstanceId),
		State:            state,
		PrivateIPAddress: utils.DerefOr(instance.PrivateIpAddress, notAvailable),
		PublicIPAddress:  utils.DerefOr(instance.PublicIpAddress, notAvailable),
		Tags:             utils.ConvertEC2Tags(instance.Tags),
	}
}
