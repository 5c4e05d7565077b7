package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/younsl/ec2-inventory/internal/models"
)

// NameTagKey is the tag key AWS consoles display as the resource name
const NameTagKey = "Name"

// GetTagValue returns the value of the first tag with the given key
func GetTagValue(tags []models.Tag, key string) string {
	for _, tag := range tags {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}

// GetName returns the value of the first Name tag
func GetName(tags []models.Tag) string {
	return GetTagValue(tags, NameTagKey)
}

// ConvertEC2Tags converts EC2 SDK tags to model tags, keeping their order.
// Tags without a key are dropped; a nil value becomes an empty string.
func ConvertEC2Tags(tags []types.Tag) []models.Tag {
	if len(tags) == 0 {
		return nil
	}
	result := make([]models.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.Key == nil {
			continue
		}
		result = append(result, models.Tag{
			Key:   *tag.Key,
			Value: SafeDeref(tag.Value),
		})
	}
	return result
}
