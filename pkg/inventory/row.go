package inventory

import (
	"github.com/younsl/ec2-inventory/internal/models"
	"github.com/younsl/ec2-inventory/pkg/utils"
)

// Fixed column names present on every row
const (
	ColumnAccountName       = "AccountName"
	ColumnAccountID         = "AccountId"
	ColumnInstanceName      = "InstanceName"
	ColumnInstanceID        = "InstanceId"
	ColumnRegion            = "Region"
	ColumnInternalIPAddress = "InternalIpAddress"
	ColumnPublicIP          = "PublicIP"
	ColumnInstanceStatus    = "InstanceStatus"
)

// FixedColumns lists the columns every row carries regardless of tags
var FixedColumns = []string{
	ColumnAccountName,
	ColumnAccountID,
	ColumnInstanceName,
	ColumnInstanceID,
	ColumnRegion,
	ColumnInternalIPAddress,
	ColumnPublicIP,
	ColumnInstanceStatus,
}

// Row maps a column name to its cell value
type Row map[string]string

// Flatten turns an instance and its tags into a single row.
// Each tag key becomes a column; when a key repeats the first value is kept.
// Fixed columns shadow tags with the same key.
func Flatten(account models.AccountCredential, region string, instance models.InstanceRecord) Row {
	row := make(Row, len(FixedColumns)+len(instance.Tags))

	for _, tag := range instance.Tags {
		if _, seen := row[tag.Key]; seen {
			continue
		}
		row[tag.Key] = tag.Value
	}

	row[ColumnAccountName] = account.AccountName
	row[ColumnAccountID] = account.AccountID
	row[ColumnInstanceName] = utils.GetName(instance.Tags)
	row[ColumnInstanceID] = instance.InstanceID
	row[ColumnRegion] = region
	row[ColumnInternalIPAddress] = instance.PrivateIPAddress
	row[ColumnPublicIP] = instance.PublicIPAddress
	row[ColumnInstanceStatus] = instance.State

	return row
}

// FlattenAll flattens every instance listed for one account and region
func FlattenAll(account models.AccountCredential, region string, instances []models.InstanceRecord) []Row {
	rows := make([]Row, 0, len(instances))
	for _, instance := range instances {
		rows = append(rows, Flatten(account, region, instance))
	}
	return rows
}
