package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/younsl/ec2-inventory/internal/models"
	"github.com/younsl/ec2-inventory/pkg/inventory"
)

func TestPrintInstancesTable(t *testing.T) {
	table := inventory.NewTable()
	table.Append(inventory.FlattenAll(prod, "ap-south-1", []models.InstanceRecord{
		{InstanceID: "i-1", State: "running", PrivateIPAddress: "10.0.0.1", PublicIPAddress: "N/A",
			Tags: []models.Tag{{Key: "Name", Value: "web"}, {Key: "env", Value: "prod"}}},
		{InstanceID: "i-2", State: "stopped", PrivateIPAddress: "10.0.0.2", PublicIPAddress: "N/A"},
	})...)

	var buf bytes.Buffer
	PrintInstancesTable(&buf, table)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "INSTANCE ID"))
	assert.Equal(t, []string{"i-1", "web", "Production", "ap-south-1", "running", "10.0.0.1", "N/A", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"i-2", "<unnamed>", "Production", "ap-south-1", "stopped", "10.0.0.2", "N/A", "0"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"Total:", "2"}, strings.Fields(lines[3]))
}

func TestPrintInstancesTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintInstancesTable(&buf, inventory.NewTable())
	assert.Equal(t, "No instances found.\n", buf.String())
}

func TestPrintInstancesSummary(t *testing.T) {
	table := inventory.NewTable()
	table.Append(
		inventory.Row{inventory.ColumnInstanceStatus: "running"},
		inventory.Row{inventory.ColumnInstanceStatus: "stopped"},
		inventory.Row{inventory.ColumnInstanceStatus: "running"},
		inventory.Row{},
	)

	var buf bytes.Buffer
	PrintInstancesSummary(&buf, table)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "## EC2 Instances by State", lines[0])
	assert.Equal(t, []string{"running", "2"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"stopped", "1"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"unknown", "1"}, strings.Fields(lines[4]))
}
