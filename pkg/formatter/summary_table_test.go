package formatter

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/younsl/ec2-inventory/internal/models"
	"github.com/younsl/ec2-inventory/pkg/csvstore"
	"github.com/younsl/ec2-inventory/pkg/inventory"
)

var prod = models.AccountCredential{AccountID: "111111111111", AccountName: "Production"}

func TestPrintPairsTable(t *testing.T) {
	var buf bytes.Buffer
	PrintPairsTable(&buf, []inventory.PairResult{
		{Target: inventory.Target{Account: prod, Region: "ap-south-1"}, Instances: 1200, Duration: 1500 * time.Millisecond},
		{Target: inventory.Target{Account: prod, Region: "us-east-1"}, Err: errors.New("boom")},
	})

	out := buf.String()
	assert.Contains(t, out, "ACCOUNT ID")
	assert.Contains(t, out, "Production")
	assert.Contains(t, out, "Asia Pacific (Mumbai)")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "1.50s")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "1/2 OK")
}

func TestPrintPairsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintPairsTable(&buf, nil)
	assert.Equal(t, "No account/region pairs were scanned.\n", buf.String())
}

func TestPrintFailures(t *testing.T) {
	var buf bytes.Buffer
	PrintFailures(&buf, []*inventory.RemoteAPIError{
		{AccountID: "111111111111", Region: "us-east-1", Err: errors.New("AuthFailure")},
	})
	assert.Contains(t, buf.String(), "Failed account/region pairs (1)")
	assert.Contains(t, buf.String(), "111111111111 / us-east-1: AuthFailure")

	buf.Reset()
	PrintFailures(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestPrintWriteResult(t *testing.T) {
	tests := []struct {
		name   string
		result *csvstore.WriteResult
		want   []string
	}{
		{
			name:   "created",
			result: &csvstore.WriteResult{Path: "inv.csv", Mode: csvstore.ModeCreated, RowsWritten: 1500, Header: []string{"A", "B"}, Size: 2048},
			want:   []string{"Created inv.csv with 1,500 rows and 2 columns", "(2.0 kB)"},
		},
		{
			name:   "appended",
			result: &csvstore.WriteResult{Path: "inv.csv", Mode: csvstore.ModeAppended, RowsWritten: 3, Size: 10},
			want:   []string{"Appended 3 rows to inv.csv", "(10 B)"},
		},
		{
			name: "widened",
			result: &csvstore.WriteResult{Path: "inv.csv", Mode: csvstore.ModeWidened, RowsWritten: 2,
				Header: []string{"A", "B", "C"}, AddedColumns: []string{"C"}, Size: 100},
			want: []string{"Rewrote inv.csv with 3 columns and appended 2 rows", "New columns: C"},
		},
		{
			name:   "unchanged",
			result: &csvstore.WriteResult{Path: "inv.csv", Mode: csvstore.ModeUnchanged},
			want:   []string{"No instances found, inv.csv left unchanged."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintWriteResult(&buf, tt.result)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	result := &inventory.Result{
		Table: inventory.NewTable(),
		Pairs: []inventory.PairResult{{Target: inventory.Target{Account: prod, Region: "eu-west-1"}}},
	}

	PrintRunSummary(&buf, result, &csvstore.WriteResult{Path: "inv.csv", Mode: csvstore.ModeUnchanged},
		time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), 2*time.Second)

	out := buf.String()
	assert.Contains(t, out, "Scan completed at 2024-05-01 09:30:00 (took 2.00s)")
	assert.Contains(t, out, "EU (Ireland)")
	assert.Contains(t, out, "left unchanged")
}
