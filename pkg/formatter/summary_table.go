package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/younsl/ec2-inventory/pkg/csvstore"
	"github.com/younsl/ec2-inventory/pkg/inventory"
	"github.com/younsl/ec2-inventory/pkg/utils"
)

// PrintPairsTable prints one line per account/region pair with its instance count and status
func PrintPairsTable(w io.Writer, pairs []inventory.PairResult) {
	if len(pairs) == 0 {
		fmt.Fprintln(w, "No account/region pairs were scanned.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ACCOUNT", "ACCOUNT ID", "REGION", "LOCATION", "INSTANCES", "TIME", "STATUS"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	var total, failed int
	for _, pair := range pairs {
		status := text.FgGreen.Sprint("OK")
		if pair.Err != nil {
			status = text.FgRed.Sprint("FAILED")
			failed++
		}
		total += pair.Instances

		tw.AppendRow(table.Row{
			pair.Account.AccountName,
			pair.Account.AccountID,
			pair.Region,
			utils.GetRegionDescriptiveName(pair.Region),
			humanize.Comma(int64(pair.Instances)),
			fmt.Sprintf("%.2fs", pair.Duration.Seconds()),
			status,
		})
	}

	footerStatus := fmt.Sprintf("%d/%d OK", len(pairs)-failed, len(pairs))
	tw.AppendFooter(table.Row{"TOTAL", "", "", "", humanize.Comma(int64(total)), "", footerStatus})
	tw.Render()
}

// PrintFailures lists every pair that could not be listed
func PrintFailures(w io.Writer, failures []*inventory.RemoteAPIError) {
	if len(failures) == 0 {
		return
	}

	fmt.Fprintf(w, "\n## Failed account/region pairs (%d)\n", len(failures))
	for _, failure := range failures {
		fmt.Fprintf(w, "  - %s / %s: %v\n", failure.AccountID, failure.Region, failure.Err)
	}
}

// PrintWriteResult describes what happened to the inventory file
func PrintWriteResult(w io.Writer, result *csvstore.WriteResult) {
	if result == nil {
		return
	}

	switch result.Mode {
	case csvstore.ModeUnchanged:
		fmt.Fprintf(w, "No instances found, %s left unchanged.\n", result.Path)
		return
	case csvstore.ModeCreated:
		fmt.Fprintf(w, "Created %s with %s rows and %d columns",
			result.Path, humanize.Comma(int64(result.RowsWritten)), len(result.Header))
	case csvstore.ModeWidened:
		fmt.Fprintf(w, "Rewrote %s with %d columns and appended %s rows",
			result.Path, len(result.Header), humanize.Comma(int64(result.RowsWritten)))
	default:
		fmt.Fprintf(w, "Appended %s rows to %s", humanize.Comma(int64(result.RowsWritten)), result.Path)
	}
	fmt.Fprintf(w, " (%s)\n", humanize.Bytes(uint64(result.Size)))

	if len(result.AddedColumns) > 0 {
		fmt.Fprintf(w, "New columns: %s\n", strings.Join(result.AddedColumns, ", "))
	}
}

// PrintRunSummary prints the scan timestamp, the per-pair table, failures and the file outcome
func PrintRunSummary(w io.Writer, result *inventory.Result, write *csvstore.WriteResult, scanStartTime time.Time, scanDuration time.Duration) {
	printTimestamp(w, scanStartTime, scanDuration)
	PrintPairsTable(w, result.Pairs)
	PrintFailures(w, result.Failures())
	PrintWriteResult(w, write)
}
