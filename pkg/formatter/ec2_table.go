package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/younsl/ec2-inventory/pkg/inventory"
)

// PrintInstancesTable prints the collected instances in processing order
func PrintInstancesTable(w io.Writer, table *inventory.Table) {
	if table.Len() == 0 {
		fmt.Fprintln(w, "No instances found.")
		return
	}

	// kubectl style tabwriter
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "INSTANCE ID\tNAME\tACCOUNT\tREGION\tSTATUS\tPRIVATE IP\tPUBLIC IP\tTAGS")

	for _, row := range table.Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			row[inventory.ColumnInstanceID],
			getInstanceName(row[inventory.ColumnInstanceName]),
			row[inventory.ColumnAccountName],
			row[inventory.ColumnRegion],
			row[inventory.ColumnInstanceStatus],
			row[inventory.ColumnInternalIPAddress],
			row[inventory.ColumnPublicIP],
			tagCount(row),
		)
	}

	fmt.Fprintf(tw, "Total:\t%s\n", humanize.Comma(int64(table.Len())))
	tw.Flush()
}

// getInstanceName returns a formatted instance name or <unnamed> if empty
func getInstanceName(name string) string {
	if name == "" {
		return "<unnamed>"
	}
	return name
}

// tagCount counts the tag columns on a row
func tagCount(row inventory.Row) int {
	fixed := make(map[string]struct{}, len(inventory.FixedColumns))
	for _, column := range inventory.FixedColumns {
		fixed[column] = struct{}{}
	}

	count := 0
	for column := range row {
		if _, ok := fixed[column]; !ok {
			count++
		}
	}
	return count
}

// PrintInstancesSummary displays instance counts per state
func PrintInstancesSummary(w io.Writer, table *inventory.Table) {
	if table.Len() == 0 {
		return
	}

	states := make(map[string]int)
	for _, row := range table.Rows() {
		state := row[inventory.ColumnInstanceStatus]
		if state == "" {
			state = "unknown"
		}
		states[state]++
	}

	keys := make([]string, 0, len(states))
	for state := range states {
		keys = append(keys, state)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "\n## EC2 Instances by State")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tINSTANCE COUNT")
	for _, state := range keys {
		fmt.Fprintf(tw, "%s\t%d\n", state, states[state])
	}
	tw.Flush()
}
