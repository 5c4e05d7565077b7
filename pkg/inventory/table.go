package inventory

import "sort"

// Table accumulates rows in processing order and tracks the union of their columns
type Table struct {
	rows    []Row
	columns map[string]struct{}
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{columns: make(map[string]struct{})}
}

// Append adds rows to the end of the table
func (t *Table) Append(rows ...Row) {
	for _, row := range rows {
		for column := range row {
			t.columns[column] = struct{}{}
		}
		t.rows = append(t.rows, row)
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the rows in the order they were appended
func (t *Table) Rows() []Row {
	return t.rows
}

// Columns returns the union of all row keys sorted alphabetically
func (t *Table) Columns() []string {
	columns := make([]string, 0, len(t.columns))
	for column := range t.columns {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// HasColumn reports whether any row carries the column
func (t *Table) HasColumn(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// Records projects every row onto Columns(); missing cells are empty
func (t *Table) Records() [][]string {
	return t.Project(t.Columns())
}

// Project returns every row as a record ordered by the given columns
func (t *Table) Project(columns []string) [][]string {
	records := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		record := make([]string, len(columns))
		for i, column := range columns {
			record[i] = row[column]
		}
		records = append(records, record)
	}
	return records
}
