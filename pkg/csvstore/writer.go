package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/younsl/ec2-inventory/pkg/inventory"
)

// Mode describes what a Write did to the destination file
type Mode string

const (
	ModeUnchanged Mode = "unchanged"
	ModeCreated   Mode = "created"
	ModeAppended  Mode = "appended"
	ModeWidened   Mode = "widened"
)

// WriteResult summarizes a Write call
type WriteResult struct {
	Path         string
	Mode         Mode
	RowsWritten  int
	AddedColumns []string
	Header       []string
	Size         int64
}

// Writer merges inventory tables into a CSV file across runs
type Writer struct {
	Path   string
	Policy SchemaPolicy
}

// NewWriter creates a Writer for path; an empty policy means PolicyWiden
func NewWriter(path string, policy SchemaPolicy) *Writer {
	if policy == "" {
		policy = PolicyWiden
	}
	return &Writer{Path: path, Policy: policy}
}

// Write merges table into the destination file.
//
// An absent or empty file gets a sorted header followed by all rows. An existing
// file gets the rows appended in its own header order; new columns are handled
// according to the writer's SchemaPolicy.
func (w *Writer) Write(table *inventory.Table) (*WriteResult, error) {
	result := &WriteResult{Path: w.Path, Mode: ModeUnchanged}
	if table.Len() == 0 {
		log.WithField("path", w.Path).Debug("Nothing to write")
		return result, nil
	}

	header, err := ReadHeader(w.Path)
	if err != nil {
		return nil, err
	}

	if len(header) == 0 {
		result.Header = table.Columns()
		if err := w.create(table, result.Header); err != nil {
			return nil, err
		}
		result.Mode = ModeCreated
		result.RowsWritten = table.Len()
		return w.finish(result)
	}

	added := newColumns(header, table.Columns())
	result.AddedColumns = added

	switch {
	case len(added) == 0:
		result.Header = header
		if err := w.appendRecords(table.Project(header)); err != nil {
			return nil, err
		}
		result.Mode = ModeAppended
		result.RowsWritten = table.Len()

	case w.Policy == PolicyLegacy:
		if err := w.appendLegacy(result, header, added, table); err != nil {
			return nil, err
		}

	default:
		union := unionSorted(header, added)
		err := w.widen(header, union, table)
		switch {
		case errors.Is(err, errLegacyRows):
			log.WithFields(log.Fields{
				"path":    w.Path,
				"columns": added,
			}).Warn("File already holds legacy-layout rows, appending with --schema-policy=legacy instead of widening")
			if err := w.appendLegacy(result, header, added, table); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			result.Header = union
			result.Mode = ModeWidened
			result.RowsWritten = table.Len()
		}
	}

	return w.finish(result)
}

// ReadHeader returns the first record of the file at path.
// A missing or empty file yields a nil header and no error.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &OutputWriteError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &OutputWriteError{Path: path, Op: "read header", Err: err}
	}
	return header, nil
}

// appendLegacy appends the new columns' values as header-less rows, then the
// full rows in the table's own column order
func (w *Writer) appendLegacy(result *WriteResult, header, added []string, table *inventory.Table) error {
	records := append(table.Project(added), table.Records()...)
	if err := w.appendRecords(records); err != nil {
		return err
	}
	result.Header = header
	result.Mode = ModeAppended
	result.RowsWritten = len(records)
	return nil
}

func (w *Writer) create(table *inventory.Table, header []string) error {
	f, err := os.OpenFile(w.Path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &OutputWriteError{Path: w.Path, Op: "create", Err: err}
	}

	if err := writeAll(f, header, table.Project(header)); err != nil {
		f.Close()
		return &OutputWriteError{Path: w.Path, Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		return &OutputWriteError{Path: w.Path, Op: "close", Err: err}
	}
	return nil
}

func (w *Writer) appendRecords(records [][]string) error {
	f, err := os.OpenFile(w.Path, os.O_RDWR|os.O_APPEND, 0)
	if err != nil {
		return &OutputWriteError{Path: w.Path, Op: "open", Err: err}
	}

	if err := terminateLastLine(f); err != nil {
		f.Close()
		return &OutputWriteError{Path: w.Path, Op: "append", Err: err}
	}
	if err := writeAll(f, nil, records); err != nil {
		f.Close()
		return &OutputWriteError{Path: w.Path, Op: "append", Err: err}
	}
	if err := f.Close(); err != nil {
		return &OutputWriteError{Path: w.Path, Op: "close", Err: err}
	}
	return nil
}

// widen rewrites the file under the union header through a temp file and rename.
// Old rows keep their values and get empty cells for the new columns.
func (w *Writer) widen(oldHeader, newHeader []string, table *inventory.Table) error {
	existing, err := readRecords(w.Path, len(oldHeader))
	if err != nil {
		return err
	}

	info, err := os.Stat(w.Path)
	if err != nil {
		return &OutputWriteError{Path: w.Path, Op: "stat", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.Path), "."+filepath.Base(w.Path)+".*.tmp")
	if err != nil {
		return &OutputWriteError{Path: w.Path, Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	index := make(map[string]int, len(oldHeader))
	for i, column := range oldHeader {
		if _, dup := index[column]; !dup {
			index[column] = i
		}
	}

	records := make([][]string, 0, len(existing)+table.Len())
	for _, old := range existing {
		record := make([]string, len(newHeader))
		for i, column := range newHeader {
			if j, ok := index[column]; ok && j < len(old) {
				record[i] = old[j]
			}
		}
		records = append(records, record)
	}
	records = append(records, table.Project(newHeader)...)

	if err := writeAll(tmp, newHeader, records); err != nil {
		cleanup()
		return &OutputWriteError{Path: w.Path, Op: "write", Err: err}
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		cleanup()
		return &OutputWriteError{Path: w.Path, Op: "chmod", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return &OutputWriteError{Path: w.Path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &OutputWriteError{Path: w.Path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, w.Path); err != nil {
		os.Remove(tmpName)
		return &OutputWriteError{Path: w.Path, Op: "rename", Err: err}
	}

	log.WithFields(log.Fields{
		"path":    w.Path,
		"columns": len(newHeader),
		"rows":    len(existing),
	}).Info("Widened existing inventory file")
	return nil
}

func (w *Writer) finish(result *WriteResult) (*WriteResult, error) {
	info, err := os.Stat(w.Path)
	if err != nil {
		return nil, &OutputWriteError{Path: w.Path, Op: "stat", Err: err}
	}
	result.Size = info.Size()
	return result, nil
}

// errLegacyRows reports data rows wider than the header, as left by legacy appends
var errLegacyRows = errors.New("rows wider than header")

// readRecords reads every data row after the header
func readRecords(path string, headerLen int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OutputWriteError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &OutputWriteError{Path: path, Op: "read", Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) > headerLen {
			return nil, &OutputWriteError{
				Path: path,
				Op:   "read",
				Err:  fmt.Errorf("line %d has %d fields, header has %d: %w", i+2, len(record), headerLen, errLegacyRows),
			}
		}
	}
	return rows, nil
}

func writeAll(out io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(out)
	if header != nil {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// terminateLastLine adds a newline when the file does not already end with one
func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.Write([]byte{'\n'})
	return err
}

// newColumns returns the columns not present in header, keeping their order
func newColumns(header, columns []string) []string {
	known := make(map[string]struct{}, len(header))
	for _, column := range header {
		known[column] = struct{}{}
	}

	var added []string
	for _, column := range columns {
		if _, ok := known[column]; !ok {
			added = append(added, column)
		}
	}
	return added
}

func unionSorted(header, added []string) []string {
	union := make([]string, 0, len(header)+len(added))
	union = append(union, header...)
	union = append(union, added...)
	sort.Strings(union)
	return union
}
