// Package table holds the in-memory form of one CSV dataset:
// an ordered header plus records keyed by column name.
package table

import (
	"github.com/warptools/zcsv/zcsvapi"
)

// Record is one row of a table, keyed by column name.
type Record map[string]string

// Copy returns a shallow copy of the record.
func (r Record) Copy() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is a header and a sequence of records.
// The zero value is an empty table with no columns.
type Table struct {
	header []string
	rows   []Record
}

// New builds a table with the given header and rows.
// The header slice is copied; rows are stored as given.
func New(header []string, rows ...Record) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{header: h, rows: rows}
}

// FromRecords builds a table from raw records, the first of which is the header.
// Every following record must have exactly as many fields as the header.
//
// Errors:
//
//    - zcsv-error-csv-invalid -- when the header has duplicates or a record has the wrong width
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return &Table{}, nil
	}
	header := records[0]
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	t := New(header)
	t.rows = make([]Record, 0, len(records)-1)
	for _, fields := range records[1:] {
		if len(fields) != len(header) {
			return nil, zcsvapi.ErrorCsvInvalid("record width does not match header", nil)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			rec[col] = fields[i]
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func checkHeader(header []string) error {
	seen := make(map[string]struct{}, len(header))
	for _, col := range header {
		if _, dup := seen[col]; dup {
			return zcsvapi.ErrorCsvInvalid("duplicate column "+col, nil)
		}
		seen[col] = struct{}{}
	}
	return nil
}

// Header returns a copy of the column names, in order.
func (t *Table) Header() []string {
	h := make([]string, len(t.header))
	copy(h, t.header)
	return h
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the record at index i.
//
// Errors:
//
//    - zcsv-error-row-out-of-range -- when i is negative or not less than Len
func (t *Table) Row(i int) (Record, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, zcsvapi.ErrorRowOutOfRange(i, len(t.rows))
	}
	return t.rows[i], nil
}

// Rows returns the records in order. The slice is shared with the table.
func (t *Table) Rows() []Record {
	return t.rows
}

// Append adds a record at the end. Columns not in the header are kept in the
// record but are not encoded.
func (t *Table) Append(r Record) {
	t.rows = append(t.rows, r)
}

// Equal reports whether both tables have the same header and the same cell values
// in every header column of every row.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.header) != len(other.header) || len(t.rows) != len(other.rows) {
		return false
	}
	for i := range t.header {
		if t.header[i] != other.header[i] {
			return false
		}
	}
	for i := range t.rows {
		for _, col := range t.header {
			if t.rows[i][col] != other.rows[i][col] {
				return false
			}
		}
	}
	return true
}
