package table

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/warptools/zcsv/zcsvapi"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode parses CSV text into a table. The first record is the header.
// Empty input yields an empty table. A leading UTF-8 byte order mark is ignored.
//
// Errors:
//
//    - zcsv-error-csv-invalid -- when the text is not well-formed CSV, a record's width
//      differs from the header's, or the header repeats a column
func Decode(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	// width is checked against the header by FromRecords, for a better message.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, zcsvapi.ErrorCsvInvalid("parse failed", err)
	}
	return FromRecords(records)
}

// Encode is shorthand for the package-level Encode.
func (t *Table) Encode() ([]byte, error) {
	return Encode(t)
}

// Encode renders a table as CSV text: the header line, then each row with cells in
// header order. Cells missing from a record are written empty.
// A table with no header encodes to empty output.
//
// A record that is a single empty field is written as a quoted empty string, since a
// blank line would be skipped when decoding. Cells containing "\r\n" are refused:
// a CSV reader folds that pair to "\n" even inside quotes, so it can't be read back.
//
// Errors:
//
//    - zcsv-error-csv-invalid -- when a header or cell contains "\r\n"
//    - zcsv-error-internal -- when the csv writer fails, which should not happen for an in-memory buffer
func Encode(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if t == nil || len(t.header) == 0 {
		return buf.Bytes(), nil
	}
	w := csv.NewWriter(&buf)
	if err := writeRecord(w, &buf, t.header); err != nil {
		return nil, err
	}
	fields := make([]string, len(t.header))
	for _, rec := range t.rows {
		for i, col := range t.header {
			fields[i] = rec[col]
		}
		if err := writeRecord(w, &buf, fields); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, zcsvapi.ErrorInternal("flushing csv", err)
	}
	return buf.Bytes(), nil
}

func writeRecord(w *csv.Writer, buf *bytes.Buffer, fields []string) error {
	for _, f := range fields {
		if strings.Contains(f, "\r\n") {
			return zcsvapi.ErrorCsvInvalid(`cell contains "\r\n"`, nil)
		}
	}
	if len(fields) == 1 && fields[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return zcsvapi.ErrorInternal("flushing csv", err)
		}
		buf.WriteString("\"\"\n")
		return nil
	}
	if err := w.Write(fields); err != nil {
		return zcsvapi.ErrorInternal("writing csv record", err)
	}
	return nil
}
