package render

import (
	"bytes"
	"strings"

	"github.com/warptools/zcsv/pkg/table"
)

var cellEscaper = strings.NewReplacer(`|`, `\|`, "\r\n", "<br>", "\n", "<br>")

// TableMarkdown renders t as a GitHub-flavored markdown table.
// A table without columns renders as nothing.
func TableMarkdown(t *table.Table) []byte {
	var buf bytes.Buffer
	header := t.Header()
	if len(header) == 0 {
		return buf.Bytes()
	}
	writeRow := func(cells []string) {
		buf.WriteString("|")
		for _, c := range cells {
			buf.WriteString(" ")
			buf.WriteString(cellEscaper.Replace(c))
			buf.WriteString(" |")
		}
		buf.WriteString("\n")
	}
	writeRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	cells := make([]string, len(header))
	for _, rec := range t.Rows() {
		for i, col := range header {
			cells[i] = rec[col]
		}
		writeRow(cells)
	}
	return buf.Bytes()
}
