package render

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/warptools/zcsv/pkg/table"
)

func TestTableMarkdown(t *testing.T) {
	tbl := table.New([]string{"a", "b"},
		table.Record{"a": "1", "b": "x|y"},
		table.Record{"a": "two\nlines"},
	)
	qt.Check(t, string(TableMarkdown(tbl)), qt.Equals,
		"| a | b |\n"+
			"| --- | --- |\n"+
			"| 1 | x\\|y |\n"+
			"| two<br>lines |  |\n")
	qt.Check(t, TableMarkdown(&table.Table{}), qt.HasLen, 0)
}

func TestRenderMarkdownPassthrough(t *testing.T) {
	var buf bytes.Buffer
	qt.Assert(t, Render([]byte("## NAME\n"), &buf, ModeAuto), qt.IsNil)
	qt.Check(t, buf.String(), qt.Equals, "## NAME\n")
	qt.Check(t, Resolve(&buf, ModeAuto), qt.Equals, ModeMarkdown)
	qt.Check(t, Resolve(&buf, ModeANSI), qt.Equals, ModeANSI)
}

func TestRenderANSI(t *testing.T) {
	var buf bytes.Buffer
	qt.Assert(t, Render([]byte("# Title\n\nsome text\n"), &buf, ModeANSI), qt.IsNil)
	qt.Check(t, buf.String(), qt.Contains, "Title")
	qt.Check(t, buf.String(), qt.Contains, "some")
}
