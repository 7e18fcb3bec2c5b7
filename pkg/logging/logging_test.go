package logging

import (
	"bytes"
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fatih/color"
)

func TestLoggerModes(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	t.Run("default", func(t *testing.T) {
		var out, errb bytes.Buffer
		l := NewLogger(&out, &errb, false, false, false)
		l.Out("result %d", 1)
		l.Info("open", "two\nlines")
		l.Debug("open", "hidden")
		qt.Check(t, out.String(), qt.Equals, "result 1\n")
		qt.Check(t, errb.String(), qt.Equals, "open  two\nopen  lines\n")
	})
	t.Run("quiet", func(t *testing.T) {
		var out, errb bytes.Buffer
		l := NewLogger(&out, &errb, false, true, false)
		l.Info("open", "dropped")
		qt.Check(t, errb.String(), qt.Equals, "")
	})
	t.Run("verbose", func(t *testing.T) {
		var out, errb bytes.Buffer
		l := NewLogger(&out, &errb, true, false, true)
		l.Debug("", "shown")
		qt.Check(t, errb.String(), qt.Equals, "zcsv  shown\n")
		qt.Check(t, l.Verbose(), qt.IsTrue)
	})
}

func TestCtx(t *testing.T) {
	var out, errb bytes.Buffer
	ctx := NewLogger(&out, &errb, false, false, false).WithContext(context.Background())
	Ctx(ctx).Out("hi")
	qt.Check(t, out.String(), qt.Equals, "hi\n")

	// a bare context still yields a usable logger.
	Ctx(context.Background()).Info("x", "nothing happens")
}
