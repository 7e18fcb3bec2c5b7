package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type ctxKey struct{}

// Logger writes results to out and tagged diagnostics to err.
// In json mode, diagnostics are left undecorated so they can't be mistaken for API output;
// quiet mode drops Info, and Debug only prints in verbose mode.
type Logger struct {
	out     io.Writer
	err     io.Writer
	json    bool
	quiet   bool
	verbose bool
}

func DefaultLogger() Logger {
	return Logger{
		out: os.Stdout,
		err: os.Stderr,
	}
}

func NewLogger(out, err io.Writer, json, quiet, verbose bool) Logger {
	return Logger{
		out:     out,
		err:     err,
		json:    json,
		quiet:   quiet,
		verbose: verbose,
	}
}

// WithContext returns a copy of ctx carrying the logger.
func (l Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Ctx returns the logger carried by ctx, or one that discards everything.
func Ctx(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
			return l
		}
	}
	return Logger{out: io.Discard, err: io.Discard}
}

// Verbose reports whether debug output is enabled.
func (l Logger) Verbose() bool {
	return l.verbose
}

func (l Logger) Out(f string, args ...interface{}) {
	fmt.Fprintf(l.out, f+"\n", args...)
}

func (l Logger) OutRaw(s string) {
	fmt.Fprintf(l.out, "%s", s)
}

func (l Logger) Info(tag string, f string, args ...interface{}) {
	if l.quiet {
		return
	}
	l.print(color.New(color.FgHiGreen), tag, f, args...)
}

func (l Logger) Debug(tag string, f string, args ...interface{}) {
	if l.verbose {
		l.print(color.New(color.FgGreen), tag, f, args...)
	}
}

func (l Logger) print(tagColor *color.Color, tag, f string, args ...interface{}) {
	str := fmt.Sprintf(f, args...)
	if tag == "" {
		tag = "zcsv"
	}
	for _, line := range strings.Split(str, "\n") {
		if l.json {
			fmt.Fprintf(l.err, "%s  %s\n", tag, line)
			continue
		}
		fmt.Fprintf(l.err, "%s  %s\n",
			tagColor.Sprint(tag),
			color.WhiteString(line))
	}
}
