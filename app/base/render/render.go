/*
Package render turns the markdown that zcsv produces (help text, tables) into output.

Markdown can be passed through as it is, or drawn with terminal styling by glamour.
ModeAuto picks styling only when the writer is a terminal.
*/
package render

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"golang.org/x/term"
)

type Mode uint8

const (
	ModeAuto     Mode = iota // ModeANSI on a terminal, otherwise ModeMarkdown.
	ModeMarkdown             // Plain markdown, unchanged.
	ModeANSI                 // Styled for a terminal, wrapped to its width when that can be detected.
)

const minWidth = 60

// terminalWidth returns the column count of wr if it's a terminal, or -1.
func terminalWidth(wr io.Writer) int {
	fd, ok := wr.(interface{ Fd() uintptr })
	if !ok || !term.IsTerminal(int(fd.Fd())) {
		return -1
	}
	width, _, err := term.GetSize(int(fd.Fd()))
	if err != nil {
		return -1
	}
	if width < minWidth {
		width = minWidth
	}
	return width
}

// Resolve replaces ModeAuto with the concrete mode for wr.
func Resolve(wr io.Writer, m Mode) Mode {
	if m != ModeAuto {
		return m
	}
	if terminalWidth(wr) > 0 {
		return ModeANSI
	}
	return ModeMarkdown
}

// Render writes markdown to wr in the given mode.
// If styling fails the markdown is written unchanged.
func Render(markdown []byte, wr io.Writer, m Mode) error {
	if Resolve(wr, m) == ModeMarkdown {
		_, err := wr.Write(markdown)
		return err
	}
	width := terminalWidth(wr)
	if width < 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		_, err = wr.Write(markdown)
		return err
	}
	out, err := r.RenderBytes(markdown)
	if err != nil {
		_, err = wr.Write(markdown)
		return err
	}
	_, err = wr.Write(out)
	return err
}

func style() ansi.StyleConfig {
	s := glamour.DarkStyleConfig
	if os.Getenv("NO_COLOR") != "" {
		s = glamour.ASCIIStyleConfig
	}
	stringPtr := func(s string) *string { return &s }
	uintPtr := func(u uint) *uint { return &u }
	s.Document.Margin = uintPtr(0)
	s.Paragraph.Margin = uintPtr(4)
	s.Code.Prefix = "`"
	s.Code.Suffix = "`"
	s.H3.BlockSuffix = " "
	s.H3.Margin = uintPtr(2)
	s.H3.Color = stringPtr("135")
	s.H4.BlockSuffix = " "
	s.H4.Margin = uintPtr(2)
	s.H4.Color = stringPtr("67")
	return s
}
