/*
This package contains our custom help text generators,
and wires them into `urfave/cli` at package init time.

The templates emit markdown, which is then handed to the render package:
on a terminal it gets styled, anywhere else it's printed as plain markdown.
Set Mode to force one or the other.

(The use of package init time is unfortunate,
but package-scope vars are the only option for customizing help processing
that the `urfave/cli` package currently makes available.)
*/
package helpgen

import (
	"bytes"
	"io"
	"strings"
	"text/template"

	"github.com/urfave/cli/v2"

	"github.com/warptools/zcsv/app/base/render"
)

// Mode is the render mode for help output.
var Mode = render.ModeAuto

/*
	How the docs strings on a cli.Command are used here:

	- Usage -- a one-liner, shown in the parent command's list of children.
	- ArgsUsage -- the positional arguments, shown after the command name in USAGE.
	- UsageText -- replaces the generated USAGE line entirely.  May be multi-line.
	- Description -- freetext prose; may be multi-line.  Shows up in the `-h` for that command.
*/

// printHelpCustom is the entrypoint for `urfave/cli`'s customization.
func printHelpCustom(out io.Writer, tmpl string, data interface{}, customFuncs map[string]interface{}) {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"trim": strings.TrimSpace,
	}
	for key, value := range customFuncs {
		funcMap[key] = value
	}

	t := template.Must(template.New("help").Funcs(funcMap).Parse(tmpl))
	template.Must(t.New("usageTemplate").Parse(usageTemplate))
	template.Must(t.New("visibleCommandTemplate").Parse(visibleCommandTemplate))
	template.Must(t.New("visibleFlagTemplate").Parse(visibleFlagTemplate))

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(err)
	}
	_ = render.Render(tidy(buf.Bytes()), out, Mode)
}

// tidy collapses the runs of blank lines that templates leave behind.
func tidy(md []byte) []byte {
	lines := strings.Split(strings.TrimSpace(string(md)), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return []byte(strings.Join(out, "\n") + "\n")
}

func init() {
	cli.HelpPrinterCustom = printHelpCustom
}
