package helpgen

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/urfave/cli/v2"
)

// helper for heredoc dedenting plus don't do a trailing linebreak.
func docnl(s string) string {
	s = heredoc.Doc(s)
	return s[:len(s)-1]
}

var usageTemplate = docnl(`
	{{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}}{{if .VisibleFlags}} [options]{{end}}{{if .ArgsUsage}} {{.ArgsUsage}}{{end}}{{end}}
`)

var visibleCommandTemplate = docnl(`
	{{- range .VisibleCommands}}
	### {{join .Names ", "}}

	{{.Usage}}
	{{end}}
`)

var visibleFlagTemplate = docnl(`
	{{- range $i, $e := .VisibleFlags}}
	{{$e.String}}
	{{end}}
`) // `.String` goes through cli.FlagStringer, which is replaced below.

func init() {
	cli.AppHelpTemplate = appHelpTemplate
	cli.CommandHelpTemplate = commandHelpTemplate
	cli.SubcommandHelpTemplate = subcommandHelpTemplate
	cli.FlagStringer = flagStringer
}

// appHelpTemplate is used for just the root command.
var appHelpTemplate = heredoc.Doc(`
	## NAME

	{{.Name}}{{if .Usage}} - {{.Usage}}{{end}}

	{{- if .Version}}{{if not .HideVersion}}

	## VERSION

	{{.Version}}
	{{- end}}{{end}}

	{{- if .Description}}

	## DESCRIPTION

	{{trim .Description}}
	{{- end}}

	{{- if .VisibleCommands}}

	## COMMANDS

	{{template "visibleCommandTemplate" .}}
	{{- end}}

	{{- if .VisibleFlags}}

	## GLOBAL OPTIONS

	{{template "visibleFlagTemplate" .}}
	{{- end}}
`)

// commandHelpTemplate is used for a command that has no subcommands.
var commandHelpTemplate = heredoc.Doc(`
	## NAME

	{{.HelpName}}{{if .Usage}} - {{.Usage}}{{end}}

	## USAGE

	    {{template "usageTemplate" .}}

	{{- if .Description}}

	## DESCRIPTION

	{{trim .Description}}
	{{- end}}

	{{- if .VisibleFlags}}

	## OPTIONS

	{{template "visibleFlagTemplate" .}}
	{{- end}}
`)

// subcommandHelpTemplate is used for a command with more than zero subcommands.
var subcommandHelpTemplate = heredoc.Doc(`
	## NAME

	{{.HelpName}}{{if .Usage}} - {{.Usage}}{{end}}

	## USAGE

	    {{.HelpName}} command [command options]

	{{- if .Description}}

	## DESCRIPTION

	{{trim .Description}}
	{{- end}}

	{{- if .VisibleCommands}}

	## COMMANDS

	{{template "visibleCommandTemplate" .}}
	{{- end}}
`)

func flagStringer(f cli.Flag) string {
	// enforce DocGeneration interface on flags to avoid reflection
	df := f.(cli.DocGenerationFlag)

	placeholder := ""
	if df.TakesValue() {
		placeholder = "VALUE"
	}
	usage := df.GetUsage()
	if s := df.GetDefaultText(); s != "" && df.TakesValue() {
		usage = strings.TrimSpace(usage + fmt.Sprintf(" (default: **%s**)", s))
	}
	out := fmt.Sprintf("#### %s\n\n%s\n", prefixedNames(f.Names(), placeholder), usage)
	if envVars := df.GetEnvVars(); len(envVars) > 0 {
		out += fmt.Sprintf("\n(env var: $**%s**)\n", strings.Join(envVars, ", $"))
	}
	return out
}

func prefixedNames(names []string, placeholder string) string {
	prefixed := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		p := "--"
		if len(name) == 1 {
			p = "-"
		}
		if placeholder != "" {
			prefixed = append(prefixed, p+name+"=<"+placeholder+">")
		} else {
			prefixed = append(prefixed, p+name)
		}
	}
	return strings.Join(prefixed, ", ")
}
