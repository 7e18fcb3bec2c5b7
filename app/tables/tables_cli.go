package tablescli

import (
	"context"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appbase "github.com/warptools/zcsv/app/base"
	"github.com/warptools/zcsv/app/base/render"
	"github.com/warptools/zcsv/app/base/util"
	"github.com/warptools/zcsv/pkg/container"
	"github.com/warptools/zcsv/pkg/logging"
	"github.com/warptools/zcsv/pkg/table"
	"github.com/warptools/zcsv/pkg/tracing"
	"github.com/warptools/zcsv/zcsvapi"
)

const logTag = "tables"

func init() {
	appbase.App.Commands = append(appbase.App.Commands,
		lsCmdDef,
		catCmdDef,
		addCmdDef,
		rmCmdDef,
	)
}

var lsCmdDef = &cli.Command{
	Name:      "ls",
	Usage:     "List the tables in an archive",
	ArgsUsage: "<archive>",
	Description: heredoc.Doc(`
		Prints one table name per line, in natural order ("t2" sorts before "t10").
		With --json, prints a JSON list instead.

		A missing archive is created empty.
	`),
	Action: util.StandardMiddleware(cmdLs),
}

var catCmdDef = &cli.Command{
	Name:      "cat",
	Usage:     "Print one table from an archive",
	ArgsUsage: "<archive> <table>",
	Description: heredoc.Doc(`
		Prints the named table as CSV text, header line first.

		--format=markdown prints a markdown table instead, and --format=pretty
		draws that markdown for a terminal.
		With --json, prints an object holding the header and a list of rows.
	`),
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: `csv`, markdown, or pretty",
			Value: "csv",
		},
	},
	Action: util.StandardMiddleware(cmdCat),
}

var addCmdDef = &cli.Command{
	Name:      "add",
	Usage:     "Add a CSV file to an archive as a table",
	ArgsUsage: "<archive> <table> <file.csv>",
	Description: heredoc.Doc(`
		Decodes the CSV file, stores it under the table name (replacing any table
		already there), and saves the archive.

		Use "-" as the file to read CSV from stdin.
	`),
	Action: util.StandardMiddleware(cmdAdd),
}

var rmCmdDef = &cli.Command{
	Name:      "rm",
	Usage:     "Remove tables from an archive",
	ArgsUsage: "<archive> <table>...",
	Description: heredoc.Doc(`
		Removes each named table and saves the archive.
		Names that aren't in the archive are ignored.
	`),
	Action: util.StandardMiddleware(cmdRm),
}

// withContainer opens the archive argument, runs fn, and closes the container again.
// A close failure is reported when fn itself succeeded.
func withContainer(ctx context.Context, arg string, fn func(*container.Container) error) (err error) {
	c, err := util.OpenContainer(ctx, arg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(c)
}

func cmdLs(c *cli.Context) error {
	if err := util.ArgsExactly(c, 1); err != nil {
		return err
	}
	logger := logging.Ctx(c.Context)
	return withContainer(c.Context, c.Args().Get(0), func(ctr *container.Container) error {
		names, err := ctr.TableNames()
		if err != nil {
			return err
		}
		trace.SpanFromContext(c.Context).SetAttributes(attribute.Int(tracing.AttrKeyZcsvTableCount, len(names)))
		if c.Bool("json") {
			n, err := qp.BuildList(basicnode.Prototype.Any, int64(len(names)), func(la datamodel.ListAssembler) {
				for _, name := range names {
					qp.ListEntry(la, qp.String(name))
				}
			})
			if err != nil {
				return zcsvapi.ErrorInternal("building result", err)
			}
			util.SetResult(c, n)
			return nil
		}
		for _, name := range names {
			logger.Out("%s", name)
		}
		return nil
	})
}

// tableNode is the JSON form of a table: its header, and each row as an object.
func tableNode(name string, t *table.Table) (datamodel.Node, error) {
	header := t.Header()
	return qp.BuildMap(basicnode.Prototype.Any, 3, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "name", qp.String(name))
		qp.MapEntry(ma, "header", qp.List(int64(len(header)), func(la datamodel.ListAssembler) {
			for _, col := range header {
				qp.ListEntry(la, qp.String(col))
			}
		}))
		qp.MapEntry(ma, "rows", qp.List(int64(t.Len()), func(la datamodel.ListAssembler) {
			for _, rec := range t.Rows() {
				qp.ListEntry(la, qp.Map(int64(len(header)), func(ma datamodel.MapAssembler) {
					for _, col := range header {
						qp.MapEntry(ma, col, qp.String(rec[col]))
					}
				}))
			}
		}))
	})
}

func cmdCat(c *cli.Context) error {
	if err := util.ArgsExactly(c, 2); err != nil {
		return err
	}
	name := c.Args().Get(1)
	trace.SpanFromContext(c.Context).SetAttributes(attribute.String(tracing.AttrKeyZcsvTableName, name))
	format := c.String("format")
	switch format {
	case "csv", "markdown", "pretty":
	default:
		return zcsvapi.ErrorArgument("unknown format " + format + " (expected csv, markdown, or pretty)")
	}

	logger := logging.Ctx(c.Context)
	return withContainer(c.Context, c.Args().Get(0), func(ctr *container.Container) error {
		t, err := ctr.Get(name)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			n, err := tableNode(name, t)
			if err != nil {
				return zcsvapi.ErrorInternal("building result", err)
			}
			util.SetResult(c, n)
			return nil
		}
		switch format {
		case "markdown":
			logger.OutRaw(string(render.TableMarkdown(t)))
		case "pretty":
			if err := render.Render(render.TableMarkdown(t), c.App.Writer, render.ModeANSI); err != nil {
				return zcsvapi.ErrorIo("writing output", "", err)
			}
		default:
			data, err := t.Encode()
			if err != nil {
				return err
			}
			logger.OutRaw(string(data))
		}
		return nil
	})
}

func readInput(c *cli.Context, arg string) ([]byte, error) {
	if arg == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return nil, zcsvapi.ErrorIo("reading stdin", "-", err)
		}
		return data, nil
	}
	path, err := util.ResolvePath(arg)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zcsvapi.ErrorIo("reading csv file", path, err)
	}
	return data, nil
}

func cmdAdd(c *cli.Context) error {
	if err := util.ArgsExactly(c, 3); err != nil {
		return err
	}
	name := c.Args().Get(1)
	if !container.IsTableEntry(container.EntryName(name)) {
		return zcsvapi.ErrorArgument("invalid table name " + name + ": must be non-empty and contain no path separators")
	}
	trace.SpanFromContext(c.Context).SetAttributes(attribute.String(tracing.AttrKeyZcsvTableName, name))
	logger := logging.Ctx(c.Context)

	data, err := readInput(c, c.Args().Get(2))
	if err != nil {
		return err
	}
	t, err := table.Decode(data)
	if err != nil {
		return err
	}
	return withContainer(c.Context, c.Args().Get(0), func(ctr *container.Container) error {
		replacing := ctr.Has(name)
		if err := ctr.Add(name, t); err != nil {
			return err
		}
		if err := ctr.Save(c.Context); err != nil {
			return err
		}
		if replacing {
			logger.Debug(logTag, "replaced table %q", name)
		}
		if c.Bool("json") {
			n, err := qp.BuildMap(basicnode.Prototype.Any, 2, func(ma datamodel.MapAssembler) {
				qp.MapEntry(ma, "added", qp.String(name))
				qp.MapEntry(ma, "rows", qp.Int(int64(t.Len())))
			})
			if err != nil {
				return zcsvapi.ErrorInternal("building result", err)
			}
			util.SetResult(c, n)
			return nil
		}
		logger.Info(logTag, "added table %q (%d rows)", name, t.Len())
		return nil
	})
}

func cmdRm(c *cli.Context) error {
	if err := util.ArgsAtLeast(c, 2); err != nil {
		return err
	}
	logger := logging.Ctx(c.Context)
	names := c.Args().Slice()[1:]
	return withContainer(c.Context, c.Args().Get(0), func(ctr *container.Container) error {
		removed := make([]string, 0, len(names))
		for _, name := range names {
			if !ctr.Has(name) {
				logger.Debug(logTag, "no table %q, skipping", name)
				continue
			}
			if err := ctr.Remove(name); err != nil {
				return err
			}
			removed = append(removed, name)
		}
		if err := ctr.Save(c.Context); err != nil {
			return err
		}
		if c.Bool("json") {
			n, err := qp.BuildMap(basicnode.Prototype.Any, 1, func(ma datamodel.MapAssembler) {
				qp.MapEntry(ma, "removed", qp.List(int64(len(removed)), func(la datamodel.ListAssembler) {
					for _, name := range removed {
						qp.ListEntry(la, qp.String(name))
					}
				}))
			})
			if err != nil {
				return zcsvapi.ErrorInternal("building result", err)
			}
			util.SetResult(c, n)
			return nil
		}
		logger.Info(logTag, "removed %d tables", len(removed))
		return nil
	})
}
