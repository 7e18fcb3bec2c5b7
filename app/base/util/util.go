package util

import (
	"context"
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/zcsv/app/base"
	"github.com/warptools/zcsv/pkg/config"
	"github.com/warptools/zcsv/pkg/container"
	"github.com/warptools/zcsv/zcsvapi"
)

// ArgsExactly checks the positional argument count of a command.
//
// Errors:
//
//    - zcsv-error-argument -- when the count is wrong
func ArgsExactly(c *cli.Context, n int) error {
	if c.Args().Len() != n {
		return zcsvapi.ErrorArgument(fmt.Sprintf("%s requires exactly %d arguments (usage: %s %s)",
			c.Command.FullName(), n, c.Command.HelpName, c.Command.ArgsUsage))
	}
	return nil
}

// ArgsAtLeast checks that a command got at least n positional arguments.
//
// Errors:
//
//    - zcsv-error-argument -- when there are too few
func ArgsAtLeast(c *cli.Context, n int) error {
	if c.Args().Len() < n {
		return zcsvapi.ErrorArgument(fmt.Sprintf("%s requires at least %d arguments (usage: %s %s)",
			c.Command.FullName(), n, c.Command.HelpName, c.Command.ArgsUsage))
	}
	return nil
}

// ResolvePath resolves a path argument against the working directory snapshot.
//
// Errors:
//
//    - zcsv-error-internal -- when the config state can't be copied
func ResolvePath(arg string) (string, error) {
	state, err := config.NewState()
	if err != nil {
		return "", err
	}
	return config.ResolvePath(state, arg), nil
}

// OpenContainer opens the archive named by a command line argument.
//
// Errors:
//
//    - zcsv-error-internal -- when the config state can't be copied
//    - zcsv-error-archive-open -- when the archive can't be opened or created
//    - zcsv-error-table-decode -- when a table in the archive isn't valid CSV
func OpenContainer(ctx context.Context, arg string) (*container.Container, error) {
	path, err := ResolvePath(arg)
	if err != nil {
		return nil, err
	}
	return container.Open(ctx, path)
}

// SetResult stores n for the App's After hook to print as JSON.
func SetResult(c *cli.Context, n datamodel.Node) {
	c.App.Metadata[appbase.ResultKey] = n
}
