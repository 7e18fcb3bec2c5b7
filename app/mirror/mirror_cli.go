package mirrorcli

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/zcsv/app/base"
	"github.com/warptools/zcsv/app/base/util"
	"github.com/warptools/zcsv/pkg/config"
	"github.com/warptools/zcsv/pkg/mirroring"
	"github.com/warptools/zcsv/zcsvapi"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands,
		pushCmdDef,
		pullCmdDef,
	)
}

var mirrorDescription = heredoc.Doc(`
	The mirror is configured by environment variables:

	- ZCSV_S3_BUCKET (required)
	- ZCSV_S3_REGION (default us-east-1)
	- ZCSV_S3_ENDPOINT, for S3-compatible stores
	- ZCSV_S3_PREFIX, prepended to object keys

	The object key is the archive's file name under the prefix.
`)

var pushCmdDef = &cli.Command{
	Name:        "push",
	Usage:       "Upload an archive to the S3 mirror",
	ArgsUsage:   "<archive>",
	Description: mirrorDescription,
	Action:      util.StandardMiddleware(cmdPush),
}

var pullCmdDef = &cli.Command{
	Name:      "pull",
	Usage:     "Download an archive from the S3 mirror",
	ArgsUsage: "<archive>",
	Description: heredoc.Doc(`
		Replaces the local archive with the mirrored copy.
		The download is checked to open as an archive before anything is replaced.
	`) + "\n" + mirrorDescription,
	Action: util.StandardMiddleware(cmdPull),
}

// NewRemote builds the Remote used by push and pull. Tests swap it out.
var NewRemote = func(ctx context.Context, cfg mirroring.S3Config) (mirroring.Remote, error) {
	return mirroring.NewS3Remote(ctx, cfg)
}

type mirrorFunc func(ctx context.Context, remote mirroring.Remote, prefix, archivePath string) (string, error)

func runMirror(c *cli.Context, fn mirrorFunc, verb string) error {
	if err := util.ArgsExactly(c, 1); err != nil {
		return err
	}
	state, err := config.NewState()
	if err != nil {
		return err
	}
	cfg, err := config.MirrorConfig(state)
	if err != nil {
		return err
	}
	path := config.ResolvePath(state, c.Args().Get(0))
	remote, err := NewRemote(c.Context, cfg)
	if err != nil {
		return err
	}
	key, err := fn(c.Context, remote, cfg.Prefix, path)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		n, err := qp.BuildMap(basicnode.Prototype.Any, 3, func(ma datamodel.MapAssembler) {
			qp.MapEntry(ma, verb, qp.String(path))
			qp.MapEntry(ma, "bucket", qp.String(remote.Bucket()))
			qp.MapEntry(ma, "key", qp.String(key))
		})
		if err != nil {
			return zcsvapi.ErrorInternal("building result", err)
		}
		util.SetResult(c, n)
	}
	return nil
}

func cmdPush(c *cli.Context) error {
	return runMirror(c, mirroring.Push, "pushed")
}

func cmdPull(c *cli.Context) error {
	return runMirror(c, mirroring.Pull, "pulled")
}
