package mirroring

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/zcsv/pkg/container"
	"github.com/warptools/zcsv/pkg/table"
	"github.com/warptools/zcsv/pkg/testutil"
	"github.com/warptools/zcsv/zcsvapi"
)

func TestS3Remote(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewS3Server(t, "tables")
	remote, err := NewS3Remote(ctx, S3Config{
		Bucket:   "tables",
		Region:   "us-east-1",
		Endpoint: srv.URL,
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, remote.Bucket(), qt.Equals, "tables")

	has, err := remote.Has(ctx, "nothing/here.zcsv")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, has, qt.IsFalse)

	src := filepath.Join(t.TempDir(), "orders.zcsv")
	sample := table.New([]string{"id"}, table.Record{"id": "7"})
	makeArchive(t, src, map[string]*table.Table{"orders": sample})

	key, err := Push(ctx, remote, "archive", src)
	qt.Assert(t, err, qt.IsNil)
	stored, ok := srv.Object(key)
	qt.Assert(t, ok, qt.IsTrue)
	want, err := os.ReadFile(src)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, stored, qt.DeepEquals, want)

	has, err = remote.Has(ctx, key)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, has, qt.IsTrue)

	dst := filepath.Join(t.TempDir(), "orders.zcsv")
	_, err = Pull(ctx, remote, "archive", dst)
	qt.Assert(t, err, qt.IsNil)
	c, err := container.Open(ctx, dst)
	qt.Assert(t, err, qt.IsNil)
	defer c.Close()
	got, err := c.Get("orders")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, got.Equal(sample), qt.IsTrue)
}

func TestS3RemoteMissingBucket(t *testing.T) {
	srv := testutil.NewS3Server(t, "tables")
	_, err := NewS3Remote(context.Background(), S3Config{
		Bucket:   "other",
		Region:   "us-east-1",
		Endpoint: srv.URL,
	})
	qt.Check(t, serum.Code(err), qt.Equals, zcsvapi.ECodeMirror)
}
