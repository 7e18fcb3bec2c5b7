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
	"github.com/warptools/zcsv/zcsvapi"
)

func TestKey(t *testing.T) {
	qt.Check(t, Key("", "/data/orders.zcsv"), qt.Equals, "orders.zcsv")
	qt.Check(t, Key("team/a", "orders.zcsv"), qt.Equals, "team/a/orders.zcsv")
	qt.Check(t, Key("team", "../x/orders.zcsv"), qt.Equals, "team/orders.zcsv")
}

func makeArchive(t *testing.T, path string, tables map[string]*table.Table) {
	t.Helper()
	ctx := context.Background()
	c, err := container.Open(ctx, path)
	qt.Assert(t, err, qt.IsNil)
	for n, tbl := range tables {
		qt.Assert(t, c.Add(n, tbl), qt.IsNil)
	}
	qt.Assert(t, c.Save(ctx), qt.IsNil)
	qt.Assert(t, c.Close(), qt.IsNil)
}

func TestPushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	remote := NewMockRemote()
	src := filepath.Join(t.TempDir(), "orders.zcsv")
	sample := table.New([]string{"a", "b"}, table.Record{"a": "1", "b": "2"})
	makeArchive(t, src, map[string]*table.Table{"sample": sample})

	key, err := Push(ctx, remote, "prefix", src)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, key, qt.Equals, "prefix/orders.zcsv")
	want, err := os.ReadFile(src)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, remote.Objects[key], qt.DeepEquals, want)

	// pulling into another directory replaces whatever was there.
	dst := filepath.Join(t.TempDir(), "orders.zcsv")
	qt.Assert(t, os.WriteFile(dst, []byte("stale"), 0600), qt.IsNil)
	key, err = Pull(ctx, remote, "prefix", dst)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, key, qt.Equals, "prefix/orders.zcsv")

	c, err := container.Open(ctx, dst)
	qt.Assert(t, err, qt.IsNil)
	defer c.Close()
	got, err := c.Get("sample")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, got.Equal(sample), qt.IsTrue)

	fi, err := os.Stat(dst)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, fi.Mode().Perm(), qt.Equals, os.FileMode(0600))
}

func TestPushMissingArchive(t *testing.T) {
	_, err := Push(context.Background(), NewMockRemote(), "", filepath.Join(t.TempDir(), "nope.zcsv"))
	qt.Check(t, serum.Code(err), qt.Equals, zcsvapi.ECodeIo)
}

func TestPullErrors(t *testing.T) {
	ctx := context.Background()
	t.Run("missing-object", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Pull(ctx, NewMockRemote(), "", filepath.Join(dir, "gone.zcsv"))
		qt.Check(t, serum.Code(err), qt.Equals, zcsvapi.ECodeMirror)
		qt.Check(t, serum.Details(err), qt.DeepEquals, [][2]string{{"bucket", "mock"}, {"key", "gone.zcsv"}})
		entries, err := os.ReadDir(dir)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, entries, qt.HasLen, 0)
	})
	t.Run("not-an-archive", func(t *testing.T) {
		dir := t.TempDir()
		local := filepath.Join(dir, "kept.zcsv")
		qt.Assert(t, os.WriteFile(local, []byte("original"), 0644), qt.IsNil)
		remote := NewMockRemote()
		remote.Objects["kept.zcsv"] = []byte("this is not a zip file")

		_, err := Pull(ctx, remote, "", local)
		qt.Check(t, serum.Code(err), qt.Equals, zcsvapi.ECodeArchiveOpen)
		data, err := os.ReadFile(local)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, string(data), qt.Equals, "original")
	})
}
