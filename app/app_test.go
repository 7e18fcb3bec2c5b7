package zcsvapp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fatih/color"
	"github.com/serum-errors/go-serum"

	zcsvapp "github.com/warptools/zcsv/app"
	"github.com/warptools/zcsv/app/base/helpgen"
	"github.com/warptools/zcsv/app/base/render"
	mirrorcli "github.com/warptools/zcsv/app/mirror"
	"github.com/warptools/zcsv/pkg/config"
	"github.com/warptools/zcsv/pkg/mirroring"
	"github.com/warptools/zcsv/zcsvapi"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	color.NoColor = true
	var out, errb bytes.Buffer
	zcsvapp.App.Reader = strings.NewReader(stdin)
	zcsvapp.App.Writer = &out
	zcsvapp.App.ErrWriter = &errb
	err := zcsvapp.App.Run(append([]string{"zcsv"}, args...))
	return result{out.String(), errb.String(), err}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	qt.Assert(t, os.WriteFile(path, []byte(content), 0644), qt.IsNil)
}

const sampleCsv = "a,b,c\n1,2,3\n"

func TestAddLsCat(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "example.zcsv")
	csvFile := filepath.Join(dir, "sample.csv")
	writeFile(t, csvFile, sampleCsv)

	r := run(t, "", "add", archive, "sample", csvFile)
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stderr, qt.Contains, `added table "sample" (1 rows)`)

	r = run(t, "x\n10\n", "add", archive, "t10", "-")
	qt.Assert(t, r.err, qt.IsNil)
	r = run(t, "x\n2\n", "add", archive, "t2", "-")
	qt.Assert(t, r.err, qt.IsNil)

	r = run(t, "", "ls", archive)
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Equals, "sample\nt2\nt10\n")

	r = run(t, "", "cat", archive, "sample")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Equals, sampleCsv)

	r = run(t, "", "cat", "--format", "markdown", archive, "sample")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Equals, "| a | b | c |\n| --- | --- | --- |\n| 1 | 2 | 3 |\n")
}

func TestJsonOutput(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "j.zcsv")

	r := run(t, sampleCsv, "--json", "add", archive, "sample", "-")
	qt.Assert(t, r.err, qt.IsNil)
	var added map[string]interface{}
	qt.Assert(t, json.Unmarshal([]byte(r.stdout), &added), qt.IsNil)
	qt.Check(t, added, qt.DeepEquals, map[string]interface{}{"added": "sample", "rows": float64(1)})

	r = run(t, "", "--json", "ls", archive)
	qt.Assert(t, r.err, qt.IsNil)
	var names []string
	qt.Assert(t, json.Unmarshal([]byte(r.stdout), &names), qt.IsNil)
	qt.Check(t, names, qt.DeepEquals, []string{"sample"})

	r = run(t, "", "--json", "cat", archive, "sample")
	qt.Assert(t, r.err, qt.IsNil)
	var tbl struct {
		Name   string              `json:"name"`
		Header []string            `json:"header"`
		Rows   []map[string]string `json:"rows"`
	}
	qt.Assert(t, json.Unmarshal([]byte(r.stdout), &tbl), qt.IsNil)
	qt.Check(t, tbl.Name, qt.Equals, "sample")
	qt.Check(t, tbl.Header, qt.DeepEquals, []string{"a", "b", "c"})
	qt.Check(t, tbl.Rows, qt.DeepEquals, []map[string]string{{"a": "1", "b": "2", "c": "3"}})

	// the result is printed once, not again by a later command.
	r = run(t, "", "rm", archive, "sample")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Equals, "")
}

func TestRm(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "rm.zcsv")
	qt.Assert(t, run(t, sampleCsv, "add", archive, "one", "-").err, qt.IsNil)
	qt.Assert(t, run(t, sampleCsv, "add", archive, "two", "-").err, qt.IsNil)

	r := run(t, "", "rm", archive, "one", "missing")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stderr, qt.Contains, "removed 1 tables")

	r = run(t, "", "ls", archive)
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Equals, "two\n")
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "e.zcsv")

	r := run(t, "", "cat", archive, "nope")
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeTableNotFound)
	qt.Check(t, r.stderr, qt.Equals, "error: table \"nope\" not found\n")

	r = run(t, "", "--json", "cat", archive, "nope")
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeTableNotFound)
	var jerr map[string]interface{}
	qt.Assert(t, json.Unmarshal([]byte(r.stderr), &jerr), qt.IsNil)
	qt.Check(t, jerr["code"], qt.Equals, zcsvapi.ECodeTableNotFound)

	r = run(t, "", "ls")
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeArgument)

	r = run(t, "a,b\n1\n", "add", archive, "ragged", "-")
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeCsvInvalid)

	r = run(t, sampleCsv, "add", archive, "dir/name", "-")
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeArgument)

	r = run(t, "", "cat", "--format", "yaml", archive, "x")
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeArgument)

	notZip := filepath.Join(dir, "plain.zcsv")
	writeFile(t, notZip, sampleCsv)
	r = run(t, "", "ls", notZip)
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeArchiveOpen)
}

func TestTraceFile(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "traced.zcsv")
	traceFile := filepath.Join(dir, "trace.json")

	r := run(t, "", "--trace.file", traceFile, "ls", archive)
	qt.Assert(t, r.err, qt.IsNil)
	data, err := os.ReadFile(traceFile)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, string(data), qt.Contains, "container.Open")
	qt.Check(t, string(data), qt.Contains, `"zcsv.archive.path"`)
	// the resource names the command and the archive it ran against.
	qt.Check(t, string(data), qt.Contains, `"zcsv.command"`)
	qt.Check(t, string(data), qt.Contains, archive)
	qt.Check(t, string(data), qt.Contains, `"service.name"`)
}

func TestPushPull(t *testing.T) {
	t.Setenv(config.EnvZcsvS3Bucket, "tables")
	t.Setenv(config.EnvZcsvS3Prefix, "backups")
	qt.Assert(t, config.ReloadGlobalState(), qt.IsNil)
	t.Cleanup(func() { config.ReloadGlobalState() })

	remote := mirroring.NewMockRemote()
	orig := mirrorcli.NewRemote
	mirrorcli.NewRemote = func(_ context.Context, cfg mirroring.S3Config) (mirroring.Remote, error) {
		qt.Check(t, cfg.Bucket, qt.Equals, "tables")
		return remote, nil
	}
	t.Cleanup(func() { mirrorcli.NewRemote = orig })

	archive := filepath.Join(t.TempDir(), "mirrored.zcsv")
	qt.Assert(t, run(t, sampleCsv, "add", archive, "sample", "-").err, qt.IsNil)

	r := run(t, "", "push", archive)
	qt.Assert(t, r.err, qt.IsNil)
	_, ok := remote.Objects["backups/mirrored.zcsv"]
	qt.Check(t, ok, qt.IsTrue)

	qt.Assert(t, os.Remove(archive), qt.IsNil)
	r = run(t, "", "--json", "pull", archive)
	qt.Assert(t, r.err, qt.IsNil)
	var out map[string]string
	qt.Assert(t, json.Unmarshal([]byte(r.stdout), &out), qt.IsNil)
	qt.Check(t, out["key"], qt.Equals, "backups/mirrored.zcsv")

	r = run(t, "", "cat", archive, "sample")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Equals, sampleCsv)
}

func TestPushWithoutBucket(t *testing.T) {
	t.Setenv(config.EnvZcsvS3Bucket, "")
	qt.Assert(t, config.ReloadGlobalState(), qt.IsNil)
	t.Cleanup(func() { config.ReloadGlobalState() })

	r := run(t, "", "push", filepath.Join(t.TempDir(), "x.zcsv"))
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeConfig)
}

func TestHelp(t *testing.T) {
	helpgen.Mode = render.ModeMarkdown
	t.Cleanup(func() { helpgen.Mode = render.ModeAuto })

	r := run(t, "", "-h")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Contains, "## COMMANDS")
	qt.Check(t, r.stdout, qt.Contains, "### ls")
	qt.Check(t, r.stdout, qt.Contains, "#### --verbose, -v")

	r = run(t, "", "cat", "-h")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stdout, qt.Contains, "zcsv cat [options] <archive> <table>")
}

func TestDebugEnv(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "dbg.zcsv")
	t.Cleanup(func() { config.ReloadGlobalState() })

	t.Setenv(config.EnvZcsvDebug, "1")
	qt.Assert(t, config.ReloadGlobalState(), qt.IsNil)
	r := run(t, "", "rm", archive, "missing")
	qt.Assert(t, r.err, qt.IsNil)
	qt.Check(t, r.stderr, qt.Contains, `tables  no table "missing", skipping`)

	t.Setenv(config.EnvZcsvDebug, "loud")
	qt.Assert(t, config.ReloadGlobalState(), qt.IsNil)
	r = run(t, "", "ls", archive)
	qt.Check(t, serum.Code(r.err), qt.Equals, zcsvapi.ECodeConfig)
}
