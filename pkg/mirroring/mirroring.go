/*
Package mirroring copies container archives to and from a remote object store.

An archive is stored as a single object whose key is the archive's file name,
under an optional prefix. Push uploads the local file as it is on disk; Pull downloads
into a temporary sibling, checks that it opens as a container, and then renames it
into place, so a bad download never replaces a good local archive.
*/
package mirroring

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/warptools/zcsv/pkg/container"
	"github.com/warptools/zcsv/pkg/logging"
	"github.com/warptools/zcsv/pkg/tracing"
	"github.com/warptools/zcsv/zcsvapi"
)

const logTag = "mirror"

// Remote is an object store that archives can be mirrored to.
type Remote interface {
	// Bucket names the store, for error messages.
	Bucket() string
	// Errors:
	//
	// 	- zcsv-error-mirror -- when the store can't be queried
	Has(ctx context.Context, key string) (bool, error)
	// Errors:
	//
	// 	- zcsv-error-mirror -- when the upload fails
	Put(ctx context.Context, key string, body io.Reader) error
	// Errors:
	//
	// 	- zcsv-error-mirror -- when the object is missing or the download fails
	Get(ctx context.Context, key string, w io.WriterAt) error
}

// Key is the object key an archive is mirrored under.
func Key(prefix, archivePath string) string {
	return path.Join(prefix, filepath.Base(archivePath))
}

// Push uploads the archive at archivePath and returns the key it was stored under.
// An existing object with the same key is replaced.
//
// Errors:
//
//    - zcsv-error-io -- when the archive can't be read
//    - zcsv-error-mirror -- when the upload fails
func Push(ctx context.Context, remote Remote, prefix, archivePath string) (_ string, err error) {
	ctx, span := tracing.Start(ctx, "mirroring.Push")
	defer func() { tracing.EndWithStatus(span, err) }()
	log := logging.Ctx(ctx)

	key := Key(prefix, archivePath)
	span.SetAttributes(
		attribute.String(tracing.AttrKeyZcsvArchivePath, archivePath),
		attribute.String(tracing.AttrKeyZcsvMirrorKey, key),
	)

	f, err := os.Open(archivePath)
	if err != nil {
		return "", zcsvapi.ErrorIo("opening archive for push", archivePath, err)
	}
	defer f.Close()

	exists, err := remote.Has(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		log.Debug(logTag, "replacing s3://%s/%s", remote.Bucket(), key)
	}
	if err := remote.Put(ctx, key, f); err != nil {
		return "", err
	}
	log.Info(logTag, "pushed %s to s3://%s/%s", archivePath, remote.Bucket(), key)
	return key, nil
}

// Pull downloads the mirrored copy of archivePath and replaces the local file with it.
// The download is only moved into place once it opens cleanly as a container.
//
// Errors:
//
//    - zcsv-error-io -- when the temporary file can't be created or renamed
//    - zcsv-error-mirror -- when the object is missing or the download fails
//    - zcsv-error-archive-open -- when the downloaded object isn't a zip archive
//    - zcsv-error-table-decode -- when a downloaded table isn't valid CSV
func Pull(ctx context.Context, remote Remote, prefix, archivePath string) (_ string, err error) {
	ctx, span := tracing.Start(ctx, "mirroring.Pull")
	defer func() { tracing.EndWithStatus(span, err) }()
	log := logging.Ctx(ctx)

	key := Key(prefix, archivePath)
	span.SetAttributes(
		attribute.String(tracing.AttrKeyZcsvArchivePath, archivePath),
		attribute.String(tracing.AttrKeyZcsvMirrorKey, key),
	)

	dir, base := filepath.Split(archivePath)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".pull*")
	if err != nil {
		return "", zcsvapi.ErrorIo("creating download file", archivePath, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	err = remote.Get(ctx, key, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = zcsvapi.ErrorIo("writing download file", tmpName, cerr)
	}
	if err != nil {
		return "", err
	}

	c, err := container.Open(ctx, tmpName)
	if err != nil {
		return "", err
	}
	names, err := c.TableNames()
	if cerr := c.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}

	if fi, err := os.Stat(archivePath); err == nil {
		os.Chmod(tmpName, fi.Mode().Perm())
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", zcsvapi.ErrorIo("checking local archive", archivePath, err)
	}
	if err := os.Rename(tmpName, archivePath); err != nil {
		return "", zcsvapi.ErrorIo("replacing local archive", archivePath, err)
	}
	log.Info(logTag, "pulled s3://%s/%s to %s (%d tables)", remote.Bucket(), key, archivePath, len(names))
	return key, nil
}
