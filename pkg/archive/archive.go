/*
Package archive is a small read/write handle over a zip file on disk.

The whole archive is read into memory when opened. Writes and deletes are staged on the
handle and reach the disk only on Commit (or Close), which rewrites the file through a
temporary sibling and a rename, so a failed commit leaves the previous file in place.
Discard drops whatever is staged and returns the handle to what is on disk.
*/
package archive

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/warptools/zcsv/zcsvapi"
)

type entry struct {
	header zip.FileHeader
	data   []byte
}

// Handle is an open archive. It is not safe for concurrent use.
type Handle struct {
	path   string
	mode   fs.FileMode
	names  []string // archive order; new entries append.
	byName map[string]*entry
	dirty  bool

	// as of the last load or commit; entries are never mutated in place.
	diskNames  []string
	diskByName map[string]*entry
	closed bool
}

// Open opens the zip archive at path, creating an empty one if nothing exists there.
// Creation happens immediately, so an unwritable location fails here rather than at commit.
// A zero-length file is treated as an empty archive.
//
// Errors:
//
//    - zcsv-error-archive-open -- when the file can't be read or created, or isn't a zip archive
func Open(path string) (*Handle, error) {
	h := &Handle{
		path:   path,
		mode:   0644,
		byName: map[string]*entry{},
	}
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := h.create(); err != nil {
			return nil, zcsvapi.ErrorArchiveOpen(path, err)
		}
		return h, nil
	case err != nil:
		return nil, zcsvapi.ErrorArchiveOpen(path, err)
	case fi.IsDir():
		return nil, zcsvapi.ErrorArchiveOpen(path, errors.New("path is a directory"))
	}
	h.mode = fi.Mode().Perm()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, zcsvapi.ErrorArchiveOpen(path, err)
	}
	if len(raw) == 0 {
		return h, nil
	}
	if err := h.load(raw); err != nil {
		return nil, zcsvapi.ErrorArchiveOpen(path, err)
	}
	h.markOnDisk()
	return h, nil
}

// create writes an empty archive at the handle's path.
func (h *Handle) create() error {
	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, h.mode)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (h *Handle) load(raw []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		data, err := readFile(f)
		if err != nil {
			return err
		}
		if _, exists := h.byName[f.Name]; !exists {
			h.names = append(h.names, f.Name)
		}
		// a repeated name keeps the last copy, which is what most zip tools extract.
		h.byName[f.Name] = &entry{header: f.FileHeader, data: data}
	}
	return nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Path returns the filesystem path the handle was opened with.
func (h *Handle) Path() string {
	return h.path
}

// EntryNames lists every entry in archive order, including directories and nested paths.
func (h *Handle) EntryNames() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// ReadEntry returns the content of the named entry.
// The returned slice must not be modified.
//
// Errors:
//
//    - zcsv-error-already-closed -- when the handle is closed
//    - zcsv-error-entry-missing -- when there is no such entry
func (h *Handle) ReadEntry(name string) ([]byte, error) {
	if h.closed {
		return nil, zcsvapi.ErrorAlreadyClosed(h.path)
	}
	e, ok := h.byName[name]
	if !ok {
		return nil, zcsvapi.ErrorEntryMissing(name)
	}
	return e.data, nil
}

// WriteEntry stages content for the named entry, replacing any existing content.
// Entries that already existed keep their position in the archive.
//
// Errors:
//
//    - zcsv-error-already-closed -- when the handle is closed
func (h *Handle) WriteEntry(name string, data []byte) error {
	if h.closed {
		return zcsvapi.ErrorAlreadyClosed(h.path)
	}
	if e, ok := h.byName[name]; ok {
		hdr := e.header
		hdr.Modified = time.Now()
		h.byName[name] = &entry{header: hdr, data: data}
	} else {
		h.names = append(h.names, name)
		h.byName[name] = &entry{
			header: zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()},
			data:   data,
		}
	}
	h.dirty = true
	return nil
}

// DeleteEntry stages removal of the named entry and reports whether it existed.
func (h *Handle) DeleteEntry(name string) bool {
	if h.closed {
		return false
	}
	if _, ok := h.byName[name]; !ok {
		return false
	}
	delete(h.byName, name)
	for i, n := range h.names {
		if n == name {
			h.names = append(h.names[:i], h.names[i+1:]...)
			break
		}
	}
	h.dirty = true
	return true
}

// Dirty reports whether staged changes are waiting for Commit.
func (h *Handle) Dirty() bool {
	return h.dirty
}

// Commit writes every entry to a temporary file next to the archive and renames it over
// the archive. Nothing is written when there are no staged changes.
//
// Errors:
//
//    - zcsv-error-already-closed -- when the handle is closed
//    - zcsv-error-archive-write -- when an entry or the archive file can't be written;
//      the entry detail names the failing entry, or the archive path
func (h *Handle) Commit() error {
	if h.closed {
		return zcsvapi.ErrorAlreadyClosed(h.path)
	}
	if !h.dirty {
		return nil
	}
	dir, base := filepath.Split(h.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return zcsvapi.ErrorArchiveWrite(h.path, err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, name := range h.names {
		e := h.byName[name]
		hdr := e.header
		// the writer recomputes sizes and checksums and emits its own extra fields.
		hdr.Extra = nil
		hdr.CRC32, hdr.CompressedSize64, hdr.UncompressedSize64 = 0, 0, 0
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return zcsvapi.ErrorArchiveWrite(name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return zcsvapi.ErrorArchiveWrite(name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return zcsvapi.ErrorArchiveWrite(h.path, err)
	}
	if err := tmp.Chmod(h.mode); err != nil {
		return zcsvapi.ErrorArchiveWrite(h.path, err)
	}
	if err := tmp.Sync(); err != nil {
		return zcsvapi.ErrorArchiveWrite(h.path, err)
	}
	if err := tmp.Close(); err != nil {
		return zcsvapi.ErrorArchiveWrite(h.path, err)
	}
	if err := os.Rename(tmp.Name(), h.path); err != nil {
		os.Remove(tmp.Name())
		committed = true
		return zcsvapi.ErrorArchiveWrite(h.path, err)
	}
	committed = true
	h.markOnDisk()
	return nil
}

func (h *Handle) markOnDisk() {
	h.diskNames = make([]string, len(h.names))
	copy(h.diskNames, h.names)
	h.diskByName = make(map[string]*entry, len(h.byName))
	for k, v := range h.byName {
		h.diskByName[k] = v
	}
	h.dirty = false
}

// Discard drops every staged write and delete, so the handle again matches the
// archive as last read or committed. It does nothing on a closed handle.
func (h *Handle) Discard() {
	if h.closed || !h.dirty {
		return
	}
	h.names = make([]string, len(h.diskNames))
	copy(h.names, h.diskNames)
	h.byName = make(map[string]*entry, len(h.diskByName))
	for k, v := range h.diskByName {
		h.byName[k] = v
	}
	h.dirty = false
}

// Close commits staged changes and releases the handle.
// The handle counts as closed even when the final commit fails.
//
// Errors:
//
//    - zcsv-error-already-closed -- when the handle was already closed
//    - zcsv-error-archive-write -- when committing staged changes fails
func (h *Handle) Close() error {
	if h.closed {
		return zcsvapi.ErrorAlreadyClosed(h.path)
	}
	err := h.Commit()
	h.closed = true
	h.byName, h.diskByName = nil, nil
	h.names, h.diskNames = nil, nil
	return err
}
