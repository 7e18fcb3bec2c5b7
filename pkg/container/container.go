/*
Package container manages a set of named CSV tables stored together in one zip archive.

A Container is opened on an archive path, and every root-level ".csv" entry is decoded
right away (there is no deferred loading), so TableNames and Get never touch the disk.
Add and Remove change only the in-memory registry; Save writes the registry back, and Close
releases the archive.

After Save, the archive's root-level ".csv" entries are exactly the registered tables:
entries for removed tables are deleted. Entries that are not tables (other suffixes, or
anything inside a directory) are carried through untouched.

A Container is not safe for concurrent use.
*/
package container

import (
	"context"

	"github.com/facette/natsort"
	"go.opentelemetry.io/otel/attribute"

	"github.com/warptools/zcsv/pkg/archive"
	"github.com/warptools/zcsv/pkg/logging"
	"github.com/warptools/zcsv/pkg/table"
	"github.com/warptools/zcsv/pkg/tracing"
	"github.com/warptools/zcsv/zcsvapi"
)

const logTag = "container"

type Container struct {
	path   string
	handle *archive.Handle
	tables map[string]*table.Table
	closed bool
}

// Open opens (or creates) the archive at path and loads every table in it.
// If any table fails to decode, the archive is closed again and nothing is returned.
//
// Errors:
//
//    - zcsv-error-archive-open -- when the archive can't be opened or created
//    - zcsv-error-table-decode -- when a table entry isn't valid CSV
func Open(ctx context.Context, path string) (_ *Container, err error) {
	ctx, span := tracing.Start(ctx, "container.Open")
	defer func() { tracing.EndWithStatus(span, err) }()
	span.SetAttributes(attribute.String(tracing.AttrKeyZcsvArchivePath, path))
	log := logging.Ctx(ctx)

	h, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	c := &Container{
		path:   path,
		handle: h,
		tables: map[string]*table.Table{},
	}
	defer func() {
		if err != nil {
			h.Close()
		}
	}()

	for _, entry := range h.EntryNames() {
		if !IsTableEntry(entry) {
			log.Debug(logTag, "skipping entry %q", entry)
			continue
		}
		raw, err := h.ReadEntry(entry)
		if err != nil {
			return nil, zcsvapi.ErrorTableDecode(entry, err)
		}
		t, err := table.Decode(raw)
		if err != nil {
			return nil, zcsvapi.ErrorTableDecode(entry, err)
		}
		c.tables[TableName(entry)] = t
		log.Debug(logTag, "loaded table %q (%d rows)", TableName(entry), t.Len())
	}
	span.SetAttributes(attribute.Int(tracing.AttrKeyZcsvTableCount, len(c.tables)))
	return c, nil
}

// Path returns the archive path the container was opened with.
func (c *Container) Path() string {
	return c.path
}

func (c *Container) checkOpen() error {
	if c.closed {
		return zcsvapi.ErrorContainerClosed(c.path)
	}
	return nil
}

// TableNames returns the registered table names in natural order ("t2" before "t10").
//
// Errors:
//
//    - zcsv-error-container-closed -- when called after Close
func (c *Container) TableNames() ([]string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.sortedNames(), nil
}

func (c *Container) sortedNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	natsort.Sort(names)
	return names
}

// Get returns the table registered under name.
// The table is shared with the container; changes to it are saved by the next Save.
//
// Errors:
//
//    - zcsv-error-container-closed -- when called after Close
//    - zcsv-error-table-not-found -- when no table has that name
func (c *Container) Get(name string) (*table.Table, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	t, ok := c.tables[name]
	if !ok {
		return nil, zcsvapi.ErrorTableNotFound(name)
	}
	return t, nil
}

// Has reports whether a table is registered under name. It is false after Close.
func (c *Container) Has(name string) bool {
	if c.closed {
		return false
	}
	_, ok := c.tables[name]
	return ok
}

// Add registers t under name, replacing any table already there.
// Nothing is written until Save. A nil t is stored as an empty table.
//
// Errors:
//
//    - zcsv-error-container-closed -- when called after Close
func (c *Container) Add(name string, t *table.Table) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if t == nil {
		t = &table.Table{}
	}
	c.tables[name] = t
	return nil
}

// Remove unregisters the named table. Removing an absent name does nothing.
//
// Errors:
//
//    - zcsv-error-container-closed -- when called after Close
func (c *Container) Remove(name string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	delete(c.tables, name)
	return nil
}

// Save encodes every registered table into the archive, deletes the entries of tables
// that are no longer registered, and writes the archive to disk.
// The first failure stops the save and discards whatever it had staged, so the archive
// file on disk keeps its previous content, and a later Close does not write a partial save.
// The registry is left as it was either way.
//
// Errors:
//
//    - zcsv-error-container-closed -- when called after Close
//    - zcsv-error-archive-write -- when a table can't be encoded or the archive can't be written;
//      the entry detail names the failing entry
func (c *Container) Save(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, "container.Save")
	defer func() { tracing.EndWithStatus(span, err) }()
	span.SetAttributes(attribute.String(tracing.AttrKeyZcsvArchivePath, c.path))
	log := logging.Ctx(ctx)

	if err := c.checkOpen(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			c.handle.Discard()
		}
	}()

	for _, name := range c.sortedNames() {
		entry := EntryName(name)
		data, err := c.tables[name].Encode()
		if err != nil {
			return zcsvapi.ErrorArchiveWrite(entry, err)
		}
		if err := c.handle.WriteEntry(entry, data); err != nil {
			return zcsvapi.ErrorArchiveWrite(entry, err)
		}
	}
	for _, entry := range c.handle.EntryNames() {
		if !IsTableEntry(entry) {
			continue
		}
		if _, ok := c.tables[TableName(entry)]; !ok {
			c.handle.DeleteEntry(entry)
			log.Debug(logTag, "deleted stale entry %q", entry)
		}
	}
	if err := c.handle.Commit(); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int(tracing.AttrKeyZcsvTableCount, len(c.tables)))
	log.Info(logTag, "saved %d tables to %s", len(c.tables), c.path)
	return nil
}

// Close releases the archive. Tables added or removed since the last Save are not written.
// The registry is kept, but every other method fails once the container is closed.
//
// Errors:
//
//    - zcsv-error-already-closed -- when the container was already closed
//    - zcsv-error-archive-write -- when the archive fails to finalize
func (c *Container) Close() error {
	if c.closed {
		return zcsvapi.ErrorAlreadyClosed(c.path)
	}
	c.closed = true
	return c.handle.Close()
}
