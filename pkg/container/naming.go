package container

import (
	"strings"
)

// TableSuffix is appended to a table name to form its archive entry name.
const TableSuffix = ".csv"

// IsTableEntry reports whether an archive entry holds a table:
// a root-level name (no path separator of either kind) ending in TableSuffix,
// with something before the suffix. The match is case-sensitive.
func IsTableEntry(entryName string) bool {
	if !strings.HasSuffix(entryName, TableSuffix) {
		return false
	}
	if len(entryName) == len(TableSuffix) {
		return false
	}
	return !strings.ContainsAny(entryName, `/\`)
}

// TableName strips TableSuffix from an entry name.
func TableName(entryName string) string {
	return strings.TrimSuffix(entryName, TableSuffix)
}

// EntryName is the archive entry that stores the named table.
func EntryName(tableName string) string {
	return tableName + TableSuffix
}
