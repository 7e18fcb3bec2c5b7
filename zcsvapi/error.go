package zcsvapi

import (
	"strconv"

	"github.com/serum-errors/go-serum"
)

const (
	ECodeArchiveOpen     = "zcsv-error-archive-open"
	ECodeArchiveWrite    = "zcsv-error-archive-write"
	ECodeTableDecode     = "zcsv-error-table-decode"
	ECodeTableNotFound   = "zcsv-error-table-not-found"
	ECodeContainerClosed = "zcsv-error-container-closed"
	ECodeAlreadyClosed   = "zcsv-error-already-closed"
	ECodeCsvInvalid      = "zcsv-error-csv-invalid"
	ECodeRowOutOfRange   = "zcsv-error-row-out-of-range"
	ECodeEntryMissing    = "zcsv-error-entry-missing"
	ECodeIo              = "zcsv-error-io"
	ECodeMirror          = "zcsv-error-mirror"
	ECodeConfig          = "zcsv-error-config"
	ECodeArgument        = "zcsv-error-argument"
	ECodeUnknown         = "zcsv-error-unknown"
	ECodeInternal        = "zcsv-error-internal"
)

// ErrorUnknown is returned when an unknown error occurs
//
// Errors:
//
//    - zcsv-error-unknown --
func ErrorUnknown(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeUnknown, "%s: %w", msgTmpl, cause)
}

// ErrorInternal is for miscellaneous errors that an end user has no viable intervention for.
// In most cases, prefer to use more specific errors.
//
// Errors:
//
//    - zcsv-error-internal --
func ErrorInternal(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInternal, "%s: %w", msgTmpl, cause)
}

// ErrorArchiveOpen is returned when an archive file can't be opened or created.
//
// Errors:
//
//    - zcsv-error-archive-open --
func ErrorArchiveOpen(path string, cause error) error {
	return serum.Error(ECodeArchiveOpen,
		serum.WithMessageTemplate("could not open archive {{path|q}}"),
		serum.WithDetail("path", path),
		serum.WithCause(cause),
	)
}

// ErrorArchiveWrite is returned when writing an entry (or the archive itself) fails.
// The entry is the archive entry name, or the archive path when no single entry is at fault.
//
// Errors:
//
//    - zcsv-error-archive-write --
func ErrorArchiveWrite(entry string, cause error) error {
	return serum.Error(ECodeArchiveWrite,
		serum.WithMessageTemplate("could not write archive entry {{entry|q}}"),
		serum.WithDetail("entry", entry),
		serum.WithCause(cause),
	)
}

// ErrorTableDecode is returned when an archive entry can't be decoded as a table.
//
// Errors:
//
//    - zcsv-error-table-decode --
func ErrorTableDecode(entry string, cause error) error {
	return serum.Error(ECodeTableDecode,
		serum.WithMessageTemplate("could not decode table entry {{entry|q}}"),
		serum.WithDetail("entry", entry),
		serum.WithCause(cause),
	)
}

// ErrorTableNotFound is returned when no table is registered under the name.
//
// Errors:
//
//    - zcsv-error-table-not-found --
func ErrorTableNotFound(name string) error {
	return serum.Error(ECodeTableNotFound,
		serum.WithMessageTemplate("table {{name|q}} not found"),
		serum.WithDetail("name", name),
	)
}

// ErrorContainerClosed is returned when a container is used after Close.
//
// Errors:
//
//    - zcsv-error-container-closed --
func ErrorContainerClosed(path string) error {
	return serum.Error(ECodeContainerClosed,
		serum.WithMessageTemplate("container {{path|q}} is closed"),
		serum.WithDetail("path", path),
	)
}

// ErrorAlreadyClosed is returned by a second Close.
//
// Errors:
//
//    - zcsv-error-already-closed --
func ErrorAlreadyClosed(path string) error {
	return serum.Error(ECodeAlreadyClosed,
		serum.WithMessageTemplate("archive {{path|q}} is already closed"),
		serum.WithDetail("path", path),
	)
}

// ErrorCsvInvalid is returned when CSV text is malformed or inconsistent.
//
// Errors:
//
//    - zcsv-error-csv-invalid --
func ErrorCsvInvalid(reason string, cause error) error {
	opts := []serum.WithConstruction{
		serum.WithMessageTemplate("invalid csv: {{reason}}"),
		serum.WithDetail("reason", reason),
	}
	if cause != nil {
		opts = append(opts, serum.WithCause(cause))
	}
	return serum.Error(ECodeCsvInvalid, opts...)
}

// ErrorRowOutOfRange is returned when a row index is outside the table.
//
// Errors:
//
//    - zcsv-error-row-out-of-range --
func ErrorRowOutOfRange(index int, length int) error {
	return serum.Error(ECodeRowOutOfRange,
		serum.WithMessageTemplate("row {{index}} out of range (table has {{length}} rows)"),
		serum.WithDetail("index", strconv.Itoa(index)),
		serum.WithDetail("length", strconv.Itoa(length)),
	)
}

// ErrorEntryMissing is returned when an archive has no entry of the given name.
//
// Errors:
//
//    - zcsv-error-entry-missing --
func ErrorEntryMissing(entry string) error {
	return serum.Error(ECodeEntryMissing,
		serum.WithMessageTemplate("archive entry {{entry|q}} does not exist"),
		serum.WithDetail("entry", entry),
	)
}

// ErrorIo wraps generic I/O errors from the Go stdlib
//
// Errors:
//
//    - zcsv-error-io --
func ErrorIo(context string, path string, cause error) error {
	result := serum.Errorf(ECodeIo,
		"io error: %s: %w", context, cause)
	addDetails(result, [][2]string{{"context", context}, {"path", path}})
	return result
}

// ErrorMirror is returned when pushing or pulling an archive to a mirror fails.
//
// Errors:
//
//    - zcsv-error-mirror --
func ErrorMirror(bucket string, key string, cause error) error {
	result := serum.Errorf(ECodeMirror,
		"mirror error for s3://%s/%s: %w", bucket, key, cause)
	addDetails(result, [][2]string{{"bucket", bucket}, {"key", key}})
	return result
}

// ErrorConfig is returned when an environment variable holds an unusable value.
//
// Errors:
//
//    - zcsv-error-config --
func ErrorConfig(variable string, reason string) error {
	return serum.Error(ECodeConfig,
		serum.WithMessageTemplate("invalid configuration in {{variable}}: {{reason}}"),
		serum.WithDetail("variable", variable),
		serum.WithDetail("reason", reason),
	)
}

// ErrorArgument is returned for bad command line usage.
// The caller must format the message string.
//
// Errors:
//
//    - zcsv-error-argument --
func ErrorArgument(message string) error {
	return serum.Error(ECodeArgument, serum.WithMessageLiteral(message))
}

// addDetails is a helper to attach details to errors built with serum.Errorf,
// which has no option for them.
func addDetails(err error, details [][2]string) {
	s := err.(*serum.ErrorValue)
	s.Data.Details = append(s.Data.Details, details...)
}
