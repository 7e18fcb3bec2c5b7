package config

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/warptools/zcsv/pkg/mirroring"
	"github.com/warptools/zcsv/zcsvapi"
)

// DefaultS3Region is used when EnvZcsvS3Region is unset.
const DefaultS3Region = "us-east-1"

// Debug reports whether EnvZcsvDebug asks for verbose output.
// An empty value counts as set.
//
// Errors:
//
//    - zcsv-error-config -- when the value isn't a boolean
func Debug(state State) (bool, error) {
	value, ok := state.Lookup(EnvZcsvDebug)
	if !ok {
		return false, nil
	}
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, zcsvapi.ErrorConfig(EnvZcsvDebug, "expected a boolean, got "+strconv.Quote(value))
	}
	return b, nil
}

// MirrorConfig assembles the S3 mirror settings.
// The prefix is cleaned of leading and trailing slashes.
//
// Errors:
//
//    - zcsv-error-config -- when no bucket is configured
func MirrorConfig(state State) (mirroring.S3Config, error) {
	bucket := state.Env[EnvZcsvS3Bucket]
	if bucket == "" {
		return mirroring.S3Config{}, zcsvapi.ErrorConfig(EnvZcsvS3Bucket, "a bucket is required for mirroring")
	}
	region, ok := state.Lookup(EnvZcsvS3Region)
	if !ok || region == "" {
		region = DefaultS3Region
	}
	return mirroring.S3Config{
		Bucket:   bucket,
		Region:   region,
		Endpoint: state.Env[EnvZcsvS3Endpoint],
		Prefix:   strings.Trim(state.Env[EnvZcsvS3Prefix], "/"),
	}, nil
}

// ResolvePath makes a command line path absolute against the state's working directory.
func ResolvePath(state State, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(state.WorkingDirectory, path)
}
