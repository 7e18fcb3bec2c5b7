package config

const (
	// EnvZcsvDebug turns on verbose output when set to a true value ("1", "true", ...)
	EnvZcsvDebug = "ZCSV_DEBUG"
	// EnvZcsvS3Bucket is the bucket that push and pull mirror archives to
	EnvZcsvS3Bucket = "ZCSV_S3_BUCKET"
	// EnvZcsvS3Region is the region of the mirror bucket. Defaults to DefaultS3Region.
	EnvZcsvS3Region = "ZCSV_S3_REGION"
	// EnvZcsvS3Endpoint overrides the S3 endpoint, for S3-compatible stores like minio
	EnvZcsvS3Endpoint = "ZCSV_S3_ENDPOINT"
	// EnvZcsvS3Prefix is prepended to object keys in the mirror bucket
	EnvZcsvS3Prefix = "ZCSV_S3_PREFIX"
)

// NOTE: keep this up to date or the config loader won't load them
var envKeys = []string{
	EnvZcsvDebug,
	EnvZcsvS3Bucket,
	EnvZcsvS3Region,
	EnvZcsvS3Endpoint,
	EnvZcsvS3Prefix,
}
