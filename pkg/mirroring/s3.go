package mirroring

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/warptools/zcsv/zcsvapi"
)

// S3Config locates the mirror bucket.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // empty means the AWS default for the region.
	Prefix   string
}

// S3Remote mirrors archives into an S3 (or S3-compatible) bucket.
type S3Remote struct {
	client *s3.Client
	cfg    S3Config
}

var _ Remote = (*S3Remote)(nil)

// NewS3Remote connects to the configured bucket and checks that it's reachable.
// Credentials come from the usual AWS sources (environment, shared config, instance role).
//
// Errors:
//
//    - zcsv-error-mirror -- when the AWS config can't be loaded or the bucket can't be accessed
func NewS3Remote(ctx context.Context, cfg S3Config) (*S3Remote, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					SigningRegion:     cfg.Region,
				}, nil
			})))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, zcsvapi.ErrorMirror(cfg.Bucket, "", err)
	}

	client := s3.NewFromConfig(awsCfg)

	// make sure we can access the specified bucket
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, zcsvapi.ErrorMirror(cfg.Bucket, "", err)
	}
	return &S3Remote{client: client, cfg: cfg}, nil
}

func (r *S3Remote) Bucket() string {
	return r.cfg.Bucket
}

func isNotFound(err error) bool {
	var responseError *awshttp.ResponseError
	return errors.As(err, &responseError) && responseError.ResponseError.HTTPStatusCode() == http.StatusNotFound
}

func (r *S3Remote) Has(ctx context.Context, key string) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, zcsvapi.ErrorMirror(r.cfg.Bucket, key, err)
	}
}

func (r *S3Remote) Put(ctx context.Context, key string, body io.Reader) error {
	uploader := manager.NewUploader(r.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return zcsvapi.ErrorMirror(r.cfg.Bucket, key, err)
	}
	return nil
}

func (r *S3Remote) Get(ctx context.Context, key string, w io.WriterAt) error {
	downloader := manager.NewDownloader(r.client)
	_, err := downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return zcsvapi.ErrorMirror(r.cfg.Bucket, key, err)
	}
	return nil
}
