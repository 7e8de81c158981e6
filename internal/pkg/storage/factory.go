package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverS3 selects the AWS S3 backend.
	DriverS3 = "s3"
	// DriverGCS selects the Google Cloud Storage backend.
	DriverGCS = "gcs"
	// DriverMinIO selects the MinIO backend.
	DriverMinIO = "minio"
)

// ErrUnknownDriver indicates an unsupported storage driver.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// Config groups the bucket and per-driver settings.
type Config struct {
	Bucket string
	S3     S3Options
	GCS    GCSOptions
	MinIO  MinIOOptions
}

// NewFromDriver constructs a Storage implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, cfg Config) (Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrMissingBucket
	}

	var (
		stg Storage
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverS3:
		stg, err = NewS3(ctx, cfg.Bucket, cfg.S3)
	case DriverGCS:
		stg, err = NewGCS(ctx, cfg.Bucket, cfg.GCS)
	case DriverMinIO:
		stg, err = NewMinIO(cfg.Bucket, cfg.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	return stg, nil
}
