package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// API defines the S3 operations used here. Both *s3.Client and LocalClient implement it.
type API interface {
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var (
	_ API = (*s3.Client)(nil)
	_ API = (*LocalClient)(nil)
)
