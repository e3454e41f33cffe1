package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// LocalClient serves S3 calls from a directory on disk, for development.
// Keys map to files under baseDir; the bucket name is ignored.
type LocalClient struct {
	baseDir string
}

func NewLocalClient(baseDir string) (*LocalClient, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &LocalClient{baseDir: abs}, nil
}

func (l *LocalClient) path(key string) (string, bool) {
	p := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if p != l.baseDir && !strings.HasPrefix(p, l.baseDir+string(filepath.Separator)) {
		return "", false
	}
	return p, true
}

// DeleteObjects removes each key's file. A missing file counts as deleted,
// the same as S3.
func (l *LocalClient) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params == nil || params.Delete == nil {
		return nil, fmt.Errorf("local storage: delete request is empty")
	}

	out := &s3.DeleteObjectsOutput{}
	for _, obj := range params.Delete.Objects {
		key := aws.ToString(obj.Key)

		p, ok := l.path(key)
		if !ok || p == l.baseDir {
			out.Errors = append(out.Errors, types.Error{
				Key:     obj.Key,
				Code:    aws.String("AccessDenied"),
				Message: aws.String("key resolves outside the storage directory"),
			})
			continue
		}

		if info, err := os.Stat(p); err == nil && info.IsDir() {
			out.Errors = append(out.Errors, types.Error{
				Key:     obj.Key,
				Code:    aws.String("InvalidRequest"),
				Message: aws.String("key names a directory, not an object"),
			})
			continue
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			out.Errors = append(out.Errors, types.Error{
				Key:     obj.Key,
				Code:    aws.String("InternalError"),
				Message: aws.String(err.Error()),
			})
			continue
		}

		if !aws.ToBool(params.Delete.Quiet) {
			out.Deleted = append(out.Deleted, types.DeletedObject{Key: obj.Key})
		}
	}

	return out, nil
}

// HeadObject reports a file's size and modification time.
func (l *LocalClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, ok := l.path(aws.ToString(params.Key))
	if !ok {
		return nil, &types.NotFound{Message: aws.String("key resolves outside the storage directory")}
	}

	info, err := os.Stat(p)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		return nil, &types.NotFound{}
	}
	if err != nil {
		return nil, err
	}

	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(info.Size()),
		LastModified:  aws.Time(info.ModTime()),
	}, nil
}
