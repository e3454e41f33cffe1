package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hackclub/s3purge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, key string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func deleteInput(quiet bool, keys ...string) *s3.DeleteObjectsInput {
	objs := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objs = append(objs, types.ObjectIdentifier{Key: aws.String(k)})
	}
	return &s3.DeleteObjectsInput{
		Bucket: aws.String("media"),
		Delete: &types.Delete{Objects: objs, Quiet: aws.Bool(quiet)},
	}
}

func TestLocalClient_DeleteObjects(t *testing.T) {
	dir := t.TempDir()
	client, err := NewLocalClient(dir)
	require.NoError(t, err)

	original := writeFile(t, dir, "uploads/2023/05/image.jpg")
	thumb := writeFile(t, dir, "uploads/2023/05/image-150x150.jpg")

	out, err := client.DeleteObjects(context.Background(), deleteInput(false,
		"uploads/2023/05/image.jpg",
		"uploads/2023/05/image-150x150.jpg",
		"uploads/2023/05/missing.jpg",
	))

	require.NoError(t, err)
	assert.Len(t, out.Deleted, 3)
	assert.Empty(t, out.Errors)
	assert.NoFileExists(t, original)
	assert.NoFileExists(t, thumb)
}

func TestLocalClient_DeleteObjectsQuiet(t *testing.T) {
	dir := t.TempDir()
	client, err := NewLocalClient(dir)
	require.NoError(t, err)
	writeFile(t, dir, "a.jpg")

	out, err := client.DeleteObjects(context.Background(), deleteInput(true, "a.jpg"))

	require.NoError(t, err)
	assert.Empty(t, out.Deleted)
	assert.Empty(t, out.Errors)
}

func TestLocalClient_DeleteObjectsRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	client, err := NewLocalClient(filepath.Join(dir, "store"))
	require.NoError(t, err)
	outside := writeFile(t, dir, "secret.txt")

	out, err := client.DeleteObjects(context.Background(), deleteInput(false, "../secret.txt", "ok.jpg"))

	require.NoError(t, err)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "../secret.txt", aws.ToString(out.Errors[0].Key))
	assert.Equal(t, "AccessDenied", aws.ToString(out.Errors[0].Code))
	assert.Len(t, out.Deleted, 1)
	assert.FileExists(t, outside)
}

func TestLocalClient_DeleteObjectsRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	client, err := NewLocalClient(dir)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "uploads", "2023"), 0o755))

	out, err := client.DeleteObjects(context.Background(), deleteInput(false, "uploads/2023/"))

	require.NoError(t, err)
	assert.Empty(t, out.Deleted)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "InvalidRequest", aws.ToString(out.Errors[0].Code))
	assert.DirExists(t, filepath.Join(dir, "uploads", "2023"))
}

func TestLocalClient_DeleteObjectsCanceled(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.DeleteObjects(ctx, deleteInput(false, "a.jpg"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObjectExists_Local(t *testing.T) {
	dir := t.TempDir()
	client, err := NewLocalClient(dir)
	require.NoError(t, err)
	writeFile(t, dir, "uploads/present.jpg")

	ok, err := ObjectExists(context.Background(), client, "media", "uploads/present.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ObjectExists(context.Background(), client, "media", "uploads/absent.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ObjectExists(context.Background(), client, "media", "uploads")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewS3Client_Validation(t *testing.T) {
	_, err := NewS3Client(context.Background(), Options{})
	assert.Error(t, err)

	_, err = NewS3Client(context.Background(), Options{Region: "us-east-1", AccessKeyID: "only-id"})
	assert.Error(t, err)
}

func TestNewS3Client_CustomEndpoint(t *testing.T) {
	client, err := NewS3Client(context.Background(), Options{
		Region:          "auto",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)

	o := client.Options()
	assert.Equal(t, "http://localhost:9000", aws.ToString(o.BaseEndpoint))
	assert.True(t, o.UsePathStyle)
	assert.Equal(t, "auto", o.Region)
}

type headStub struct {
	API
	err error
}

func (h headStub) HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, h.err
}

func TestObjectExists_ErrorCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "found", err: nil, want: true},
		{name: "typed not found", err: &types.NotFound{}, want: false},
		{name: "no such key code", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: false},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := ObjectExists(context.Background(), headStub{err: tt.err}, "media", "k")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()

	client, err := FromConfig(context.Background(), &config.Config{StorageDriver: config.DriverLocal, LocalStorageDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &LocalClient{}, client)

	client, err = FromConfig(context.Background(), &config.Config{StorageDriver: config.DriverS3, S3Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, &s3.Client{}, client)

	_, err = FromConfig(context.Background(), &config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}
