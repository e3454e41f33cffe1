package purge

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	return Options{Bucket: "media", Region: "us-east-1", BasePath: prefix}
}

func TestNew_Validates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{name: "empty bucket", mutate: func(o *Options) { o.Bucket = "" }},
		{name: "placeholder bucket", mutate: func(o *Options) { o.Bucket = PlaceholderBucket }},
		{name: "empty region", mutate: func(o *Options) { o.Region = "" }},
		{name: "placeholder region", mutate: func(o *Options) { o.Region = PlaceholderRegion }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(&opts)

			p, err := New(opts, &fakeClient{}, zerolog.Nop())

			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(validOptions(), nil, zerolog.Nop())
	assert.Equal(t, InvalidConfiguration, KindOf(err))
}

func TestPurger_Purge(t *testing.T) {
	var buf bytes.Buffer
	client := &fakeClient{}
	p, err := New(validOptions(), client, zerolog.New(&buf))
	require.NoError(t, err)

	out, err := p.Purge(context.Background(), "42", FileRecord{
		PrimaryPath: "2023/05/image.jpg",
		Variants:    map[string]Variant{"thumbnail": {Path: "image-150x150.jpg"}},
	})

	require.NoError(t, err)
	assert.Len(t, out.Deleted, 2)
	assert.Len(t, client.calls, 1)
	assert.Contains(t, buf.String(), `"attachment_id":"42"`)
	assert.Contains(t, buf.String(), "objects deleted")
}

func TestPurger_PurgeLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	client := &fakeClient{
		fn: func(*s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			return nil, errors.New("timeout")
		},
	}
	p, err := New(validOptions(), client, zerolog.New(&buf))
	require.NoError(t, err)

	out, err := p.Purge(context.Background(), "7", FileRecord{PrimaryPath: "a.jpg"})

	require.NoError(t, err)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, buf.String(), "object delete failed")
	assert.Contains(t, buf.String(), `"kind":"ServiceUnavailable"`)
}

func TestPurger_PurgeMissingMetadata(t *testing.T) {
	var buf bytes.Buffer
	client := &fakeClient{}
	p, err := New(validOptions(), client, zerolog.New(&buf))
	require.NoError(t, err)

	out, err := p.Purge(context.Background(), "9", FileRecord{})

	assert.ErrorIs(t, err, ErrMissingMetadata)
	assert.NotNil(t, out)
	assert.Empty(t, client.calls)
	assert.Contains(t, buf.String(), "purge aborted")
}

func TestPurger_Keys(t *testing.T) {
	p, err := New(validOptions(), &fakeClient{}, zerolog.Nop())
	require.NoError(t, err)

	keys, err := p.Keys(FileRecord{PrimaryPath: "2023/05/image.jpg"})

	require.NoError(t, err)
	assert.Equal(t, []string{"wp-content/uploads/2023/05/image.jpg"}, keys)
}
