package purge

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Placeholder values shipped in the plugin's sample configuration.
const (
	PlaceholderBucket = "seu-bucket-s3-aqui"
	PlaceholderRegion = "sua-regiao-s3-aqui"
)

// Client is the part of the S3 API the purger needs. *s3.Client satisfies it.
type Client interface {
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Outcome is the result of one purge.
type Outcome struct {
	// Keys holds every key sent in the batch request.
	Keys    []string   `json:"keys"`
	Deleted []string   `json:"deleted"`
	Errors  []KeyError `json:"errors"`
}

// KeyError is a failure for one key, or for the whole batch when Kind is
// ServiceUnavailable (Key is then empty).
type KeyError struct {
	Key       string `json:"key,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Kind      Kind   `json:"kind"`
}

// OK reports whether every requested key was deleted without error.
func (o *Outcome) OK() bool {
	return len(o.Errors) == 0
}

// ValidateBucket rejects an empty or placeholder bucket name.
func ValidateBucket(bucket string) error {
	b := strings.TrimSpace(bucket)
	if b == "" {
		return invalidConfiguration("bucket name is not set")
	}
	if b == PlaceholderBucket {
		return invalidConfiguration("bucket name is still the placeholder " + PlaceholderBucket)
	}
	return nil
}

// ValidateRegion rejects an empty or placeholder region.
func ValidateRegion(region string) error {
	r := strings.TrimSpace(region)
	if r == "" {
		return invalidConfiguration("region is not set")
	}
	if r == PlaceholderRegion {
		return invalidConfiguration("region is still the placeholder " + PlaceholderRegion)
	}
	return nil
}

// DeleteAssetObjects removes an attachment and all its variants from bucket
// with a single, non-quiet batch delete. It never retries.
//
// The returned Outcome is never nil. The error is non-nil only for failures
// detected before a request is sent (MissingMetadata, InvalidConfiguration);
// service and transport failures are reported inside the Outcome.
func DeleteAssetObjects(ctx context.Context, record FileRecord, basePrefix, bucket string, client Client) (*Outcome, error) {
	out := &Outcome{}

	if err := ValidateBucket(bucket); err != nil {
		return out, err
	}
	if client == nil {
		return out, invalidConfiguration("storage client is not configured")
	}

	keys, err := DeriveKeys(record, basePrefix)
	if err != nil {
		return out, err
	}
	if len(keys) == 0 {
		return out, nil
	}
	out.Keys = keys

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	result, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false),
		},
	})
	if err != nil {
		out.Errors = append(out.Errors, serviceError(err))
		return out, nil
	}
	if result == nil {
		return out, nil
	}

	for _, d := range result.Deleted {
		out.Deleted = append(out.Deleted, aws.ToString(d.Key))
	}
	for _, e := range result.Errors {
		out.Errors = append(out.Errors, KeyError{
			Key:     aws.ToString(e.Key),
			Code:    aws.ToString(e.Code),
			Message: aws.ToString(e.Message),
			Kind:    PerKeyDeleteError,
		})
	}

	return out, nil
}

// serviceError turns a failed batch call into a single synthetic KeyError,
// keeping the AWS error code and request id when the SDK exposes them.
func serviceError(err error) KeyError {
	ke := KeyError{
		Code:    string(ServiceUnavailable),
		Message: err.Error(),
		Kind:    ServiceUnavailable,
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		ke.Code = apiErr.ErrorCode()
		if msg := apiErr.ErrorMessage(); msg != "" {
			ke.Message = msg
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		ke.RequestID = respErr.ServiceRequestID()
	}

	return ke
}
