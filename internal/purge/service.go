package purge

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures a Purger.
type Options struct {
	Bucket   string
	Region   string
	BasePath string
}

// Purger deletes attachments from one bucket and logs every outcome.
type Purger struct {
	client   Client
	bucket   string
	region   string
	basePath string
	logger   zerolog.Logger
}

// New validates opts once and returns a Purger bound to client.
func New(opts Options, client Client, logger zerolog.Logger) (*Purger, error) {
	if err := ValidateBucket(opts.Bucket); err != nil {
		return nil, err
	}
	if err := ValidateRegion(opts.Region); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, invalidConfiguration("storage client is not configured")
	}

	logger.Info().
		Str("bucket", opts.Bucket).
		Str("region", opts.Region).
		Str("base_path", opts.BasePath).
		Msg("purger configured")

	return &Purger{
		client:   client,
		bucket:   opts.Bucket,
		region:   opts.Region,
		basePath: opts.BasePath,
		logger:   logger,
	}, nil
}

// Bucket is the bucket every purge targets.
func (p *Purger) Bucket() string { return p.bucket }

// Keys derives the object keys for record without deleting anything.
func (p *Purger) Keys(record FileRecord) ([]string, error) {
	return DeriveKeys(record, p.basePath)
}

// Purge deletes the objects of attachment id. See DeleteAssetObjects for the
// meaning of the returned values.
func (p *Purger) Purge(ctx context.Context, id string, record FileRecord) (*Outcome, error) {
	log := p.logger.With().Str("attachment_id", id).Str("bucket", p.bucket).Logger()

	out, err := DeleteAssetObjects(ctx, record, p.basePath, p.bucket, p.client)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(KindOf(err))).Msg("purge aborted")
		return out, err
	}

	log.Debug().Strs("keys", out.Keys).Msg("batch delete completed")

	if len(out.Deleted) > 0 {
		log.Info().
			Int("count", len(out.Deleted)).
			Str("deleted", strings.Join(out.Deleted, ", ")).
			Msg("objects deleted")
	}

	for _, e := range out.Errors {
		ev := log.Error().
			Str("kind", string(e.Kind)).
			Str("code", e.Code).
			Str("message", e.Message)
		if e.Key != "" {
			ev = ev.Str("key", e.Key)
		}
		if e.RequestID != "" {
			ev = ev.Str("request_id", e.RequestID)
		}
		ev.Msg("object delete failed")
	}

	return out, nil
}
