// Package archive uploads completed conversation transcripts to
// S3-compatible object storage as zstd-compressed JSON documents.
// The feature is optional: a nil *Client is a no-op, so callers never
// need to check whether archival is configured.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/conneqt/leavebot-go/internal/config"
	"github.com/conneqt/leavebot-go/internal/ctxutil"
	"github.com/conneqt/leavebot-go/internal/session"
)

// Record is the archived form of a completed conversation. It captures
// the request fields as they were submitted plus the full transcript.
type Record struct {
	SessionID  string               `json:"sessionId"`
	UserID     string               `json:"userId"`
	ArchivedAt time.Time            `json:"archivedAt"`
	Profile    *session.UserProfile `json:"profile,omitempty"`
	State      session.State        `json:"state"`
	History    session.History      `json:"history"`
}

// Client uploads transcripts to a single bucket under a fixed key prefix.
type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
	now    func() time.Time
}

// New creates an archive client from configuration. Returns (nil, nil)
// when the feature is disabled; the nil client discards all archives.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required by most S3-compatible stores
		// Many S3-compatible stores reject the SDK's default CRC checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &Client{
		s3:     s3Client,
		bucket: cfg.BucketName,
		prefix: cfg.Prefix,
		now:    time.Now,
	}, nil
}

// Archive compresses and uploads the session transcript. The upload is
// detached from the request context so an already-answered turn cannot
// cancel it mid-flight; config.ArchiveUpload bounds it instead.
func (c *Client) Archive(ctx context.Context, sess *session.Session) error {
	if c == nil {
		return nil
	}

	rec := Record{
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		ArchivedAt: c.now().UTC(),
		Profile:    sess.Profile,
		State:      sess.State,
		History:    sess.History,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}

	compressed, err := compress(data)
	if err != nil {
		return fmt.Errorf("archive: compress record: %w", err)
	}

	// The upload outlives the turn that triggered it; detach from the
	// request context but keep its tracing identifiers for the logs.
	ctx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), config.ArchiveUpload)
	defer cancel()

	key := c.objectKey(sess.ID, rec.ArchivedAt)
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/zstd"),
	})
	if err != nil {
		return fmt.Errorf("archive: upload %q: %w", key, describeS3Error(err))
	}
	return nil
}

// describeS3Error surfaces the S3 error code and HTTP status in the
// error chain; the raw SDK error buries them under operation wrappers.
func describeS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return fmt.Errorf("http %d: %w", respErr.HTTPStatusCode(), err)
	}
	return err
}

// objectKey builds a date-partitioned key so archives stay browsable:
// <prefix>/2024/10/07/<session-id>-<uuid>.json.zst
func (c *Client) objectKey(sessionID string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s-%s.json.zst",
		c.prefix, at.Format("2006/01/02"), sessionID, uuid.New().String())
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses the archive encoding. Used by offline tooling
// that reads transcripts back out of the bucket.
func Decompress(r io.Reader) ([]byte, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("archive: create decoder: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("archive: decompress: %w", err)
	}
	return data, nil
}
