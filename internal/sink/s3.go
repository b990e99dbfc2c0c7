package sink

import (
	"bytes"
	"context"
	"fmt"
	"mime"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/sermon"
)

// S3API is the part of the S3 client the sink uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads the export artifact of each submission to a bucket.
type S3Sink struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Sink builds a client for cfg. Static credentials are used when both keys
// are set, otherwise the default AWS credential chain applies. A custom endpoint
// (R2, MinIO) switches to path-style addressing.
func NewS3Sink(ctx context.Context, cfg config.S3Config, accessKeyID, secretAccessKey string) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})

	return NewS3SinkWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3SinkWithClient(client S3API, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Sink) key(sub Submission) string {
	return s.prefix + objectName(sub)
}

func (s *S3Sink) Submit(ctx context.Context, d sermon.Draft) error {
	sub, artifact := newSubmission(d)
	key := s.key(sub)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(artifact.Body),
		ContentLength: aws.Int64(int64(len(artifact.Body))),
		ContentType:   aws.String(artifact.ContentType),
		ContentDisposition: aws.String(
			mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Name}),
		),
		Metadata: map[string]string{
			"submission-id": sub.ID,
			"title":         metaValue(d.Title),
			"scripture":     metaValue(d.Scripture),
			"date":          metaValue(d.Date),
			"content-hash":  sub.ContentHash,
		},
	})
	if err != nil {
		return fmt.Errorf("error uploading %s to bucket %s: %w", key, s.bucket, err)
	}

	sinkLogger.Debug().Str("bucket", s.bucket).Str("key", key).Msg("Sermon uploaded")
	return nil
}

// metaValue makes v safe for an x-amz-meta header. S3 user metadata must be
// ASCII, so anything else goes out as an RFC 2047 encoded word.
func metaValue(v string) string {
	return mime.QEncoding.Encode("utf-8", v)
}
