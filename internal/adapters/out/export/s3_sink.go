package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var _ ports.ExportSink = (*S3Sink)(nil)

// S3Config selects the bucket. Endpoint and PathStyle are for S3-compatible
// stores such as MinIO. Without static keys the default credential chain is used.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// S3Sink uploads exports as objects under an optional key prefix.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, errs.NewValueIsRequiredError("bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3SinkWithClient(client, cfg.Bucket, cfg.Prefix)
}

func NewS3SinkWithClient(client *s3.Client, bucket, prefix string) (*S3Sink, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	if bucket == "" {
		return nil, errs.NewValueIsRequiredError("bucket")
	}
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}, nil
}

// Write puts the object with If-None-Match so a second upload of the same key fails.
func (s *S3Sink) Write(ctx context.Context, export ports.PaymentExport) (string, error) {
	body, err := Render(export)
	if err != nil {
		return "", err
	}

	key := path.Join(s.prefix, ObjectName(export))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(ContentType),
		IfNoneMatch: aws.String("*"),
		Metadata: map[string]string{
			"invoice-id": export.InvoiceID.String(),
			"version":    fmt.Sprint(export.Version),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
