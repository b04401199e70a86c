package snapshot

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/agentstation/locsync/pkg/errors"
)

// S3Config configures an S3Sink. Credentials come from the default AWS
// chain (environment, shared config, instance role).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; set for MinIO or other S3-compatible stores
	Prefix    string
	PathStyle bool
}

// S3Sink uploads snapshots to an S3-compatible bucket.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink creates an S3Sink from cfg.
func NewS3Sink(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, errors.NewValidationError("snapshot.s3_bucket", "", "bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.NewConfigError("snapshot", "loading AWS configuration", err)
	}
	return newS3Sink(awsCfg, cfg, optFns...), nil
}

func newS3Sink(awsCfg aws.Config, cfg S3Config, optFns ...func(*s3.Options)) *S3Sink {
	client := s3.NewFromConfig(awsCfg, append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)...)

	return &S3Sink{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}
}

// Save uploads s and returns its s3:// URI.
func (s *S3Sink) Save(ctx context.Context, snap Snapshot) (string, error) {
	data, err := Encode(snap)
	if err != nil {
		return "", err
	}

	key := Name(snap)
	if s.prefix != "" {
		key = path.Join(s.prefix, key)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/yaml"),
		Metadata: map[string]string{
			"attribute": snap.Attribute,
			"run-id":    snap.RunID,
		},
	})
	if err != nil {
		return "", errors.WrapIO("upload", "s3://"+s.bucket+"/"+key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
