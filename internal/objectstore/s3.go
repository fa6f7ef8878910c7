// Package objectstore uploads finished graph artifacts to S3-compatible
// object storage, per spec.md §6. No example repo in the retrieval pack
// talks to an object store directly, so this package is grounded on the
// upstream aws-sdk-go-v2 usage patterns rather than a teacher file; see
// DESIGN.md for the justification.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rohankatakam/repoanalyzer/internal/model"
)

// Config holds the connection parameters for the target bucket.
type Config struct {
	Region      string
	AccessKeyID string
	SecretKey   string
	Bucket      string
	// Endpoint overrides the default AWS endpoint, for S3-compatible
	// providers (MinIO, R2, ...). Empty means "use AWS".
	Endpoint string
}

// Store uploads graph artifacts to a bucket.
type Store struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

// New builds a Store from static credentials and an optional custom
// endpoint.
func New(ctx context.Context, cfg Config) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		logger: slog.Default().With("component", "objectstore"),
	}, nil
}

// Upload serializes the artifact as pretty-printed JSON and stores it at
// codeviz/graphs/<jobId>/graph.json, returning that key.
func (s *Store) Upload(ctx context.Context, jobID string, artifact *model.GraphArtifact) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(artifact); err != nil {
		return "", fmt.Errorf("failed to marshal graph artifact: %w", err)
	}

	key := fmt.Sprintf("codeviz/graphs/%s/graph.json", jobID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload graph artifact: %w", err)
	}

	s.logger.Info("uploaded graph artifact", "jobId", jobID, "key", key, "bytes", buf.Len())
	return key, nil
}
