// Package backup copies the store files to object storage.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/config"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

const (
	csvContentType = "text/csv"
	snapshotLayout = "20060102T150405"
)

// Uploader stores one object and returns its location.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Dependencies bundles collaborators for a backup run.
type Dependencies struct {
	Uploader Uploader
	Prefix   string
	Clock    clock.Clock
	Logger   *zap.Logger
}

// Backup snapshots store files under a timestamped key prefix.
type Backup struct {
	uploader Uploader
	prefix   string
	clock    clock.Clock
	logger   *zap.Logger
}

// New constructs a Backup.
func New(deps Dependencies) *Backup {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Backup{uploader: deps.Uploader, prefix: deps.Prefix, clock: deps.Clock, logger: deps.Logger}
}

// Run uploads every existing file in files and returns the object locations.
// Missing files are skipped; any other failure stops the run.
func (b *Backup) Run(ctx context.Context, files []string) ([]string, error) {
	snapshot := b.clock.Now().Format(snapshotLayout)
	locations := make([]string, 0, len(files))
	for _, file := range files {
		body, err := os.ReadFile(file)
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Debug("backup skipped missing file", zap.String("file", file))
			continue
		}
		if err != nil {
			return locations, apperrors.NewIOFailure("read "+file, err)
		}

		key := path.Join(b.prefix, snapshot, filepath.Base(file))
		location, err := b.uploader.Upload(ctx, key, body, csvContentType)
		if err != nil {
			return locations, apperrors.NewIOFailure("upload "+key, err)
		}
		b.logger.Info("file backed up", zap.String("file", file), zap.String("location", location))
		locations = append(locations, location)
	}
	return locations, nil
}

// S3Uploader writes objects to one bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg config.BackupConfig) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, apperrors.NewValidationError("BACKUP_S3_BUCKET is not configured", nil)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &S3Uploader{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
