package audit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/stockroom/pkg/observability"
)

// ArchiveTarget stores one day's CSV export under the given name
type ArchiveTarget interface {
	Store(ctx context.Context, name string, data []byte) error
}

// DirTarget archives exports as files in a local directory
type DirTarget struct {
	dir string
}

// NewDirTarget creates the directory if needed and returns the target
func NewDirTarget(dir string) (*DirTarget, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &DirTarget{dir: dir}, nil
}

// Store writes the export to <dir>/<name>
func (t *DirTarget) Store(_ context.Context, name string, data []byte) error {
	path := filepath.Join(t.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}
	return nil
}

// S3Config holds settings for the S3 archive target
type S3Config struct {
	Bucket    string
	Region    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// S3Target archives exports as objects in an S3 bucket
type S3Target struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Target creates an S3 archive target. Static credentials are used
// when provided (MinIO, explicit keys), otherwise the default chain.
func NewS3Target(ctx context.Context, cfg S3Config) (*S3Target, error) {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey, cfg.SecretKey, "",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3Target{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Store uploads the export to s3://<bucket>/<prefix><name>
func (t *S3Target) Store(ctx context.Context, name string, data []byte) error {
	key := t.prefix + name
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive to s3: %w", err)
	}
	return nil
}

// Archiver periodically copies each day's audit entries out to an archive
// target. It only ever reads the trail; archived entries stay in the
// database untouched.
type Archiver struct {
	log    *Log
	target ArchiveTarget
	logger *observability.Logger
	cron   *cron.Cron
}

// NewArchiver creates an archiver writing to target
func NewArchiver(log *Log, target ArchiveTarget, logger *observability.Logger) *Archiver {
	return &Archiver{
		log:    log,
		target: target,
		logger: logger,
	}
}

// ArchiveDay exports all entries whose changed_at falls on the given UTC
// day and stores them under audit_<day>.csv. Days with no entries still
// produce a file with just the header, so a missing file signals a skipped
// run rather than a quiet day.
func (a *Archiver) ArchiveDay(ctx context.Context, day time.Time) error {
	from := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Nanosecond)

	entries, err := a.log.Export(ctx, Filter{From: &from, To: &to})
	if err != nil {
		return fmt.Errorf("failed to export audit entries for %s: %w", from.Format("2006-01-02"), err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		return err
	}

	name := ExportFilename(from)
	if err := a.target.Store(ctx, name, buf.Bytes()); err != nil {
		return err
	}

	a.logger.WithFields(map[string]interface{}{
		"archive": name,
		"entries": len(entries),
	}).Info("Archived audit entries")
	return nil
}

// Start schedules a daily job that archives the previous day's entries.
// The schedule is a standard cron expression.
func (a *Archiver) Start(schedule string) error {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		defer observability.RecoverPanic(a.logger, "audit archiver")

		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		if err := a.ArchiveDay(context.Background(), yesterday); err != nil {
			a.logger.WithError(err).Error("Daily audit archive failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit archive: %w", err)
	}

	c.Start()
	a.cron = c
	a.logger.Infof("Audit archiver started with schedule %q", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish
func (a *Archiver) Stop(ctx context.Context) error {
	if a.cron == nil {
		return nil
	}
	select {
	case <-a.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
