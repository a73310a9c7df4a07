package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platinummonkey/stockroom/pkg/audit"
	"github.com/platinummonkey/stockroom/pkg/config"
	"github.com/platinummonkey/stockroom/pkg/observability"
	"github.com/platinummonkey/stockroom/pkg/storage"
)

var (
	runOnce     = flag.Bool("run-once", false, "Archive a single day and exit (for testing or backfilling)")
	archiveDate = flag.String("date", "", "Day to archive (YYYY-MM-DD). Defaults to yesterday. Only used with --run-once")
	schedule    = flag.String("schedule", "", "Cron schedule override; defaults to STOCKROOM_ARCHIVE_SCHEDULE")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Archiver exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx := context.Background()

	db, dialect, err := storage.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()

	auditLog, err := audit.NewLog(db, dialect)
	if err != nil {
		return err
	}

	target, err := buildTarget(ctx, cfg.Archive)
	if err != nil {
		return err
	}

	archiver := audit.NewArchiver(auditLog, target, logger)

	if *runOnce {
		day := time.Now().UTC().AddDate(0, 0, -1)
		if *archiveDate != "" {
			day, err = time.Parse("2006-01-02", *archiveDate)
			if err != nil {
				return err
			}
		}
		logger.Infof("Archiving audit entries for %s", day.Format("2006-01-02"))
		return archiver.ArchiveDay(ctx, day)
	}

	cronSchedule := cfg.Archive.Schedule
	if *schedule != "" {
		cronSchedule = *schedule
	}
	if err := archiver.Start(cronSchedule); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down archiver")
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return archiver.Stop(stopCtx)
}

func buildTarget(ctx context.Context, cfg config.ArchiveConfig) (audit.ArchiveTarget, error) {
	if cfg.Target == "s3" {
		return audit.NewS3Target(ctx, audit.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3PathStyle,
		})
	}
	return audit.NewDirTarget(cfg.Dir)
}
