package usecase

import (
	"context"
	"time"

	"learnflix/pkg/logger"
	"learnflix/services/assistant/internal/repo/persistent"
)

const purgeTimeout = time.Minute

// RetentionJob deletes question counters older than the retention window.
// It implements cron.Job.
type RetentionJob struct {
	usageRepo persistent.UsageRepository
	days      int
	logger    *logger.Logger
	now       func() time.Time
}

func NewRetentionJob(usageRepo persistent.UsageRepository, days int, logger *logger.Logger) *RetentionJob {
	return &RetentionJob{
		usageRepo: usageRepo,
		days:      days,
		logger:    logger,
		now:       time.Now,
	}
}

func (j *RetentionJob) Run() {
	if j.days <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	n, err := j.usageRepo.PurgeBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("[ASSISTANT] usage purge failed: %v", err)
		return
	}
	j.logger.Info("[ASSISTANT] purged %d usage rows before %s", n, cutoff.Format("2006-01-02"))
}
