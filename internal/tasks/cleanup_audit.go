package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// QueueCleanupActivity is the queue (and task type) name for activity pruning.
const QueueCleanupActivity = "cleanup_activity"

// DefaultActivityRetentionDays applies when a cleanup task carries no retention.
const DefaultActivityRetentionDays = 30

// ActivityCleaner deletes old journal activity entries.
type ActivityCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupActivityTask prunes activity entries older than RetentionDays.
type CleanupActivityTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupActivityTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueCleanupActivity,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t CleanupActivityTask) retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultActivityRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func CleanupActivityProcessor(cleaner ActivityCleaner) backlite.QueueProcessor[CleanupActivityTask] {
	return func(ctx context.Context, task CleanupActivityTask) error {
		if cleaner == nil {
			return fmt.Errorf("activity cleaner not configured")
		}

		deleted, err := cleaner.DeleteOldEvents(task.retention())
		if err != nil {
			return fmt.Errorf("cleanup activity: %w", err)
		}

		log.Printf("[TASK] Removed %d activity entries older than %v", deleted, task.retention())
		return nil
	}
}

func NewCleanupActivityQueue(cleaner ActivityCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupActivityProcessor(cleaner))
}
