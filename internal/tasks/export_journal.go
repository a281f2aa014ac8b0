package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookworm/internal/exporters"
)

// JournalExporter writes the journal to its export directory.
type JournalExporter interface {
	ExportAll(ctx context.Context) (exporters.ExportResult, error)
}

// ExportReporter records the outcome of an export run.
type ExportReporter interface {
	LogExport(description string, err error)
}

// QueueExportJournal is the queue (and task type) name for journal exports.
const QueueExportJournal = "export_journal"

// ExportJournalTask exports every book as markdown.
type ExportJournalTask struct {
	// Trigger says what asked for the export ("schedule", "manual").
	Trigger string `json:"trigger"`
}

func (t ExportJournalTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueExportJournal,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportJournalProcessor runs the export and reports it. reporter may be nil.
func ExportJournalProcessor(exporter JournalExporter, reporter ExportReporter) backlite.QueueProcessor[ExportJournalTask] {
	return func(ctx context.Context, task ExportJournalTask) error {
		if exporter == nil {
			return fmt.Errorf("journal exporter not configured")
		}

		start := time.Now()
		result, err := exporter.ExportAll(ctx)
		if err != nil {
			if reporter != nil {
				reporter.LogExport("Journal export failed", err)
			}
			return fmt.Errorf("export journal: %w", err)
		}

		msg := fmt.Sprintf("Exported %d books (%s) in %v",
			result.BooksProcessed, triggerOrDefault(task.Trigger), time.Since(start).Round(time.Millisecond))
		log.Printf("[TASK] %s", msg)
		if reporter != nil {
			reporter.LogExport(msg, nil)
		}
		return nil
	}
}

func NewExportJournalQueue(exporter JournalExporter, reporter ExportReporter) backlite.Queue {
	return backlite.NewQueue(ExportJournalProcessor(exporter, reporter))
}

func triggerOrDefault(trigger string) string {
	if trigger == "" {
		return "manual"
	}
	return trigger
}
