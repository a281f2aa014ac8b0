package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/tasks"
)

// Enqueuer hands work to the background task queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// ExportScheduler periodically exports the journal as markdown. Runs are
// enqueued on the task queue when one is available, otherwise they execute
// inline on the cron goroutine.
type ExportScheduler struct {
	cfg      config.Export
	queue    Enqueuer
	exporter tasks.JournalExporter
	reporter tasks.ExportReporter

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewExportScheduler wires a scheduler. queue and reporter may be nil.
func NewExportScheduler(cfg config.Export, queue Enqueuer, exporter tasks.JournalExporter, reporter tasks.ExportReporter) *ExportScheduler {
	return &ExportScheduler{
		cfg:      cfg,
		queue:    queue,
		exporter: exporter,
		reporter: reporter,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if exports are enabled.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Export scheduler: disabled")
		return nil
	}

	if s.cfg.Dir == "" {
		log.Printf("Export scheduler: export directory not configured, skipping")
		return nil
	}

	if err := ValidateCronSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.run(context.Background(), "schedule")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.cfg.Schedule, time.Now())
	log.Printf("Export scheduler: started with schedule '%s' (%s). Next run: %v",
		s.cfg.Schedule,
		GetCronDescription(s.cfg.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running export and stops the scheduler.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Export scheduler: stopped")
}

// RunNow triggers an export outside the schedule.
func (s *ExportScheduler) RunNow(ctx context.Context) error {
	return s.run(ctx, "manual")
}

func (s *ExportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next export will occur, or nil when idle.
func (s *ExportScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ExportScheduler) run(ctx context.Context, trigger string) error {
	s.wg.Add(1)
	defer s.wg.Done()

	task := tasks.ExportJournalTask{Trigger: trigger}

	if s.queue != nil {
		id, err := s.queue.Enqueue(ctx, task)
		if err != nil {
			log.Printf("Export scheduler: failed to enqueue export: %v", err)
			return err
		}
		log.Printf("Export scheduler: enqueued export task %s", id)
		return nil
	}

	if err := tasks.ExportJournalProcessor(s.exporter, s.reporter)(ctx, task); err != nil {
		log.Printf("Export scheduler: %v", err)
		return err
	}
	return nil
}
