package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/collectionvault/index-engine/internal/index"
	"github.com/collectionvault/index-engine/internal/jobmodel"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Periodic task types driven by asynq's own cron scheduler. These are
// distinct from the four BackgroundJob types in jobmodel: they are the
// triggers that create (or directly run) pipeline work on a schedule,
// not the pipeline work itself.
const (
	TypeRebuildStaleness = "index:rebuild_changed_only"
	TypeCleanupCacheTick = "cache:cleanup_tick"
)

// Priority queues for the asynq scheduler/server trio, independent of the
// mbus per-job-type queues declared by QueueSpecs.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// SchedulerConfig configures the asynq client/server/scheduler trio.
type SchedulerConfig struct {
	RedisAddr string
	Queues    map[string]int
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig(redisAddr string) SchedulerConfig {
	return SchedulerConfig{
		RedisAddr: redisAddr,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
	}
}

// Scheduler drives periodic triggers for staleness-based rebuilds and
// cache-cleanup ticks using asynq as the cron + durable-retry mechanism.
type Scheduler struct {
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	config    SchedulerConfig
}

// NewScheduler creates a new job scheduler.
func NewScheduler(config SchedulerConfig) *Scheduler {
	redisOpt := asynq.RedisClientOpt{Addr: config.RedisAddr}

	client := asynq.NewClient(redisOpt)
	server := asynq.NewServer(redisOpt, asynq.Config{
		Queues:      config.Queues,
		Concurrency: 10,
		RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
			return time.Duration(n) * time.Minute
		},
	})
	scheduler := asynq.NewScheduler(redisOpt, nil)

	return &Scheduler{client: client, server: server, scheduler: scheduler, config: config}
}

// RegisterHandlers wires the periodic trigger handlers: staleness rebuild
// runs directly against the index engine, and the cleanup-cache tick
// durably enqueues a Pending CleanupCache job for the supervisor to pick
// up and execute through Handlers.
func (s *Scheduler) RegisterHandlers(engine *index.Engine, jobs *Repository) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeRebuildStaleness, func(ctx context.Context, t *asynq.Task) error {
		stats, err := engine.RebuildIndex(ctx, index.ModeChangedOnly, index.RebuildOptions{})
		if err != nil {
			return err
		}
		log.Printf("staleness rebuild: %d total, %d rebuilt, %d skipped", stats.Total, stats.Rebuilt, stats.Skipped)
		return nil
	})

	mux.HandleFunc(TypeCleanupCacheTick, func(ctx context.Context, t *asynq.Task) error {
		job, err := jobmodel.NewBackgroundJob(jobmodel.TypeCleanupCache, nil, nil)
		if err != nil {
			return err
		}
		return jobs.Save(ctx, job)
	})

	return mux
}

// registerCron validates spec with the standard five-field cron grammar
// before handing it to asynq, so a malformed schedule fails at startup with
// a clear parse error instead of silently never firing.
func (s *Scheduler) registerCron(spec, label string, task *asynq.Task, queue string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec for %s (%q): %w", label, spec, err)
	}
	if _, err := s.scheduler.Register(spec, task, asynq.Queue(queue)); err != nil {
		return err
	}
	log.Printf("Registered scheduled task: %s (%s)", label, spec)
	return nil
}

// RegisterScheduledTasks registers the periodic cron entries.
func (s *Scheduler) RegisterScheduledTasks() error {
	if err := s.registerCron("*/5 * * * *", "staleness rebuild", asynq.NewTask(TypeRebuildStaleness, nil), QueueDefault); err != nil {
		return err
	}
	if err := s.registerCron("0 3 * * 0", "cache cleanup", asynq.NewTask(TypeCleanupCacheTick, nil), QueueLow); err != nil {
		return err
	}
	return nil
}

// Start starts the scheduler and worker server.
func (s *Scheduler) Start(mux *asynq.ServeMux) error {
	if err := s.scheduler.Start(); err != nil {
		return err
	}
	log.Println("Asynq scheduler started")

	if err := s.server.Start(mux); err != nil {
		return err
	}
	log.Println("Asynq worker server started")

	return nil
}

// Stop gracefully stops the scheduler and worker server.
func (s *Scheduler) Stop() {
	log.Println("Stopping asynq scheduler...")
	s.scheduler.Shutdown()

	log.Println("Stopping asynq worker server...")
	s.server.Shutdown()

	log.Println("Closing asynq client...")
	s.client.Close()
}

// Client returns the asynq client for enqueueing tasks.
func (s *Scheduler) Client() *asynq.Client {
	return s.client
}
