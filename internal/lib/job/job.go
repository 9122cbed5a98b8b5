// Package job runs background work.
//
// With Redis available tasks go through Asynq: the client enqueues, the server runs the workers.
// Without Redis the same handlers run in-process on their own goroutine, so enqueueing never
// blocks the request that triggered it.
package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/apiplayground/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const inlineTaskTimeout = 30 * time.Second

type JobService struct {
	// Client is nil in in-process mode.
	Client *asynq.Client

	server   *asynq.Server
	mux      *asynq.ServeMux
	logger   *zerolog.Logger
	notifier Notifier

	inline sync.WaitGroup
}

// NewJobService uses Asynq on cfg.Redis.Address when useRedis is set.
func NewJobService(logger *zerolog.Logger, cfg *config.Config, useRedis bool) *JobService {
	j := &JobService{logger: logger}

	j.mux = asynq.NewServeMux()
	j.mux.HandleFunc(TaskNotification, j.handleNotificationTask)

	if !useRedis {
		return j
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}
	j.Client = asynq.NewClient(redisOpt)
	j.server = asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		Logger: asynqLogger{logger},
	})

	return j
}

func (j *JobService) Start() error {
	if j.server == nil {
		j.logger.Info().Msg("no Redis configured, running background jobs in-process")
		return nil
	}

	j.logger.Info().Msg("starting background job server")
	return j.server.Start(j.mux)
}

// Stop shuts the worker server down and waits for in-process tasks to finish.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	if j.server != nil {
		j.server.Shutdown()
	}
	if j.Client != nil {
		_ = j.Client.Close()
	}
	j.inline.Wait()
}

// EnqueueNotification schedules a notification email. It returns once the task is queued.
func (j *JobService) EnqueueNotification(ctx context.Context, email, message string) error {
	task, err := NewNotificationTask(email, message)
	if err != nil {
		return err
	}
	return j.enqueue(ctx, task)
}

func (j *JobService) enqueue(ctx context.Context, task *asynq.Task) error {
	if j.Client != nil {
		info, err := j.Client.EnqueueContext(ctx, task)
		if err != nil {
			return err
		}
		j.logger.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Msg("task enqueued")
		return nil
	}

	j.inline.Add(1)
	go func() {
		defer j.inline.Done()

		ctx, cancel := context.WithTimeout(context.Background(), inlineTaskTimeout)
		defer cancel()

		if err := j.mux.ProcessTask(ctx, task); err != nil {
			j.logger.Error().Err(err).Str("task", task.Type()).Msg("in-process task failed")
		}
	}()
	return nil
}

// asynqLogger routes Asynq's own logs through zerolog.
type asynqLogger struct {
	logger *zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
