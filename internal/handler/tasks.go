package handler

import (
	"context"

	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const tasksKey = "background_tasks"

// Task is work an endpoint wants done once its response has been written.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Tasks collects the background work of one request. Tasks run in the order they were added,
// after the response is written; a failing task is logged and does not stop the others.
type Tasks struct {
	tasks []Task
}

func (t *Tasks) Add(name string, run func(ctx context.Context) error) {
	t.tasks = append(t.tasks, Task{Name: name, Run: run})
}

func (t *Tasks) Len() int { return len(t.tasks) }

func (t *Tasks) run(ctx context.Context, logger zerolog.Logger) {
	for _, task := range t.tasks {
		if err := task.Run(ctx); err != nil {
			logger.Error().Err(err).Str("task", task.Name).Msg("background task failed")
		}
	}
}

// BackgroundTasks returns the task list of the current request.
func BackgroundTasks(c echo.Context) *Tasks {
	if t, ok := c.Get(tasksKey).(*Tasks); ok {
		return t
	}
	t := &Tasks{}
	c.Set(tasksKey, t)
	return t
}

// Scoped wraps fn with a request-scoped resource. acquire runs before fn; release always runs
// after it, receives fn's error and returns the error the endpoint reports, which lets it
// translate failures that happened while the resource was held.
func Scoped[T any](
	acquire func(c echo.Context) (T, error),
	release func(c echo.Context, resource T, err error) error,
	fn func(c echo.Context, in *validation.Bound, resource T) (any, error),
) HandlerFunc {
	return func(c echo.Context, in *validation.Bound) (result any, err error) {
		resource, err := acquire(c)
		if err != nil {
			return nil, err
		}
		defer func() {
			err = release(c, resource, err)
			if err != nil {
				result = nil
			}
		}()

		return fn(c, in, resource)
	}
}
