package job

import (
	"context"
	"sync"
	"testing"

	"github.com/deppfellow/apiplayground/internal/config"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []NotificationPayload
}

func (r *recordingNotifier) SendNotification(_ context.Context, to, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, NotificationPayload{Email: to, Message: message})
	return nil
}

func TestNewNotificationTask(t *testing.T) {
	task, err := NewNotificationTask("johndoe@example.com", "hello")
	require.NoError(t, err)
	assert.Equal(t, TaskNotification, task.Type())

	var p NotificationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, NotificationPayload{Email: "johndoe@example.com", Message: "hello"}, p)
}

func TestJobService_InProcess(t *testing.T) {
	logger := zerolog.Nop()
	j := NewJobService(&logger, config.Default(), false)
	notifier := &recordingNotifier{}
	j.notifier = notifier

	require.NoError(t, j.Start())
	require.NoError(t, j.EnqueueNotification(context.Background(), "johndoe@example.com", "hello"))
	require.NoError(t, j.EnqueueNotification(context.Background(), "alice@example.com", "bye"))
	j.Stop()

	assert.ElementsMatch(t, []NotificationPayload{
		{Email: "johndoe@example.com", Message: "hello"},
		{Email: "alice@example.com", Message: "bye"},
	}, notifier.sent)
}
