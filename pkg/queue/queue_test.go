package queue

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeTaskRoundTrip(t *testing.T) {
	task, err := NewPurgeTask("http://files.test/papers/originals/j1_a.png")
	require.NoError(t, err)
	assert.Equal(t, TaskTypeArtifactPurge, task.Type())

	p, err := ParsePurgeTask(task)
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/papers/originals/j1_a.png", p.URL)
	assert.False(t, p.RequestedAt.IsZero())
}

func TestParsePurgeTaskRejectsBadPayloads(t *testing.T) {
	_, err := ParsePurgeTask(asynq.NewTask(TaskTypeArtifactPurge, []byte("{")))
	require.Error(t, err)

	_, err = ParsePurgeTask(asynq.NewTask(TaskTypeArtifactPurge, []byte(`{"url":""}`)))
	require.ErrorContains(t, err, "missing url")
}

func TestProgressKey(t *testing.T) {
	assert.Equal(t, "job_progress:abc", progressKey("abc"))
}
