// internal/store/memory_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "yaya-jobs/internal/common/errors"
	"yaya-jobs/internal/models"
)

func TestMemoryStoreDuplicatePhone(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	input := models.InsertWorker{Name: "David Odhiambo", Phone: "0711222333", Skill: "Mason", Location: "Pipeline", IsAvailable: true}
	_, err := mem.CreateWorker(ctx, input)
	require.NoError(t, err)

	_, err = mem.CreateWorker(ctx, input)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateWorker(err))
}

func TestMemoryStoreAbsentLookups(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	worker, err := mem.GetWorker(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, worker)

	job, err := mem.GetJob(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, job)

	_, err = mem.GetMatchDetails(ctx, 1)
	assert.Equal(t, apperrors.ErrCodeMatchNotFound, apperrors.CodeOf(err))
}

func TestMemoryStoreMarkMatchNotified(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	worker, err := mem.CreateWorker(ctx, models.InsertWorker{
		Name: "James Kimani", Phone: "0733444555", Skill: "Electrician", Location: "Gikambura", IsAvailable: true,
	})
	require.NoError(t, err)
	job, err := mem.CreateJob(ctx, models.InsertJob{
		ContactPhone: "0799888777", SkillRequired: "Electrician", Location: "Gikambura", DailyRate: 1500, ProjectDuration: "1 day",
	})
	require.NoError(t, err)
	match, err := mem.CreateMatch(ctx, job.ID, worker.ID)
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, mem.MarkMatchNotified(ctx, match.ID, at))

	details, err := mem.GetMatchDetails(ctx, match.ID)
	require.NoError(t, err)
	assert.True(t, details.Match.NotificationSent)
	require.NotNil(t, details.Match.NotificationTime)
	assert.Equal(t, at, *details.Match.NotificationTime)

	assert.Equal(t, apperrors.ErrCodeMatchNotFound, apperrors.CodeOf(mem.MarkMatchNotified(ctx, 404, at)))
}
