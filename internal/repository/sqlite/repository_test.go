package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "sticky-wall/internal/errors"
	"sticky-wall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSetAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, repository.KeyTasks, `{"today":[]}`))

	got, err := repo.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `{"today":[]}`, got)

	require.NoError(t, repo.Set(ctx, repository.KeyTasks, `{}`))
	got, err = repo.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `{}`, got)
}

func TestGet_Missing(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSetMany(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, map[string]string{
		repository.KeyTasks:        `{}`,
		repository.KeyLastModified: "1000",
	}))

	values, err := repo.GetMany(ctx, repository.KeyTasks, repository.KeyLastModified, repository.KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		repository.KeyTasks:        `{}`,
		repository.KeyLastModified: "1000",
	}, values)

	assert.NoError(t, repo.SetMany(ctx, nil))
}

func TestGetMany_NoKeys(t *testing.T) {
	repo := setupTestRepo(t)
	values, err := repo.GetMany(context.Background())
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, repo.Delete(ctx, "a", "b", "missing"))

	values, err := repo.GetMany(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, values)
}

func TestSlotTimestamps(t *testing.T) {
	stamp := time.Date(2026, 10, 14, 12, 0, 0, 123000000, time.UTC)
	repo, err := NewWithOptions(":memory:", Options{Now: func() time.Time { return stamp }})
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "v"))
	slot, err := repo.GetSlot(ctx, "k")
	require.NoError(t, err)
	assert.True(t, stamp.Equal(slot.UpdatedAt))

	require.NoError(t, repo.Set(ctx, "a", "v"))
	slots, err := repo.ListSlots(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "a", slots[0].Key)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.db")
	ctx := context.Background()

	repo, err := NewWithOptions(path, Options{BusyTimeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, repository.KeyUserID, "abc"))
	require.NoError(t, repo.Close())

	repo, err = New(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.Get(ctx, repository.KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestConcurrentWrites(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.SetMany(ctx, map[string]string{"k": "v", "n": time.Duration(i).String()}))
		}(i)
	}
	wg.Wait()

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestFormatTimeForDB(t *testing.T) {
	in := time.Date(2026, 10, 14, 8, 30, 0, 500, time.FixedZone("X", 3600))
	out, err := ParseTimeFromDB(FormatTimeForDB(in))
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, "2026-10-14T07:30:00.0000005Z", FormatTimeForDB(in))
}
