package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sticky-wall/internal/config"
	"sticky-wall/internal/domain"
	"sticky-wall/internal/remote/remotetest"
	"sticky-wall/internal/schedule"
	"sticky-wall/internal/syncer"
)

func TestNew_PersistsAcrossRestarts(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendFile} {
		t.Run("should keep tasks with the "+backend+" backend", func(t *testing.T) {
			ctx := context.Background()
			cfg := config.NewConfig()
			cfg.Storage.Backend = backend
			cfg.Storage.Dir = t.TempDir()
			cfg.Sync.Enabled = false
			opts := Options{Clock: schedule.NewFixedClock(wednesday)}

			app, err := New(cfg, opts)
			require.NoError(t, err)
			_, err = NewBusinessAPI(app).AddTask(ctx, domain.TaskInput{Text: "Water plants", Date: "2026-10-16", Category: "Personal"})
			require.NoError(t, err)
			require.NoError(t, app.Close(ctx))

			reopened, err := New(cfg, opts)
			require.NoError(t, err)
			defer reopened.Close(ctx)

			all, err := NewBusinessAPI(reopened).GetAllTasks(ctx)
			require.NoError(t, err)
			require.Len(t, all[domain.SectionThisWeek], 1)
			assert.Equal(t, "Water plants", all[domain.SectionThisWeek][0].Text)
			assert.NotEmpty(t, all[domain.SectionThisWeek][0].ID)
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.Backend = "cloud"
	cfg.Storage.Dir = t.TempDir()

	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func TestClose_FlushesPendingPush(t *testing.T) {
	ctx := context.Background()
	rs := remotetest.NewServer(t)
	rs.Put("u1", `{"email":"ada@example.com","password":"secret"}`)

	cfg := config.NewConfig()
	cfg.Sync.BaseURL = rs.URL
	cfg.Sync.RetryBaseDelay = time.Millisecond
	repo, err := config.CreateTestRepository()
	require.NoError(t, err)
	app := NewWithRepository(cfg, repo, Options{Clock: schedule.NewFixedClock(wednesday)})

	b := NewBusinessAPI(app)
	_, err = b.Login(ctx, "u1", "secret")
	require.NoError(t, err)
	_, err = b.AddTask(ctx, domain.TaskInput{Text: "Pay rent", Date: "2026-10-14"})
	require.NoError(t, err)

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, app.Close(closeCtx))

	snap, err := syncer.DecodeSnapshot(rs.Record("u1"))
	require.NoError(t, err)
	require.Len(t, snap.Tasks[domain.SectionToday], 1)
	assert.Equal(t, wednesday.UnixMilli(), snap.LastModified)
}
