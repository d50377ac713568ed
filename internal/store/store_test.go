package store

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sticky-wall/internal/config"
	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/remote"
	"sticky-wall/internal/remote/remotetest"
	"sticky-wall/internal/repository"
	"sticky-wall/internal/schedule"
	"sticky-wall/internal/syncer"
)

var epoch = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

const epochMillis int64 = 1791968400000

type staticUser string

func (u staticUser) UserID(context.Context) string { return string(u) }

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type fixture struct {
	store  *Store
	repo   repository.Repository
	server *remotetest.Server
	pusher *syncer.Pusher
	clock  *schedule.FixedClock
}

func setupStore(t *testing.T, user string) *fixture {
	t.Helper()
	repo, err := config.CreateTestRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	rs := remotetest.NewServer(t)
	clock := schedule.NewFixedClock(epoch)
	engine := syncer.NewEngine(remote.NewClient(rs.URL), syncer.Options{CacheTTL: 30 * time.Second, Clock: clock})
	pusher := syncer.NewPusher(engine, syncer.PusherOptions{BaseDelay: time.Millisecond})
	t.Cleanup(func() { pusher.Close() })

	s := New(repo, Options{
		Identity: staticUser(user),
		Remote:   engine,
		Queue:    pusher,
		Clock:    clock,
		IDs:      sequentialIDs(),
	})
	return &fixture{store: s, repo: repo, server: rs, pusher: pusher, clock: clock}
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.pusher.Flush(ctx))
}

func (f *fixture) seed(t *testing.T, tasks string, ts int64) {
	t.Helper()
	require.NoError(t, f.repo.SetMany(context.Background(), map[string]string{
		repository.KeyTasks:        tasks,
		repository.KeyLastModified: strconv.FormatInt(ts, 10),
	}))
}

func (f *fixture) slot(t *testing.T, key string) string {
	t.Helper()
	v, err := f.repo.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func TestStore_Load_Repair(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		tasks string
	}{
		{"should create an empty collection when nothing is stored", ""},
		{"should replace a section that is not an array", `{"today":"x","tomorrow":[],"thisweek":[]}`},
		{"should replace a collection missing a date section", `{"today":[],"tomorrow":[]}`},
		{"should replace invalid JSON", `{"today":[`},
		{"should replace a finished section that is not an array", `{"today":[],"tomorrow":[],"thisweek":[],"finished":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupStore(t, "")
			if tt.tasks != "" {
				f.seed(t, tt.tasks, 500)
			}

			c, err := f.store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, domain.NewCollection(), c)

			assert.JSONEq(t, `{"today":[],"tomorrow":[],"thisweek":[],"finished":[]}`, f.slot(t, repository.KeyTasks))
			assert.Equal(t, "0", f.slot(t, repository.KeyLastModified))
		})
	}
}

func TestStore_Load_RepairFromRemote(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "u1")
	f.seed(t, `not json`, 500)
	f.server.Put("u1", `{"tasks":{"today":[],"tomorrow":[{"id":"r1","text":"Dentist","date":"2026-10-15"}],"thisweek":[]},"lastModified":1200}`)

	c, err := f.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, c[domain.SectionTomorrow], 1)
	assert.Equal(t, "Dentist", c[domain.SectionTomorrow][0].Text)
	assert.Empty(t, c[domain.SectionFinished])
	assert.Equal(t, "1200", f.slot(t, repository.KeyLastModified))
}

func TestStore_Load_Normalizes(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "")
	f.seed(t, `{"today":[{"text":"Legacy","date":"2026-10-14"}],"tomorrow":[],"thisweek":[],"extra":[]}`, 700)

	c, err := f.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, c[domain.SectionToday], 1)
	assert.Equal(t, "id-1", c[domain.SectionToday][0].ID)
	assert.NotNil(t, c[domain.SectionFinished])

	stored, err := domain.DecodeCollection([]byte(f.slot(t, repository.KeyTasks)))
	require.NoError(t, err)
	assert.Equal(t, "id-1", stored[domain.SectionToday][0].ID)
	assert.Equal(t, "700", f.slot(t, repository.KeyLastModified))
}

func TestStore_Load_DropsInvalidTasks(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "")
	f.seed(t, `{"today":[null,{},{"id":"a","text":"Keep","date":"2026-10-14"}],"tomorrow":[{"text":"","date":"2026-10-15"}],"thisweek":[],"finished":[]}`, 700)

	c, err := f.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, c[domain.SectionToday], 1)
	assert.Equal(t, "Keep", c[domain.SectionToday][0].Text)
	assert.Empty(t, c[domain.SectionTomorrow])

	stored, err := domain.DecodeCollection([]byte(f.slot(t, repository.KeyTasks)))
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Total())
	assert.Equal(t, "700", f.slot(t, repository.KeyLastModified))
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "")
	f.seed(t, `{"today":[{"id":"a","text":"Pay rent","date":"2026-10-14","category":"Home","createdAt":5}],"tomorrow":[{"id":"b","text":"Dentist","date":"2026-10-15"}],"thisweek":[],"finished":[{"id":"c","text":"Gym","date":"2026-10-13","completed":true,"updatedAt":9}]}`, 700)

	before, err := f.store.Load(ctx)
	require.NoError(t, err)
	encoded, err := domain.EncodeCollection(before)
	require.NoError(t, err)

	require.NoError(t, f.store.Save(ctx, before.Clone()))

	after, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.JSONEq(t, string(encoded), f.slot(t, repository.KeyTasks))
	assert.Equal(t, strconv.FormatInt(epochMillis, 10), f.slot(t, repository.KeyLastModified))
}

func TestStore_Load_Reconcile(t *testing.T) {
	ctx := context.Background()
	local := `{"today":[{"id":"l1","text":"Local","date":"2026-10-14"}],"tomorrow":[],"thisweek":[],"finished":[]}`
	remoteData := `{"tasks":{"today":[],"tomorrow":[{"id":"r1","text":"Remote","date":"2026-10-15"}],"thisweek":[],"finished":[]},"lastModified":%d}`

	tests := []struct {
		name     string
		localTS  int64
		remoteTS int64
		section  domain.Section
		text     string
		expectTS string
	}{
		{"should adopt a newer remote snapshot", 1000, 2000, domain.SectionTomorrow, "Remote", "2000"},
		{"should keep a newer local snapshot", 3000, 2000, domain.SectionToday, "Local", "3000"},
		{"should keep local on equal stamps", 2000, 2000, domain.SectionToday, "Local", "2000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupStore(t, "u1")
			f.seed(t, local, tt.localTS)
			f.server.Put("u1", fmt.Sprintf(remoteData, tt.remoteTS))

			c, err := f.store.Load(ctx)
			require.NoError(t, err)

			assert.Equal(t, 1, c.Total())
			require.Len(t, c[tt.section], 1)
			assert.Equal(t, tt.text, c[tt.section][0].Text)
			assert.Equal(t, tt.expectTS, f.slot(t, repository.KeyLastModified))
			assert.Contains(t, f.slot(t, repository.KeyTasks), tt.text)
			assert.Equal(t, 0, f.server.PatchCount())
		})
	}
}

func TestStore_Load_RemoteUnavailable(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "u1")
	f.seed(t, `{"today":[{"id":"l1","text":"Local","date":"2026-10-14"}],"tomorrow":[],"thisweek":[],"finished":[]}`, 1000)
	f.server.FailWith(503, 1)

	c, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, c[domain.SectionToday], 1)
}

func TestStore_Save(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "u1")
	f.server.Put("u1", `{"email":"ada@example.com","lastModified":1}`)

	c := domain.NewCollection()
	c.Append(domain.SectionToday, domain.Task{Text: "Pay rent", Date: "2026-10-14"})
	require.NoError(t, f.store.Save(ctx, c))

	assert.Equal(t, "id-1", c[domain.SectionToday][0].ID)
	assert.Equal(t, strconv.FormatInt(epochMillis, 10), f.slot(t, repository.KeyLastModified))

	f.flush(t)
	rec := f.server.Record("u1")
	require.NotNil(t, rec)
	assert.Equal(t, "ada@example.com", rec.StringField("email"))
	assert.JSONEq(t, strconv.FormatInt(epochMillis, 10), string(rec.Data["lastModified"]))
	snap, err := syncer.DecodeSnapshot(rec)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent", snap.Tasks[domain.SectionToday][0].Text)
}

func TestStore_Save_StampsIncrease(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "")

	require.NoError(t, f.store.Save(ctx, domain.NewCollection()))
	require.NoError(t, f.store.Save(ctx, domain.NewCollection()))
	assert.Equal(t, strconv.FormatInt(epochMillis+1, 10), f.slot(t, repository.KeyLastModified))

	f.clock.Advance(time.Minute)
	require.NoError(t, f.store.Save(ctx, domain.NewCollection()))
	assert.Equal(t, strconv.FormatInt(epochMillis+60000, 10), f.slot(t, repository.KeyLastModified))
}

func TestStore_Save_SignedOutDoesNotPush(t *testing.T) {
	f := setupStore(t, "")

	require.NoError(t, f.store.Save(context.Background(), domain.NewCollection()))
	f.flush(t)
	assert.Equal(t, 0, f.server.GetCount())
	assert.False(t, f.store.Status(context.Background()).Push.Pending)
}

func TestStore_Save_RemoteFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "u1")
	f.server.FailWith(500, 100)

	c := domain.NewCollection()
	c.Append(domain.SectionTomorrow, domain.Task{Text: "Dentist", Date: "2026-10-15"})
	require.NoError(t, f.store.Save(ctx, c))
	f.flush(t)

	assert.Contains(t, f.slot(t, repository.KeyTasks), "Dentist")
	st := f.store.Status(ctx)
	assert.NotEmpty(t, st.Push.LastError)
}

func TestStore_Sections(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "")

	tasks := []domain.Task{
		{ID: "a", Text: "One", Date: "2026-10-15"},
		{ID: "b", Text: "Two", Date: "2026-10-15"},
	}
	require.NoError(t, f.store.SetSection(ctx, domain.SectionTomorrow, tasks))

	got, err := f.store.GetSection(ctx, domain.SectionTomorrow)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)

	_, err = f.store.GetSection(ctx, domain.Section("later"))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
	assert.Error(t, f.store.SetSection(ctx, domain.Section("later"), nil))
}

func TestStore_DeleteAt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		index    int
		removed  bool
		remain   []string
		stampsTo int64
	}{
		{"should remove the task at the index", 0, true, []string{"b"}, epochMillis},
		{"should ignore a negative index", -1, false, []string{"a", "b"}, 10},
		{"should ignore an index past the end", 2, false, []string{"a", "b"}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupStore(t, "")
			f.seed(t, `{"today":[],"tomorrow":[{"id":"a","text":"One","date":"2026-10-15"},{"id":"b","text":"Two","date":"2026-10-15"}],"thisweek":[],"finished":[]}`, 10)

			removed, err := f.store.DeleteAt(ctx, domain.SectionTomorrow, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.removed, removed)

			got, err := f.store.GetSection(ctx, domain.SectionTomorrow)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, task := range got {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tt.remain, ids)
			assert.Equal(t, strconv.FormatInt(tt.stampsTo, 10), f.slot(t, repository.KeyLastModified))
		})
	}
}

func TestStore_Update_NoChangeDoesNotSave(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "")
	f.seed(t, `{"today":[],"tomorrow":[],"thisweek":[],"finished":[]}`, 10)

	_, err := f.store.Update(ctx, func(c domain.Collection) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "10", f.slot(t, repository.KeyLastModified))

	_, err = f.store.Update(ctx, func(c domain.Collection) (bool, error) {
		return true, errors.NewValidationError("nope", nil)
	})
	require.Error(t, err)
	assert.Equal(t, "10", f.slot(t, repository.KeyLastModified))
}

func TestStore_SyncNow(t *testing.T) {
	ctx := context.Background()
	local := `{"today":[{"id":"l1","text":"Local","date":"2026-10-14"}],"tomorrow":[],"thisweek":[],"finished":[]}`

	t.Run("should require a signed-in user", func(t *testing.T) {
		f := setupStore(t, "")
		_, err := f.store.SyncNow(ctx)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
	})

	t.Run("should adopt a newer remote snapshot", func(t *testing.T) {
		f := setupStore(t, "u1")
		f.seed(t, local, 1000)
		f.server.Put("u1", `{"tasks":{"today":[],"tomorrow":[],"thisweek":[],"finished":[{"id":"r1","text":"Done","date":"2026-10-14","completed":true}]},"lastModified":5000}`)

		report, err := f.store.SyncNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, syncer.RemoteNewer, report.Comparison)
		assert.True(t, report.Adopted)
		assert.Equal(t, "5000", f.slot(t, repository.KeyLastModified))
		assert.Contains(t, f.slot(t, repository.KeyTasks), "Done")
	})

	t.Run("should push a newer local snapshot", func(t *testing.T) {
		f := setupStore(t, "u1")
		f.seed(t, local, 9000)
		f.server.Put("u1", `{"lastModified":5000}`)

		report, err := f.store.SyncNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, syncer.LocalNewer, report.Comparison)
		assert.True(t, report.Queued)

		f.flush(t)
		assert.Equal(t, 1, f.server.PatchCount())
		assert.Contains(t, string(f.server.LastPatch()), "Local")
	})

	t.Run("should push to an account that has no tasks yet", func(t *testing.T) {
		f := setupStore(t, "u1")
		f.seed(t, local, 9000)
		f.server.Put("u1", `{"email":"ada@example.com","password":"secret"}`)

		report, err := f.store.SyncNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, syncer.LocalNewer, report.Comparison)
		assert.Equal(t, int64(0), report.RemoteModified)
		assert.True(t, report.Queued)

		f.flush(t)
		assert.Equal(t, 1, f.server.PatchCount())
		rec := f.server.Record("u1")
		assert.Equal(t, "secret", rec.StringField("password"))
		snap, err := syncer.DecodeSnapshot(rec)
		require.NoError(t, err)
		assert.Equal(t, int64(9000), snap.LastModified)
		assert.Equal(t, "Local", snap.Tasks[domain.SectionToday][0].Text)
	})

	t.Run("should report a remote failure", func(t *testing.T) {
		f := setupStore(t, "u1")
		f.seed(t, local, 9000)

		_, err := f.store.SyncNow(ctx)
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestStore_Status(t *testing.T) {
	ctx := context.Background()
	f := setupStore(t, "u1")
	f.seed(t, `{"today":[],"tomorrow":[],"thisweek":[],"finished":[]}`, 42)

	st := f.store.Status(ctx)
	assert.Equal(t, int64(42), st.LastModified)
	assert.True(t, st.SignedIn)
	assert.True(t, st.SyncEnabled)

	offline := New(f.repo, Options{})
	st = offline.Status(ctx)
	assert.False(t, st.SignedIn)
	assert.False(t, st.SyncEnabled)
}
