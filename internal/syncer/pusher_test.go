package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sticky-wall/internal/remote/remotetest"
)

func setupPusher(t *testing.T, retries int) (*Pusher, *remotetest.Server) {
	t.Helper()
	engine, rs, _ := setupEngine(t)
	p := NewPusher(engine, PusherOptions{MaxRetries: retries, BaseDelay: time.Millisecond})
	t.Cleanup(func() { p.Close() })
	return p, rs
}

func flush(t *testing.T, p *Pusher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Flush(ctx))
}

func TestPusher_PushesInBackground(t *testing.T) {
	p, rs := setupPusher(t, 0)
	rs.Put("u1", `{"lastModified":1}`)

	p.Enqueue(Job{UserID: "u1", Tasks: sampleTasks(), Timestamp: 10})
	flush(t, p)

	assert.False(t, p.Pending())
	assert.Equal(t, 1, rs.PatchCount())
	st := p.Status()
	assert.Equal(t, "applied", st.LastResult)
	assert.Empty(t, st.LastError)
	assert.False(t, st.LastSuccess.IsZero())
}

func TestPusher_RetriesTransientFailures(t *testing.T) {
	p, rs := setupPusher(t, 3)
	rs.Put("u1", `{"lastModified":1}`)
	rs.FailWith(503, 2)

	p.Enqueue(Job{UserID: "u1", Tasks: sampleTasks(), Timestamp: 10})
	flush(t, p)

	assert.Equal(t, 1, rs.PatchCount())
	assert.Equal(t, "applied", p.Status().LastResult)
}

func TestPusher_GivesUpAfterMaxRetries(t *testing.T) {
	p, rs := setupPusher(t, 1)
	rs.Put("u1", `{"lastModified":1}`)
	rs.FailWith(500, 10)

	p.Enqueue(Job{UserID: "u1", Tasks: sampleTasks(), Timestamp: 10})
	flush(t, p)

	assert.Equal(t, 0, rs.PatchCount())
	st := p.Status()
	assert.Equal(t, "failed", st.LastResult)
	assert.NotEmpty(t, st.LastError)
	assert.True(t, st.LastSuccess.IsZero())
}

func TestPusher_DoesNotRetryMissingUser(t *testing.T) {
	p, rs := setupPusher(t, 5)

	p.Enqueue(Job{UserID: "ghost", Tasks: sampleTasks(), Timestamp: 10})
	flush(t, p)

	assert.Equal(t, 1, rs.GetCount())
	assert.Equal(t, "failed", p.Status().LastResult)
}

func TestPusher_CoalescesToLatest(t *testing.T) {
	p, rs := setupPusher(t, 0)
	rs.Put("u1", `{"lastModified":1}`)

	for ts := int64(10); ts <= 50; ts += 10 {
		p.Enqueue(Job{UserID: "u1", Tasks: sampleTasks(), Timestamp: ts})
	}
	flush(t, p)

	count := rs.PatchCount()
	assert.GreaterOrEqual(t, count, 1)
	assert.LessOrEqual(t, count, 5)
	assert.Contains(t, string(rs.LastPatch()), `"lastModified":50`)
}

func TestPusher_SkipsWhenRemoteNewer(t *testing.T) {
	p, rs := setupPusher(t, 0)
	rs.Put("u1", `{"lastModified":2000}`)

	p.Enqueue(Job{UserID: "u1", Tasks: sampleTasks(), Timestamp: 1000})
	flush(t, p)

	assert.Equal(t, 0, rs.PatchCount())
	assert.Equal(t, "skipped", p.Status().LastResult)
}

func TestPusher_Close(t *testing.T) {
	p, rs := setupPusher(t, 0)
	rs.Put("u1", `{"lastModified":1}`)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	p.Enqueue(Job{UserID: "u1", Tasks: sampleTasks(), Timestamp: 10})
	assert.False(t, p.Pending())
	assert.NoError(t, p.Flush(context.Background()))
}

func TestPusher_FlushHonoursContext(t *testing.T) {
	engine, rs, _ := setupEngine(t)
	p := NewPusher(engine, PusherOptions{MaxRetries: 100, BaseDelay: time.Hour})
	t.Cleanup(func() { p.Close() })
	rs.Put("u1", `{"lastModified":1}`)
	rs.FailWith(500, 1000)

	p.Enqueue(Job{UserID: "u1", Tasks: sampleTasks(), Timestamp: 10})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Flush(ctx), context.DeadlineExceeded)
	assert.True(t, p.Pending())
}
