// Package syncer mirrors the local task collection to the remote record and
// decides, by timestamp, which side wins.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/logging"
	"sticky-wall/internal/remote"
	"sticky-wall/internal/schedule"
)

// Record field names inside the remote data object.
const (
	FieldTasks        = "tasks"
	FieldLastModified = "lastModified"
)

// DefaultCacheTTL bounds how long a pulled snapshot is reused.
const DefaultCacheTTL = 30 * time.Second

// Remote is the subset of the record service the engine needs.
type Remote interface {
	GetObject(ctx context.Context, id string) (*remote.Object, error)
	PatchObject(ctx context.Context, id string, data map[string]json.RawMessage) (*remote.Object, error)
}

// Snapshot is the task state stored in a remote record.
type Snapshot struct {
	Tasks        domain.Collection
	LastModified int64
}

// Comparison is the outcome of comparing two last-modified stamps.
type Comparison int

const (
	Equal Comparison = iota
	RemoteNewer
	LocalNewer
)

func (c Comparison) String() string {
	switch c {
	case RemoteNewer:
		return "remote_newer"
	case LocalNewer:
		return "local_newer"
	default:
		return "equal"
	}
}

// Compare orders a local stamp against a remote one.
func Compare(local, remote int64) Comparison {
	switch {
	case remote > local:
		return RemoteNewer
	case local > remote:
		return LocalNewer
	}
	return Equal
}

// PushResult reports what a push did.
type PushResult int

const (
	PushApplied PushResult = iota
	PushSkipped
)

func (r PushResult) String() string {
	if r == PushSkipped {
		return "skipped"
	}
	return "applied"
}

// Options configures an Engine.
type Options struct {
	CacheTTL time.Duration
	Clock    schedule.Clock
	Logger   *slog.Logger
}

type cacheEntry struct {
	snap    *Snapshot
	fetched time.Time
}

// Engine pulls and pushes task snapshots. It is safe for concurrent use.
type Engine struct {
	remote Remote
	ttl    time.Duration
	clock  schedule.Clock
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewEngine creates an engine over r.
func NewEngine(r Remote, opts Options) *Engine {
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Clock == nil {
		opts.Clock = schedule.SystemClock{}
	}
	return &Engine{
		remote: r,
		ttl:    opts.CacheTTL,
		clock:  opts.Clock,
		logger: logging.Component(logging.OrDiscard(opts.Logger), "sync"),
		cache:  make(map[string]cacheEntry),
	}
}

// Pull returns the remote snapshot for userID, serving it from the cache while
// it is fresh. Any failure yields nil.
func (e *Engine) Pull(ctx context.Context, userID string) *Snapshot {
	if userID == "" {
		return nil
	}
	if snap, ok := e.cached(userID); ok {
		e.logger.Debug("pull served from cache", "user", userID)
		return snap
	}
	snap, err := e.Fetch(ctx, userID)
	if err != nil {
		e.logger.Warn("pull failed", "user", userID, "error", err)
		return nil
	}
	return snap
}

// Fetch reads the remote snapshot, bypassing and then refreshing the cache.
func (e *Engine) Fetch(ctx context.Context, userID string) (*Snapshot, error) {
	obj, err := e.remote.GetObject(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap, err := DecodeSnapshot(obj)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[userID] = cacheEntry{snap: snap, fetched: e.clock.Now()}
	e.mu.Unlock()
	return cloneSnapshot(snap), nil
}

func (e *Engine) cached(userID string) (*Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.cache[userID]
	if !ok {
		return nil, false
	}
	if e.clock.Now().Sub(entry.fetched) >= e.ttl {
		delete(e.cache, userID)
		return nil, false
	}
	return cloneSnapshot(entry.snap), true
}

// Invalidate drops the cached snapshot of userID.
func (e *Engine) Invalidate(userID string) {
	e.mu.Lock()
	delete(e.cache, userID)
	e.mu.Unlock()
}

// InvalidateAll empties the cache.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	e.cache = make(map[string]cacheEntry)
	e.mu.Unlock()
}

// Push writes tasks stamped ts to the remote record of userID. The record is
// re-read first; when its stamp is strictly newer than ts the write is
// skipped. Otherwise tasks and ts are merged into the record's data and every
// other field is preserved.
func (e *Engine) Push(ctx context.Context, userID string, tasks domain.Collection, ts int64) (PushResult, error) {
	if userID == "" {
		return PushSkipped, errors.NewAuthError("no user is signed in")
	}

	obj, err := e.remote.GetObject(ctx, userID)
	if err != nil {
		return PushSkipped, err
	}

	var stamp float64
	if _, err := obj.Field(FieldLastModified, &stamp); err != nil {
		e.logger.Warn("remote stamp unreadable, overwriting", "user", userID, "error", err)
		stamp = 0
	}
	remoteTS := int64(stamp)
	if Compare(ts, remoteTS) == RemoteNewer {
		e.logger.Info("push skipped, remote is newer", "user", userID, "local", ts, "remote", remoteTS)
		return PushSkipped, nil
	}

	merged := &remote.Object{Data: obj.CloneData()}
	payload := tasks.Clone()
	payload.Normalize()
	if err := merged.SetField(FieldTasks, payload); err != nil {
		return PushSkipped, errors.NewRemoteError("encode tasks", 0, err)
	}
	if err := merged.SetField(FieldLastModified, ts); err != nil {
		return PushSkipped, errors.NewRemoteError("encode timestamp", 0, err)
	}

	if _, err := e.remote.PatchObject(ctx, userID, merged.Data); err != nil {
		return PushSkipped, err
	}
	e.Invalidate(userID)
	e.logger.Debug("push applied", "user", userID, "timestamp", ts)
	return PushApplied, nil
}

// DecodeSnapshot extracts the task snapshot from a record. A record that never
// stored tasks, such as a fresh account, yields an empty snapshot stamped 0.
// Malformed tasks have no usable snapshot.
func DecodeSnapshot(obj *remote.Object) (*Snapshot, error) {
	if obj == nil {
		return nil, errors.NewRemoteError("decode snapshot", 0, fmt.Errorf("record has no data"))
	}
	raw, ok := obj.Data[FieldTasks]
	if !ok || len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return &Snapshot{Tasks: domain.NewCollection()}, nil
	}
	tasks, err := domain.DecodeCollection(raw)
	if err != nil {
		return nil, errors.NewRemoteError("decode snapshot", 0, err)
	}

	var ts float64
	if _, err := obj.Field(FieldLastModified, &ts); err != nil {
		return nil, errors.NewRemoteError("decode snapshot", 0, err)
	}
	return &Snapshot{Tasks: tasks, LastModified: int64(ts)}, nil
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{Tasks: s.Tasks.Clone(), LastModified: s.LastModified}
}
