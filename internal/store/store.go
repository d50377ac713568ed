// Package store owns the persisted task collection. Every load is
// normalized and reconciled with the remote copy, and every save is written
// locally before it is handed to the background pusher.
package store

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/logging"
	"sticky-wall/internal/repository"
	"sticky-wall/internal/schedule"
	"sticky-wall/internal/syncer"
)

// IDGenerator returns a new task ID.
type IDGenerator func() string

// NewUUID generates random task IDs.
func NewUUID() string {
	return uuid.NewString()
}

// Identity resolves the signed-in user.
type Identity interface {
	UserID(ctx context.Context) string
}

// Remote reads the remote snapshot.
type Remote interface {
	Pull(ctx context.Context, userID string) *syncer.Snapshot
	Fetch(ctx context.Context, userID string) (*syncer.Snapshot, error)
}

// Queue accepts snapshots to push in the background.
type Queue interface {
	Enqueue(job syncer.Job)
	Status() syncer.Status
}

// Options configures a Store. Remote and Queue are nil when sync is off.
type Options struct {
	Identity Identity
	Remote   Remote
	Queue    Queue
	Clock    schedule.Clock
	IDs      IDGenerator
	Logger   *slog.Logger
}

// Status describes local and sync state.
type Status struct {
	LastModified int64         `json:"lastModified"`
	SignedIn     bool          `json:"signedIn"`
	SyncEnabled  bool          `json:"syncEnabled"`
	Push         syncer.Status `json:"push"`
}

// SyncReport is the outcome of a forced reconciliation.
type SyncReport struct {
	Comparison     syncer.Comparison
	LocalModified  int64
	RemoteModified int64
	Adopted        bool
	Queued         bool
}

// Store is the task store. It is safe for concurrent use.
type Store struct {
	repo     repository.Repository
	identity Identity
	remote   Remote
	queue    Queue
	clock    schedule.Clock
	ids      IDGenerator
	logger   *slog.Logger

	mu sync.Mutex
}

// New creates a store over repo.
func New(repo repository.Repository, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = schedule.SystemClock{}
	}
	if opts.IDs == nil {
		opts.IDs = NewUUID
	}
	return &Store{
		repo:     repo,
		identity: opts.Identity,
		remote:   opts.Remote,
		queue:    opts.Queue,
		clock:    opts.Clock,
		ids:      opts.IDs,
		logger:   logging.Component(logging.OrDiscard(opts.Logger), "store"),
	}
}

// Load returns the current collection. Missing or corrupt local state is
// replaced by the remote snapshot when one is available, otherwise by an
// empty collection, and the replacement is persisted. A remote snapshot
// newer than the local one replaces it.
func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save persists c locally and schedules a background push. Tasks without an
// ID are given one in place.
func (s *Store) Save(ctx context.Context, c domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, c)
}

// Update loads the collection, applies fn and saves the result once when fn
// reports a change. fn must not retain c.
func (s *Store) Update(ctx context.Context, fn func(c domain.Collection) (bool, error)) (domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetSection returns the tasks of one section.
func (s *Store) GetSection(ctx context.Context, section domain.Section) ([]domain.Task, error) {
	if !section.IsValid() {
		return nil, errors.NewInvalidInputError("section", section, "unknown section")
	}
	c, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c[section], nil
}

// SetSection replaces the tasks of one section.
func (s *Store) SetSection(ctx context.Context, section domain.Section, tasks []domain.Task) error {
	if !section.IsValid() {
		return errors.NewInvalidInputError("section", section, "unknown section")
	}
	_, err := s.Update(ctx, func(c domain.Collection) (bool, error) {
		c[section] = append([]domain.Task{}, tasks...)
		return true, nil
	})
	return err
}

// DeleteAt removes the task at index from section. An out-of-range index is
// logged and ignored. The boolean reports whether a task was removed.
func (s *Store) DeleteAt(ctx context.Context, section domain.Section, index int) (bool, error) {
	if !section.IsValid() {
		return false, errors.NewInvalidInputError("section", section, "unknown section")
	}
	removed := false
	_, err := s.Update(ctx, func(c domain.Collection) (bool, error) {
		if _, ok := c.Remove(section, index); !ok {
			s.logger.Warn("delete ignored, index out of range", "section", section, "index", index, "size", len(c[section]))
			return false, nil
		}
		removed = true
		return true, nil
	})
	return removed, err
}

// SyncNow reconciles with the remote record without using the pull cache.
// A newer remote snapshot is adopted, a newer local one is queued for push.
func (s *Store) SyncNow(ctx context.Context) (SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := s.userID(ctx)
	if userID == "" {
		return SyncReport{}, errors.NewAuthError("Sign in to sync your tasks")
	}
	if s.remote == nil {
		return SyncReport{}, errors.NewInvalidInputError("sync.enabled", false, "sync is disabled")
	}

	local, _, err := s.loadLocal(ctx)
	if err != nil {
		return SyncReport{}, err
	}
	localTS := s.lastModified(ctx)

	snap, err := s.remote.Fetch(ctx, userID)
	if err != nil {
		return SyncReport{}, err
	}

	report := SyncReport{
		Comparison:     syncer.Compare(localTS, snap.LastModified),
		LocalModified:  localTS,
		RemoteModified: snap.LastModified,
	}
	switch report.Comparison {
	case syncer.RemoteNewer:
		if _, err := s.adopt(ctx, snap); err != nil {
			return report, err
		}
		report.Adopted = true
	case syncer.LocalNewer:
		if s.queue != nil {
			s.queue.Enqueue(syncer.Job{UserID: userID, Tasks: local, Timestamp: localTS})
			report.Queued = true
		}
	}
	return report, nil
}

// Status reports the local stamp and the push queue state.
func (s *Store) Status(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		LastModified: s.lastModified(ctx),
		SignedIn:     s.userID(ctx) != "",
		SyncEnabled:  s.remote != nil,
	}
	if s.queue != nil {
		st.Push = s.queue.Status()
	}
	return st
}

func (s *Store) load(ctx context.Context) (domain.Collection, error) {
	c, repaired, err := s.loadLocal(ctx)
	if err != nil || repaired {
		return c, err
	}
	return s.reconcile(ctx, c)
}

// loadLocal reads the local collection, repairing it when it is missing or
// corrupt. The boolean reports a repair.
func (s *Store) loadLocal(ctx context.Context) (domain.Collection, bool, error) {
	raw, err := s.repo.Get(ctx, repository.KeyTasks)
	switch {
	case errors.IsNotFound(err):
		c, err := s.repair(ctx, false)
		return c, true, err
	case err != nil:
		return nil, false, err
	}

	c, err := domain.DecodeCollection([]byte(raw))
	if err != nil {
		s.logger.Warn("local tasks are corrupt, repairing", "error", err)
		c, err := s.repair(ctx, true)
		return c, true, err
	}

	if s.normalize(c) {
		encoded, err := domain.EncodeCollection(c)
		if err != nil {
			return nil, false, errors.NewStorageError("encode tasks", err)
		}
		if err := s.repo.Set(ctx, repository.KeyTasks, string(encoded)); err != nil {
			return nil, false, err
		}
	}
	return c, false, nil
}

// reconcile replaces c with the remote snapshot when that is newer.
func (s *Store) reconcile(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	userID := s.userID(ctx)
	if userID == "" || s.remote == nil {
		return c, nil
	}
	snap := s.remote.Pull(ctx, userID)
	if snap == nil {
		return c, nil
	}
	localTS := s.lastModified(ctx)
	if syncer.Compare(localTS, snap.LastModified) != syncer.RemoteNewer {
		return c, nil
	}
	s.logger.Info("remote tasks are newer, replacing local", "local", localTS, "remote", snap.LastModified)
	return s.adopt(ctx, snap)
}

// repair replaces missing or unreadable local tasks. The replacement keeps
// a zero stamp so a remote snapshot that could not be read now still wins
// on the next load.
func (s *Store) repair(ctx context.Context, corrupt bool) (domain.Collection, error) {
	if userID := s.userID(ctx); userID != "" && s.remote != nil {
		if snap := s.remote.Pull(ctx, userID); snap != nil {
			s.logger.Info("restored tasks from remote", "corrupt", corrupt, "remote", snap.LastModified)
			return s.adopt(ctx, snap)
		}
	}

	c := domain.NewCollection()
	if err := s.write(ctx, c, 0); err != nil {
		return nil, err
	}
	if corrupt {
		s.logger.Warn("replaced corrupt local tasks with an empty collection")
	}
	return c, nil
}

func (s *Store) adopt(ctx context.Context, snap *syncer.Snapshot) (domain.Collection, error) {
	c := snap.Tasks.Clone()
	s.normalize(c)
	if err := s.write(ctx, c, snap.LastModified); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) save(ctx context.Context, c domain.Collection) error {
	if c == nil {
		c = domain.NewCollection()
	}
	s.normalize(c)

	ts := schedule.NowMillis(s.clock)
	if last := s.lastModified(ctx); ts <= last {
		ts = last + 1
	}
	if err := s.write(ctx, c, ts); err != nil {
		return err
	}

	if userID := s.userID(ctx); userID != "" && s.queue != nil {
		s.queue.Enqueue(syncer.Job{UserID: userID, Tasks: c, Timestamp: ts})
	}
	return nil
}

func (s *Store) write(ctx context.Context, c domain.Collection, ts int64) error {
	encoded, err := domain.EncodeCollection(c)
	if err != nil {
		return errors.NewStorageError("encode tasks", err)
	}
	return s.repo.SetMany(ctx, map[string]string{
		repository.KeyTasks:        string(encoded),
		repository.KeyLastModified: strconv.FormatInt(ts, 10),
	})
}

// normalize fills missing sections, drops tasks without text or date and
// assigns IDs to tasks without one.
func (s *Store) normalize(c domain.Collection) bool {
	changed := c.Normalize()
	if n := c.DropInvalid(); n > 0 {
		s.logger.Warn("dropped tasks without text or date", "count", n)
		changed = true
	}
	for _, section := range domain.AllSections {
		for i := range c[section] {
			if c[section][i].ID == "" {
				c[section][i].ID = s.ids()
				changed = true
			}
		}
	}
	return changed
}

func (s *Store) lastModified(ctx context.Context) int64 {
	raw, err := s.repo.Get(ctx, repository.KeyLastModified)
	if err != nil {
		return 0
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("local stamp unreadable", "value", raw)
		return 0
	}
	return ts
}

func (s *Store) userID(ctx context.Context) string {
	if s.identity == nil {
		return ""
	}
	return s.identity.UserID(ctx)
}
