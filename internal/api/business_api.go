package api

import (
	"context"
	"time"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/services"
	"sticky-wall/internal/store"
	"sticky-wall/internal/validation"
)

// flushTimeout bounds the wait for queued pushes on logout.
const flushTimeout = 10 * time.Second

// SyncStatus is the sync indicator shown next to the task lists.
type SyncStatus struct {
	store.Status
	UserID string `json:"userId,omitempty"`
}

// BusinessAPI is the set of operations a front end performs
type BusinessAPI interface {
	// ========== Tasks ==========

	// GetAllTasks returns the reconciled task collection
	GetAllTasks(ctx context.Context) (domain.Collection, error)

	// SaveAllTasks replaces the whole collection
	SaveAllTasks(ctx context.Context, c domain.Collection) error

	// GetSectionTasks returns one section, optionally filtered by category
	GetSectionTasks(ctx context.Context, section domain.Section, category string) ([]domain.Task, error)

	AddTask(ctx context.Context, in domain.TaskInput) (services.Change, error)
	EditTask(ctx context.Context, section domain.Section, index int, in domain.TaskInput) (services.Change, error)
	DeleteTask(ctx context.Context, section domain.Section, index int) (services.Change, error)
	ToggleCompletion(ctx context.Context, ref domain.TaskRef) (services.Change, error)
	ClearAllTasks(ctx context.Context) (services.Change, error)

	// ClassifyDate maps a YYYY-MM-DD date to its section
	ClassifyDate(date string) (domain.Section, bool)

	// Stats summarizes the collection
	Stats(ctx context.Context) (domain.Stats, error)

	// ========== Categories ==========

	ListCategories(ctx context.Context) ([]string, error)
	AddCategory(ctx context.Context, name string) ([]string, error)
	DeleteCategory(ctx context.Context, name string) (services.Change, error)
	CanAddCategory(ctx context.Context) (bool, error)

	// ========== Sync ==========

	// SyncNow reconciles with the remote record, bypassing the cache
	SyncNow(ctx context.Context) (store.SyncReport, error)

	// SyncStatus reports the local stamp and the push queue
	SyncStatus(ctx context.Context) SyncStatus

	// ========== Account ==========

	Login(ctx context.Context, userID, password string) (domain.User, error)
	Register(ctx context.Context, r validation.Registration) (domain.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirm string) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (domain.User, bool, error)
	ValidateSession(ctx context.Context) (bool, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	app *App
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(app *App) BusinessAPI {
	return &businessAPIImpl{app: app}
}

// ========== Tasks ==========

func (b *businessAPIImpl) GetAllTasks(ctx context.Context) (domain.Collection, error) {
	return b.app.Tasks.All(ctx)
}

func (b *businessAPIImpl) SaveAllTasks(ctx context.Context, c domain.Collection) error {
	return b.app.Store.Save(ctx, c.Clone())
}

func (b *businessAPIImpl) GetSectionTasks(ctx context.Context, section domain.Section, category string) ([]domain.Task, error) {
	return b.app.Tasks.ListSection(ctx, section, category)
}

func (b *businessAPIImpl) AddTask(ctx context.Context, in domain.TaskInput) (services.Change, error) {
	return b.app.Tasks.Add(ctx, in)
}

func (b *businessAPIImpl) EditTask(ctx context.Context, section domain.Section, index int, in domain.TaskInput) (services.Change, error) {
	return b.app.Tasks.Edit(ctx, section, index, in)
}

func (b *businessAPIImpl) DeleteTask(ctx context.Context, section domain.Section, index int) (services.Change, error) {
	return b.app.Tasks.Delete(ctx, section, index)
}

func (b *businessAPIImpl) ToggleCompletion(ctx context.Context, ref domain.TaskRef) (services.Change, error) {
	return b.app.Tasks.ToggleCompletion(ctx, ref)
}

func (b *businessAPIImpl) ClearAllTasks(ctx context.Context) (services.Change, error) {
	return b.app.Tasks.ClearAll(ctx)
}

func (b *businessAPIImpl) ClassifyDate(date string) (domain.Section, bool) {
	return b.app.Tasks.Classify(date)
}

func (b *businessAPIImpl) Stats(ctx context.Context) (domain.Stats, error) {
	return b.app.Tasks.Stats(ctx)
}

// ========== Categories ==========

func (b *businessAPIImpl) ListCategories(ctx context.Context) ([]string, error) {
	return b.app.Categories.List(ctx)
}

func (b *businessAPIImpl) AddCategory(ctx context.Context, name string) ([]string, error) {
	return b.app.Categories.Add(ctx, name)
}

func (b *businessAPIImpl) DeleteCategory(ctx context.Context, name string) (services.Change, error) {
	return b.app.Categories.Delete(ctx, name)
}

func (b *businessAPIImpl) CanAddCategory(ctx context.Context) (bool, error) {
	return b.app.Categories.CanAddMore(ctx)
}

// ========== Sync ==========

func (b *businessAPIImpl) SyncNow(ctx context.Context) (store.SyncReport, error) {
	report, err := b.app.Store.SyncNow(ctx)
	if err != nil {
		return report, err
	}
	if report.Adopted {
		b.syncCategories(ctx)
	}
	return report, nil
}

func (b *businessAPIImpl) SyncStatus(ctx context.Context) SyncStatus {
	return SyncStatus{
		Status: b.app.Store.Status(ctx),
		UserID: b.app.Session.UserID(ctx),
	}
}

// ========== Account ==========

// Login signs in and brings the categories in line with the user's tasks
func (b *businessAPIImpl) Login(ctx context.Context, userID, password string) (domain.User, error) {
	u, err := b.app.Session.Login(ctx, userID, password)
	if err != nil {
		return domain.User{}, err
	}
	b.syncCategories(ctx)
	return u, nil
}

func (b *businessAPIImpl) Register(ctx context.Context, r validation.Registration) (domain.User, error) {
	return b.app.Session.Register(ctx, r)
}

func (b *businessAPIImpl) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirm string) error {
	return b.app.Session.ChangePassword(ctx, userID, oldPassword, newPassword, confirm)
}

// Logout waits briefly for queued pushes so the last edits reach the remote
// record, then clears the session.
func (b *businessAPIImpl) Logout(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := b.app.Flush(flushCtx); err != nil {
		b.app.logger.Warn("logging out with pushes pending", "error", err)
	}
	return b.app.Session.Logout(ctx)
}

func (b *businessAPIImpl) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	return b.app.Session.Current(ctx)
}

func (b *businessAPIImpl) ValidateSession(ctx context.Context) (bool, error) {
	return b.app.Session.Validate(ctx)
}

// syncCategories registers categories found on tasks; failures are logged
func (b *businessAPIImpl) syncCategories(ctx context.Context) {
	if _, err := b.app.Categories.SyncFromTasks(ctx); err != nil {
		if errors.ShouldLogError(err) {
			b.app.logger.Warn("could not sync categories from tasks", "error", err)
		}
	}
}
