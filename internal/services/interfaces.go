package services

import (
	"context"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/store"
)

// Change describes the outcome of a mutation for the renderer.
type Change struct {
	// Views lists every rendered list whose content changed.
	Views []domain.View `json:"views"`
	// Task is the task after the change, when one was touched.
	Task *domain.Task `json:"task,omitempty"`
	// Section is where Task is stored now.
	Section domain.Section `json:"section,omitempty"`
	// Resynced is set when the target could not be found and the caller
	// should redraw everything from storage.
	Resynced bool `json:"resynced,omitempty"`
}

// Observer is told which views to redraw after each change.
type Observer interface {
	Refresh(views []domain.View)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(views []domain.View)

// Refresh calls f.
func (f ObserverFunc) Refresh(views []domain.View) {
	f(views)
}

// TaskStore is the storage the services mutate through.
type TaskStore interface {
	Load(ctx context.Context) (domain.Collection, error)
	Update(ctx context.Context, fn func(c domain.Collection) (bool, error)) (domain.Collection, error)
	SyncNow(ctx context.Context) (store.SyncReport, error)
	Status(ctx context.Context) store.Status
}

// TaskService handles the task lifecycle
type TaskService interface {
	// Mutations; each saves at most once.
	Add(ctx context.Context, in domain.TaskInput) (Change, error)
	Edit(ctx context.Context, section domain.Section, index int, in domain.TaskInput) (Change, error)
	Delete(ctx context.Context, section domain.Section, index int) (Change, error)
	Complete(ctx context.Context, ref domain.TaskRef) (Change, error)
	Uncomplete(ctx context.Context, ref domain.TaskRef) (Change, error)
	ToggleCompletion(ctx context.Context, ref domain.TaskRef) (Change, error)
	ClearAll(ctx context.Context) (Change, error)

	// Queries
	All(ctx context.Context) (domain.Collection, error)
	ListSection(ctx context.Context, section domain.Section, category string) ([]domain.Task, error)
	Stats(ctx context.Context) (domain.Stats, error)
	Classify(date string) (domain.Section, bool)
}

// CategoryService handles the category registry
type CategoryService interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, name string) ([]string, error)
	Delete(ctx context.Context, name string) (Change, error)
	CanAddMore(ctx context.Context) (bool, error)
	IsRegistered(ctx context.Context, name string) (bool, error)
	SyncFromTasks(ctx context.Context) ([]string, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TaskService     TaskService
	CategoryService CategoryService
}
