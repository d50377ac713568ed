package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/logging"
	"sticky-wall/internal/repository"
	"sticky-wall/internal/schedule"
	"sticky-wall/internal/validation"
)

// categoryServiceImpl implements the CategoryService interface
type categoryServiceImpl struct {
	repo              repository.Repository
	store             TaskStore
	categoryValidator *validation.CategoryValidator
	defaults          []string
	clock             schedule.Clock
	observer          Observer
	logger            *slog.Logger

	mu sync.Mutex
}

// CategoryServiceOptions configures NewCategoryService.
type CategoryServiceOptions struct {
	Validator *validation.Validator
	// Defaults seed the registry the first time it is read.
	Defaults []string
	Clock    schedule.Clock
	Observer Observer
	Logger   *slog.Logger
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(repo repository.Repository, s TaskStore, opts CategoryServiceOptions) CategoryService {
	if opts.Clock == nil {
		opts.Clock = schedule.SystemClock{}
	}
	return &categoryServiceImpl{
		repo:              repo,
		store:             s,
		categoryValidator: validation.NewCategoryValidator(opts.Validator),
		defaults:          opts.Defaults,
		clock:             opts.Clock,
		observer:          opts.Observer,
		logger:            logging.Component(logging.OrDiscard(opts.Logger), "categories"),
	}
}

// List returns the registered categories in insertion order
func (cs *categoryServiceImpl) List(ctx context.Context) ([]string, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	names, err := cs.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{}, names...), nil
}

// Add registers a new category
func (cs *categoryServiceImpl) Add(ctx context.Context, name string) ([]string, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	names, err := cs.load(ctx)
	if err != nil {
		return nil, err
	}
	cleaned, err := cs.categoryValidator.ValidateNew(name, names)
	if err != nil {
		return nil, err
	}
	names = append(names, cleaned)
	if err := cs.persist(ctx, names); err != nil {
		return nil, err
	}
	cs.logger.Debug("category added", "name", cleaned)
	return append([]string{}, names...), nil
}

// Delete unregisters a category and clears it from every task in one save
func (cs *categoryServiceImpl) Delete(ctx context.Context, name string) (Change, error) {
	cleaned := validation.Clean(name)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	names, err := cs.load(ctx)
	if err != nil {
		return Change{}, err
	}
	idx := indexOf(names, cleaned)
	if idx < 0 {
		return Change{}, errors.NewNotFoundError("category", cleaned)
	}

	var touched []domain.Section
	_, err = cs.store.Update(ctx, func(c domain.Collection) (bool, error) {
		ts := schedule.NowMillis(cs.clock)
		for _, s := range domain.AllSections {
			hit := false
			for i := range c[s] {
				if validation.Clean(c[s][i].Category) == cleaned {
					c[s][i].Category = ""
					c[s][i].UpdatedAt = ts
					hit = true
				}
			}
			if hit {
				touched = append(touched, s)
			}
		}
		return len(touched) > 0, nil
	})
	if err != nil {
		return Change{}, err
	}

	names = append(names[:idx:idx], names[idx+1:]...)
	if err := cs.persist(ctx, names); err != nil {
		return Change{}, err
	}
	cs.logger.Info("category deleted", "name", cleaned, "sections", len(touched))

	ch := Change{Views: domain.ViewsFor(touched...)}
	if cs.observer != nil && len(ch.Views) > 0 {
		cs.observer.Refresh(ch.Views)
	}
	return ch, nil
}

// CanAddMore reports whether the registry is below its limit
func (cs *categoryServiceImpl) CanAddMore(ctx context.Context) (bool, error) {
	names, err := cs.List(ctx)
	if err != nil {
		return false, err
	}
	return len(names) < cs.categoryValidator.Limit(), nil
}

// IsRegistered reports whether name is a registered category
func (cs *categoryServiceImpl) IsRegistered(ctx context.Context, name string) (bool, error) {
	names, err := cs.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(names, name) >= 0, nil
}

// SyncFromTasks registers categories that tasks use but the registry lacks.
// When the limit would be exceeded, registered categories no task uses are
// evicted first; names that still do not fit are logged and skipped.
func (cs *categoryServiceImpl) SyncFromTasks(ctx context.Context) ([]string, error) {
	c, err := cs.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	names, err := cs.load(ctx)
	if err != nil {
		return nil, err
	}

	var used []string
	for _, name := range c.Categories() {
		if cleaned := validation.Clean(name); indexOf(used, cleaned) < 0 {
			used = append(used, cleaned)
		}
	}

	var missing, unused []string
	for _, name := range used {
		if indexOf(names, name) < 0 {
			missing = append(missing, name)
		}
	}
	for _, name := range names {
		if indexOf(used, name) < 0 {
			unused = append(unused, name)
		}
	}
	if len(missing) == 0 {
		return append([]string{}, names...), nil
	}

	limit := cs.categoryValidator.Limit()
	if free := limit - len(names); len(missing) > free && len(unused) > 0 {
		evict := len(missing) - free
		if evict > len(unused) {
			evict = len(unused)
		}
		for _, name := range unused[:evict] {
			names = removeName(names, name)
			cs.logger.Info("evicted unused category", "name", name)
		}
	}

	for i, name := range missing {
		if len(names) >= limit {
			cs.logger.Warn("category limit reached, skipping task categories", "skipped", missing[i:], "limit", limit)
			break
		}
		names = append(names, name)
	}

	if err := cs.persist(ctx, names); err != nil {
		return nil, err
	}
	return append([]string{}, names...), nil
}

// load reads the registry, seeding it with the defaults on first use
func (cs *categoryServiceImpl) load(ctx context.Context) ([]string, error) {
	raw, err := cs.repo.Get(ctx, repository.KeyCategories)
	switch {
	case errors.IsNotFound(err):
		return cs.seed(ctx)
	case err != nil:
		return nil, err
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		cs.logger.Warn("stored categories are corrupt, reseeding", "error", err)
		return cs.seed(ctx)
	}
	return names, nil
}

func (cs *categoryServiceImpl) seed(ctx context.Context) ([]string, error) {
	names := []string{}
	for _, name := range cs.defaults {
		cleaned, err := cs.categoryValidator.ValidateNew(name, names)
		if err != nil {
			cs.logger.Warn("skipping default category", "name", name, "error", err)
			continue
		}
		names = append(names, cleaned)
	}
	if err := cs.persist(ctx, names); err != nil {
		return nil, err
	}
	return names, nil
}

func (cs *categoryServiceImpl) persist(ctx context.Context, names []string) error {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return errors.NewStorageError("encode categories", err)
	}
	return cs.repo.Set(ctx, repository.KeyCategories, string(raw))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func removeName(list []string, s string) []string {
	if i := indexOf(list, s); i >= 0 {
		return append(list[:i:i], list[i+1:]...)
	}
	return list
}
