package services

import (
	"context"
	"log/slog"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/logging"
	"sticky-wall/internal/schedule"
	"sticky-wall/internal/validation"
)

// ErrUnclassifiableDate is the message shown for dates outside the tracked week.
const ErrUnclassifiableDate = "Date must be today, tomorrow, or within this week."

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store         TaskStore
	categories    CategoryService
	classifier    *schedule.Classifier
	taskValidator *validation.TaskValidator
	observer      Observer
	logger        *slog.Logger
}

// TaskServiceOptions configures NewTaskService.
type TaskServiceOptions struct {
	Validator *validation.Validator
	Observer  Observer
	Logger    *slog.Logger
}

// NewTaskService creates a new TaskService instance. categories may be nil,
// in which case task categories are not checked against a registry.
func NewTaskService(s TaskStore, categories CategoryService, classifier *schedule.Classifier, opts TaskServiceOptions) TaskService {
	if classifier == nil {
		classifier = schedule.NewClassifier(nil)
	}
	return &taskServiceImpl{
		store:         s,
		categories:    categories,
		classifier:    classifier,
		taskValidator: validation.NewTaskValidator(opts.Validator),
		observer:      opts.Observer,
		logger:        logging.Component(logging.OrDiscard(opts.Logger), "tasks"),
	}
}

// Classify maps a date to its section relative to today
func (t *taskServiceImpl) Classify(date string) (domain.Section, bool) {
	return t.classifier.Classify(date)
}

// prepare validates input and returns it cleaned with its section
func (t *taskServiceImpl) prepare(ctx context.Context, in domain.TaskInput) (domain.TaskInput, domain.Section, error) {
	in, err := t.taskValidator.ValidateInput(in)
	if err != nil {
		return in, "", err
	}
	if in.Category != "" && t.categories != nil {
		ok, err := t.categories.IsRegistered(ctx, in.Category)
		if err != nil {
			return in, "", err
		}
		if !ok {
			return in, "", errors.NewInvalidInputError("category", in.Category, "Category \""+in.Category+"\" does not exist.")
		}
	}
	section, ok := t.classifier.Classify(in.Date)
	if !ok {
		return in, "", errors.NewValidationError(ErrUnclassifiableDate, nil).WithSubject(in.Date)
	}
	return in, section, nil
}

func (t *taskServiceImpl) now() int64 {
	return schedule.NowMillis(t.classifier.Clock())
}

// Add creates a task in the section its date falls in
func (t *taskServiceImpl) Add(ctx context.Context, in domain.TaskInput) (Change, error) {
	in, section, err := t.prepare(ctx, in)
	if err != nil {
		return Change{}, err
	}

	ts := t.now()
	task := domain.Task{
		Text:      in.Text,
		Date:      in.Date,
		Category:  in.Category,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	c, err := t.store.Update(ctx, func(c domain.Collection) (bool, error) {
		c.Append(section, task)
		return true, nil
	})
	if err != nil {
		return Change{}, err
	}

	added := c[section][len(c[section])-1]
	t.logger.Debug("task added", "section", section, "id", added.ID)
	return t.notify(Change{Views: domain.ViewsFor(section), Task: &added, Section: section}), nil
}

// Edit replaces the fields of the task at index in section. A date change
// that lands in another section moves the task; finished tasks stay finished.
func (t *taskServiceImpl) Edit(ctx context.Context, section domain.Section, index int, in domain.TaskInput) (Change, error) {
	if !section.IsValid() {
		return Change{}, errors.NewInvalidInputError("section", section, "unknown section")
	}
	in, target, err := t.prepare(ctx, in)
	if err != nil {
		return Change{}, err
	}
	if section == domain.SectionFinished {
		target = domain.SectionFinished
	}

	var edited domain.Task
	_, err = t.store.Update(ctx, func(c domain.Collection) (bool, error) {
		if index < 0 || index >= len(c[section]) {
			return false, errors.NewInvalidInputError("index", index, "Invalid task index for edit.")
		}
		task := c[section][index]
		task.Text = in.Text
		task.Date = in.Date
		task.Category = in.Category
		task.UpdatedAt = t.now()

		if target == section {
			c[section][index] = task
		} else {
			c.Remove(section, index)
			c.Append(target, task)
		}
		edited = task
		return true, nil
	})
	if err != nil {
		return Change{}, err
	}

	t.logger.Debug("task edited", "from", section, "to", target, "id", edited.ID)
	return t.notify(Change{Views: domain.ViewsFor(section, target), Task: &edited, Section: target}), nil
}

// Delete removes the task at index; an invalid index is logged and ignored
func (t *taskServiceImpl) Delete(ctx context.Context, section domain.Section, index int) (Change, error) {
	if !section.IsValid() {
		return Change{}, errors.NewInvalidInputError("section", section, "unknown section")
	}

	var removed domain.Task
	found := false
	_, err := t.store.Update(ctx, func(c domain.Collection) (bool, error) {
		removed, found = c.Remove(section, index)
		return found, nil
	})
	if err != nil {
		return Change{}, err
	}
	if !found {
		t.logger.Warn("delete ignored, index out of range", "section", section, "index", index)
		return Change{}, nil
	}
	return t.notify(Change{Views: domain.ViewsFor(section), Task: &removed, Section: section}), nil
}

// Complete moves the referenced task from its date section to finished
func (t *taskServiceImpl) Complete(ctx context.Context, ref domain.TaskRef) (Change, error) {
	return t.move(ctx, ref, true)
}

// Uncomplete moves the referenced task from finished back to the section of
// its date, or to today when the date no longer classifies
func (t *taskServiceImpl) Uncomplete(ctx context.Context, ref domain.TaskRef) (Change, error) {
	return t.move(ctx, ref, false)
}

// ToggleCompletion completes an active task or reopens a finished one
func (t *taskServiceImpl) ToggleCompletion(ctx context.Context, ref domain.TaskRef) (Change, error) {
	c, err := t.store.Load(ctx)
	if err != nil {
		return Change{}, err
	}
	section, _, ok := c.Locate(ref)
	if !ok {
		return t.resync(ref, "toggle"), nil
	}
	return t.move(ctx, ref, section != domain.SectionFinished)
}

func (t *taskServiceImpl) move(ctx context.Context, ref domain.TaskRef, complete bool) (Change, error) {
	var (
		moved    domain.Task
		from, to domain.Section
		found    bool
	)
	_, err := t.store.Update(ctx, func(c domain.Collection) (bool, error) {
		if complete {
			for _, s := range domain.DateSections {
				if i := c.IndexOf(s, ref); i >= 0 {
					from = s
					moved, found = c.Remove(s, i)
					break
				}
			}
		} else if i := c.IndexOf(domain.SectionFinished, ref); i >= 0 {
			from = domain.SectionFinished
			moved, found = c.Remove(from, i)
		}
		if !found {
			return false, nil
		}

		moved.Completed = complete
		moved.UpdatedAt = t.now()
		if complete {
			to = domain.SectionFinished
		} else if s, ok := t.classifier.Classify(moved.Date); ok {
			to = s
		} else {
			to = domain.SectionToday
		}
		c.Append(to, moved)
		return true, nil
	})
	if err != nil {
		return Change{}, err
	}
	if !found {
		op := "uncomplete"
		if complete {
			op = "complete"
		}
		return t.resync(ref, op), nil
	}

	t.logger.Debug("task moved", "from", from, "to", to, "id", moved.ID)
	return t.notify(Change{Views: domain.ViewsFor(from, to), Task: &moved, Section: to}), nil
}

// resync reports a lookup miss so the caller redraws from storage
func (t *taskServiceImpl) resync(ref domain.TaskRef, op string) Change {
	t.logger.Warn("task not found, redrawing", "op", op, "id", ref.ID, "text", ref.Text, "date", ref.Date, "category", ref.Category)
	return t.notify(Change{Views: domain.AllViews(), Resynced: true})
}

// ClearAll deletes every task
func (t *taskServiceImpl) ClearAll(ctx context.Context) (Change, error) {
	_, err := t.store.Update(ctx, func(c domain.Collection) (bool, error) {
		if c.Total() == 0 {
			return false, nil
		}
		for _, s := range domain.AllSections {
			c[s] = []domain.Task{}
		}
		return true, nil
	})
	if err != nil {
		return Change{}, err
	}
	return t.notify(Change{Views: domain.AllViews()}), nil
}

// All returns the whole collection
func (t *taskServiceImpl) All(ctx context.Context) (domain.Collection, error) {
	return t.store.Load(ctx)
}

// ListSection returns the tasks of section, optionally only those in category
func (t *taskServiceImpl) ListSection(ctx context.Context, section domain.Section, category string) ([]domain.Task, error) {
	if !section.IsValid() {
		return nil, errors.NewInvalidInputError("section", section, "unknown section")
	}
	c, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c.FilterByCategory(section, validation.Clean(category)), nil
}

// Stats summarizes the collection
func (t *taskServiceImpl) Stats(ctx context.Context) (domain.Stats, error) {
	c, err := t.store.Load(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(c), nil
}

func (t *taskServiceImpl) notify(ch Change) Change {
	if t.observer != nil && len(ch.Views) > 0 {
		t.observer.Refresh(ch.Views)
	}
	return ch
}
