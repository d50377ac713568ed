package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"sticky-wall/internal/api"
	"sticky-wall/internal/config"
	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/schedule"
	"sticky-wall/internal/services"
	"sticky-wall/internal/store"
	"sticky-wall/internal/validation"
)

// mockToday is Wednesday 2026-10-14
var mockToday = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

// mockBusinessAPI implements the BusinessAPI interface in memory
type mockBusinessAPI struct {
	tasks      domain.Collection
	categories []string
	accounts   map[string]domain.User
	user       *domain.User
	report     store.SyncReport
	failures   map[string]error
	calls      []string
	nextID     int
}

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI() *mockBusinessAPI {
	return &mockBusinessAPI{
		tasks:      domain.NewCollection(),
		categories: []string{"Personal", "Work", "Family"},
		accounts:   make(map[string]domain.User),
		failures:   make(map[string]error),
	}
}

var _ api.BusinessAPI = (*mockBusinessAPI)(nil)

func (m *mockBusinessAPI) failOn(op string, err error) {
	m.failures[op] = err
}

func (m *mockBusinessAPI) call(op string) error {
	m.calls = append(m.calls, op)
	return m.failures[op]
}

func (m *mockBusinessAPI) called(op string) bool {
	for _, c := range m.calls {
		if c == op {
			return true
		}
	}
	return false
}

func (m *mockBusinessAPI) seed(section domain.Section, tasks ...domain.Task) {
	for _, t := range tasks {
		if section == domain.SectionFinished {
			t.Completed = true
		}
		m.tasks.Append(section, t)
	}
}

func (m *mockBusinessAPI) classify(date string) (domain.Section, error) {
	section, ok := schedule.ClassifyAt(date, mockToday)
	if !ok {
		return "", errors.NewValidationError(services.ErrUnclassifiableDate, nil)
	}
	return section, nil
}

// ========== Tasks ==========

func (m *mockBusinessAPI) GetAllTasks(ctx context.Context) (domain.Collection, error) {
	if err := m.call("GetAllTasks"); err != nil {
		return nil, err
	}
	return m.tasks.Clone(), nil
}

func (m *mockBusinessAPI) SaveAllTasks(ctx context.Context, c domain.Collection) error {
	if err := m.call("SaveAllTasks"); err != nil {
		return err
	}
	m.tasks = c.Clone()
	return nil
}

func (m *mockBusinessAPI) GetSectionTasks(ctx context.Context, section domain.Section, category string) ([]domain.Task, error) {
	if err := m.call("GetSectionTasks"); err != nil {
		return nil, err
	}
	return m.tasks.FilterByCategory(section, category), nil
}

func (m *mockBusinessAPI) AddTask(ctx context.Context, in domain.TaskInput) (services.Change, error) {
	if err := m.call("AddTask"); err != nil {
		return services.Change{}, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return services.Change{}, errors.NewValidationError("Task text is required", nil)
	}
	section, err := m.classify(in.Date)
	if err != nil {
		return services.Change{}, err
	}
	m.nextID++
	t := domain.Task{ID: fmt.Sprintf("t%d", m.nextID), Text: in.Text, Date: in.Date, Category: in.Category}
	m.tasks.Append(section, t)
	return services.Change{Views: domain.ViewsFor(section), Task: &t, Section: section}, nil
}

func (m *mockBusinessAPI) EditTask(ctx context.Context, section domain.Section, index int, in domain.TaskInput) (services.Change, error) {
	if err := m.call("EditTask"); err != nil {
		return services.Change{}, err
	}
	if index < 0 || index >= len(m.tasks[section]) {
		return services.Change{}, errors.NewInvalidInputError("index", index, "Invalid task index for edit.")
	}
	target := section
	if section != domain.SectionFinished {
		s, err := m.classify(in.Date)
		if err != nil {
			return services.Change{}, err
		}
		target = s
	}
	t, _ := m.tasks.Remove(section, index)
	t.Text, t.Date, t.Category = in.Text, in.Date, in.Category
	m.tasks.Append(target, t)
	return services.Change{Views: domain.ViewsFor(section, target), Task: &t, Section: target}, nil
}

func (m *mockBusinessAPI) DeleteTask(ctx context.Context, section domain.Section, index int) (services.Change, error) {
	if err := m.call("DeleteTask"); err != nil {
		return services.Change{}, err
	}
	t, ok := m.tasks.Remove(section, index)
	if !ok {
		return services.Change{}, errors.NewInvalidInputError("index", index, "Invalid task index for delete.")
	}
	return services.Change{Views: domain.ViewsFor(section), Task: &t, Section: section}, nil
}

func (m *mockBusinessAPI) ToggleCompletion(ctx context.Context, ref domain.TaskRef) (services.Change, error) {
	if err := m.call("ToggleCompletion"); err != nil {
		return services.Change{}, err
	}
	from, index, ok := m.tasks.Locate(ref)
	if !ok {
		return services.Change{Views: domain.AllViews(), Resynced: true}, nil
	}
	t, _ := m.tasks.Remove(from, index)
	to := domain.SectionFinished
	t.Completed = true
	if from == domain.SectionFinished {
		t.Completed = false
		to = domain.SectionToday
		if s, err := m.classify(t.Date); err == nil {
			to = s
		}
	}
	m.tasks.Append(to, t)
	return services.Change{Views: domain.ViewsFor(from, to), Task: &t, Section: to}, nil
}

func (m *mockBusinessAPI) ClearAllTasks(ctx context.Context) (services.Change, error) {
	if err := m.call("ClearAllTasks"); err != nil {
		return services.Change{}, err
	}
	m.tasks = domain.NewCollection()
	return services.Change{Views: domain.AllViews()}, nil
}

func (m *mockBusinessAPI) ClassifyDate(date string) (domain.Section, bool) {
	m.calls = append(m.calls, "ClassifyDate")
	return schedule.ClassifyAt(date, mockToday)
}

func (m *mockBusinessAPI) Stats(ctx context.Context) (domain.Stats, error) {
	if err := m.call("Stats"); err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(m.tasks), nil
}

// ========== Categories ==========

func (m *mockBusinessAPI) ListCategories(ctx context.Context) ([]string, error) {
	if err := m.call("ListCategories"); err != nil {
		return nil, err
	}
	return append([]string(nil), m.categories...), nil
}

func (m *mockBusinessAPI) AddCategory(ctx context.Context, name string) ([]string, error) {
	if err := m.call("AddCategory"); err != nil {
		return nil, err
	}
	v := validation.NewCategoryValidator(nil)
	cleaned, err := v.ValidateNew(name, m.categories)
	if err != nil {
		return nil, err
	}
	m.categories = append(m.categories, cleaned)
	return append([]string(nil), m.categories...), nil
}

func (m *mockBusinessAPI) DeleteCategory(ctx context.Context, name string) (services.Change, error) {
	if err := m.call("DeleteCategory"); err != nil {
		return services.Change{}, err
	}
	idx := -1
	for i, c := range m.categories {
		if c == name {
			idx = i
		}
	}
	if idx < 0 {
		return services.Change{}, errors.NewNotFoundError("category", name)
	}
	m.categories = append(m.categories[:idx], m.categories[idx+1:]...)
	var touched []domain.Section
	for _, section := range domain.AllSections {
		for i := range m.tasks[section] {
			if m.tasks[section][i].Category == name {
				m.tasks[section][i].Category = ""
				touched = append(touched, section)
			}
		}
	}
	return services.Change{Views: domain.ViewsFor(touched...)}, nil
}

func (m *mockBusinessAPI) CanAddCategory(ctx context.Context) (bool, error) {
	if err := m.call("CanAddCategory"); err != nil {
		return false, err
	}
	return len(m.categories) < 10, nil
}

// ========== Sync ==========

func (m *mockBusinessAPI) SyncNow(ctx context.Context) (store.SyncReport, error) {
	if err := m.call("SyncNow"); err != nil {
		return store.SyncReport{}, err
	}
	if m.user == nil {
		return store.SyncReport{}, errors.NewAuthError("Sign in to sync your tasks")
	}
	return m.report, nil
}

func (m *mockBusinessAPI) SyncStatus(ctx context.Context) api.SyncStatus {
	m.calls = append(m.calls, "SyncStatus")
	st := api.SyncStatus{Status: store.Status{SyncEnabled: true, SignedIn: m.user != nil}}
	if m.user != nil {
		st.UserID = m.user.ID
	}
	return st
}

// ========== Account ==========

func (m *mockBusinessAPI) Login(ctx context.Context, userID, password string) (domain.User, error) {
	if err := m.call("Login"); err != nil {
		return domain.User{}, err
	}
	u, ok := m.accounts[userID]
	if !ok {
		return domain.User{}, errors.NewNotFoundError("user", userID)
	}
	if u.Password != password {
		return domain.User{}, errors.NewAuthError("Invalid password")
	}
	m.user = &u
	return u, nil
}

func (m *mockBusinessAPI) Register(ctx context.Context, r validation.Registration) (domain.User, error) {
	if err := m.call("Register"); err != nil {
		return domain.User{}, err
	}
	cleaned, err := validation.NewCredentialsValidator(nil).ValidateRegistration(r)
	if err != nil {
		return domain.User{}, err
	}
	m.nextID++
	u := domain.User{ID: fmt.Sprintf("user-%d", m.nextID), FullName: cleaned.FullName(), Email: cleaned.Email, Password: cleaned.Password}
	m.accounts[u.ID] = u
	m.user = &u
	return u, nil
}

func (m *mockBusinessAPI) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirm string) error {
	if err := m.call("ChangePassword"); err != nil {
		return err
	}
	if err := validation.NewCredentialsValidator(nil).ValidatePasswordChange(userID, oldPassword, newPassword, confirm); err != nil {
		return err
	}
	u, ok := m.accounts[userID]
	if !ok {
		return errors.NewNotFoundError("user", userID)
	}
	if u.Password != oldPassword {
		return errors.NewAuthError("The old password is not correct")
	}
	u.Password = newPassword
	m.accounts[userID] = u
	return nil
}

func (m *mockBusinessAPI) Logout(ctx context.Context) error {
	if err := m.call("Logout"); err != nil {
		return err
	}
	m.user = nil
	m.tasks = domain.NewCollection()
	return nil
}

func (m *mockBusinessAPI) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	if err := m.call("CurrentUser"); err != nil {
		return domain.User{}, false, err
	}
	if m.user == nil {
		return domain.User{}, false, nil
	}
	return *m.user, true, nil
}

func (m *mockBusinessAPI) ValidateSession(ctx context.Context) (bool, error) {
	if err := m.call("ValidateSession"); err != nil {
		return false, err
	}
	return m.user != nil, nil
}

// setupTestApp creates an App over the mock with captured output and the
// given stdin contents
func setupTestApp(t *testing.T, input string) (*App, *mockBusinessAPI, *bytes.Buffer) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return mockToday }
	t.Cleanup(func() { timeNow = prev })

	cfg := config.NewConfig()
	cfg.Tasks.Location = "UTC"
	mock := newMockBusinessAPI()
	out := &bytes.Buffer{}
	return NewAppWithIO(mock, cfg, out, strings.NewReader(input)), mock, out
}
