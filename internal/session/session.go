// Package session holds the signed-in identity. It replaces page-level
// globals with one object whose lifetime runs from login to logout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/logging"
	"sticky-wall/internal/remote"
	"sticky-wall/internal/repository"
	"sticky-wall/internal/validation"
)

// Record data fields that hold credentials.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Remote is the part of the record service used for accounts.
type Remote interface {
	GetObject(ctx context.Context, id string) (*remote.Object, error)
	PatchObject(ctx context.Context, id string, data map[string]json.RawMessage) (*remote.Object, error)
	CreateObject(ctx context.Context, name string, data map[string]json.RawMessage) (*remote.Object, error)
}

// CacheInvalidator drops cached remote snapshots.
type CacheInvalidator interface {
	InvalidateAll()
}

// Manager signs users in and out and exposes the current identity.
type Manager struct {
	repo      repository.Repository
	remote    Remote
	cache     CacheInvalidator
	validator *validation.CredentialsValidator
	logger    *slog.Logger

	mu sync.Mutex
}

// NewManager creates a session manager. cache may be nil.
func NewManager(repo repository.Repository, r Remote, cache CacheInvalidator, logger *slog.Logger) *Manager {
	return &Manager{
		repo:      repo,
		remote:    r,
		cache:     cache,
		validator: validation.NewCredentialsValidator(nil),
		logger:    logging.Component(logging.OrDiscard(logger), "session"),
	}
}

// Current returns the stored identity. The boolean is false unless every
// identity slot is present.
func (m *Manager) Current(ctx context.Context) (domain.User, bool, error) {
	slots, err := m.repo.GetMany(ctx, repository.SessionKeys...)
	if err != nil {
		return domain.User{}, false, err
	}
	u := domain.User{
		ID:       slots[repository.KeyUserID],
		FullName: slots[repository.KeyUserFullName],
		Email:    slots[repository.KeyUserEmail],
		Password: slots[repository.KeyUserPassword],
	}
	return u, u.IsSignedIn(), nil
}

// UserID returns the signed-in user's ID, or "" when nobody is signed in.
func (m *Manager) UserID(ctx context.Context) string {
	u, ok, err := m.Current(ctx)
	if err != nil || !ok {
		return ""
	}
	return u.ID
}

// Login checks password against the user's remote record and stores the
// identity on success.
func (m *Manager) Login(ctx context.Context, userID, password string) (domain.User, error) {
	userID = validation.Clean(userID)
	if err := m.validator.ValidateLogin(userID, password); err != nil {
		return domain.User{}, err
	}

	obj, err := m.remote.GetObject(ctx, userID)
	if err != nil {
		return domain.User{}, m.accountError(err, userID, "login")
	}
	if obj.StringField(FieldPassword) != password {
		m.logger.Warn("login rejected", "user", userID)
		return domain.User{}, errors.NewAuthError("Invalid password")
	}

	u := domain.User{
		ID:       userID,
		FullName: obj.Name,
		Email:    obj.StringField(FieldEmail),
		Password: password,
	}
	if err := m.store(ctx, u); err != nil {
		return domain.User{}, err
	}
	m.logger.Info("logged in", "user", userID)
	return u, nil
}

// Register creates a remote record for a new user and signs them in.
func (m *Manager) Register(ctx context.Context, r validation.Registration) (domain.User, error) {
	r, err := m.validator.ValidateRegistration(r)
	if err != nil {
		return domain.User{}, err
	}

	data := map[string]json.RawMessage{}
	obj := &remote.Object{Data: data}
	if err := obj.SetField(FieldEmail, r.Email); err != nil {
		return domain.User{}, errors.NewRemoteError("encode registration", 0, err)
	}
	if err := obj.SetField(FieldPassword, r.Password); err != nil {
		return domain.User{}, errors.NewRemoteError("encode registration", 0, err)
	}

	created, err := m.remote.CreateObject(ctx, r.FullName(), obj.Data)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:       created.ID,
		FullName: r.FullName(),
		Email:    r.Email,
		Password: r.Password,
	}
	if err := m.store(ctx, u); err != nil {
		return domain.User{}, err
	}
	m.logger.Info("registered", "user", u.ID)
	return u, nil
}

// ChangePassword replaces the password of userID. Every other field of the
// record is kept.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirm string) error {
	userID = validation.Clean(userID)
	if err := m.validator.ValidatePasswordChange(userID, oldPassword, newPassword, confirm); err != nil {
		return err
	}

	obj, err := m.remote.GetObject(ctx, userID)
	if err != nil {
		return m.accountError(err, userID, "change password")
	}
	if obj.StringField(FieldPassword) != oldPassword {
		return errors.NewAuthError("The old password is not correct")
	}

	updated := &remote.Object{Data: obj.CloneData()}
	if err := updated.SetField(FieldPassword, newPassword); err != nil {
		return errors.NewRemoteError("encode password", 0, err)
	}
	if _, err := m.remote.PatchObject(ctx, userID, updated.Data); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, err := m.repo.Get(ctx, repository.KeyUserID)
	if err == nil && current == userID {
		if err := m.repo.Set(ctx, repository.KeyUserPassword, newPassword); err != nil {
			return err
		}
	}
	m.logger.Info("password changed", "user", userID)
	return nil
}

// Validate reports whether the stored identity is signed in and still matches
// the remote record. A mismatch signs the user out. When the record service
// cannot be reached the local session is trusted.
func (m *Manager) Validate(ctx context.Context) (bool, error) {
	u, ok, err := m.Current(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	obj, err := m.remote.GetObject(ctx, u.ID)
	switch {
	case errors.IsNotFound(err):
		m.logger.Warn("session user no longer exists", "user", u.ID)
		return false, m.Logout(ctx)
	case err != nil:
		m.logger.Warn("could not validate session, keeping it", "user", u.ID, "error", err)
		return true, nil
	}

	if obj.StringField(FieldEmail) != u.Email || obj.StringField(FieldPassword) != u.Password {
		m.logger.Warn("session credentials are stale", "user", u.ID)
		return false, m.Logout(ctx)
	}
	return true, nil
}

// Logout clears the identity, the local task state and the sync cache.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := append([]string{repository.KeyTasks, repository.KeyLastModified, repository.KeyCategories}, repository.SessionKeys...)
	if err := m.repo.Delete(ctx, keys...); err != nil {
		return err
	}
	if m.cache != nil {
		m.cache.InvalidateAll()
	}
	m.logger.Info("logged out")
	return nil
}

func (m *Manager) store(ctx context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.SetMany(ctx, map[string]string{
		repository.KeyUserID:       u.ID,
		repository.KeyUserFullName: u.FullName,
		repository.KeyUserEmail:    u.Email,
		repository.KeyUserPassword: u.Password,
	})
}

func (m *Manager) accountError(err error, userID, op string) error {
	if errors.IsNotFound(err) {
		return errors.WrapError(err, errors.ErrorTypeNotFound, fmt.Sprintf("User with ID %q does not exist.", userID))
	}
	m.logger.Warn(op+" failed", "user", userID, "error", err)
	return err
}
