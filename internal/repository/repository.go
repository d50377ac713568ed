// Package repository defines the durable slot storage shared by every backend.
package repository

import "context"

// Slot keys used by the application.
const (
	KeyTasks        = "tasks"
	KeyLastModified = "tasksLastModified"
	KeyUserID       = "userID"
	KeyUserFullName = "userFullName"
	KeyUserEmail    = "userEmail"
	KeyUserPassword = "userPassword"
	KeyCategories   = "categories"
)

// SessionKeys are the identity slots cleared on logout.
var SessionKeys = []string{KeyUserID, KeyUserFullName, KeyUserEmail, KeyUserPassword}

// Repository is a string-keyed slot store. Implementations must be safe for
// concurrent use.
type Repository interface {
	// Get returns the value of key or a not-found AppError.
	Get(ctx context.Context, key string) (string, error)
	// GetMany returns the values of the keys that exist.
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every pair or none of them.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
