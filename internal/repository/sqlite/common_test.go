package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	apperrors "sticky-wall/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleDatabaseError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	result := HandleDatabaseError("test operation", originalErr)

	assert.NotNil(t, result)
	assert.Contains(t, result.Error(), "test operation")
	assert.Contains(t, result.Error(), "database connection failed")
	assert.True(t, apperrors.IsErrorType(result, apperrors.ErrorTypeStorage))
}

func TestHandleNoRowsError(t *testing.T) {
	tests := []struct {
		name           string
		inputErr       error
		entityType     string
		id             string
		expectNotFound bool
	}{
		{
			name:           "should return NotFoundError for ErrNoRows",
			inputErr:       sql.ErrNoRows,
			entityType:     "slot",
			id:             "tasks",
			expectNotFound: true,
		},
		{
			name:           "should return other errors as-is",
			inputErr:       errors.New("some other error"),
			entityType:     "slot",
			id:             "tasks",
			expectNotFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleNoRowsError(tt.inputErr, tt.entityType, tt.id)

			if tt.expectNotFound {
				assert.True(t, apperrors.IsNotFound(result))
				assert.Contains(t, result.Error(), tt.entityType)
				assert.Contains(t, result.Error(), tt.id)
			} else {
				assert.Equal(t, tt.inputErr, result)
			}
		})
	}
}

func TestWithTx(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	err := WithTx(ctx, repo.db, "insert", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO slots (key, value) VALUES ('a', '1')`)
		return err
	})
	require.NoError(t, err)

	err = WithTx(ctx, repo.db, "insert", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO slots (key, value) VALUES ('b', '2')`); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStorage))

	values, err := repo.GetMany(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, values)
}
