package migrations

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func init() {
	RegisterGoMigration(2, Up_000002_normalize_last_modified, Down_000002_normalize_last_modified)
}

const lastModifiedKey = "tasksLastModified"

// secondsThreshold separates Unix seconds from Unix milliseconds. Any
// millisecond value after 1973 is above it.
const secondsThreshold = 100_000_000_000

// Up_000002_normalize_last_modified rewrites the stored last-modified stamp as
// integer Unix milliseconds. Older builds wrote seconds or RFC3339 strings.
// Values that cannot be read are removed so the next load reconciles from scratch.
func Up_000002_normalize_last_modified(tx *sql.Tx) error {
	var raw string
	err := tx.QueryRow("SELECT value FROM slots WHERE key = ?", lastModifiedKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", lastModifiedKey, err)
	}

	millis, ok := parseLastModified(raw)
	if !ok {
		if _, err := tx.Exec("DELETE FROM slots WHERE key = ?", lastModifiedKey); err != nil {
			return fmt.Errorf("failed to drop unreadable %s: %w", lastModifiedKey, err)
		}
		return nil
	}

	normalized := strconv.FormatInt(millis, 10)
	if normalized == raw {
		return nil
	}
	if _, err := tx.Exec("UPDATE slots SET value = ? WHERE key = ?", normalized, lastModifiedKey); err != nil {
		return fmt.Errorf("failed to update %s: %w", lastModifiedKey, err)
	}
	return nil
}

// Down_000002_normalize_last_modified is a no-op; milliseconds are readable by every version.
func Down_000002_normalize_last_modified(tx *sql.Tx) error {
	return nil
}

func parseLastModified(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n <= 0 {
			return 0, false
		}
		if n < secondsThreshold {
			return n * 1000, true
		}
		return n, true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
		return parseLastModified(strconv.FormatInt(int64(f), 10))
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UnixMilli(), true
	}
	return 0, false
}
