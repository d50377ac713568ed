package sqlite

import (
	"time"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// FormatTimeForDB formats a time as RFC3339 with sub-second precision
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimeFromDB parses a time written by FormatTimeForDB
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ScanSlot scans a single slot from a database row
func ScanSlot(scanner Scanner) (*Slot, error) {
	slot := &Slot{}
	var updatedAt string
	if err := scanner.Scan(&slot.Key, &slot.Value, &updatedAt); err != nil {
		return nil, err
	}
	if updatedAt != "" {
		t, err := ParseTimeFromDB(updatedAt)
		if err != nil {
			return nil, err
		}
		slot.UpdatedAt = t
	}
	return slot, nil
}

// ScanSlots scans multiple slots from database rows
func ScanSlots(rows Rows) ([]*Slot, error) {
	var slots []*Slot
	for rows.Next() {
		slot, err := ScanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}
