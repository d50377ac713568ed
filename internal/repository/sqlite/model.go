package sqlite

import "time"

// Slot is a single stored key/value pair
type Slot struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
