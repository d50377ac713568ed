package schedule

import (
	"time"

	"sticky-wall/internal/domain"
)

// DateLayout is the calendar date format used for task dates.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ClassifyAt maps a calendar date onto a date section relative to today.
// Past dates and dates beyond the coming Saturday have no section; ok is
// false for them and for unparsable input.
func ClassifyAt(date string, today time.Time) (domain.Section, bool) {
	d, err := ParseDate(date)
	if err != nil {
		return "", false
	}
	ref := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(d.Sub(ref).Hours() / 24)
	daysLeft := 6 - int(today.Weekday())

	switch {
	case diff == 0:
		return domain.SectionToday, true
	case diff == 1:
		return domain.SectionTomorrow, true
	case diff > 1 && diff <= daysLeft:
		return domain.SectionThisWeek, true
	}
	return "", false
}

// Classifier classifies dates against a clock.
type Classifier struct {
	clock Clock
}

// NewClassifier returns a classifier reading today from clock.
func NewClassifier(clock Clock) *Classifier {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Classifier{clock: clock}
}

// Classify maps date onto a section relative to the clock's today.
func (c *Classifier) Classify(date string) (domain.Section, bool) {
	return ClassifyAt(date, c.clock.Now())
}

// Today returns the clock's calendar date.
func (c *Classifier) Today() string {
	return FormatDate(c.clock.Now())
}

// Clock returns the underlying clock.
func (c *Classifier) Clock() Clock {
	return c.clock
}
