package domain

import "strings"

// Section names one of the four storage buckets of the task collection.
type Section string

const (
	SectionToday    Section = "today"
	SectionTomorrow Section = "tomorrow"
	SectionThisWeek Section = "thisweek"
	SectionFinished Section = "finished"
)

// DateSections are the buckets derived from a task's date, in display order.
var DateSections = []Section{SectionToday, SectionTomorrow, SectionThisWeek}

// AllSections lists every bucket in display order.
var AllSections = []Section{SectionToday, SectionTomorrow, SectionThisWeek, SectionFinished}

// ParseSection converts a name into a Section.
func ParseSection(name string) (Section, bool) {
	s := Section(strings.ToLower(strings.TrimSpace(name)))
	return s, s.IsValid()
}

// IsValid reports whether s is one of the four buckets.
func (s Section) IsValid() bool {
	switch s {
	case SectionToday, SectionTomorrow, SectionThisWeek, SectionFinished:
		return true
	}
	return false
}

// IsDateSection reports whether s is derived from a task date.
func (s Section) IsDateSection() bool {
	return s.IsValid() && s != SectionFinished
}

func (s Section) String() string {
	return string(s)
}

// Task is a single to-do item. Timestamps are Unix milliseconds.
type Task struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// IsValid checks the fields every stored task must carry.
func (t Task) IsValid() bool {
	return strings.TrimSpace(t.Text) != "" && t.Date != ""
}

// String returns the task text for display purposes.
func (t Task) String() string {
	return t.Text
}

// Ref returns a reference that locates this task again.
func (t Task) Ref() TaskRef {
	return TaskRef{ID: t.ID, Text: t.Text, Date: t.Date, Category: t.Category}
}

// TaskRef identifies a task across re-renders. When ID is set it is
// authoritative; otherwise the (text, date, category) tuple is matched and
// the first matching task wins.
type TaskRef struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

// Matches reports whether t is the task r refers to.
func (r TaskRef) Matches(t Task) bool {
	if r.ID != "" {
		return t.ID == r.ID
	}
	return t.Text == r.Text && t.Date == r.Date && t.Category == r.Category
}

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Text     string `json:"text"`
	Date     string `json:"date"`
	Category string `json:"category"`
}
