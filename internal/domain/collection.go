package domain

import "strings"

// Collection maps each section to its ordered list of tasks.
type Collection map[Section][]Task

// NewCollection returns the empty skeleton with all four sections present.
func NewCollection() Collection {
	c := make(Collection, len(AllSections))
	for _, s := range AllSections {
		c[s] = []Task{}
	}
	return c
}

// Normalize makes sure every section is present as a non-nil slice and drops
// keys that are not sections. It reports whether anything changed.
func (c Collection) Normalize() bool {
	changed := false
	for key := range c {
		if !key.IsValid() {
			delete(c, key)
			changed = true
		}
	}
	for _, s := range AllSections {
		if c[s] == nil {
			c[s] = []Task{}
			changed = true
		}
	}
	return changed
}

// DropInvalid removes tasks that fail IsValid and returns how many it removed.
func (c Collection) DropInvalid() int {
	dropped := 0
	for s, tasks := range c {
		kept := tasks[:0]
		for _, t := range tasks {
			if t.IsValid() {
				kept = append(kept, t)
			}
		}
		dropped += len(tasks) - len(kept)
		c[s] = kept
	}
	return dropped
}

// Clone returns a deep copy.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for s, tasks := range c {
		cp := make([]Task, len(tasks))
		copy(cp, tasks)
		out[s] = cp
	}
	return out
}

// Total counts tasks across all sections.
func (c Collection) Total() int {
	n := 0
	for _, s := range AllSections {
		n += len(c[s])
	}
	return n
}

// IndexOf returns the index of the first task in section matching ref, or -1.
func (c Collection) IndexOf(section Section, ref TaskRef) int {
	for i, t := range c[section] {
		if ref.Matches(t) {
			return i
		}
	}
	return -1
}

// Locate searches every section, in display order, for ref.
func (c Collection) Locate(ref TaskRef) (Section, int, bool) {
	for _, s := range AllSections {
		if i := c.IndexOf(s, ref); i >= 0 {
			return s, i, true
		}
	}
	return "", -1, false
}

// Remove deletes the task at index from section.
func (c Collection) Remove(section Section, index int) (Task, bool) {
	tasks := c[section]
	if index < 0 || index >= len(tasks) {
		return Task{}, false
	}
	t := tasks[index]
	c[section] = append(tasks[:index:index], tasks[index+1:]...)
	return t, true
}

// Append pushes t onto the end of section.
func (c Collection) Append(section Section, t Task) {
	c[section] = append(c[section], t)
}

// FilterByCategory returns the tasks of section carrying category. An empty
// category returns the whole section.
func (c Collection) FilterByCategory(section Section, category string) []Task {
	tasks := c[section]
	if category == "" {
		out := make([]Task, len(tasks))
		copy(out, tasks)
		return out
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Categories lists the distinct non-empty categories used by tasks, in order
// of first appearance.
func (c Collection) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range AllSections {
		for _, t := range c[s] {
			name := strings.TrimSpace(t.Category)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
