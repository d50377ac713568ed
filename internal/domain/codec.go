package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CorruptError reports a stored collection that does not have the expected shape.
type CorruptError struct {
	Reason string
	Cause  error
}

func (e *CorruptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt task collection: %s: %v", e.Reason, e.Cause)
	}
	return "corrupt task collection: " + e.Reason
}

func (e *CorruptError) Unwrap() error {
	return e.Cause
}

// DecodeCollection parses a serialized collection and checks its structure.
// The three date sections must be present as arrays; finished may be absent
// (older snapshots) but must be an array when present. Unknown keys are dropped.
func DecodeCollection(raw []byte) (Collection, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, &CorruptError{Reason: "not a JSON object", Cause: err}
	}
	if sections == nil {
		return nil, &CorruptError{Reason: "null collection"}
	}

	out := NewCollection()
	for _, s := range DateSections {
		msg, ok := sections[string(s)]
		if !ok {
			return nil, &CorruptError{Reason: fmt.Sprintf("missing section %q", s)}
		}
		tasks, err := decodeTasks(s, msg)
		if err != nil {
			return nil, err
		}
		out[s] = tasks
	}

	if msg, ok := sections[string(SectionFinished)]; ok {
		tasks, err := decodeTasks(SectionFinished, msg)
		if err != nil {
			return nil, err
		}
		out[SectionFinished] = tasks
	}
	return out, nil
}

func decodeTasks(s Section, msg json.RawMessage) ([]Task, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &CorruptError{Reason: fmt.Sprintf("section %q is not an array", s)}
	}
	tasks := []Task{}
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("section %q has malformed tasks", s), Cause: err}
	}
	return tasks, nil
}

// EncodeCollection serializes c after normalizing a copy of it.
func EncodeCollection(c Collection) ([]byte, error) {
	cp := c.Clone()
	cp.Normalize()
	return json.Marshal(cp)
}
