package validation

import (
	"sticky-wall/internal/domain"
)

// TaskValidator provides validation for task input
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator(v *Validator) *TaskValidator {
	if v == nil {
		v = NewValidator()
	}
	return &TaskValidator{validator: v}
}

// ValidateInput checks the user-editable fields of a task and returns the
// cleaned input.
func (tv *TaskValidator) ValidateInput(in domain.TaskInput) (domain.TaskInput, error) {
	ve := NewValidationError()
	out := domain.TaskInput{
		Text:     Clean(in.Text),
		Date:     Clean(in.Date),
		Category: Clean(in.Category),
	}

	if !tv.validator.IsNonEmptyString(out.Text) {
		ve.AddRequiredError("text", "Task text")
	} else if limit := tv.validator.TextMaxLength(); !tv.validator.IsWithinLength(out.Text, limit) {
		ve.AddInvalidLengthError("text", "Task text", out.Text, limit)
	}

	if !tv.validator.IsNonEmptyString(out.Date) {
		ve.AddRequiredError("date", "Date")
	} else if !tv.validator.IsValidDate(out.Date) {
		ve.AddInvalidFormatError("date", "Date", out.Date, "YYYY-MM-DD")
	}

	if err := ve.Err(); err != nil {
		return domain.TaskInput{}, err
	}
	return out, nil
}

// ValidateTask checks a stored task
func (tv *TaskValidator) ValidateTask(task domain.Task) error {
	_, err := tv.ValidateInput(domain.TaskInput{Text: task.Text, Date: task.Date, Category: task.Category})
	return err
}
