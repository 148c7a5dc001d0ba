package model

// FormErrors flags the fields that failed validation.
type FormErrors struct {
	Title       bool `json:"title"`
	Description bool `json:"description"`
}

// Any reports whether at least one field is flagged.
func (e FormErrors) Any() bool { return e.Title || e.Description }

// Validation is the result of checking an issue form.
type Validation struct {
	IsValid bool       `json:"isValid"`
	Errors  FormErrors `json:"errors"`
}

// Validate requires a title and a description. Whitespace is not trimmed:
// only the empty string fails.
func Validate(title, description string) Validation {
	errs := FormErrors{
		Title:       title == "",
		Description: description == "",
	}
	return Validation{IsValid: !errs.Any(), Errors: errs}
}
