package editor

import "strings"

// Result is the outcome of validating one text field.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"` // Parser message when invalid.
}

// ok is the Result for accepted input.
var ok = Result{Valid: true}

// invalid builds a failed Result carrying the parser message.
func invalid(message string) Result {
	return Result{Valid: false, Error: message}
}

// isBlank reports whether text contains only whitespace.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// CanSubmit reports whether both fields allow a submission.
func CanSubmit(query, variables Result) bool {
	return query.Valid && variables.Valid
}

// Validator checks a single field.
type Validator func(text string) Result

// Field holds the text of one editor input and its last validation error.
type Field struct {
	text     string
	err      string
	validate Validator
}

// NewQueryField returns a field validated as a GraphQL document.
func NewQueryField() Field {
	return Field{validate: ValidateQuery}
}

// NewVariablesField returns a field validated as JSON.
func NewVariablesField() Field {
	return Field{validate: ValidateVariables}
}

// Set replaces the text and validates it.
func (f *Field) Set(text string) Result {
	f.text = text
	return f.Validate()
}

// Replace swaps the text without touching the stored error.
func (f *Field) Replace(text string) {
	f.text = text
}

// Validate re-runs validation and stores the error, if any.
func (f *Field) Validate() Result {
	if f.validate == nil {
		f.err = ""
		return ok
	}
	res := f.validate(f.text)
	f.err = res.Error
	return res
}

// Text returns the current text.
func (f *Field) Text() string { return f.text }

// Error returns the stored validation error, empty when valid.
func (f *Field) Error() string { return f.err }

// Result returns the stored state without re-validating.
func (f *Field) Result() Result {
	if f.err != "" {
		return invalid(f.err)
	}
	return ok
}
