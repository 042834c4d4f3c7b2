package workbench

import (
	"errors"
	"strings"
)

// ErrBusy indicates a submission is already in flight for this workbench.
var ErrBusy = errors.New("workbench: submission in progress")

// ValidationError blocks a submission. Each field holds the message shown
// next to the offending input, or is empty.
type ValidationError struct {
	Endpoint  string `json:"endpoint,omitempty"`
	Query     string `json:"query,omitempty"`
	Variables string `json:"variables,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Endpoint != "" {
		parts = append(parts, "endpoint: "+e.Endpoint)
	}
	if e.Query != "" {
		parts = append(parts, "query: "+e.Query)
	}
	if e.Variables != "" {
		parts = append(parts, "variables: "+e.Variables)
	}
	return "workbench: invalid draft (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) empty() bool {
	return e.Endpoint == "" && e.Query == "" && e.Variables == ""
}
