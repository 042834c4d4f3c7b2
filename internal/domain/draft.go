package domain

import "strings"

// Draft is the in-progress request as raw editor text.
type Draft struct {
	Endpoint  string `json:"endpoint"`
	Query     string `json:"query"`
	Variables string `json:"variables"` // JSON object text; empty means no variables.
}

// HasVariables reports whether the draft carries non-blank variables text.
func (d Draft) HasVariables() bool {
	return strings.TrimSpace(d.Variables) != ""
}

// IsZero reports whether every field is empty.
func (d Draft) IsZero() bool {
	return d.Endpoint == "" && d.Query == "" && d.Variables == ""
}

// HistoryEntry is a draft captured at submit time.
type HistoryEntry = Draft
