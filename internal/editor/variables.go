package editor

import (
	"bytes"
	"encoding/json"
	"strings"
)

// variablesIndent is the fixed indentation of formatted variables.
const variablesIndent = "    "

// ValidateVariables parses text as JSON. Blank input means "no variables".
func ValidateVariables(text string) Result {
	if isBlank(text) {
		return ok
	}
	var v any
	if errUnmarshal := json.Unmarshal([]byte(text), &v); errUnmarshal != nil {
		return invalid(errUnmarshal.Error())
	}
	return ok
}

// FormatVariables re-indents JSON text with four spaces, keeping key order.
func FormatVariables(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	var v any
	if errUnmarshal := json.Unmarshal([]byte(trimmed), &v); errUnmarshal != nil {
		return "", errUnmarshal
	}
	var buf bytes.Buffer
	if errIndent := json.Indent(&buf, []byte(trimmed), "", variablesIndent); errIndent != nil {
		return "", errIndent
	}
	return buf.String(), nil
}
