package editor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// ValidateQuery parses text as a GraphQL executable document.
// Blank input is valid; required-ness is enforced at submit time.
func ValidateQuery(text string) Result {
	if isBlank(text) {
		return ok
	}
	if _, errParse := parseQuery(text); errParse != nil {
		return invalid(errParse.Error())
	}
	return ok
}

// FormatQuery re-serializes text into canonical GraphQL form.
func FormatQuery(text string) (string, error) {
	doc, errParse := parseQuery(text)
	if errParse != nil {
		return "", errParse
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return strings.TrimRight(buf.String(), "\n"), nil
}

// parseQuery wraps parser.ParseQuery and flattens gqlparser errors into
// "message (line L, column C)".
func parseQuery(text string) (*ast.QueryDocument, error) {
	doc, errParse := parser.ParseQuery(&ast.Source{Input: text})
	if errParse == nil {
		return doc, nil
	}
	var gqlErr *gqlerror.Error
	if errors.As(errParse, &gqlErr) && gqlErr != nil {
		if len(gqlErr.Locations) > 0 {
			loc := gqlErr.Locations[0]
			return nil, fmt.Errorf("%s (line %d, column %d)", gqlErr.Message, loc.Line, loc.Column)
		}
		return nil, errors.New(gqlErr.Message)
	}
	return nil, errParse
}
