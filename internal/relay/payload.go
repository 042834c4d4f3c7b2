package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/router-for-me/GraphQLTester/internal/domain"
)

// ErrInvalidVariables indicates the variables text is not valid JSON.
var ErrInvalidVariables = errors.New("relay: invalid variables")

// Payload is the JSON body posted upstream.
type Payload struct {
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	OperationName string          `json:"operationName"`
}

// BuildPayload converts a draft into an upstream body. Variables are parsed
// only when non-blank and omitted otherwise.
func BuildPayload(d domain.Draft) (Payload, error) {
	payload := Payload{Query: d.Query, OperationName: d.Endpoint}
	if !d.HasVariables() {
		return payload, nil
	}
	var compacted bytes.Buffer
	if errCompact := json.Compact(&compacted, []byte(strings.TrimSpace(d.Variables))); errCompact != nil {
		return Payload{}, fmt.Errorf("%w: %s", ErrInvalidVariables, errCompact.Error())
	}
	payload.Variables = compacted.Bytes()
	return payload, nil
}
