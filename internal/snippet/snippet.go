// Package snippet renders a draft as code that calls the upstream API directly.
package snippet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/domain"
	"github.com/router-for-me/GraphQLTester/internal/relay"
)

// CopiedFlash is how long the UI shows its "copied" indicator.
const CopiedFlash = 750 * time.Millisecond

// DefaultSecretEnv names the variable the snippet reads the API key from.
const DefaultSecretEnv = "GRAPHQL_API_KEY"

// Supported formats.
const (
	FormatJavaScript = "js"
	FormatCurl       = "curl"
)

// continuation re-indents multi-line fields inside the generated body.
const continuation = "\n\t\t"

// Options controls snippet rendering.
type Options struct {
	BaseURL   string // Upstream origin without trailing slash.
	SecretEnv string // Environment variable holding the API key.
}

func (o Options) secretEnv() string {
	if strings.TrimSpace(o.SecretEnv) == "" {
		return DefaultSecretEnv
	}
	return o.SecretEnv
}

func (o Options) endpointURL(endpoint string) string {
	return strings.TrimRight(o.BaseURL, "/") + "/api/graphql/" + url.PathEscape(endpoint)
}

// Render dispatches on format; unknown formats fall back to JavaScript.
func Render(format string, d domain.Draft, opts Options) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCurl:
		return Curl(d, opts)
	default:
		return JavaScript(d, opts), nil
	}
}

// JavaScript renders a fetch call equivalent to the proxied request. The
// secret is referenced through process.env, never inlined.
func JavaScript(d domain.Draft, opts Options) string {
	query := strings.Join(strings.Split(strings.TrimSpace(d.Query), "\n"), continuation)
	variables := "{}"
	if d.Variables != "" {
		variables = strings.Join(strings.Split(d.Variables, "\n"), continuation)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "const response = await fetch(`%s`, {\n", escapeTemplate(opts.endpointURL(d.Endpoint)))
	b.WriteString("\tmethod: \"POST\",\n")
	b.WriteString("\theaders: {\n")
	b.WriteString("\t\t\"Content-Type\": \"application/json\",\n")
	fmt.Fprintf(&b, "\t\t\"Authorization\": `Bearer ${process.env.%s}`,\n", opts.secretEnv())
	b.WriteString("\t},\n")
	b.WriteString("\tbody: JSON.stringify({\n")
	fmt.Fprintf(&b, "\t\tquery: `\n\t\t%s\n\t\t`,\n", escapeTemplate(query))
	fmt.Fprintf(&b, "\t\tvariables: %s,\n", variables)
	fmt.Fprintf(&b, "\t\toperationName: %s\n", jsString(d.Endpoint))
	b.WriteString("\t})\n")
	b.WriteString("}).then(res => res.json())")
	return b.String()
}

// Curl renders a shell command posting the same body as the proxy.
func Curl(d domain.Draft, opts Options) (string, error) {
	payload, errPayload := relay.BuildPayload(d)
	if errPayload != nil {
		return "", errPayload
	}
	body, errEncode := relay.EncodePayload(payload)
	if errEncode != nil {
		return "", errEncode
	}

	var b strings.Builder
	fmt.Fprintf(&b, "curl -X POST %s \\\n", shellQuote(opts.endpointURL(d.Endpoint)))
	b.WriteString("  -H 'Content-Type: application/json' \\\n")
	fmt.Fprintf(&b, "  -H \"Authorization: Bearer $%s\" \\\n", opts.secretEnv())
	fmt.Fprintf(&b, "  --data-raw %s", shellQuote(string(body)))
	return b.String(), nil
}

// escapeTemplate keeps text literal inside a JavaScript template string.
func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", "\\${")
}

// jsString renders s as a double-quoted JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimRight(buf.String(), "\n")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
