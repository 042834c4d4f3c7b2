package editor

import (
	"strings"
	"testing"
)

func TestValidateQueryAcceptsBlankAndValidDocuments(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\n\t", "{ me { id } }", "query GetUser($id: ID!) { user(id: $id) { name } }"} {
		res := ValidateQuery(text)
		if !res.Valid {
			t.Fatalf("ValidateQuery(%q) invalid: %s", text, res.Error)
		}
		if res.Error != "" {
			t.Fatalf("ValidateQuery(%q) error = %q, want empty", text, res.Error)
		}
	}
}

func TestValidateQueryRejectsSyntaxErrors(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"{ me { id }", "query {", "}", "{ me(id: ) { id } }"} {
		res := ValidateQuery(text)
		if res.Valid {
			t.Fatalf("ValidateQuery(%q) valid, want invalid", text)
		}
		if strings.TrimSpace(res.Error) == "" {
			t.Fatalf("ValidateQuery(%q) returned empty error", text)
		}
	}
}

func TestValidateVariables(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text  string
		valid bool
	}{
		{"", true},
		{"  \n ", true},
		{`{"id": "123"}`, true},
		{`{"nested": {"list": [1, 2, 3]}}`, true},
		{"{bad json", false},
		{`{"a": 1,}`, false},
	}
	for _, tc := range cases {
		res := ValidateVariables(tc.text)
		if res.Valid != tc.valid {
			t.Fatalf("ValidateVariables(%q).Valid = %v, want %v (err=%q)", tc.text, res.Valid, tc.valid, res.Error)
		}
		if !tc.valid && res.Error == "" {
			t.Fatalf("ValidateVariables(%q) expected parser message", tc.text)
		}
	}
}

func TestFormatQueryIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"{ me { id } }",
		"query GetUser($id: ID!) { user(id: $id) { name ...F } } fragment F on User { email }",
		"mutation { update(input: {a: 1, b: [\"x\"]}) { ok } }",
	}
	for _, in := range inputs {
		once, errOnce := FormatQuery(in)
		if errOnce != nil {
			t.Fatalf("FormatQuery(%q): %v", in, errOnce)
		}
		twice, errTwice := FormatQuery(once)
		if errTwice != nil {
			t.Fatalf("FormatQuery(formatted %q): %v", once, errTwice)
		}
		if once != twice {
			t.Fatalf("format not a fixed point:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
		if res := ValidateQuery(once); !res.Valid {
			t.Fatalf("formatted query invalid: %s", res.Error)
		}
	}
}

func TestFormatQueryReturnsErrorOnBadInput(t *testing.T) {
	t.Parallel()

	if _, err := FormatQuery("{ me {"); err == nil {
		t.Fatalf("expected error for unparsable query")
	}
}

func TestFormatVariablesUsesFourSpacesAndKeepsOrder(t *testing.T) {
	t.Parallel()

	got, err := FormatVariables(`{"z":1,"a":{"b":[1,2]}}`)
	if err != nil {
		t.Fatalf("FormatVariables: %v", err)
	}
	want := "{\n    \"z\": 1,\n    \"a\": {\n        \"b\": [\n            1,\n            2\n        ]\n    }\n}"
	if got != want {
		t.Fatalf("FormatVariables =\n%s\nwant\n%s", got, want)
	}
	again, err := FormatVariables(got)
	if err != nil {
		t.Fatalf("FormatVariables second pass: %v", err)
	}
	if again != got {
		t.Fatalf("format not a fixed point:\n%s\n%s", got, again)
	}
}

func TestFormatVariablesRejectsBadJSON(t *testing.T) {
	t.Parallel()

	if _, err := FormatVariables("{bad json"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFieldTracksErrorAndGate(t *testing.T) {
	t.Parallel()

	query := NewQueryField()
	vars := NewVariablesField()

	if !CanSubmit(query.Set("{ me { id } }"), vars.Set("")) {
		t.Fatalf("expected submit allowed")
	}
	res := vars.Set("{bad json")
	if res.Valid || vars.Error() == "" {
		t.Fatalf("expected stored variables error")
	}
	if CanSubmit(query.Result(), vars.Result()) {
		t.Fatalf("expected submit blocked")
	}
	vars.Set(`{"ok": true}`)
	if vars.Error() != "" {
		t.Fatalf("expected error cleared, got %q", vars.Error())
	}
	if !CanSubmit(query.Result(), vars.Result()) {
		t.Fatalf("expected submit allowed after fix")
	}
}
