package expr

import (
	"reflect"
	"testing"
)

func TestResolve_SinglePlaceholderPreservesType(t *testing.T) {
	scopes := Scopes{Params: map[string]any{"count": float64(3)}}
	got, err := Resolve("${params.count}", scopes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != float64(3) {
		t.Errorf("got %v (%T), want float64(3)", got, got)
	}
}

func TestResolve_MixedTemplateConcatenatesAsString(t *testing.T) {
	scopes := Scopes{Params: map[string]any{"name": "world"}}
	got, err := Resolve("hello ${params.name}!", scopes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world!" {
		t.Errorf("got %q, want %q", got, "hello world!")
	}
}

func TestResolve_NoPlaceholdersPassesThrough(t *testing.T) {
	got, err := Resolve("plain text", Scopes{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plain text" {
		t.Errorf("got %q", got)
	}
}

func TestResolve_MissingPathYieldsNil(t *testing.T) {
	got, err := Resolve("${params.missing}", Scopes{Params: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for an undefined path", got)
	}
}

func TestResolve_ForbiddenSegment(t *testing.T) {
	_, err := Resolve("${steps.a.constructor.x}", Scopes{Steps: map[string]any{"a": map[string]any{}}})
	if err == nil {
		t.Errorf("expected error for forbidden path segment")
	}
}

func TestResolve_UnterminatedPlaceholder(t *testing.T) {
	_, err := Resolve("${params.name", Scopes{})
	if err == nil {
		t.Errorf("expected error for unterminated placeholder")
	}
}

func TestResolveObject_WalksNested(t *testing.T) {
	scopes := Scopes{Params: map[string]any{"x": float64(1)}}
	input := map[string]any{
		"a": "${params.x}",
		"b": []any{"${params.x}", "literal"},
	}
	got, err := ResolveObject(input, scopes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"a": float64(1),
		"b": []any{float64(1), "literal"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestToLiteralToken(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{float64(2.5), "2.5"},
		{"hi", `"hi"`},
		{`a"b`, `"a\"b"`},
	}
	for _, tt := range tests {
		if got := toLiteralToken(tt.in); got != tt.want {
			t.Errorf("toLiteralToken(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
