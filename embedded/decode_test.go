package embedded

import (
	"fmt"
	"strings"
	"testing"

	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/value"
)

func TestDecodeText(t *testing.T) {
	t.Parallel()

	got, err := Decode("server:\n  port: 8080", Text)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !value.Equal(got, value.String("server:\n  port: 8080")) {
		t.Fatalf("expected raw string, got %v", got)
	}
}

func TestDecodeStructured(t *testing.T) {
	t.Parallel()

	got, err := Decode("server:\n  port: 8080", Structured)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	want := value.MustFromAny(map[string]any{"server": map[string]any{"port": 8080}})
	if !value.Equal(got, want) {
		t.Fatalf("unexpected decoded value %v", got)
	}

	for _, empty := range []string{"", "  \n", "null", "~"} {
		got, err := Decode(empty, Structured)
		if err != nil {
			t.Fatalf("Decode(%q) returned error: %v", empty, err)
		}
		object, ok := got.AsMap()
		if !ok || object.Len() != 0 {
			t.Fatalf("Decode(%q) expected empty map, got %v", empty, got)
		}
	}
}

func TestDecodeStructuredFailureKeepsDiagnostic(t *testing.T) {
	t.Parallel()

	got, err := Decode("server: [unclosed", Structured)
	if !faults.IsCategory(err, faults.DecodeError) {
		t.Fatalf("expected decode error, got %v", err)
	}
	text, ok := got.AsString()
	if !ok || !strings.HasPrefix(text, "parse failed: ") {
		t.Fatalf("expected diagnostic string, got %v", got)
	}
}

func TestParseLineKV(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"# comment",
		"! also a comment",
		"",
		"server.port = 8080",
		"db.url: jdbc:postgresql://db:5432/app",
		"=orphan",
		"no separator here",
		"server.port=9090",
		"  empty =  ",
	}, "\n")

	got := ParseLineKV(raw)
	object, ok := got.AsMap()
	if !ok {
		t.Fatalf("expected map, got %v", got)
	}

	keys := object.Keys()
	if len(keys) != 3 || keys[0] != "server.port" || keys[1] != "db.url" || keys[2] != "empty" {
		t.Fatalf("unexpected keys %v", keys)
	}
	port, _ := object.Get("server.port")
	if !value.Equal(port, value.String("9090")) {
		t.Fatalf("expected later duplicate to win, got %v", port)
	}
	url, _ := object.Get("db.url")
	if !value.Equal(url, value.String("jdbc:postgresql://db:5432/app")) {
		t.Fatalf("expected split at first separator, got %v", url)
	}
}

func TestLineKVRoundTrip(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{{"alpha", "1"}, {"beta", "two words"}, {"gamma", "x=y"}}
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		lines = append(lines, fmt.Sprintf("%s=%s", pair[0], pair[1]))
	}

	got, err := Decode(strings.Join(lines, "\n"), LineKV)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	object, _ := got.AsMap()
	if object.Len() != len(pairs) {
		t.Fatalf("expected %d pairs, got %d", len(pairs), object.Len())
	}
	for _, pair := range pairs {
		item, found := object.Get(pair[0])
		if !found || !value.Equal(item, value.String(pair[1])) {
			t.Fatalf("expected %s=%s, got %v", pair[0], pair[1], item)
		}
	}
}

func TestParseContentType(t *testing.T) {
	t.Parallel()

	cases := map[string]ContentType{
		"":           Text,
		"text":       Text,
		"YAML":       Structured,
		"structured": Structured,
		"properties": LineKV,
		"line-kv":    LineKV,
	}
	for name, want := range cases {
		got, err := ParseContentType(name)
		if err != nil {
			t.Fatalf("ParseContentType(%q) returned error: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseContentType(%q) = %s, want %s", name, got, want)
		}
	}

	if _, err := ParseContentType("json"); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var parsed ContentType
	if err := parsed.UnmarshalText([]byte("properties")); err != nil || parsed != LineKV {
		t.Fatalf("UnmarshalText produced %s, %v", parsed, err)
	}
	encoded, err := Structured.MarshalText()
	if err != nil || string(encoded) != "yaml" {
		t.Fatalf("MarshalText produced %q, %v", encoded, err)
	}
}
