package render

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/implydata/imply-eventgenerator/internal/record"
)

func TestRenderJSONOrderAndNulls(t *testing.T) {
	rec := record.New()
	rec.Set("time", "2024-01-01T00:00:00.000")
	rec.Set("x", int64(7))
	rec.Set("y", nil)

	out, err := NewDefault().Render(rec)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v (%s)", err, out)
	}
	if decoded["x"] != float64(7) {
		t.Fatalf("x = %v, want 7", decoded["x"])
	}
	if _, ok := decoded["y"]; !ok {
		t.Fatal("expected null field y to be present")
	}
	if decoded["y"] != nil {
		t.Fatalf("y = %v, want null", decoded["y"])
	}
}

func TestRenderTemplateBasic(t *testing.T) {
	rec := record.New()
	rec.Set("time", "2024-01-01T00:00:00.000")
	rec.Set("x", int64(42))

	r := NewTemplate("{{time}} x={{x}}\n")
	out, err := r.Render(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := "2024-01-01T00:00:00.000 x=42\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestRenderTemplateStrftime(t *testing.T) {
	rec := record.New()
	rec.Set("time", "2024-03-15T08:30:00.000")

	r := NewTemplate("{{ time | %Y-%m-%d }}")
	out, err := r.Render(rec)
	if err != nil {
		t.Fatal(err)
	}
	if out != "2024-03-15" {
		t.Fatalf("got %q, want 2024-03-15", out)
	}
}

func TestRenderTemplateMissingKeyIsEmpty(t *testing.T) {
	rec := record.New()
	rec.Set("time", "2024-01-01T00:00:00.000")

	r := NewTemplate("x={{missing}}")
	out, err := r.Render(rec)
	if err != nil {
		t.Fatal(err)
	}
	if out != "x=" {
		t.Fatalf("got %q, want \"x=\"", out)
	}
}

func TestRenderTemplateDottedKey(t *testing.T) {
	rec := record.New()
	rec.Set("geo", map[string]interface{}{"country": "US"})

	r := NewTemplate("{{geo.country}}")
	out, err := r.Render(rec)
	if err != nil {
		t.Fatal(err)
	}
	if out != "US" {
		t.Fatalf("got %q, want US", out)
	}
}

func TestEnvInterpolationAtLoad(t *testing.T) {
	os.Setenv("EVENTGEN_TEST_VAR", "hello")
	defer os.Unsetenv("EVENTGEN_TEST_VAR")

	r := NewTemplate("greeting=%EVENTGEN_TEST_VAR%")
	if r.Template != "greeting=hello" {
		t.Fatalf("got %q", r.Template)
	}
}

func TestEnvInterpolationPreservesUnsetLiteral(t *testing.T) {
	os.Unsetenv("EVENTGEN_TEST_UNSET_VAR")
	r := NewTemplate("x=%EVENTGEN_TEST_UNSET_VAR%")
	if r.Template != "x=%EVENTGEN_TEST_UNSET_VAR%" {
		t.Fatalf("got %q", r.Template)
	}
}

func TestUnescapeInterpretsTab(t *testing.T) {
	r := NewTemplate(`a\tb`)
	if r.Template != "a\tb" {
		t.Fatalf("got %q", r.Template)
	}
}
