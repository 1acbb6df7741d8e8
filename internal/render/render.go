// Package render converts a record.Record into its wire form: either a
// compact JSON line (the default) or a user-supplied template with
// {{ key }} / {{ key | strftime-format }} placeholder substitution.
//
// Grounded on the Python source's DataDriver.render_record/render_template/
// apply_pattern (original_source/ieg/core.py) and generator.py's
// unicode_escape decoding of the template file on load.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/implydata/imply-eventgenerator/internal/record"
)

// placeholderRE matches {{ key }} or {{ key | format }}, mirroring the
// Python source's TEMPLATE_REGEX.
var placeholderRE = regexp.MustCompile(`{{\s*([^|}]+?)(?:\|([^}]+))?\s*}}`)

// envRE matches %NAME% environment-variable placeholders.
var envRE = regexp.MustCompile(`%(\w+)%`)

// isoMillisLayout is the layout every timestamp/time dimension renders
// with; the template engine parses back through it to recover a real
// instant when a strftime format is requested.
const isoMillisLayout = "2006-01-02T15:04:05.000"

// Renderer turns a Record into its final wire string. The zero value (no
// Template set) renders canonical JSON.
type Renderer struct {
	// Template is the pattern string, already environment-interpolated and
	// escape-unescaped at load time. Empty means "render JSON".
	Template string
}

// NewDefault returns a Renderer that emits canonical JSON lines.
func NewDefault() *Renderer { return &Renderer{} }

// NewTemplate builds a Renderer from a raw template file's contents:
// environment variables are interpolated first (%NAME% -> getenv, literal
// preserved if unset), then backslash escape sequences are interpreted so
// a literal "\t" in the file becomes a real tab.
func NewTemplate(raw string) *Renderer {
	return &Renderer{Template: unescape(interpolateEnv(raw))}
}

// Render produces the final line for rec.
func (r *Renderer) Render(rec *record.Record) (string, error) {
	if r == nil || r.Template == "" {
		return renderJSON(rec)
	}
	return applyPattern(r.Template, rec)
}

// renderJSON serializes rec as a compact JSON object, preserving the
// emitter's field order (time first), the way the distilled spec requires
// for the default rendering mode.
func renderJSON(rec *record.Record) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range rec.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return "", fmt.Errorf("render: marshaling key %q: %w", key, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(rec.Values[key])
		if err != nil {
			return "", fmt.Errorf("render: marshaling field %q: %w", key, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// applyPattern walks pattern, substituting every {{ key }} / {{ key | fmt }}
// placeholder against rec. Only string patterns are supported directly;
// a caller rendering a nested structure of template strings (a JSON object
// target format, say) should call applyPattern per leaf string itself.
func applyPattern(pattern string, rec *record.Record) (string, error) {
	var substErr error
	out := placeholderRE.ReplaceAllStringFunc(pattern, func(match string) string {
		groups := placeholderRE.FindStringSubmatch(match)
		key := strings.TrimSpace(groups[1])
		format := strings.TrimSpace(groups[2])

		value, ok := rec.Get(key)
		if !ok || value == nil {
			return ""
		}
		if format != "" {
			if t, ok := parseRenderedTime(value); ok {
				s, err := strftime(t, format)
				if err != nil {
					substErr = fmt.Errorf("render: key %q: %w", key, err)
					return ""
				}
				return s
			}
		}
		return fmt.Sprint(value)
	})
	if substErr != nil {
		return "", substErr
	}
	return out, nil
}

// parseRenderedTime recovers the time.Time behind a dimension's already
// ISO-ms-formatted string value, so a template's strftime pipe can
// reformat it. Non-time-shaped values report ok=false and render via
// fmt.Sprint instead.
func parseRenderedTime(value interface{}) (time.Time, bool) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	if t, err := time.Parse(isoMillisLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// interpolateEnv replaces every %NAME% in s with the value of the NAME
// environment variable, preserving the literal when unset.
func interpolateEnv(s string) string {
	return envRE.ReplaceAllStringFunc(s, func(m string) string {
		name := envRE.FindStringSubmatch(m)[1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})
}

// unescape interprets backslash escape sequences in a raw template-file
// string ("\t", "\n", "\r", "\\", "\"") the way generator.py's
// unicode_escape codec does when the template file is first read.
func unescape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		default:
			sb.WriteByte(s[i])
			sb.WriteByte(s[i+1])
		}
		i++
	}
	return sb.String()
}

// strftimeDirectives maps the subset of Python strftime directives the
// spec's templates actually use to Go's reference-time layout tokens.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
	'f': "000000",
	'p': "PM",
	'A': "Monday",
	'a': "Mon",
	'B': "January",
	'b': "Jan",
	'Z': "MST",
	'z': "-0700",
}

// strftime renders t using a Python-style strftime format string (e.g.
// "%Y-%m-%d"), translated directive-by-directive into a Go layout.
func strftime(t time.Time, format string) (string, error) {
	var layout strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i == len(format)-1 {
			layout.WriteByte(format[i])
			continue
		}
		i++
		token, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("invalid strftime directive %q", "%"+string(format[i]))
		}
		layout.WriteString(token)
	}
	return t.Format(layout.String()), nil
}
