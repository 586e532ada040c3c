package util

import (
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"
)

// Data is a generic map type for template rendering context.
type Data map[string]interface{}

// Render executes the given template with the provided variables.
func Render(tmpl *template.Template, variables Data) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", errors.Wrap(err, "failed to render template")
	}
	return buf.String(), nil
}

// RenderString parses and executes the given template string with the
// provided variables.
func RenderString(tmplStr string, variables Data) (string, error) {
	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template string")
	}
	return Render(tmpl, variables)
}

// MustRenderString parses and executes the given template string, panicking
// on error. Intended for templates that are compile-time constants.
func MustRenderString(tmplStr string, variables Data) string {
	s, err := RenderString(tmplStr, variables)
	if err != nil {
		panic(err)
	}
	return s
}

// ShortDuration trims the trailing zero units that time.Duration.String
// leaves behind, so 1h0m0s renders as "1h" and 2m0s as "2m".
func ShortDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}
