// Package tmpl provides template rendering utilities for report output.
package tmpl

import (
	"bytes"
	"fmt"
	"text/template"
)

// formatMS renders a millisecond timestamp as "Nms".
func formatMS(ms int64) string {
	return fmt.Sprintf("%dms", ms)
}

// formatPct renders a ratio as a percentage with one decimal place.
func formatPct(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

var funcs = template.FuncMap{
	"ms":  formatMS,
	"pct": formatPct,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - ms: Format a millisecond timestamp as "Nms"
//   - pct: Format part/total as a percentage
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
