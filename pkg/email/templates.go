package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render executes the named template from the embedded set.
func Render(name string, data any) (string, error) {
	tpl := templates.Lookup(name)
	if tpl == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
