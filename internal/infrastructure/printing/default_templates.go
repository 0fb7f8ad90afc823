package printing

import (
	"embed"
	"fmt"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// DefaultTemplateName is the form used when no template is configured
const DefaultTemplateName = "ics109"

// LoadTemplateContent reads an embedded template definition by name
func LoadTemplateContent(name string) ([]byte, error) {
	content, err := templateFS.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded template %s: %w", name, err)
	}
	return content, nil
}

// DefaultTemplate parses the embedded ICS-109 form
func DefaultTemplate() (*FormTemplate, error) {
	content, err := LoadTemplateContent(DefaultTemplateName)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateInvalid, "default template missing", err)
	}
	return ParseTemplate(content, "")
}
