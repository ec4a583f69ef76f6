package documents

import (
	_ "embed"
	"fmt"

	"github.com/wolfeidau/clientportal/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Template is the starter title and markdown for a document type.
type Template struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

var templates = mustLoadTemplates(defaultsYAML)

// DefaultTemplate returns the starter template for t.
func DefaultTemplate(t models.DocType) (Template, bool) {
	tmpl, ok := templates[t]
	return tmpl, ok
}

func mustLoadTemplates(data []byte) map[models.DocType]Template {
	tmpls, err := loadTemplates(data)
	if err != nil {
		panic(fmt.Sprintf("documents: invalid defaults.yaml: %v", err))
	}
	return tmpls
}

// loadTemplates parses the defaults file and checks it covers exactly the required types.
func loadTemplates(data []byte) (map[models.DocType]Template, error) {
	var raw map[string]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	tmpls := make(map[models.DocType]Template, len(raw))
	for key, tmpl := range raw {
		docType, err := models.ParseDocType(key)
		if err != nil {
			return nil, err
		}
		if tmpl.Title == "" {
			return nil, fmt.Errorf("document type %q has no title", key)
		}
		tmpls[docType] = tmpl
	}

	for _, docType := range models.RequiredDocTypes {
		if _, ok := tmpls[docType]; !ok {
			return nil, fmt.Errorf("document type %q has no template", docType)
		}
	}

	return tmpls, nil
}
