package config

import (
	"encoding/json"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Render serializes a value tree in the requested format.
func Render(values map[string]any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(values)
	case FormatTOML:
		return toml.Marshal(values)
	case FormatJSON:
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// RenderDefault serializes the bundled default configuration. YAML is
// returned verbatim to keep its key order and layout.
func RenderDefault(format Format) ([]byte, error) {
	doc := DefaultDocument()
	if format == FormatYAML {
		return doc, nil
	}
	values, err := Parse(doc, FormatYAML)
	if err != nil {
		return nil, err
	}
	return Render(values, format)
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTOML:
		return FormatTOML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config format %q (want yaml, toml or json)", s)
	}
}
