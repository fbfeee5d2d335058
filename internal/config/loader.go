package config

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	derrors "detekt/internal/errors"
	"detekt/internal/version"
)

//go:embed resources/*.yml
var builtinResources embed.FS

// DefaultResource is the locator of the bundled default configuration.
const DefaultResource = "builtin:default-detekt-config.yml"

// BuiltinScheme prefixes locators served from the bundled resources.
const BuiltinScheme = "builtin:"

const maxRemoteConfigBytes = 4 << 20

// Loader loads a configuration from an explicit source.
type Loader interface {
	// LoadPath parses the configuration file at path.
	LoadPath(path string) (Config, error)
	// LoadResource parses the configuration behind locator.
	LoadResource(locator string) (Config, error)
}

// Format is a configuration serialization format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromName picks the format from a file name's extension; unknown
// extensions are treated as YAML.
func FormatFromName(name string) Format {
	switch strings.ToLower(path.Ext(filepath.ToSlash(name))) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// DefaultLoader reads files from disk, bundled resources, file:// URLs and
// http(s):// URLs.
type DefaultLoader struct {
	client    *http.Client
	resources fs.FS
}

// LoaderOption configures a DefaultLoader.
type LoaderOption func(*DefaultLoader)

// WithHTTPClient replaces the client used for http(s) locators.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *DefaultLoader) { l.client = c }
}

// WithResources replaces the bundled resource filesystem.
func WithResources(fsys fs.FS) LoaderOption {
	return func(l *DefaultLoader) { l.resources = fsys }
}

// NewLoader creates a loader backed by the bundled resources.
func NewLoader(opts ...LoaderOption) *DefaultLoader {
	sub, _ := fs.Sub(builtinResources, "resources")
	l := &DefaultLoader{
		client:    &http.Client{Timeout: 30 * time.Second},
		resources: sub,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPath parses the file at p.
func (l *DefaultLoader) LoadPath(p string) (Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, loadError(p, "cannot read configuration file", err)
	}
	values, err := Parse(data, FormatFromName(p))
	if err != nil {
		return nil, loadError(p, "malformed configuration file", err)
	}
	return NewFileConfig(p, values), nil
}

// LoadResource parses the configuration behind locator. Bare names and
// builtin: locators address the bundled resources.
func (l *DefaultLoader) LoadResource(locator string) (Config, error) {
	data, name, err := l.fetch(locator)
	if err != nil {
		return nil, loadError(locator, "cannot read configuration resource", err)
	}
	values, err := Parse(data, FormatFromName(name))
	if err != nil {
		return nil, loadError(locator, "malformed configuration resource", err)
	}
	return NewResourceConfig(locator, values), nil
}

// fetch returns the raw bytes and the name used to pick a format.
func (l *DefaultLoader) fetch(locator string) ([]byte, string, error) {
	if strings.HasPrefix(locator, BuiltinScheme) {
		name := strings.TrimPrefix(locator, BuiltinScheme)
		data, err := fs.ReadFile(l.resources, name)
		return data, name, err
	}

	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" {
		data, rerr := fs.ReadFile(l.resources, locator)
		return data, locator, rerr
	}

	switch u.Scheme {
	case "file":
		data, err := os.ReadFile(filepath.FromSlash(u.Path))
		return data, u.Path, err
	case "http", "https":
		data, err := l.download(u.String())
		return data, u.Path, err
	default:
		return nil, "", fmt.Errorf("unsupported resource scheme %q", u.Scheme)
	}
}

func (l *DefaultLoader) download(rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteConfigBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxRemoteConfigBytes {
		return nil, fmt.Errorf("configuration exceeds %d bytes", maxRemoteConfigBytes)
	}
	return data, nil
}

// Parse decodes data into a value tree. An empty document is an empty
// configuration; a document whose root is not a mapping is malformed.
func Parse(data []byte, format Format) (map[string]any, error) {
	values := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}

	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &values)
	case FormatJSON:
		err = json.Unmarshal(data, &values)
	default:
		var root yaml.Node
		if err = yaml.Unmarshal(data, &root); err != nil {
			break
		}
		if len(root.Content) == 0 {
			return values, nil
		}
		if root.Content[0].Kind != yaml.MappingNode {
			return nil, fmt.Errorf("root of configuration must be a mapping, got %s", nodeKind(root.Content[0].Kind))
		}
		err = root.Decode(&values)
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// LoadDefault returns the bundled default configuration.
func LoadDefault() Config {
	cfg, err := NewLoader().LoadResource(DefaultResource)
	if err != nil {
		// The bundled resource is compiled in; failing to parse it is a build defect.
		panic(err)
	}
	return cfg
}

// DefaultDocument returns the raw bundled default configuration.
func DefaultDocument() []byte {
	data, err := builtinResources.ReadFile("resources/default-detekt-config.yml")
	if err != nil {
		panic(err)
	}
	return data
}

func loadError(source, message string, cause error) error {
	return derrors.New(derrors.ConfigLoadFailed, message+" "+source, cause).
		WithDetails(map[string]string{"source": source})
}
