package config

import "fmt"

// tree is the parsed value tree shared by the file and resource variants.
type tree struct {
	source string
	values map[string]any
}

func (t tree) sub(key string) tree {
	child, _ := t.values[key].(map[string]any)
	if child == nil {
		child = map[string]any{}
	}
	return tree{source: t.source + "#" + key, values: child}
}

func (t tree) value(key string, def any) any {
	v, ok := t.values[key]
	if !ok || v == nil {
		return def
	}
	return v
}

// FileConfig is a configuration parsed from a filesystem path.
type FileConfig struct {
	tree
}

// NewFileConfig wraps already-parsed values read from path.
func NewFileConfig(path string, values map[string]any) FileConfig {
	return FileConfig{tree{source: path, values: normalizeMap(values)}}
}

// SubConfig returns the subtree under key; missing subtrees are empty.
func (c FileConfig) SubConfig(key string) Config { return FileConfig{c.sub(key)} }

// ValueOrDefault returns the stored value or def.
func (c FileConfig) ValueOrDefault(key string, def any) any { return c.value(key, def) }

// Kind returns KindFile.
func (FileConfig) Kind() Kind { return KindFile }

// Source returns the path (and subtree suffix) this view was read from.
func (c FileConfig) Source() string { return c.source }

// ResourceConfig is a configuration parsed from a resource locator.
type ResourceConfig struct {
	tree
}

// NewResourceConfig wraps already-parsed values fetched from locator.
func NewResourceConfig(locator string, values map[string]any) ResourceConfig {
	return ResourceConfig{tree{source: locator, values: normalizeMap(values)}}
}

// SubConfig returns the subtree under key; missing subtrees are empty.
func (c ResourceConfig) SubConfig(key string) Config { return ResourceConfig{c.sub(key)} }

// ValueOrDefault returns the stored value or def.
func (c ResourceConfig) ValueOrDefault(key string, def any) any { return c.value(key, def) }

// Kind returns KindResource.
func (ResourceConfig) Kind() Kind { return KindResource }

// Source returns the locator (and subtree suffix) this view was read from.
func (c ResourceConfig) Source() string { return c.source }

// normalizeMap converts decoder-specific map shapes into map[string]any all
// the way down.
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeMap(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[fmt.Sprint(k)] = normalizeValue(inner)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeValue(inner)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeMap(inner)
		}
		return out
	default:
		return v
	}
}
