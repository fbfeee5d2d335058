package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Bool reads key as a boolean. Strings "true"/"false" are accepted; any other
// shape yields def.
func Bool(cfg Config, key string, def bool) bool {
	switch v := cfg.ValueOrDefault(key, def).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Int reads key as an integer. YAML, TOML and JSON number shapes and numeric
// strings are accepted.
func Int(cfg Config, key string, def int) int {
	if n, ok := toInt(cfg.ValueOrDefault(key, def)); ok {
		return n
	}
	return def
}

// String reads key as a string; scalars are formatted.
func String(cfg Config, key string, def string) string {
	switch v := cfg.ValueOrDefault(key, def).(type) {
	case string:
		return v
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	}
	return def
}

// StringSlice reads key as a list of strings. A single comma-separated
// string is split; empty entries are dropped.
func StringSlice(cfg Config, key string, def []string) []string {
	switch v := cfg.ValueOrDefault(key, def).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return def
}

// IntMap reads key as a map of integers, skipping non-numeric entries.
func IntMap(cfg Config, key string) map[string]int {
	raw, ok := cfg.ValueOrDefault(key, nil).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		if n, ok := toInt(v); ok {
			out[k] = n
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// IsActive reports whether a rule set or rule is switched on.
func IsActive(cfg Config, def bool) bool {
	return Bool(cfg, KeyActive, def)
}
