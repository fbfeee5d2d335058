// Package config models detekt's configuration: a read-only tree of values
// looked up by key with caller-supplied defaults, and the resolver that picks
// exactly one configuration source for a run.
package config

// Config is the lookup surface every rule set, processor and the threshold
// gate read from. Lookups never fail: an absent key yields the caller's
// default and an absent subtree yields an empty view.
type Config interface {
	// SubConfig returns the subtree stored under key.
	SubConfig(key string) Config

	// ValueOrDefault returns the raw value stored under key, or def when
	// the key is absent or null.
	ValueOrDefault(key string, def any) any

	// Kind reports which variant backs this configuration.
	Kind() Kind
}

// Kind tags the closed set of configuration variants.
type Kind string

const (
	// KindFile is a configuration parsed from a filesystem path.
	KindFile Kind = "file"
	// KindResource is a configuration parsed from a resource locator.
	KindResource Kind = "resource"
	// KindFormatting is the synthetic formatting-mode override.
	KindFormatting Kind = "formatting"
	// KindEmpty answers every lookup with the caller's default.
	KindEmpty Kind = "empty"
	// KindComposite layers a primary configuration over a fallback.
	KindComposite Kind = "composite"
)

// Well-known keys.
const (
	KeyAutoCorrect = "autoCorrect"
	KeyUseTabs     = "useTabs"
	KeyActive      = "active"
	KeyThreshold   = "threshold"
	KeyExcludes    = "excludes"
)

// EmptyConfig is the default configuration used when no source is given.
type EmptyConfig struct{}

// Empty is the shared EmptyConfig value.
var Empty Config = EmptyConfig{}

// SubConfig returns the empty configuration itself.
func (EmptyConfig) SubConfig(string) Config { return Empty }

// ValueOrDefault always returns def.
func (EmptyConfig) ValueOrDefault(_ string, def any) any { return def }

// Kind returns KindEmpty.
func (EmptyConfig) Kind() Kind { return KindEmpty }

// FormattingConfig forces auto-correction without any configuration file.
// Every subtree is the configuration itself, so the override applies at any
// nesting depth.
type FormattingConfig struct {
	UseTabs bool
}

// SubConfig returns the formatting configuration itself.
func (f FormattingConfig) SubConfig(string) Config { return f }

// ValueOrDefault answers autoCorrect with true and useTabs with the tab
// preference; everything else falls back to def.
func (f FormattingConfig) ValueOrDefault(key string, def any) any {
	switch key {
	case KeyAutoCorrect:
		return true
	case KeyUseTabs:
		return f.UseTabs
	default:
		return def
	}
}

// Kind returns KindFormatting.
func (FormattingConfig) Kind() Kind { return KindFormatting }

// CompositeConfig consults Primary first and Fallback for anything Primary
// does not define.
type CompositeConfig struct {
	Primary  Config
	Fallback Config
}

// Compose layers primary over fallback. A nil side is treated as Empty.
func Compose(primary, fallback Config) Config {
	if primary == nil {
		primary = Empty
	}
	if fallback == nil {
		fallback = Empty
	}
	return CompositeConfig{Primary: primary, Fallback: fallback}
}

// SubConfig composes the two subtrees stored under key.
func (c CompositeConfig) SubConfig(key string) Config {
	return CompositeConfig{Primary: c.Primary.SubConfig(key), Fallback: c.Fallback.SubConfig(key)}
}

// ValueOrDefault returns the primary value, then the fallback value, then def.
func (c CompositeConfig) ValueOrDefault(key string, def any) any {
	return c.Primary.ValueOrDefault(key, c.Fallback.ValueOrDefault(key, def))
}

// Kind returns KindComposite.
func (CompositeConfig) Kind() Kind { return KindComposite }
