package config

// Selection holds the raw inputs that decide which configuration governs a run.
type Selection struct {
	Path       string
	Resource   string
	Formatting bool
	UseTabs    bool
}

// Resolve picks exactly one configuration, first match wins:
//  1. an explicit path is loaded, and a failure is returned as is;
//  2. otherwise an explicit resource locator is loaded the same way;
//  3. otherwise formatting mode yields a FormattingConfig;
//  4. otherwise the empty configuration.
//
// Explicit sources never fall through to a later step.
func Resolve(sel Selection, loader Loader) (Config, error) {
	switch {
	case sel.Path != "":
		return loader.LoadPath(sel.Path)
	case sel.Resource != "":
		return loader.LoadResource(sel.Resource)
	case sel.Formatting:
		return FormattingConfig{UseTabs: sel.UseTabs}, nil
	default:
		return Empty, nil
	}
}

// BuildUponDefault layers cfg over the bundled default configuration. Only
// file and resource configurations are layered; the synthetic variants are
// returned unchanged.
func BuildUponDefault(cfg Config, defaults Config) Config {
	switch cfg.Kind() {
	case KindFile, KindResource:
		return Compose(cfg, defaults)
	default:
		return cfg
	}
}
