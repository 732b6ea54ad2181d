package config

type Feature int

const (
	FeatComments Feature = iota
	FeatCount
)

type Warning int

const (
	WarnUnusedVar Warning = iota
	WarnShadowGlobal
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning

	// Target-program numbering, applied by the address resolver.
	StartAddress  int
	AddressStride int

	// MaxErrors caps accumulated diagnostics per run; 0 means unlimited.
	MaxErrors int
}

func NewConfig() *Config {
	cfg := &Config{
		Features:      make(map[Feature]Info),
		Warnings:      make(map[Warning]Info),
		FeatureMap:    make(map[string]Feature),
		WarningMap:    make(map[string]Warning),
		StartAddress:  10,
		AddressStride: 10,
		MaxErrors:     0,
	}

	features := map[Feature]Info{
		FeatComments: {"comments", true, "Recognize '//' line comments."},
	}

	warnings := map[Warning]Info{
		WarnUnusedVar:    {"unused-var", true, "Warn about declared variables that are never referenced."},
		WarnShadowGlobal: {"shadow-global", true, "Warn when a parameter or local hides a global variable."},
		WarnExtra:        {"extra", false, "Enable extra miscellaneous warnings."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// SetAllWarnings flips every warning at once, as for -Wall / -Wno-all.
func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		c.SetWarning(i, enabled)
	}
}
