package config

import "sort"

// Presets holds named starting points. Each entry is applied on top of
// DefaultConfig.
var Presets = map[string]func(*Config){
	"gentle": func(c *Config) {
		c.Initial = InitialConfig{Theta1: 15, Theta2: 15}
		c.TMax = 30
	},
	"symmetric": func(c *Config) {
		c.Initial = InitialConfig{Theta1: 90, Theta2: 90}
		c.TMax = 30
	},
	"chaos": func(c *Config) {
		c.Initial = InitialConfig{Theta1: 120, Theta2: 135}
		c.TMax = 60
	},
	"energy": func(c *Config) {
		c.Initial = InitialConfig{Theta1: 180, Omega1: 360, Theta2: 0, Omega2: -360}
		c.Physics.M2 = 2
		c.TMax = 20
		c.Dt = 0.005
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
