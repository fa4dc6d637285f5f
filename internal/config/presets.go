package config

import "sort"

var Presets = map[string]*Config{
	"showcase": DefaultConfig(),
	"coarse": func() *Config {
		c := DefaultConfig()
		c.Step = 0.01
		c.Subintervals = 10
		c.Points = 50
		c.Convergence.Sweep = []int{2, 4, 8, 16, 32}
		return c
	}(),
	"fine": func() *Config {
		c := DefaultConfig()
		c.Step = 1e-5
		c.Subintervals = 1000
		c.Points = 200
		c.SampleIndices = []int{0, 50, 100, 150, 199}
		c.Convergence.Sweep = []int{10, 20, 40, 80, 160, 320, 640, 1280}
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil if there is none.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
