package config

var Presets = map[string]map[string]*Config{
	"elimination": {
		"reference": {
			Model: "elimination", T0: 0, TEnd: 1, Dt: 0.001, Runs: 1000, Seed: 1,
			Y0: []float64{1}, Params: map[string]float64{"ke": 1.0, "ke_iov": 1.0},
		},
		"quiet": {
			Model: "elimination", T0: 0, TEnd: 1, Dt: 0.001, Runs: 200, Seed: 1,
			Y0: []float64{1}, Params: map[string]float64{"ke": 1.0, "ke_iov": 0.1},
		},
		"fast": {
			Model: "elimination", T0: 0, TEnd: 5, Dt: 0.01, Runs: 500, Seed: 1,
			Y0: []float64{10}, Params: map[string]float64{"ke": 2.0, "ke_iov": 0.5},
		},
	},
	"decay": {
		"unit": {
			Model: "decay", T0: 0, TEnd: 1, Dt: 0.001, Runs: 1, Seed: 1,
			Y0: []float64{1}, Params: map[string]float64{"k": 1.0},
		},
		"coarse": {
			Model: "decay", T0: 0, TEnd: 1, Dt: 0.1, Runs: 1, Seed: 1,
			Y0: []float64{1}, Params: map[string]float64{"k": 1.0},
		},
	},
	"ou": {
		"stationary": {
			Model: "ou", T0: 0, TEnd: 10, Dt: 0.01, Runs: 500, Seed: 1,
			Y0: []float64{0}, Params: map[string]float64{"theta": 1.5, "mu": 1.0, "sigma": 0.3},
		},
		"stiff": {
			Model: "ou", T0: 0, TEnd: 2, Dt: 0.001, Runs: 200, Seed: 1,
			Y0: []float64{3}, Params: map[string]float64{"theta": 20, "mu": 0, "sigma": 1},
		},
	},
	"langevin": {
		"underdamped": {
			Model: "langevin", T0: 0, TEnd: 10, Dt: 0.001, Runs: 200, Seed: 1,
			Y0: []float64{1, 0}, Params: map[string]float64{"gamma": 0.5, "omega": 2, "sigma": 0.2},
		},
	},
	"gbm": {
		"market": {
			Model: "gbm", T0: 0, TEnd: 1, Dt: 1.0 / 252, Runs: 1000, Seed: 1,
			Y0: []float64{100}, Params: map[string]float64{"mu": 0.05, "sigma": 0.2},
		},
		"volatile": {
			Model: "gbm", T0: 0, TEnd: 1, Dt: 1.0 / 252, Runs: 1000, Seed: 1,
			Y0: []float64{100}, Params: map[string]float64{"mu": 0.0, "sigma": 0.8}, StopAbove: 400,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Y0 = append([]float64(nil), cfg.Y0...)
	c.Params = make(map[string]float64, len(cfg.Params))
	for k, v := range cfg.Params {
		c.Params[k] = v
	}
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
