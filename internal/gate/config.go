package gate

// GlobalConfig holds the clamp bounds shared across every gate
// evaluation (§6: `global: {prior_floor, prior_ceil, lr_min, lr_max,
// logit_min, logit_max}`).
type GlobalConfig struct {
	Prior    PriorConfig `yaml:"prior"`
	LRMin    float64     `yaml:"lr_min"`
	LRMax    float64     `yaml:"lr_max"`
	LogitMin float64     `yaml:"logit_min"`
	LogitMax float64     `yaml:"logit_max"`
}

// EngineConfig is the full configuration the Gate & Posterior Engine
// loads from YAML at startup (§6).
type EngineConfig struct {
	Revision  string          `yaml:"revision"`
	Global    GlobalConfig    `yaml:"global"`
	Gates     Configs         `yaml:"gates"`
	StopRules StopRuleConfigs `yaml:"stop_rules"`
}

// DefaultEngineConfig wires together the per-component defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Revision: "v1",
		Global: GlobalConfig{
			Prior:    DefaultPriorConfig(),
			LRMin:    1.0,
			LRMax:    50.0,
			LogitMin: -6.0,
			LogitMax: 6.0,
		},
		Gates:     DefaultConfigs(),
		StopRules: DefaultStopRuleConfigs(),
	}
}
