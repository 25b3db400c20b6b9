// Package config loads the YAML-configured knobs for every subsystem,
// following the teacher's per-subsystem struct + Default...Config()
// constructor idiom (see internal/gates.DefaultEntryGateConfig in the
// reference corpus).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// RegistryConfig governs the registry client's pagination, rate limiting,
// and retry behavior (§4.1, §5).
type RegistryConfig struct {
	BaseURL         string        `yaml:"base_url"`
	PageSize        int           `yaml:"page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
	RequestsPerMin  float64       `yaml:"requests_per_min"`
	Burst           int           `yaml:"burst"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	MaxBackoff      time.Duration `yaml:"max_backoff"`
}

// DefaultRegistryConfig matches §5's default rate limit and §4.1's retry
// budget.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		PageSize:       100,
		MaxPageSize:    1000,
		RequestsPerMin: 300,
		Burst:          20,
		RequestTimeout: 45 * time.Second,
		MaxRetries:     3,
		MaxBackoff:     30 * time.Second,
	}
}

// ResolverConfig carries the logistic model weights, intercept, and
// decision thresholds (§4.4).
type ResolverConfig struct {
	Intercept      float64            `yaml:"intercept"`
	Weights        map[string]float64 `yaml:"weights"`
	TauAccept      float64            `yaml:"tau_accept"`
	ReviewLow      float64            `yaml:"review_low"`
	MinTop2Margin  float64            `yaml:"min_top2_margin"`
	CandidateTopK  int                `yaml:"candidate_top_k"`
	BatchTopK      int                `yaml:"batch_top_k"`
	AcademicPCap   float64            `yaml:"academic_p_cap"` // bounds p_top when academic_keyword_penalty fires
}

// DefaultResolverConfig matches the weights implied by §4.4's feature list
// and the §8 scenario thresholds (review_low=0.6).
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Intercept: -2.5,
		Weights: map[string]float64{
			"jw_primary":               3.2,
			"token_set_ratio":          2.1,
			"acronym_exact":            1.8,
			"domain_root_match":        2.4,
			"ticker_string_hit":        1.6,
			"academic_keyword_penalty": -3.0,
			"strong_token_overlap":     1.4,
		},
		TauAccept:     0.85,
		ReviewLow:     0.6,
		MinTop2Margin: 0.15,
		CandidateTopK: 25,
		BatchTopK:     50,
		AcademicPCap:  0.6,
	}
}

// GateConfig is the gate & posterior engine's global bounds, per-gate
// likelihood ratios, and stop-rule levels (§4.7, §6).
type GateConfig struct {
	Global     GlobalBounds            `yaml:"global"`
	Gates      map[string]GateLRConfig `yaml:"gates"`
	StopRules  map[string]StopRuleCfg  `yaml:"stop_rules"`
	PriorTable PriorAdjustments        `yaml:"prior_table"`
}

// GlobalBounds clamps every step of the logit-space combine.
type GlobalBounds struct {
	PriorFloor float64 `yaml:"prior_floor"`
	PriorCeil  float64 `yaml:"prior_ceil"`
	LRMin      float64 `yaml:"lr_min"`
	LRMax      float64 `yaml:"lr_max"`
	LogitMin   float64 `yaml:"logit_min"`
	LogitMax   float64 `yaml:"logit_max"`
}

// GateLRConfig is a single gate's baseline LR plus optional
// severity-indexed overrides.
type GateLRConfig struct {
	LR         float64            `yaml:"lr"`
	BySeverity map[string]float64 `yaml:"by_severity"`
}

// StopRuleCfg is a stop rule's forced posterior level.
type StopRuleCfg struct {
	Level float64 `yaml:"level"`
}

// PriorAdjustments are multiplicative prior adjustments keyed by trial
// metadata attribute.
type PriorAdjustments struct {
	Default     float64 `yaml:"default"`
	Pivotal     float64 `yaml:"pivotal"`
	Oncology    float64 `yaml:"oncology"`
	RareDisease float64 `yaml:"rare_disease"`
	Phase3      float64 `yaml:"phase3"`
	Phase1      float64 `yaml:"phase1"`
}

// DefaultGateConfig mirrors §4.7's worked example (G1 by_severity
// {H:8.0, M:3.0}) and sane global bounds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Global: GlobalBounds{
			PriorFloor: 0.01,
			PriorCeil:  0.95,
			LRMin:      1.0 / 50.0,
			LRMax:      50.0,
			LogitMin:   -10,
			LogitMax:   10,
		},
		Gates: map[string]GateLRConfig{
			"G1": {LR: 5.0, BySeverity: map[string]float64{"H": 8.0, "M": 3.0, "L": 1.5}},
			"G2": {LR: 4.0, BySeverity: map[string]float64{"H": 6.0, "M": 2.5, "L": 1.3}},
			"G3": {LR: 3.0, BySeverity: map[string]float64{"H": 5.0, "M": 2.0, "L": 1.2}},
			"G4": {LR: 3.5, BySeverity: map[string]float64{"H": 6.0, "M": 2.5, "L": 1.3}},
		},
		StopRules: map[string]StopRuleCfg{
			"endpoint_switched_after_LPR":             {Level: 0.92},
			"pp_only_success_with_missing_itt_gt20":    {Level: 0.85},
			"unblinded_subjective_primary_feasible_blinding": {Level: 0.80},
		},
		PriorTable: PriorAdjustments{
			Default:     0.15,
			Pivotal:     1.2,
			Oncology:    1.1,
			RareDisease: 0.9,
			Phase3:      1.1,
			Phase1:      0.8,
		},
	}
}

// CatalystConfig governs hint weighting and fusion (§4.8).
type CatalystConfig struct {
	ExactDateWeight  float64 `yaml:"exact_date_weight"`
	QuarterWeight    float64 `yaml:"quarter_weight"`
	HalfWeight       float64 `yaml:"half_weight"`
	YearWeight       float64 `yaml:"year_weight"`
	ConferenceWeight float64 `yaml:"conference_weight"`
	BaseAnchorWeight float64 `yaml:"base_anchor_weight"`
	RecencyHalfLife  float64 `yaml:"recency_half_life_days"`
	MaxSlipShiftDays float64 `yaml:"max_slip_shift_days"`
	MinSlipShiftDays float64 `yaml:"min_slip_shift_days"`
	MaxWidenPadDays  float64 `yaml:"max_widen_pad_days"`
}

// DefaultCatalystConfig matches the weights named in §4.8.
func DefaultCatalystConfig() CatalystConfig {
	return CatalystConfig{
		ExactDateWeight:  0.95,
		QuarterWeight:    0.60,
		HalfWeight:       0.60,
		YearWeight:       0.60,
		ConferenceWeight: 0.80,
		BaseAnchorWeight: 0.40,
		RecencyHalfLife:  180,
		MaxSlipShiftDays: 75,
		MinSlipShiftDays: -30,
		MaxWidenPadDays:  14,
	}
}

// HTTPConfig governs the health/metrics server (§6).
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultHTTPConfig binds the health/metrics server to localhost only;
// operators reverse-proxy it if external exposure is needed.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{ListenAddr: "127.0.0.1:8080"}
}

// Root is the top-level config tree loaded from a single YAML file at
// startup.
type Root struct {
	DatabaseDSN   string          `yaml:"database_dsn"`
	RegistryURL   string          `yaml:"registry_url"`
	ExtractorKey  string          `yaml:"extractor_api_key"`
	LLMKey        string          `yaml:"llm_api_key"`
	Registry      RegistryConfig  `yaml:"registry"`
	Resolver      ResolverConfig  `yaml:"resolver"`
	Gate          GateConfig      `yaml:"gate"`
	Catalyst      CatalystConfig  `yaml:"catalyst"`
	HTTP          HTTPConfig      `yaml:"http"`
	ConfigRevision string         `yaml:"config_revision"`
}

// DefaultRoot seeds every subsystem's defaults; Load overlays file/env
// content on top of this.
func DefaultRoot() Root {
	return Root{
		Registry:       DefaultRegistryConfig(),
		Resolver:       DefaultResolverConfig(),
		Gate:           DefaultGateConfig(),
		Catalyst:       DefaultCatalystConfig(),
		HTTP:           DefaultHTTPConfig(),
		ConfigRevision: "dev",
	}
}

// Load reads a YAML config file and overlays it onto the defaults.
// Absence of a DSN after loading (file + env) is a Fatal condition per
// §6/§7 — callers must check Root.DatabaseDSN themselves since Load does
// not know whether env overlay has happened yet.
func Load(path string) (Root, error) {
	root := DefaultRoot()
	if path == "" {
		return root, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return root, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &root); err != nil {
		return root, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return root, nil
}

// ApplyEnv overlays recognized environment variables onto a loaded Root,
// per §6's environment-variable contract. Returns an error describing
// which Fatal precondition is unmet, but does not exit the process —
// that decision belongs to the caller (cmd/ncfd).
func ApplyEnv(root Root, getenv func(string) string) (Root, error) {
	if v := getenv("NCFD_DATABASE_DSN"); v != "" {
		root.DatabaseDSN = v
	}
	if v := getenv("NCFD_REGISTRY_URL"); v != "" {
		root.RegistryURL = v
		root.Registry.BaseURL = v
	}
	if v := getenv("NCFD_EXTRACTOR_API_KEY"); v != "" {
		root.ExtractorKey = v
	}
	if v := getenv("NCFD_LLM_API_KEY"); v != "" {
		root.LLMKey = v
	}
	if root.DatabaseDSN == "" {
		return root, fmt.Errorf("%w: NCFD_DATABASE_DSN is required", ErrMissingDSN)
	}
	return root, nil
}

// ErrMissingDSN is the sentinel Fatal condition for a missing database DSN.
var ErrMissingDSN = fmt.Errorf("missing database dsn")
