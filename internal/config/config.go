// Package config loads raffle settings from layered JSONC files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/raffle/internal/graph"
	"github.com/calvinalkan/raffle/internal/raffle"
)

// FileName is the project config file name.
const FileName = ".raffle.json"

// DefaultStateDir is where the session database lives, relative to the
// working directory.
const DefaultStateDir = ".raffle"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	StateDir        string `json:"state_dir"`
	GraphBaseURL    string `json:"graph_base_url,omitempty"`
	GraphAPIVersion string `json:"graph_api_version,omitempty"`
	FetchCap        int    `json:"fetch_cap,omitempty"`
	Rules           Rules  `json:"rules"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	StateDirAbs  string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Rules is the "rules" block. Unset fields fall through to lower layers.
type Rules struct {
	Keywords         []string `json:"keywords,omitempty"`
	MatchAll         *bool    `json:"match_all,omitempty"`
	CaseSensitive    *bool    `json:"case_sensitive,omitempty"`
	MinMentions      *int     `json:"min_mentions,omitempty"`
	DistinctMentions *bool    `json:"distinct_mentions,omitempty"`
	MaxEntries       *int     `json:"max_entries,omitempty"`
	Blacklist        []string `json:"blacklist,omitempty"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		StateDir:        DefaultStateDir,
		GraphBaseURL:    graph.DefaultBaseURL,
		GraphAPIVersion: graph.DefaultAPIVersion,
		FetchCap:        graph.DefaultCap,
	}
}

// RuleConfig converts the rules block into engine rules. Unset values take
// the engine defaults.
func (r Rules) RuleConfig() raffle.RuleConfig {
	cfg := raffle.DefaultRules()

	for _, kw := range r.Keywords {
		cfg.Keywords = append(cfg.Keywords, raffle.ParseKeywords(kw)...)
	}

	cfg.MatchAll = deref(r.MatchAll)
	cfg.CaseSensitive = deref(r.CaseSensitive)
	cfg.MinMentions = deref(r.MinMentions)
	cfg.DistinctMentions = deref(r.DistinctMentions)

	if r.MaxEntries != nil {
		cfg.MaxEntriesPerUser = *r.MaxEntries
	}

	cfg.Blacklist = raffle.BlacklistOf(r.Blacklist...)

	return cfg
}

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/raffle/config.json if set, otherwise
// ~/.config/raffle/config.json. Empty if neither variable is set.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "raffle", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "raffle", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride  string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	StateDirOverride *string           // --state-dir flag value; nil means no override
	Env              map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/raffle/config.json)
// 3. Project config file (.raffle.json, if it exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg := Default()

	globalCfg, globalCfgPath, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalCfgPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	if input.StateDirOverride != nil {
		cfg.StateDir = *input.StateDirOverride
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.StateDir) {
		cfg.StateDirAbs = cfg.StateDir
	} else {
		cfg.StateDirAbs = filepath.Join(workDir, cfg.StateDir)
	}

	return cfg, nil
}

func loadGlobal(env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadFile(path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadProject loads .raffle.json from workDir, or configPath when given.
func loadProject(workDir, configPath string) (Config, string, error) {
	cfgFile := filepath.Join(workDir, FileName)
	mustExist := false

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	}

	cfg, loaded, err := loadFile(cfgFile, mustExist)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, cfgFile, nil
}

// loadFile loads a config file. If mustExist is false, missing files return
// zero config and loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	// A file may not blank out the state dir.
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["state_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			return Config{}, ErrStateDirEmpty
		}
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.StateDir != "" {
		base.StateDir = overlay.StateDir
	}

	if overlay.GraphBaseURL != "" {
		base.GraphBaseURL = overlay.GraphBaseURL
	}

	if overlay.GraphAPIVersion != "" {
		base.GraphAPIVersion = overlay.GraphAPIVersion
	}

	if overlay.FetchCap != 0 {
		base.FetchCap = overlay.FetchCap
	}

	base.Rules = mergeRules(base.Rules, overlay.Rules)

	return base
}

func mergeRules(base, overlay Rules) Rules {
	if overlay.Keywords != nil {
		base.Keywords = overlay.Keywords
	}

	if overlay.Blacklist != nil {
		base.Blacklist = overlay.Blacklist
	}

	base.MatchAll = firstSet(overlay.MatchAll, base.MatchAll)
	base.CaseSensitive = firstSet(overlay.CaseSensitive, base.CaseSensitive)
	base.MinMentions = firstSet(overlay.MinMentions, base.MinMentions)
	base.DistinctMentions = firstSet(overlay.DistinctMentions, base.DistinctMentions)
	base.MaxEntries = firstSet(overlay.MaxEntries, base.MaxEntries)

	return base
}

func validate(cfg Config) error {
	if cfg.StateDir == "" {
		return ErrStateDirEmpty
	}

	if cfg.FetchCap < 0 {
		return fmt.Errorf("%w: fetch_cap must be >= 0, got %d", ErrConfigInvalid, cfg.FetchCap)
	}

	err := cfg.Rules.RuleConfig().Validate()
	if err != nil {
		return fmt.Errorf("%w: rules: %w", ErrConfigInvalid, err)
	}

	return nil
}

func firstSet[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}

	return nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}

	return *v
}
