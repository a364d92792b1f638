package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the config file.
const (
	EnvAgent          = "PLANSAVE_AGENT"
	EnvRecencyWindow  = "PLANSAVE_RECENCY_WINDOW"
	EnvNoCommit       = "PLANSAVE_NO_COMMIT"
	EnvVerbosity      = "PLANSAVE_VERBOSITY"
	EnvPlanDirs       = "PLANSAVE_PLAN_DIRS"
	EnvTranscriptDirs = "PLANSAVE_TRANSCRIPT_DIRS"
)

// Load reads the configuration for a project directory. An explicit path
// must exist; otherwise <dir>/.plansave.yaml is used when present and the
// defaults apply when it is not.
func Load(path, dir string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.Path = path
	case os.IsNotExist(err) && !explicit:
		// no project config, defaults apply
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv(EnvAgent)); value != "" {
		c.AgentName = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvRecencyWindow)); value != "" {
		if window, err := time.ParseDuration(value); err == nil {
			c.Discovery.RecencyWindow = window
		}
	}
	if value := strings.TrimSpace(os.Getenv(EnvNoCommit)); value != "" {
		if noCommit, err := strconv.ParseBool(value); err == nil {
			c.Git.AutoCommit = !noCommit
		}
	}
	if value := strings.TrimSpace(os.Getenv(EnvVerbosity)); value != "" {
		c.Logging.Verbosity = value
	}
	if dirs := splitPathList(os.Getenv(EnvPlanDirs)); len(dirs) > 0 {
		c.Discovery.PlanDirs = dirs
	}
	if dirs := splitPathList(os.Getenv(EnvTranscriptDirs)); len(dirs) > 0 {
		c.Discovery.TranscriptDirs = dirs
	}
}

func splitPathList(value string) []string {
	var dirs []string
	for _, dir := range filepath.SplitList(value) {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// ExpandPath expands a leading "~" to the user home directory and makes
// relative paths absolute against base.
func ExpandPath(path, base string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) && base != "" {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

// ExpandPaths applies ExpandPath to every entry, dropping empty ones.
func ExpandPaths(paths []string, base string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if expanded := ExpandPath(p, base); expanded != "" {
			out = append(out, expanded)
		}
	}
	return out
}
