// Package config loads plansave settings from an optional YAML file,
// applies environment overrides and fills in defaults.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// FileName is the per-project config file looked up in the working directory.
	FileName = ".plansave.yaml"

	// DefaultAgentName is used in archive names when none is configured.
	DefaultAgentName = "claude"

	// DefaultRecencyWindow bounds how old a discovered plan or transcript may be.
	DefaultRecencyWindow = 10 * time.Minute
	// MinRecencyWindow and MaxRecencyWindow clamp configured windows.
	MinRecencyWindow = 5 * time.Minute
	MaxRecencyWindow = 30 * time.Minute

	// DefaultPlansDir and DefaultTranscriptsDir are relative to the working directory.
	DefaultPlansDir       = "agent_logs/plans"
	DefaultTranscriptsDir = "agent_logs/transcripts"

	// DefaultCommitMessagePrefix is followed by "<agent>-<slug>".
	DefaultCommitMessagePrefix = "chore: save planning session - "

	// ArchivedNamePattern matches files that already carry an archive date prefix.
	ArchivedNamePattern = "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]-*"
)

var agentNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Config represents the configuration for a single archiver run
type Config struct {
	// AgentName appears in archive file names and commit messages
	AgentName string `yaml:"agent_name" json:"agent_name"`

	Output    OutputConfig    `yaml:"output" json:"output"`
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`

	// RequireExitPlanMode skips sessions whose transcript never left planning
	// mode. For Stop events the exit must fall in the turn that just ended.
	RequireExitPlanMode bool `yaml:"require_exit_plan_mode" json:"require_exit_plan_mode"`

	// SessionEndReasons limits which SessionEnd reasons trigger archiving (empty = all)
	SessionEndReasons []string `yaml:"session_end_reasons" json:"session_end_reasons"`

	Git     GitConfig     `yaml:"git" json:"git"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Path is the file the config was loaded from, empty for defaults
	Path string `yaml:"-" json:"-"`
}

// OutputConfig controls where archive entries are written
type OutputConfig struct {
	PlansDir       string `yaml:"plans_dir" json:"plans_dir"`
	TranscriptsDir string `yaml:"transcripts_dir" json:"transcripts_dir"`
}

// DiscoveryConfig lists the directories searched for plans and transcripts
type DiscoveryConfig struct {
	PlanDirs        []string      `yaml:"plan_dirs" json:"plan_dirs"`
	TranscriptDirs  []string      `yaml:"transcript_dirs" json:"transcript_dirs"`
	RecencyWindow   time.Duration `yaml:"recency_window" json:"recency_window"`
	ExcludePatterns []string      `yaml:"exclude_patterns" json:"exclude_patterns"`
}

// GitConfig defines git operation configuration
type GitConfig struct {
	AutoCommit          bool   `yaml:"auto_commit" json:"auto_commit"`
	CommitMessagePrefix string `yaml:"commit_message_prefix" json:"commit_message_prefix"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// LogDir holds per-run debug logs; empty disables file logging
	LogDir string `yaml:"log_dir" json:"log_dir"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		AgentName: DefaultAgentName,
		Output: OutputConfig{
			PlansDir:       DefaultPlansDir,
			TranscriptsDir: DefaultTranscriptsDir,
		},
		Discovery: DiscoveryConfig{
			PlanDirs:        []string{"~/.claude/plans"},
			TranscriptDirs:  []string{"~/.claude/projects"},
			RecencyWindow:   DefaultRecencyWindow,
			ExcludePatterns: []string{ArchivedNamePattern},
		},
		RequireExitPlanMode: true,
		Git: GitConfig{
			AutoCommit:          true,
			CommitMessagePrefix: DefaultCommitMessagePrefix,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !agentNameRe.MatchString(c.AgentName) {
		return fmt.Errorf("invalid agent_name: %q (lowercase letters, digits, '-' and '_' only)", c.AgentName)
	}

	if strings.TrimSpace(c.Output.PlansDir) == "" {
		return fmt.Errorf("output.plans_dir is required")
	}

	if strings.TrimSpace(c.Output.TranscriptsDir) == "" {
		return fmt.Errorf("output.transcripts_dir is required")
	}

	if c.Discovery.RecencyWindow < 0 {
		return fmt.Errorf("discovery.recency_window cannot be negative")
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// normalize fills empty fields with defaults and clamps the recency window.
func (c *Config) normalize() {
	c.AgentName = strings.ToLower(strings.TrimSpace(c.AgentName))
	if c.AgentName == "" {
		c.AgentName = DefaultAgentName
	}
	if strings.TrimSpace(c.Output.PlansDir) == "" {
		c.Output.PlansDir = DefaultPlansDir
	}
	if strings.TrimSpace(c.Output.TranscriptsDir) == "" {
		c.Output.TranscriptsDir = DefaultTranscriptsDir
	}
	c.Discovery.RecencyWindow = ClampRecencyWindow(c.Discovery.RecencyWindow)
	if c.Git.CommitMessagePrefix == "" {
		c.Git.CommitMessagePrefix = DefaultCommitMessagePrefix
	}
	c.Logging.Verbosity = strings.ToLower(strings.TrimSpace(c.Logging.Verbosity))
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
}

// ClampRecencyWindow maps a configured window into the supported range.
// Zero selects the default.
func ClampRecencyWindow(window time.Duration) time.Duration {
	switch {
	case window <= 0:
		return DefaultRecencyWindow
	case window < MinRecencyWindow:
		return MinRecencyWindow
	case window > MaxRecencyWindow:
		return MaxRecencyWindow
	default:
		return window
	}
}

// CommitMessage formats the commit message for an archive entry.
func (c *Config) CommitMessage(slug string) string {
	return fmt.Sprintf("%s%s-%s", c.Git.CommitMessagePrefix, c.AgentName, slug)
}

// AllowsSessionEndReason reports whether a SessionEnd with the given reason
// should be archived.
func (c *Config) AllowsSessionEndReason(reason string) bool {
	if len(c.SessionEndReasons) == 0 {
		return true
	}
	for _, allowed := range c.SessionEndReasons {
		if strings.EqualFold(strings.TrimSpace(allowed), reason) {
			return true
		}
	}
	return false
}
