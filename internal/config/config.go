package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmleung/deltamail/internal/errors"
)

// Mode selects how novel records are batched into messages.
type Mode string

const (
	// ModeBatch sends one message per contact listing all of that
	// contact's novel records.
	ModeBatch Mode = "batch"
	// ModePerRecord sends one message per novel record.
	ModePerRecord Mode = "per-record"
)

// Columns maps the five logical fields to the header names used in the
// snapshot export.
type Columns struct {
	Key      string `yaml:"key"`
	Summary  string `yaml:"summary"`
	Reporter string `yaml:"reporter"`
	Email    string `yaml:"email"`
	Created  string `yaml:"created"`
}

// SMTP holds mail transport settings. An empty Host means no transport is
// configured; every message then falls back to a draft file.
type SMTP struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	StartTLS       bool   `yaml:"starttls"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config holds all deltamail configuration. It is read once at startup and
// passed explicitly into each component; nothing reads it as global state.
type Config struct {
	SnapshotDir string `yaml:"snapshot_dir"`
	LogDir      string `yaml:"log_dir"`
	DraftsDir   string `yaml:"drafts_dir"`

	Columns Columns `yaml:"columns"`

	From    string `yaml:"from"`
	ReplyTo string `yaml:"reply_to"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`

	SMTP SMTP `yaml:"smtp"`

	Mode            Mode   `yaml:"mode"`
	HTMLAlternative bool   `yaml:"html_alternative"`
	JournalPath     string `yaml:"journal_path"`
	LogLevel        string `yaml:"log_level"`
}

// DefaultSubject and DefaultBody are the stock notification text used when
// the config supplies none. The body is static per run; the message builder
// only ever appends an item list to it.
const DefaultSubject = "Thanks for logging your request — we've got it"

const DefaultBody = `Hello,

This is a quick confirmation that we've received your request and it's now in our intake queue.

What happens next:
• Our team will triage and prioritize items.
• If we need additional details, we'll reach out on the ticket.
• For urgent production-impacting issues, please also follow the standard escalation process.

You do not need to reply to this email. We'll keep all updates within the tracker.

Best regards,
IT Engineering
`

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Columns: Columns{
			Key:      "Issue key",
			Summary:  "Summary",
			Reporter: "Reporter",
			Email:    "Reporter email",
			Created:  "Created",
		},
		From:    "no-reply@localhost",
		Subject: DefaultSubject,
		Body:    DefaultBody,
		SMTP: SMTP{
			Port:           25,
			TimeoutSeconds: 20,
		},
		Mode:     ModeBatch,
		LogLevel: "info",
	}
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path (skipped when path is empty and no file exists), overlaid by
// environment variables. The result is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewInvalidConfig("cannot read config file " + path + ": " + err.Error())
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewInvalidConfig("cannot parse config file " + path + ": " + err.Error())
		}
	}

	applyEnv(cfg)

	// The drafts directory defaults to a sibling of the snapshots so a
	// bare snapshot_dir setting is enough to run.
	if cfg.DraftsDir == "" && cfg.SnapshotDir != "" {
		cfg.DraftsDir = filepath.Join(cfg.SnapshotDir, "_drafts")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable for a run.
func (c *Config) Validate() error {
	if c.SnapshotDir == "" {
		return errors.NewInvalidConfig("snapshot_dir is required (DELTAMAIL_SNAPSHOT_DIR)")
	}
	if c.DraftsDir == "" {
		return errors.NewInvalidConfig("drafts_dir is required")
	}
	if c.From == "" {
		return errors.NewInvalidConfig("from address is required")
	}
	if c.Mode != ModeBatch && c.Mode != ModePerRecord {
		return errors.NewInvalidConfig("mode must be \"batch\" or \"per-record\", got " + string(c.Mode))
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return errors.NewInvalidConfig("smtp port must be in 1..65535, got " + strconv.Itoa(c.SMTP.Port))
	}
	if c.SMTP.TimeoutSeconds <= 0 {
		return errors.NewInvalidConfig("smtp timeout_seconds must be positive")
	}
	return nil
}

// applyEnv overlays environment variables onto cfg. The SMTP_* names match
// the conventional transport variables; everything else is DELTAMAIL_*.
func applyEnv(cfg *Config) {
	cfg.SnapshotDir = getenv("DELTAMAIL_SNAPSHOT_DIR", cfg.SnapshotDir)
	cfg.LogDir = getenv("DELTAMAIL_LOG_DIR", cfg.LogDir)
	cfg.DraftsDir = getenv("DELTAMAIL_DRAFTS_DIR", cfg.DraftsDir)
	cfg.From = getenv("DELTAMAIL_FROM", cfg.From)
	cfg.ReplyTo = getenv("DELTAMAIL_REPLYTO", cfg.ReplyTo)
	cfg.Subject = getenv("DELTAMAIL_SUBJECT", cfg.Subject)
	cfg.JournalPath = getenv("DELTAMAIL_JOURNAL", cfg.JournalPath)
	cfg.LogLevel = getenv("DELTAMAIL_LOG_LEVEL", cfg.LogLevel)
	cfg.Mode = Mode(getenv("DELTAMAIL_MODE", string(cfg.Mode)))

	cfg.SMTP.Host = getenv("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = getenvInt("SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.Username = getenv("SMTP_USER", cfg.SMTP.Username)
	cfg.SMTP.Password = getenv("SMTP_PASS", cfg.SMTP.Password)
	cfg.SMTP.StartTLS = getenvBool("SMTP_USE_TLS", cfg.SMTP.StartTLS)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
