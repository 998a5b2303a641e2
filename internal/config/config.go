package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config path.
const EnvPath = "TANKRUN_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/director.yaml"

// Accepted ranges of the tunables exposed to operators.
const (
	MinGoalFrequency   = 2.0
	MaxGoalFrequency   = 8.0
	MinStressThreshold = 200
	MaxStressThreshold = 1100
)

// Journal drivers.
const (
	JournalNone     = "none"
	JournalFile     = "file"
	JournalPostgres = "postgres"
	JournalSQLite   = "sqlite"
)

// Director holds all configuration for a director run.
type Director struct {
	LogLevel string `yaml:"log_level"`

	// Tick
	TickInterval   time.Duration `yaml:"tick_interval"`
	MotionWindow   time.Duration `yaml:"motion_window"`
	BehaviorWindow time.Duration `yaml:"behavior_window"`

	// Spawn tuning
	GoalFrequency   float64 `yaml:"goal_frequency"` // seconds, one decimal
	StressThreshold int     `yaml:"stress_threshold"`
	AntagonistLimit int     `yaml:"antagonist_limit"`

	// Grouping
	SpreadRadius float64 `yaml:"spread_radius"`
	SafeDistance float64 `yaml:"safe_distance"`

	// Seed of the cadence RNG, 0 picks one at startup.
	Seed uint64 `yaml:"seed"`

	// Scenario file replayed by the scripted host.
	Scenario string `yaml:"scenario"`

	Journal  Journal  `yaml:"journal"`
	Observer Observer `yaml:"observer"`
}

// Journal selects where tick reports are recorded.
type Journal struct {
	Driver     string         `yaml:"driver"`
	Dir        string         `yaml:"dir"`
	Database   DatabaseConfig `yaml:"database"`
	SQLitePath string         `yaml:"sqlite_path"`
}

// Observer configures the live report feed. An empty Listen disables it.
type Observer struct {
	Listen string `yaml:"listen"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultDirector returns Director config with the stock tuning.
func DefaultDirector() Director {
	return Director{
		LogLevel:        "info",
		TickInterval:    100 * time.Millisecond,
		MotionWindow:    2 * time.Second,
		BehaviorWindow:  10 * time.Second,
		GoalFrequency:   5.0,
		StressThreshold: 600,
		AntagonistLimit: 22,
		SpreadRadius:    660,
		SafeDistance:    1000,
		Journal: Journal{
			Driver:     JournalNone,
			Dir:        "journal",
			SQLitePath: "journal/director.db",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "tankrun",
				Password: "tankrun",
				DBName:   "tankrun",
				SSLMode:  "disable",
			},
		},
	}
}

// Path returns the config path from the environment or the default.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDirector loads director config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadDirector(path string) (Director, error) {
	cfg := DefaultDirector()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every tunable and returns all problems at once.
func (c Director) Validate() error {
	var errs []error

	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.MotionWindow < c.TickInterval {
		errs = append(errs, fmt.Errorf("motion_window %s is shorter than tick_interval", c.MotionWindow))
	}
	if c.BehaviorWindow < c.TickInterval {
		errs = append(errs, fmt.Errorf("behavior_window %s is shorter than tick_interval", c.BehaviorWindow))
	}

	if c.GoalFrequency < MinGoalFrequency || c.GoalFrequency > MaxGoalFrequency {
		errs = append(errs, fmt.Errorf("goal_frequency %.2f outside [%.1f, %.1f]",
			c.GoalFrequency, MinGoalFrequency, MaxGoalFrequency))
	} else if !oneDecimal(c.GoalFrequency) {
		errs = append(errs, fmt.Errorf("goal_frequency %v has more than one decimal place", c.GoalFrequency))
	}

	if c.StressThreshold < MinStressThreshold || c.StressThreshold > MaxStressThreshold {
		errs = append(errs, fmt.Errorf("stress_threshold %d outside [%d, %d]",
			c.StressThreshold, MinStressThreshold, MaxStressThreshold))
	}

	if c.AntagonistLimit <= 0 {
		errs = append(errs, fmt.Errorf("antagonist_limit must be positive, got %d", c.AntagonistLimit))
	}
	if c.SpreadRadius <= 0 {
		errs = append(errs, fmt.Errorf("spread_radius must be positive, got %v", c.SpreadRadius))
	}
	if c.SafeDistance < 0 {
		errs = append(errs, fmt.Errorf("safe_distance must not be negative, got %v", c.SafeDistance))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.Journal.Driver {
	case "", JournalNone, JournalFile, JournalPostgres, JournalSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown journal driver %q", c.Journal.Driver))
	}

	return errors.Join(errs...)
}

// Goal returns the goal frequency as a duration.
func (c Director) Goal() time.Duration {
	return time.Duration(math.Round(c.GoalFrequency*10)) * 100 * time.Millisecond
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}

func oneDecimal(v float64) bool {
	scaled := v * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}
