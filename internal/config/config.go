// Package config provides the configuration schema for arbac-reach.
//
// This is deliberately a small ambient-settings schema, not a policy
// schema: the reachability problem itself (roles, users, rules, goal)
// always comes from the policy file parsed by yamlparser, never from
// here. This file only configures how the tool logs, traces, and
// exposes metrics, plus the external wall-clock bound on a run.
package config

// Config is the top-level, optional settings file for arbac-reach.
// Every field has a workable zero-value default, so running with no
// config file at all (pure flags/env) is a supported mode.
type Config struct {
	// Log configures the slog handler used by every component.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Trace configures the OpenTelemetry stdout trace exporter wrapped
	// around the Pruner and Searcher stages.
	Trace TraceConfig `yaml:"trace" mapstructure:"trace"`

	// Metrics configures the Prometheus counters/gauges and their
	// optional HTTP exposition.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Search configures the external wall-clock bound on a decision run.
	Search SearchConfig `yaml:"search" mapstructure:"search"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`

	// Format is "text" or "json". Defaults to "text".
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// TraceConfig configures tracing.
type TraceConfig struct {
	// Enabled turns on the stdout OpenTelemetry trace exporter.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled is set alongside Addr by --metrics-addr. The check command
	// does not read it: metrics are recorded and served only when Addr
	// is set, whatever Enabled says.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Addr, if set, turns on metrics recording and serves "/metrics" on
	// this address for the run's duration (e.g. "127.0.0.1:9090").
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// SearchConfig configures the deadline on a decision run. The search
// itself has no internal notion of time; when Timeout is set, the
// check command puts it as a deadline on the context passed to Decide.
type SearchConfig struct {
	// Timeout is the deadline put on the context passed to Decide (e.g.
	// "30s"). Empty means no deadline. Neither the pruner nor the
	// searcher polls the context, so a running decision is not
	// interrupted when the deadline passes.
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`
}

// SetDefaults fills in the zero-value defaults. Only ever sets a
// field that is still at its zero value, so explicit config values
// and CLI flag overrides applied before SetDefaults always win.
func (c *Config) SetDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
