package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and
// environment variables. If configFile is empty, it searches for
// arbac-reach.yaml/.yml in standard locations. The search requires an
// explicit YAML extension to avoid matching the binary itself, which
// Viper's built-in SetConfigName would match (same base name, no
// extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set name/type
		// without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("arbac-reach")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: ARBAC_REACH_LOG_LEVEL, etc.
	viper.SetEnvPrefix("ARBAC_REACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for an arbac-reach config
// file with an explicit YAML extension (.yaml or .yml). This prevents
// Viper from matching the binary "arbac-reach" (no extension) in the
// current directory.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".arbac-reach"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "arbac-reach"))
		}
	} else {
		paths = append(paths, "/etc/arbac-reach")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for
// arbac-reach.yaml or .yml. Returns the full path of the first match,
// or an empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "arbac-reach"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every config key for environment variable
// support, e.g. ARBAC_REACH_LOG_LEVEL overrides log.level.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("log.level")
	_ = viper.BindEnv("log.format")
	_ = viper.BindEnv("trace.enabled")
	_ = viper.BindEnv("metrics.enabled")
	_ = viper.BindEnv("metrics.addr")
	_ = viper.BindEnv("search.timeout")
}

// LoadConfig reads the configuration file, applies environment
// overrides, sets defaults, and returns the Config. Callers should
// apply any CLI flag overrides before calling Validate, since
// SetDefaults only fills fields still at their zero value.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars/flags only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded. Returns an empty string if no config file was found.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
