// Package config loads application configuration and initializes logging.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/evoquant/pkg/genetic"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Evolution  genetic.EvolutionConfig `mapstructure:"evolution"`
	HallOfFame HallOfFameConfig        `mapstructure:"hall_of_fame"`
	Analytics  AnalyticsConfig         `mapstructure:"analytics"`
}

// AppConfig contains application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // development, staging, production
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // "json" or "console"
}

// DatabaseConfig contains PostgreSQL settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	PoolSize int    `mapstructure:"pool_size"`
}

// URL builds a postgres connection string from the settings.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// HallOfFameConfig contains archive settings
type HallOfFameConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// AnalyticsConfig contains generation-analytics settings
type AnalyticsConfig struct {
	TrendWindow int `mapstructure:"trend_window"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("evoquant")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("EVOQUANT")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "EvoQuant")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "evoquant")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.pool_size", 10)

	// Evolution defaults mirror genetic.DefaultEvolutionConfig
	defaults := genetic.DefaultEvolutionConfig()
	v.SetDefault("evolution.selection_method", string(defaults.SelectionMethod))
	v.SetDefault("evolution.crossover_method", string(defaults.CrossoverMethod))
	v.SetDefault("evolution.mutation_method", string(defaults.MutationMethod))
	v.SetDefault("evolution.elite_count", defaults.EliteCount)
	v.SetDefault("evolution.tournament_size", defaults.TournamentSize)
	v.SetDefault("evolution.mutation_rate", defaults.MutationRate)
	v.SetDefault("evolution.mutation_strength", defaults.MutationStrength)
	v.SetDefault("evolution.mutation_eta", defaults.MutationEta)
	v.SetDefault("evolution.cauchy_scale", defaults.CauchyScale)
	v.SetDefault("evolution.adaptive_initial_rate", defaults.AdaptiveInitialRate)
	v.SetDefault("evolution.adaptive_decay", defaults.AdaptiveDecay)
	v.SetDefault("evolution.adaptive_min_rate", defaults.AdaptiveMinRate)
	v.SetDefault("evolution.crossover_points", defaults.CrossoverPoints)
	v.SetDefault("evolution.crossover_alpha", defaults.CrossoverAlpha)
	v.SetDefault("evolution.crossover_eta", defaults.CrossoverEta)
	v.SetDefault("evolution.immigration_rate", defaults.ImmigrationRate)
	v.SetDefault("evolution.niche_radius", defaults.NicheRadius)
	v.SetDefault("evolution.target_species", defaults.TargetSpecies)
	v.SetDefault("evolution.pareto_weight", defaults.ParetoWeight)
	v.SetDefault("evolution.diversity_weight", defaults.DiversityWeight)

	// Hall of fame defaults
	v.SetDefault("hall_of_fame.max_size", genetic.DefaultHallOfFameSize)

	// Analytics defaults
	v.SetDefault("analytics.trend_window", 10)
}
