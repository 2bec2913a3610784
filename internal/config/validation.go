package config

import (
	"fmt"
	"strings"
)

// ValidationError contains details about a configuration validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("config validation failed: %s", strings.Join(msgs, "; "))
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

var validSelectionMethods = map[string]bool{
	"tournament": true,
	"roulette":   true,
	"rank":       true,
	"sus":        true,
}

var validCrossoverMethods = map[string]bool{
	"uniform":    true,
	"multipoint": true,
	"blx_alpha":  true,
	"sbx":        true,
}

var validMutationMethods = map[string]bool{
	"gaussian":   true,
	"polynomial": true,
	"cauchy":     true,
	"adaptive":   true,
}

// Validate performs validation on the loaded configuration.
// Returns nil if valid, or ValidationErrors with all issues found.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.App.Name == "" {
		errs = append(errs, ValidationError{Field: "app.name", Message: "application name is required"})
	}
	if !validEnvironments[c.App.Environment] {
		errs = append(errs, ValidationError{
			Field:   "app.environment",
			Message: fmt.Sprintf("unknown environment %q, expected development, staging or production", c.App.Environment),
		})
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("port %d out of range", c.Database.Port),
		})
	}
	if c.Database.PoolSize <= 0 {
		errs = append(errs, ValidationError{Field: "database.pool_size", Message: "pool size must be positive"})
	}

	errs = append(errs, c.validateEvolution()...)

	if c.HallOfFame.MaxSize <= 0 {
		errs = append(errs, ValidationError{Field: "hall_of_fame.max_size", Message: "max size must be positive"})
	}
	if c.Analytics.TrendWindow <= 0 {
		errs = append(errs, ValidationError{Field: "analytics.trend_window", Message: "trend window must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateEvolution() ValidationErrors {
	var errs ValidationErrors
	ev := c.Evolution

	if !validSelectionMethods[string(ev.SelectionMethod)] {
		errs = append(errs, ValidationError{
			Field:   "evolution.selection_method",
			Message: fmt.Sprintf("unknown selection method %q", ev.SelectionMethod),
		})
	}
	if !validCrossoverMethods[string(ev.CrossoverMethod)] {
		errs = append(errs, ValidationError{
			Field:   "evolution.crossover_method",
			Message: fmt.Sprintf("unknown crossover method %q", ev.CrossoverMethod),
		})
	}
	if !validMutationMethods[string(ev.MutationMethod)] {
		errs = append(errs, ValidationError{
			Field:   "evolution.mutation_method",
			Message: fmt.Sprintf("unknown mutation method %q", ev.MutationMethod),
		})
	}

	if ev.EliteCount < 0 {
		errs = append(errs, ValidationError{Field: "evolution.elite_count", Message: "elite count cannot be negative"})
	}
	if ev.TournamentSize < 1 {
		errs = append(errs, ValidationError{Field: "evolution.tournament_size", Message: "tournament size must be at least 1"})
	}
	for field, rate := range map[string]float64{
		"evolution.mutation_rate":         ev.MutationRate,
		"evolution.immigration_rate":      ev.ImmigrationRate,
		"evolution.adaptive_initial_rate": ev.AdaptiveInitialRate,
		"evolution.adaptive_min_rate":     ev.AdaptiveMinRate,
	} {
		if rate < 0 || rate > 1 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("rate %g must be between 0 and 1", rate),
			})
		}
	}
	if ev.AdaptiveDecay <= 0 || ev.AdaptiveDecay > 1 {
		errs = append(errs, ValidationError{
			Field:   "evolution.adaptive_decay",
			Message: fmt.Sprintf("decay %g must be in (0, 1]", ev.AdaptiveDecay),
		})
	}
	if ev.NicheRadius < 0 {
		errs = append(errs, ValidationError{Field: "evolution.niche_radius", Message: "niche radius cannot be negative"})
	}
	if ev.TargetSpecies < 1 {
		errs = append(errs, ValidationError{Field: "evolution.target_species", Message: "target species must be at least 1"})
	}

	return errs
}
