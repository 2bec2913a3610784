package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/evoquant/pkg/genetic"
)

// AnalyticsRepository persists per-generation analytics snapshots. It
// implements genetic.AnalyticsStore.
type AnalyticsRepository struct {
	pool PoolInterface
}

// NewAnalyticsRepository creates a repository on a pool interface
func NewAnalyticsRepository(pool PoolInterface) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// NewAnalyticsRepositoryWithPool creates a repository on a pgxpool.Pool
func NewAnalyticsRepositoryWithPool(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// SaveAnalytics inserts one generation snapshot
func (r *AnalyticsRepository) SaveAnalytics(ctx context.Context, analytics *genetic.GenerationAnalytics) error {
	if r.pool == nil {
		return fmt.Errorf("database connection not available")
	}

	convergenceJSON, err := json.Marshal(analytics.Convergence)
	if err != nil {
		return fmt.Errorf("failed to marshal convergence: %w", err)
	}
	speciesJSON, err := json.Marshal(analytics.Species)
	if err != nil {
		return fmt.Errorf("failed to marshal species: %w", err)
	}
	paretoJSON, err := json.Marshal(analytics.Pareto)
	if err != nil {
		return fmt.Errorf("failed to marshal pareto front: %w", err)
	}
	importanceJSON, err := json.Marshal(analytics.GeneImportance)
	if err != nil {
		return fmt.Errorf("failed to marshal gene importance: %w", err)
	}
	configJSON, err := json.Marshal(analytics.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal evolution config: %w", err)
	}

	query := `
		INSERT INTO generation_analytics (generation, population_size, avg_fitness, best_fitness, worst_fitness, stddev_fitness, diversity, convergence, species, pareto, gene_importance, config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		analytics.Generation,
		analytics.PopulationSize,
		analytics.AvgFitness,
		analytics.BestFitness,
		analytics.WorstFitness,
		analytics.StdDevFitness,
		analytics.Diversity,
		convergenceJSON,
		speciesJSON,
		paretoJSON,
		importanceJSON,
		configJSON,
		analytics.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save generation analytics: %w", err)
	}

	log.Debug().
		Int("generation", analytics.Generation).
		Float64("best_fitness", analytics.BestFitness).
		Msg("Generation analytics saved")

	return nil
}

const analyticsColumns = `generation, population_size, avg_fitness, best_fitness, worst_fitness, stddev_fitness, diversity, convergence, species, pareto, gene_importance, config, created_at`

// GetByGeneration retrieves the latest snapshot recorded for one generation
func (r *AnalyticsRepository) GetByGeneration(ctx context.Context, generation int) (*genetic.GenerationAnalytics, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	query := `
		SELECT ` + analyticsColumns + `
		FROM generation_analytics
		WHERE generation = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	analytics, err := scanAnalytics(r.pool.QueryRow(ctx, query, generation))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no analytics recorded for generation %d", generation)
		}
		return nil, fmt.Errorf("failed to query generation analytics: %w", err)
	}
	return analytics, nil
}

// GetRecent retrieves the most recent snapshots, newest first
func (r *AnalyticsRepository) GetRecent(ctx context.Context, limit int) ([]*genetic.GenerationAnalytics, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT ` + analyticsColumns + `
		FROM generation_analytics
		ORDER BY generation DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent analytics: %w", err)
	}
	defer rows.Close()

	var out []*genetic.GenerationAnalytics
	for rows.Next() {
		analytics, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, analytics)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analytics rows: %w", err)
	}
	return out, nil
}

// BestFitnessTrend returns best-fitness values for the most recent
// generations, oldest first
func (r *AnalyticsRepository) BestFitnessTrend(ctx context.Context, window int) ([]float64, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if window <= 0 {
		window = 10
	}

	query := `
		SELECT best_fitness FROM (
			SELECT generation, best_fitness
			FROM generation_analytics
			ORDER BY generation DESC
			LIMIT $1
		) recent
		ORDER BY generation ASC
	`

	rows, err := r.pool.Query(ctx, query, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query fitness trend: %w", err)
	}
	defer rows.Close()

	var trend []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan fitness trend row: %w", err)
		}
		trend = append(trend, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fitness trend rows: %w", err)
	}
	return trend, nil
}

func scanAnalytics(row pgx.Row) (*genetic.GenerationAnalytics, error) {
	var (
		analytics       genetic.GenerationAnalytics
		convergenceJSON []byte
		speciesJSON     []byte
		paretoJSON      []byte
		importanceJSON  []byte
		configJSON      []byte
	)
	err := row.Scan(
		&analytics.Generation,
		&analytics.PopulationSize,
		&analytics.AvgFitness,
		&analytics.BestFitness,
		&analytics.WorstFitness,
		&analytics.StdDevFitness,
		&analytics.Diversity,
		&convergenceJSON,
		&speciesJSON,
		&paretoJSON,
		&importanceJSON,
		&configJSON,
		&analytics.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(convergenceJSON, &analytics.Convergence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal convergence: %w", err)
	}
	if err := json.Unmarshal(speciesJSON, &analytics.Species); err != nil {
		return nil, fmt.Errorf("failed to unmarshal species: %w", err)
	}
	if err := json.Unmarshal(paretoJSON, &analytics.Pareto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pareto front: %w", err)
	}
	if err := json.Unmarshal(importanceJSON, &analytics.GeneImportance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gene importance: %w", err)
	}
	if err := json.Unmarshal(configJSON, &analytics.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evolution config: %w", err)
	}

	return &analytics, nil
}
