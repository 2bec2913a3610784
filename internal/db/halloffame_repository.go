package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/evoquant/pkg/genetic"
)

// PoolInterface defines the interface for database pool operations
type PoolInterface interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// HallOfFameRepository persists archived individuals. It implements
// genetic.EntryStore so a HallOfFame can push inductions straight through it.
type HallOfFameRepository struct {
	pool   PoolInterface
	schema *genetic.Schema
}

// NewHallOfFameRepository creates a repository on a pool interface
func NewHallOfFameRepository(pool PoolInterface, schema *genetic.Schema) *HallOfFameRepository {
	return &HallOfFameRepository{pool: pool, schema: schema}
}

// NewHallOfFameRepositoryWithPool creates a repository on a pgxpool.Pool
func NewHallOfFameRepositoryWithPool(pool *pgxpool.Pool, schema *genetic.Schema) *HallOfFameRepository {
	return &HallOfFameRepository{pool: pool, schema: schema}
}

// SaveEntry inserts or updates an archived individual
func (r *HallOfFameRepository) SaveEntry(ctx context.Context, entry *genetic.HallOfFameEntry) error {
	if r.pool == nil {
		return fmt.Errorf("database connection not available")
	}

	dnaJSON, err := r.schema.Serialize(entry.DNA)
	if err != nil {
		return fmt.Errorf("failed to serialize DNA: %w", err)
	}
	fitnessJSON, err := json.Marshal(entry.Fitness)
	if err != nil {
		return fmt.Errorf("failed to marshal fitness: %w", err)
	}
	metricsJSON, err := json.Marshal(entry.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := `
		INSERT INTO hall_of_fame_entries (bot_id, dna, fitness, composite_fitness, generation, group_name, symbol, archetype, metrics, inducted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (bot_id) DO UPDATE SET
			dna = EXCLUDED.dna,
			fitness = EXCLUDED.fitness,
			composite_fitness = EXCLUDED.composite_fitness,
			generation = EXCLUDED.generation,
			group_name = EXCLUDED.group_name,
			symbol = EXCLUDED.symbol,
			archetype = EXCLUDED.archetype,
			metrics = EXCLUDED.metrics,
			inducted_at = EXCLUDED.inducted_at
	`

	_, err = r.pool.Exec(ctx, query,
		entry.BotID,
		dnaJSON,
		fitnessJSON,
		entry.Fitness.Composite,
		entry.Generation,
		entry.Group,
		entry.Symbol,
		entry.Archetype,
		metricsJSON,
		entry.InductedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save hall of fame entry: %w", err)
	}

	log.Debug().
		Str("bot_id", entry.BotID).
		Float64("composite_fitness", entry.Fitness.Composite).
		Msg("Hall of fame entry saved")

	return nil
}

const hallOfFameColumns = `bot_id, dna, fitness, generation, group_name, symbol, archetype, metrics, inducted_at`

// GetAll retrieves archived entries ordered by composite fitness, best first
func (r *HallOfFameRepository) GetAll(ctx context.Context, limit, offset int) ([]*genetic.HallOfFameEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if limit <= 0 {
		limit = genetic.DefaultHallOfFameSize
	}

	query := `
		SELECT ` + hallOfFameColumns + `
		FROM hall_of_fame_entries
		ORDER BY composite_fitness DESC, inducted_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query hall of fame: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// GetByGroup retrieves archived entries for one evolution group
func (r *HallOfFameRepository) GetByGroup(ctx context.Context, group string, limit int) ([]*genetic.HallOfFameEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if limit <= 0 {
		limit = genetic.DefaultHallOfFameSize
	}

	query := `
		SELECT ` + hallOfFameColumns + `
		FROM hall_of_fame_entries
		WHERE group_name = $1
		ORDER BY composite_fitness DESC, inducted_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, group, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query hall of fame by group: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// GetByBotID retrieves one archived entry by its bot id
func (r *HallOfFameRepository) GetByBotID(ctx context.Context, botID string) (*genetic.HallOfFameEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	query := `
		SELECT ` + hallOfFameColumns + `
		FROM hall_of_fame_entries
		WHERE bot_id = $1
	`

	entry, err := r.scanEntry(r.pool.QueryRow(ctx, query, botID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("bot %s not found in hall of fame", botID)
		}
		return nil, fmt.Errorf("failed to query entry by bot id: %w", err)
	}
	return entry, nil
}

// GetBest retrieves the single highest-fitness entry
func (r *HallOfFameRepository) GetBest(ctx context.Context) (*genetic.HallOfFameEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	query := `
		SELECT ` + hallOfFameColumns + `
		FROM hall_of_fame_entries
		ORDER BY composite_fitness DESC, inducted_at ASC
		LIMIT 1
	`

	entry, err := r.scanEntry(r.pool.QueryRow(ctx, query))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("hall of fame is empty")
		}
		return nil, fmt.Errorf("failed to query best entry: %w", err)
	}
	return entry, nil
}

// Count returns the number of archived entries
func (r *HallOfFameRepository) Count(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("database connection not available")
	}

	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM hall_of_fame_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count hall of fame entries: %w", err)
	}
	return count, nil
}

func (r *HallOfFameRepository) scanEntries(rows pgx.Rows) ([]*genetic.HallOfFameEntry, error) {
	var entries []*genetic.HallOfFameEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hall of fame rows: %w", err)
	}
	return entries, nil
}

func (r *HallOfFameRepository) scanEntry(row pgx.Row) (*genetic.HallOfFameEntry, error) {
	var (
		entry       genetic.HallOfFameEntry
		dnaJSON     []byte
		fitnessJSON []byte
		metricsJSON []byte
	)
	err := row.Scan(
		&entry.BotID,
		&dnaJSON,
		&fitnessJSON,
		&entry.Generation,
		&entry.Group,
		&entry.Symbol,
		&entry.Archetype,
		&metricsJSON,
		&entry.InductedAt,
	)
	if err != nil {
		return nil, err
	}

	dna, err := r.schema.Deserialize(dnaJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize DNA for %s: %w", entry.BotID, err)
	}
	entry.DNA = dna

	if err := json.Unmarshal(fitnessJSON, &entry.Fitness); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fitness for %s: %w", entry.BotID, err)
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &entry.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics for %s: %w", entry.BotID, err)
		}
	}

	return &entry, nil
}
