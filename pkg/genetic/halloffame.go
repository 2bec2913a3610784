package genetic

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultHallOfFameSize is the default archive capacity.
const DefaultHallOfFameSize = 50

// HallOfFameEntry is an immutable snapshot of an archived individual.
type HallOfFameEntry struct {
	BotID      string             `json:"bot_id"`
	DNA        StrategyDNA        `json:"dna"`
	Fitness    FitnessScores      `json:"fitness"`
	Generation int                `json:"generation"`
	Group      string             `json:"group,omitempty"`
	Symbol     string             `json:"symbol,omitempty"`
	Archetype  string             `json:"archetype,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	InductedAt time.Time          `json:"inducted_at"`
}

// EntryStore persists Hall of Fame entries. The schema of the sink is owned
// by the collaborator; this package only pushes snapshots through it.
type EntryStore interface {
	SaveEntry(ctx context.Context, entry *HallOfFameEntry) error
}

// NopEntryStore discards entries, for library-only use without persistence.
type NopEntryStore struct{}

func (NopEntryStore) SaveEntry(ctx context.Context, entry *HallOfFameEntry) error {
	return nil
}

// HallOfFame is a bounded, fitness-ordered archive of the best individuals
// ever observed. Induction and trimming are serialized by a mutex so the
// bounded-size invariant holds when multiple groups evolve against a shared
// archive.
type HallOfFame struct {
	mu      sync.Mutex
	maxSize int
	entries []*HallOfFameEntry
	store   EntryStore
	logger  zerolog.Logger
}

// NewHallOfFame creates an archive with the given capacity and persistence
// sink. A nil store disables persistence.
func NewHallOfFame(maxSize int, store EntryStore) *HallOfFame {
	if maxSize <= 0 {
		maxSize = DefaultHallOfFameSize
	}
	if store == nil {
		store = NopEntryStore{}
	}
	return &HallOfFame{
		maxSize: maxSize,
		store:   store,
		logger:  log.With().Str("component", "hall_of_fame").Logger(),
	}
}

// Len returns the current archive size.
func (h *HallOfFame) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// ShouldInduct reports whether a candidate with the given composite fitness
// would be admitted: always while below capacity, otherwise only if it
// strictly beats the current minimum archived fitness.
func (h *HallOfFame) ShouldInduct(fitness float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shouldInductLocked(fitness)
}

func (h *HallOfFame) shouldInductLocked(fitness float64) bool {
	if len(h.entries) < h.maxSize {
		return true
	}
	// entries are sorted descending; the minimum is last
	return fitness > h.entries[len(h.entries)-1].Fitness.Composite
}

// Induct archives an individual. The entry is always appended and persisted,
// then the archive is trimmed back to capacity by composite fitness
// descending; eviction of the lowest entries is silent, never an error.
func (h *HallOfFame) Induct(ctx context.Context, ind Individual, fitness FitnessScores, archetype string, metrics map[string]float64) (*HallOfFameEntry, error) {
	entry := &HallOfFameEntry{
		BotID:      ind.ID,
		DNA:        ind.DNA.Clone(),
		Fitness:    fitness,
		Generation: ind.Generation,
		Group:      ind.Group,
		Symbol:     ind.Symbol,
		Archetype:  archetype,
		Metrics:    cloneMetrics(metrics),
		InductedAt: time.Now().UTC(),
	}

	if err := h.store.SaveEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to persist hall of fame entry: %w", err)
	}

	h.mu.Lock()
	h.entries = append(h.entries, entry)
	sort.SliceStable(h.entries, func(i, j int) bool {
		return h.entries[i].Fitness.Composite > h.entries[j].Fitness.Composite
	})
	evicted := 0
	if len(h.entries) > h.maxSize {
		evicted = len(h.entries) - h.maxSize
		h.entries = h.entries[:h.maxSize]
	}
	size := len(h.entries)
	h.mu.Unlock()

	h.logger.Debug().
		Str("bot_id", entry.BotID).
		Float64("fitness", entry.Fitness.Composite).
		Int("generation", entry.Generation).
		Int("archive_size", size).
		Int("evicted", evicted).
		Msg("Individual inducted into hall of fame")

	return entry, nil
}

// All returns archived entries in fitness-descending order, paged by offset
// and limit. A limit of 0 or less returns everything from offset on.
func (h *HallOfFame) All(offset, limit int) []*HallOfFameEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(h.entries) {
		return nil
	}
	end := len(h.entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]*HallOfFameEntry, end-offset)
	copy(page, h.entries[offset:end])
	return page
}

// ByGroup returns all archived entries for one group, fitness-descending.
func (h *HallOfFame) ByGroup(group string) []*HallOfFameEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	var entries []*HallOfFameEntry
	for _, e := range h.entries {
		if e.Group == group {
			entries = append(entries, e)
		}
	}
	return entries
}

// Best returns the single best-ever entry, nil when the archive is empty.
func (h *HallOfFame) Best() *HallOfFameEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[0]
}

func cloneMetrics(metrics map[string]float64) map[string]float64 {
	if metrics == nil {
		return nil
	}
	clone := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		clone[k] = v
	}
	return clone
}
