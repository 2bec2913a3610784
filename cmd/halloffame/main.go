// Hall of fame inspection CLI: list archived strategies, show the best one,
// or export a strategy's DNA for hand editing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/evoquant/internal/config"
	"github.com/ajitpratap0/evoquant/internal/db"
	"github.com/ajitpratap0/evoquant/pkg/genetic"
)

func main() {
	command := flag.String("command", "list", "Command to run: list, best or export")
	configPath := flag.String("config", "", "Path to config file")
	group := flag.String("group", "", "Filter by evolution group")
	botID := flag.String("bot", "", "Bot ID to export")
	format := flag.String("format", "yaml", "Export format: yaml or json")
	limit := flag.Int("limit", 20, "Maximum entries to list")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	config.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.New(ctx, cfg.Database.URL(), cfg.Database.PoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	schema := genetic.NewSchema()
	repo := db.NewHallOfFameRepositoryWithPool(database.Pool(), schema)

	switch *command {
	case "list":
		if err := listEntries(ctx, repo, *group, *limit); err != nil {
			log.Fatal().Err(err).Msg("Failed to list entries")
		}
	case "best":
		entry, err := repo.GetBest(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to fetch best entry")
		}
		printEntry(entry)
	case "export":
		if *botID == "" {
			fmt.Fprintln(os.Stderr, "export requires -bot")
			os.Exit(1)
		}
		if err := exportEntry(ctx, repo, schema, *botID, *format); err != nil {
			log.Fatal().Err(err).Msg("Failed to export entry")
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		fmt.Fprintf(os.Stderr, "Usage: halloffame -command=[list|best|export]\n")
		os.Exit(1)
	}
}

func listEntries(ctx context.Context, repo *db.HallOfFameRepository, group string, limit int) error {
	var (
		entries []*genetic.HallOfFameEntry
		err     error
	)
	if group != "" {
		entries, err = repo.GetByGroup(ctx, group, limit)
	} else {
		entries, err = repo.GetAll(ctx, limit, 0)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("Hall of fame is empty")
		return nil
	}

	fmt.Printf("%-38s %-10s %-12s %-10s %s\n", "BOT", "GROUP", "SYMBOL", "FITNESS", "INDUCTED")
	for _, entry := range entries {
		fmt.Printf("%-38s %-10s %-12s %-10.4f %s\n",
			entry.BotID, entry.Group, entry.Symbol,
			entry.Fitness.Composite, entry.InductedAt.Format(time.RFC3339))
	}
	return nil
}

func printEntry(entry *genetic.HallOfFameEntry) {
	fmt.Printf("Bot:        %s\n", entry.BotID)
	fmt.Printf("Group:      %s\n", entry.Group)
	fmt.Printf("Symbol:     %s\n", entry.Symbol)
	fmt.Printf("Generation: %d\n", entry.Generation)
	fmt.Printf("Composite:  %.4f\n", entry.Fitness.Composite)
	if entry.Archetype != "" {
		fmt.Printf("Archetype:  %s\n", entry.Archetype)
	}
	fmt.Printf("Inducted:   %s\n", entry.InductedAt.Format(time.RFC3339))
}

func exportEntry(ctx context.Context, repo *db.HallOfFameRepository, schema *genetic.Schema, botID, format string) error {
	entry, err := repo.GetByBotID(ctx, botID)
	if err != nil {
		return err
	}
	data, err := schema.Export(entry.DNA, genetic.ExportOptions{
		Format:      genetic.ExportFormat(format),
		PrettyPrint: true,
	})
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
