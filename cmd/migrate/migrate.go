package migrate

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/tkarvinen/pokedex-go/internal/conf"
	"github.com/tkarvinen/pokedex-go/internal/datastore"
)

// classicTypes is the default tag vocabulary seeded into an empty store.
var classicTypes = []string{
	"normal", "fire", "water", "electric", "grass", "ice",
	"fighting", "poison", "ground", "flying", "psychic", "bug",
	"rock", "ghost", "dragon", "dark", "steel", "fairy",
}

// Command creates the migrate command which prepares the database schema
// and seeds the type vocabulary.
func Command(settings *conf.Settings) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the database schema",
		Long:  "Run schema migrations against the configured entity store, optionally seeding the default type vocabulary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(settings, seed)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "Seed the default type vocabulary when missing")

	return cmd
}

// runMigration opens the store, which applies schema migrations, then seeds
// the vocabulary entries that are not present yet.
func runMigration(settings *conf.Settings, seed bool) error {
	store := datastore.New(settings)
	if store == nil {
		return errors.New("no entity store enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open entity store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing entity store: %v", err)
		}
	}()

	log.Println("Schema migration completed")

	if !seed {
		return nil
	}

	existing, err := store.ListTypes()
	if err != nil {
		return fmt.Errorf("failed to read type vocabulary: %w", err)
	}

	present := make(map[string]bool, len(existing))
	for _, t := range existing {
		present[t.Name] = true
	}

	seeded := 0
	for _, name := range classicTypes {
		if present[name] {
			continue
		}
		if err := store.CreateType(&datastore.TypeList{Name: name}); err != nil {
			return fmt.Errorf("failed to seed type %q: %w", name, err)
		}
		seeded++
	}

	log.Printf("Type vocabulary seeded, %d entries added", seeded)

	return nil
}
