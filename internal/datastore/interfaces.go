// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tkarvinen/pokedex-go/internal/conf"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Interface abstracts the underlying database implementation and defines the
// operations available on the entity store.
type Interface interface {
	Open() error
	Close() error

	// users
	CreateUser(user *User) error
	GetUser(id uint) (User, error)
	GetUserByEmail(email string) (User, error)

	// categories
	GetCategory(id uint) (Category, error)
	GetCategoryByName(name string) (Category, error)
	ResolveCategory(name string) (Category, error)
	ListCategories() ([]Category, error)
	CreateCategory(category *Category) error
	UpdateCategory(category *Category) error
	DeleteCategory(id uint) error
	CategoriesByID(ids []uint) (map[uint]Category, error)

	// type vocabulary
	GetType(id uint) (TypeList, error)
	ListTypes() ([]TypeList, error)
	CreateType(t *TypeList) error
	UpdateType(t *TypeList) error
	DeleteType(id uint) error

	// pokemons
	SavePokemon(pokemon *Pokemon, typeIDs []uint) error
	UpdatePokemon(pokemon *Pokemon, typeIDs []uint) error
	GetPokemon(id uint) (Pokemon, error)
	DeletePokemon(id uint) error
	FilteredPokemons(filters *PokemonFilters) ([]Pokemon, int64, error)
	SearchPokemons(query string, limit, offset int) ([]Pokemon, int64, error)
	PokemonTypes(pokemonID uint) ([]TypeList, error)
	PokemonTypesBatch(pokemonIDs []uint) (map[uint][]TypeList, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided settings.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&User{}, &Category{}, &TypeList{}, &Pokemon{}, &PokemonType{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
