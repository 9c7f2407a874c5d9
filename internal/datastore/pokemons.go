package datastore

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/tkarvinen/pokedex-go/internal/errors"
)

// PokemonFilters describes the supported list filters and pagination.
// Page is 1-based, zero values fall back to page 1 / limit 10.
type PokemonFilters struct {
	NameLike string // substring match on the pokemon name
	Category string // numeric category id or category name substring
	TypeIn   []uint // at least one association must match
	Page     int
	Limit    int
}

// normalize applies pagination defaults.
func (f *PokemonFilters) normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}
}

// Offset returns the row offset for the normalized page.
func (f *PokemonFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// SavePokemon stores a pokemon and its type associations as a single
// transaction. Every referenced type must exist in the vocabulary.
func (ds *DataStore) SavePokemon(pokemon *Pokemon, typeIDs []uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := verifyTypeIDs(tx, typeIDs); err != nil {
			return err
		}

		if err := tx.Create(pokemon).Error; err != nil {
			return fmt.Errorf("saving pokemon: %w", err)
		}

		return createAssociations(tx, pokemon.ID, typeIDs)
	})
}

// UpdatePokemon updates a pokemon row and replaces its full association set
// in one transaction. The association set after the call equals exactly the
// submitted set, nothing accumulates across updates.
func (ds *DataStore) UpdatePokemon(pokemon *Pokemon, typeIDs []uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := verifyTypeIDs(tx, typeIDs); err != nil {
			return err
		}

		if err := tx.Save(pokemon).Error; err != nil {
			return fmt.Errorf("updating pokemon with ID %d: %w", pokemon.ID, err)
		}

		if err := tx.Where("pokemon_id = ?", pokemon.ID).Delete(&PokemonType{}).Error; err != nil {
			return fmt.Errorf("clearing associations for pokemon ID %d: %w", pokemon.ID, err)
		}

		return createAssociations(tx, pokemon.ID, typeIDs)
	})
}

// verifyTypeIDs fails when any referenced type is absent from the
// vocabulary. A bad reference is a caller mistake, the error carries the
// validation category and still unwraps to the not-found error.
func verifyTypeIDs(tx *gorm.DB, typeIDs []uint) error {
	for _, typeID := range typeIDs {
		var t TypeList
		if err := tx.First(&t, typeID).Error; err != nil {
			return errors.Newf("resolving type with ID %d: %w", typeID, err).
				Component("datastore").
				Category(errors.CategoryValidation).
				Context("type_id", typeID).
				Build()
		}
	}
	return nil
}

// createAssociations inserts one association row per type id, in input order.
func createAssociations(tx *gorm.DB, pokemonID uint, typeIDs []uint) error {
	for _, typeID := range typeIDs {
		association := PokemonType{PokemonID: pokemonID, TypeID: typeID}
		if err := tx.Create(&association).Error; err != nil {
			return fmt.Errorf("saving association pokemon %d type %d: %w", pokemonID, typeID, err)
		}
	}
	return nil
}

// GetPokemon retrieves a pokemon by its ID from the database.
func (ds *DataStore) GetPokemon(id uint) (Pokemon, error) {
	var pokemon Pokemon
	if err := ds.DB.First(&pokemon, id).Error; err != nil {
		return Pokemon{}, fmt.Errorf("getting pokemon with ID %d: %w", id, err)
	}
	return pokemon, nil
}

// DeletePokemon removes a pokemon and its associations from the database.
func (ds *DataStore) DeletePokemon(id uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pokemon_id = ?", id).Delete(&PokemonType{}).Error; err != nil {
			return fmt.Errorf("deleting associations for pokemon ID %d: %w", id, err)
		}

		result := tx.Delete(&Pokemon{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting pokemon with ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("deleting pokemon with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// filteredQuery builds the base query for FilteredPokemons. Callers add
// selection, ordering and pagination on top.
func (ds *DataStore) filteredQuery(filters *PokemonFilters) *gorm.DB {
	query := ds.DB.Model(&Pokemon{})

	if filters.NameLike != "" {
		query = query.Where("pokemons.name LIKE ?", "%"+filters.NameLike+"%")
	}

	if filters.Category != "" {
		if categoryID, err := strconv.ParseUint(filters.Category, 10, 32); err == nil {
			query = query.Where("pokemons.category_id = ?", categoryID)
		} else {
			query = query.
				Joins("JOIN categories ON categories.id = pokemons.category_id").
				Where("categories.name LIKE ?", "%"+filters.Category+"%")
		}
	}

	if len(filters.TypeIn) > 0 {
		query = query.
			Joins("JOIN types ON types.pokemon_id = pokemons.id").
			Where("types.type_id IN ?", filters.TypeIn)
	}

	return query
}

// FilteredPokemons returns one page of pokemons matching the filters plus
// the total match count. Out-of-range pages yield an empty slice.
func (ds *DataStore) FilteredPokemons(filters *PokemonFilters) ([]Pokemon, int64, error) {
	filters.normalize()

	var total int64
	if err := ds.filteredQuery(filters).Distinct("pokemons.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting pokemons: %w", err)
	}

	var pokemons []Pokemon
	err := ds.filteredQuery(filters).
		Select("DISTINCT pokemons.*").
		Order("pokemons.id ASC").
		Limit(filters.Limit).
		Offset(filters.Offset()).
		Find(&pokemons).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing pokemons: %w", err)
	}

	return pokemons, total, nil
}

// searchQuery builds the base query for SearchPokemons, matching the query
// substring against the pokemon name, its category name and any of its type
// names across the joined tables.
func (ds *DataStore) searchQuery(query string) *gorm.DB {
	pattern := "%" + query + "%"
	return ds.DB.Model(&Pokemon{}).
		Joins("LEFT JOIN categories ON categories.id = pokemons.category_id").
		Joins("LEFT JOIN types ON types.pokemon_id = pokemons.id").
		Joins("LEFT JOIN type_lists ON type_lists.id = types.type_id").
		Where("pokemons.name LIKE ? OR categories.name LIKE ? OR type_lists.name LIKE ?",
			pattern, pattern, pattern)
}

// SearchPokemons performs a free-text search across entries, categories and
// type names with pagination and a total count.
func (ds *DataStore) SearchPokemons(query string, limit, offset int) ([]Pokemon, int64, error) {
	var total int64
	if err := ds.searchQuery(query).Distinct("pokemons.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting search results: %w", err)
	}

	var pokemons []Pokemon
	err := ds.searchQuery(query).
		Select("DISTINCT pokemons.*").
		Order("pokemons.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&pokemons).Error
	if err != nil {
		return nil, 0, fmt.Errorf("searching pokemons: %w", err)
	}

	return pokemons, total, nil
}

// PokemonTypes returns the type vocabulary entries associated with a
// pokemon, in association order.
func (ds *DataStore) PokemonTypes(pokemonID uint) ([]TypeList, error) {
	var types []TypeList
	err := ds.DB.
		Select("type_lists.id, type_lists.name, type_lists.created_at, type_lists.updated_at").
		Table("type_lists").
		Joins("JOIN types ON types.type_id = type_lists.id").
		Where("types.pokemon_id = ?", pokemonID).
		Order("types.id ASC").
		Scan(&types).Error
	if err != nil {
		return nil, fmt.Errorf("fetching types for pokemon ID %d: %w", pokemonID, err)
	}
	return types, nil
}

// pokemonTypeRow is the scan target for the batched association join.
type pokemonTypeRow struct {
	PokemonID uint
	TypeID    uint
	Name      string
}

// PokemonTypesBatch gathers the tag lists for a whole page of pokemons in a
// single join, keyed by pokemon id. This keeps list assembly at a bounded
// number of queries per request.
func (ds *DataStore) PokemonTypesBatch(pokemonIDs []uint) (map[uint][]TypeList, error) {
	result := make(map[uint][]TypeList, len(pokemonIDs))
	if len(pokemonIDs) == 0 {
		return result, nil
	}

	var rows []pokemonTypeRow
	err := ds.DB.
		Select("types.pokemon_id AS pokemon_id, type_lists.id AS type_id, type_lists.name AS name").
		Table("types").
		Joins("JOIN type_lists ON type_lists.id = types.type_id").
		Where("types.pokemon_id IN ?", pokemonIDs).
		Order("types.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetching types for pokemons: %w", err)
	}

	for _, row := range rows {
		result[row.PokemonID] = append(result[row.PokemonID], TypeList{ID: row.TypeID, Name: row.Name})
	}
	return result, nil
}
