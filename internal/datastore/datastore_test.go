package datastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tkarvinen/pokedex-go/internal/conf"
)

// newTestStore opens a SQLite store backed by a temp directory so the
// schema, foreign keys and cascades behave exactly as in production.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// seedVocabulary inserts a handful of types and returns them by name.
func seedVocabulary(t *testing.T, store *SQLiteStore, names ...string) map[string]TypeList {
	t.Helper()

	result := make(map[string]TypeList, len(names))
	for _, name := range names {
		tl := TypeList{Name: name}
		require.NoError(t, store.CreateType(&tl))
		result[name] = tl
	}
	return result
}

func seedUser(t *testing.T, store *SQLiteStore) User {
	t.Helper()

	user := User{Username: "ash", Email: "ash@pallet.town", Password: "hashed"}
	require.NoError(t, store.CreateUser(&user))
	return user
}

func TestResolveCategoryFindOrCreate(t *testing.T) {
	store := newTestStore(t)

	created, err := store.ResolveCategory("Water Type")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// A second resolve with the same name must return the existing row
	resolved, err := store.ResolveCategory("Water Type")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	categories, err := store.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestSavePokemonWithAssociations(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Water", "Flying")
	user := seedUser(t, store)

	category, err := store.ResolveCategory("Sea")
	require.NoError(t, err)

	pokemon := Pokemon{
		Name:       "Squirtle",
		ImageURL:   "img.jpg",
		CategoryID: category.ID,
		UserID:     user.ID,
		Latitude:   60.17,
		Longitude:  24.94,
	}
	require.NoError(t, store.SavePokemon(&pokemon, []uint{types["Water"].ID, types["Flying"].ID}))
	require.NotZero(t, pokemon.ID)

	tags, err := store.PokemonTypes(pokemon.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Water", tags[0].Name)
	assert.Equal(t, "Flying", tags[1].Name)
}

func TestSavePokemonUnknownTypeRollsBack(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store)

	category, err := store.ResolveCategory("Sea")
	require.NoError(t, err)

	pokemon := Pokemon{Name: "Squirtle", CategoryID: category.ID, UserID: user.ID}
	err = store.SavePokemon(&pokemon, []uint{999})
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The transaction must leave no partial row behind
	var count int64
	require.NoError(t, store.DB.Model(&Pokemon{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdatePokemonReplacesAssociationSet(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Water", "Flying", "Ice")
	user := seedUser(t, store)

	category, err := store.ResolveCategory("Sea")
	require.NoError(t, err)

	pokemon := Pokemon{Name: "Squirtle", CategoryID: category.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&pokemon, []uint{types["Water"].ID}))

	submitted := []uint{types["Flying"].ID, types["Ice"].ID}
	require.NoError(t, store.UpdatePokemon(&pokemon, submitted))

	tags, err := store.PokemonTypes(pokemon.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Flying", tags[0].Name)
	assert.Equal(t, "Ice", tags[1].Name)

	// Submitting the same set again yields the same final set
	require.NoError(t, store.UpdatePokemon(&pokemon, submitted))
	tags, err = store.PokemonTypes(pokemon.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestDeletePokemonRemovesAssociations(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Water")
	user := seedUser(t, store)

	category, err := store.ResolveCategory("Sea")
	require.NoError(t, err)

	pokemon := Pokemon{Name: "Squirtle", CategoryID: category.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&pokemon, []uint{types["Water"].ID}))

	require.NoError(t, store.DeletePokemon(pokemon.ID))

	_, err = store.GetPokemon(pokemon.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, store.DB.Model(&PokemonType{}).Where("pokemon_id = ?", pokemon.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteTypeRemovesAssociationsKeepsPokemon(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Water", "Flying")
	user := seedUser(t, store)

	category, err := store.ResolveCategory("Sea")
	require.NoError(t, err)

	pokemon := Pokemon{Name: "Squirtle", CategoryID: category.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&pokemon, []uint{types["Water"].ID, types["Flying"].ID}))

	require.NoError(t, store.DeleteType(types["Water"].ID))

	_, err = store.GetType(types["Water"].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The entry stays, only the association to the deleted type is gone
	_, err = store.GetPokemon(pokemon.ID)
	require.NoError(t, err)

	tags, err := store.PokemonTypes(pokemon.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Flying", tags[0].Name)
}

func TestDeletePokemonNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeletePokemon(12345)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteCategoryCascadesToPokemons(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Water")
	user := seedUser(t, store)

	category, err := store.ResolveCategory("Sea")
	require.NoError(t, err)

	pokemon := Pokemon{Name: "Squirtle", CategoryID: category.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&pokemon, []uint{types["Water"].ID}))

	require.NoError(t, store.DeleteCategory(category.ID))

	var count int64
	require.NoError(t, store.DB.Model(&Pokemon{}).Count(&count).Error)
	assert.Zero(t, count, "deleting a category must cascade to its pokemons")
}

func TestFilteredPokemonsEmptyStore(t *testing.T) {
	store := newTestStore(t)

	pokemons, total, err := store.FilteredPokemons(&PokemonFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, pokemons)
	assert.Zero(t, total)
}

func TestFilteredPokemons(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Water", "Fire")
	user := seedUser(t, store)

	sea, err := store.ResolveCategory("Sea")
	require.NoError(t, err)
	volcano, err := store.ResolveCategory("Volcano")
	require.NoError(t, err)

	squirtle := Pokemon{Name: "Squirtle", CategoryID: sea.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&squirtle, []uint{types["Water"].ID}))
	charmander := Pokemon{Name: "Charmander", CategoryID: volcano.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&charmander, []uint{types["Fire"].ID}))

	t.Run("name substring", func(t *testing.T) {
		pokemons, total, err := store.FilteredPokemons(&PokemonFilters{NameLike: "squirt"})
		require.NoError(t, err)
		require.Len(t, pokemons, 1)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Squirtle", pokemons[0].Name)
	})

	t.Run("category by id", func(t *testing.T) {
		pokemons, _, err := store.FilteredPokemons(&PokemonFilters{Category: "2"})
		require.NoError(t, err)
		require.Len(t, pokemons, 1)
		assert.Equal(t, "Charmander", pokemons[0].Name)
	})

	t.Run("category by name substring", func(t *testing.T) {
		pokemons, _, err := store.FilteredPokemons(&PokemonFilters{Category: "volc"})
		require.NoError(t, err)
		require.Len(t, pokemons, 1)
		assert.Equal(t, "Charmander", pokemons[0].Name)
	})

	t.Run("type membership", func(t *testing.T) {
		pokemons, _, err := store.FilteredPokemons(&PokemonFilters{TypeIn: []uint{types["Water"].ID}})
		require.NoError(t, err)
		require.Len(t, pokemons, 1)
		assert.Equal(t, "Squirtle", pokemons[0].Name)
	})

	t.Run("out of range page is empty", func(t *testing.T) {
		pokemons, total, err := store.FilteredPokemons(&PokemonFilters{Page: 99, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, pokemons)
		assert.EqualValues(t, 2, total)
	})

	t.Run("defaults applied", func(t *testing.T) {
		pokemons, _, err := store.FilteredPokemons(&PokemonFilters{})
		require.NoError(t, err)
		assert.Len(t, pokemons, 2)
	})
}

func TestSearchPokemonsAcrossJoinedTables(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Electric")
	user := seedUser(t, store)

	forest, err := store.ResolveCategory("Forest")
	require.NoError(t, err)

	pikachu := Pokemon{Name: "Pikachu", CategoryID: forest.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&pikachu, []uint{types["Electric"].ID}))

	t.Run("match by type name only", func(t *testing.T) {
		pokemons, total, err := store.SearchPokemons("electr", 10, 0)
		require.NoError(t, err)
		require.Len(t, pokemons, 1)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Pikachu", pokemons[0].Name)
	})

	t.Run("match by category name", func(t *testing.T) {
		pokemons, _, err := store.SearchPokemons("forest", 10, 0)
		require.NoError(t, err)
		assert.Len(t, pokemons, 1)
	})

	t.Run("no match", func(t *testing.T) {
		pokemons, total, err := store.SearchPokemons("mewtwo", 10, 0)
		require.NoError(t, err)
		assert.Empty(t, pokemons)
		assert.Zero(t, total)
	})
}

func TestPokemonTypesBatch(t *testing.T) {
	store := newTestStore(t)
	types := seedVocabulary(t, store, "Water", "Fire", "Flying")
	user := seedUser(t, store)

	sea, err := store.ResolveCategory("Sea")
	require.NoError(t, err)

	squirtle := Pokemon{Name: "Squirtle", CategoryID: sea.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&squirtle, []uint{types["Water"].ID, types["Flying"].ID}))
	charmander := Pokemon{Name: "Charmander", CategoryID: sea.ID, UserID: user.ID}
	require.NoError(t, store.SavePokemon(&charmander, []uint{types["Fire"].ID}))

	batch, err := store.PokemonTypesBatch([]uint{squirtle.ID, charmander.ID})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Len(t, batch[squirtle.ID], 2)
	assert.Len(t, batch[charmander.ID], 1)
	assert.Equal(t, "Fire", batch[charmander.ID][0].Name)

	empty, err := store.PokemonTypesBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetUserByEmail(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store)

	found, err := store.GetUserByEmail("ash@pallet.town")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = store.GetUserByEmail("nobody@nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDuplicateEmailRejected(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store)

	dup := User{Username: "gary", Email: "ash@pallet.town", Password: "hashed"}
	assert.Error(t, store.CreateUser(&dup))
}
