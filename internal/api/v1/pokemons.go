// internal/api/v1/pokemons.go
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tkarvinen/pokedex-go/internal/datastore"
)

// initPokemonRoutes registers all pokemon-related API endpoints
func (c *Controller) initPokemonRoutes() {
	// Read endpoints - publicly accessible
	c.Group.GET("/pokemons", c.ListPokemons)
	c.Group.GET("/pokemons/search/:q", c.SearchPokemons)
	c.Group.GET("/pokemons/:id", c.GetPokemon)

	// Protected management endpoints
	pokemonGroup := c.Group.Group("/pokemons", c.AuthMiddleware)
	pokemonGroup.POST("", c.CreatePokemon)
	pokemonGroup.PUT("/:id", c.UpdatePokemon)
	pokemonGroup.PATCH("/:id", c.UpdatePokemon)
	pokemonGroup.DELETE("/:id", c.DeletePokemon)
}

// TypeRef references a type vocabulary entry by id.
type TypeRef struct {
	ID uint `json:"id"`
}

// CategoryView is the embedded category in a pokemon response.
type CategoryView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TypeView is one tag of a pokemon response.
type TypeView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PokemonView is the composite read representation of an entry.
type PokemonView struct {
	ID         uint         `json:"id"`
	Name       string       `json:"name"`
	ImageURL   string       `json:"image_url"`
	CategoryID uint         `json:"category_id"`
	UserID     uint         `json:"user_id"`
	Latitude   float64      `json:"latitude"`
	Longitude  float64      `json:"longitude"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Category   CategoryView `json:"category"`
	Types      []TypeView   `json:"type"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data        []PokemonView `json:"data"`
	Total       int64         `json:"total"`
	Limit       int           `json:"limit"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
}

// MessageResponse wraps a single entry or search result with a message.
type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// buildPokemonViews assembles the composite views for a page of pokemons
// with one batched association join and one category lookup, regardless of
// page size.
func (c *Controller) buildPokemonViews(pokemons []datastore.Pokemon) ([]PokemonView, error) {
	ids := make([]uint, 0, len(pokemons))
	categoryIDs := make([]uint, 0, len(pokemons))
	seenCategories := make(map[uint]struct{}, len(pokemons))
	for i := range pokemons {
		ids = append(ids, pokemons[i].ID)
		if _, seen := seenCategories[pokemons[i].CategoryID]; !seen {
			seenCategories[pokemons[i].CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, pokemons[i].CategoryID)
		}
	}

	typesByPokemon, err := c.DS.PokemonTypesBatch(ids)
	if err != nil {
		return nil, err
	}

	categories, err := c.DS.CategoriesByID(categoryIDs)
	if err != nil {
		return nil, err
	}

	views := make([]PokemonView, 0, len(pokemons))
	for i := range pokemons {
		views = append(views, newPokemonView(&pokemons[i], categories[pokemons[i].CategoryID], typesByPokemon[pokemons[i].ID]))
	}
	return views, nil
}

func newPokemonView(pokemon *datastore.Pokemon, category datastore.Category, types []datastore.TypeList) PokemonView {
	typeViews := make([]TypeView, 0, len(types))
	for _, t := range types {
		typeViews = append(typeViews, TypeView{ID: t.ID, Name: t.Name})
	}

	return PokemonView{
		ID:         pokemon.ID,
		Name:       pokemon.Name,
		ImageURL:   pokemon.ImageURL,
		CategoryID: pokemon.CategoryID,
		UserID:     pokemon.UserID,
		Latitude:   pokemon.Latitude,
		Longitude:  pokemon.Longitude,
		CreatedAt:  pokemon.CreatedAt,
		UpdatedAt:  pokemon.UpdatedAt,
		Category:   CategoryView{ID: category.ID, Name: category.Name},
		Types:      typeViews,
	}
}

// pokemonView assembles the composite view for a single pokemon.
func (c *Controller) pokemonView(pokemon *datastore.Pokemon) (PokemonView, error) {
	category, err := c.DS.GetCategory(pokemon.CategoryID)
	if err != nil {
		return PokemonView{}, err
	}

	types, err := c.DS.PokemonTypes(pokemon.ID)
	if err != nil {
		return PokemonView{}, err
	}

	return newPokemonView(pokemon, category, types), nil
}

// decodeTypeRefs normalizes the `type` form field into a list of type ids.
// Callers submit either a JSON-encoded string like [{"id":3}] or repeated
// numeric form values, both shapes are accepted here and nowhere else.
func decodeTypeRefs(ctx echo.Context) ([]uint, error) {
	params, err := ctx.FormParams()
	if err != nil {
		return nil, err
	}

	values := params["type"]
	if len(values) == 0 {
		return nil, nil
	}

	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var refs []TypeRef
		if err := json.Unmarshal([]byte(values[0]), &refs); err != nil {
			return nil, err
		}
		ids := make([]uint, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, ref.ID)
		}
		return ids, nil
	}

	ids := make([]uint, 0, len(values))
	for _, value := range values {
		id, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// ListPokemons handles GET /api/v1/pokemons
func (c *Controller) ListPokemons(ctx echo.Context) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	filters := datastore.PokemonFilters{
		NameLike: ctx.QueryParam("name_like"),
		Category: ctx.QueryParam("category"),
		Page:     page,
		Limit:    limit,
	}

	for _, value := range strings.Split(ctx.QueryParam("type_in"), ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		id, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return c.HandleError(ctx, err, "Invalid type_in filter", http.StatusBadRequest)
		}
		filters.TypeIn = append(filters.TypeIn, uint(id))
	}

	pokemons, total, err := c.DS.FilteredPokemons(&filters)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list pokemons", http.StatusInternalServerError)
	}

	views, err := c.buildPokemonViews(pokemons)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to assemble pokemon views", http.StatusInternalServerError)
	}

	totalPages := int((total + int64(filters.Limit) - 1) / int64(filters.Limit))

	return ctx.JSON(http.StatusOK, PaginatedResponse{
		Data:        views,
		Total:       total,
		Limit:       filters.Limit,
		CurrentPage: filters.Page,
		TotalPages:  totalPages,
	})
}

// GetPokemon handles GET /api/v1/pokemons/:id
func (c *Controller) GetPokemon(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid pokemon id", http.StatusBadRequest)
	}

	pokemon, err := c.DS.GetPokemon(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Pokemon not found", statusForError(err))
	}

	view, err := c.pokemonView(&pokemon)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to assemble pokemon view", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "success", Data: view})
}

// SearchPokemons handles GET /api/v1/pokemons/search/:q
func (c *Controller) SearchPokemons(ctx echo.Context) error {
	query := ctx.Param("q")

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	pokemons, _, err := c.DS.SearchPokemons(query, limit, 0)
	if err != nil {
		return c.HandleError(ctx, err, "Search failed", http.StatusInternalServerError)
	}

	// An unmatched search is a regular response, not a transport error
	if len(pokemons) == 0 {
		return ctx.JSON(http.StatusOK, MessageResponse{Message: "item not found"})
	}

	views, err := c.buildPokemonViews(pokemons)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to assemble pokemon views", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "search success", Data: views})
}

// pokemonFormInput carries the parsed scalar form fields of create/update.
type pokemonFormInput struct {
	Name      string
	Category  string
	Latitude  float64
	Longitude float64
	TypeIDs   []uint
}

// bindPokemonForm parses and validates the multipart form fields shared by
// the create and update handlers.
func bindPokemonForm(ctx echo.Context) (*pokemonFormInput, []string) {
	var messages []string

	input := &pokemonFormInput{
		Name:     strings.TrimSpace(ctx.FormValue("name")),
		Category: strings.TrimSpace(ctx.FormValue("category")),
	}

	if input.Name == "" {
		messages = append(messages, "name is required")
	}
	if input.Category == "" {
		messages = append(messages, "category is required")
	}

	if lat := ctx.FormValue("latitude"); lat != "" {
		value, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			messages = append(messages, "latitude must be a number")
		}
		input.Latitude = value
	}
	if lng := ctx.FormValue("longitude"); lng != "" {
		value, err := strconv.ParseFloat(lng, 64)
		if err != nil {
			messages = append(messages, "longitude must be a number")
		}
		input.Longitude = value
	}

	typeIDs, err := decodeTypeRefs(ctx)
	if err != nil {
		messages = append(messages, "type must be a JSON list of {id} references or numeric ids")
	}
	input.TypeIDs = typeIDs

	return input, messages
}

// CreatePokemon handles POST /api/v1/pokemons
func (c *Controller) CreatePokemon(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		return c.HandleError(ctx, nil, "Authentication required", http.StatusUnauthorized)
	}

	input, messages := bindPokemonForm(ctx)
	if len(messages) > 0 {
		return ctx.JSON(http.StatusBadRequest, ValidationResponse{Error: "validation failed", Messages: messages})
	}

	image, err := ctx.FormFile("image")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ValidationResponse{
			Error:    "validation failed",
			Messages: []string{"image is required"},
		})
	}

	// The upload constraints are checked before anything is written, the
	// entry row is stored only after a confirmed file placement.
	filename, err := c.Images.Save(image, input.Name, userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to store image", statusForError(err))
	}

	category, err := c.DS.ResolveCategory(input.Category)
	if err != nil {
		go c.Images.Remove(filename)
		return c.HandleError(ctx, err, "Failed to resolve category", http.StatusInternalServerError)
	}

	pokemon := datastore.Pokemon{
		Name:       input.Name,
		ImageURL:   filename,
		CategoryID: category.ID,
		UserID:     userID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
	}
	if err := c.DS.SavePokemon(&pokemon, input.TypeIDs); err != nil {
		go c.Images.Remove(filename)
		return c.HandleError(ctx, err, "Failed to save pokemon", statusForError(err))
	}

	view, err := c.pokemonView(&pokemon)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to assemble pokemon view", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, "Pokemon created", "pokemon_id", pokemon.ID, "user_id", userID)

	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "created", Data: view})
}

// UpdatePokemon handles PUT and PATCH /api/v1/pokemons/:id. Only the owning
// user may update an entry, the full association set is replaced on every
// call and a submitted image replaces the stored one.
func (c *Controller) UpdatePokemon(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		return c.HandleError(ctx, nil, "Authentication required", http.StatusUnauthorized)
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid pokemon id", http.StatusBadRequest)
	}

	pokemon, err := c.DS.GetPokemon(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Pokemon not found", statusForError(err))
	}

	if pokemon.UserID != userID {
		return c.HandleError(ctx, nil, "Only the owner may modify this pokemon", http.StatusUnauthorized)
	}

	input, messages := bindPokemonForm(ctx)
	if len(messages) > 0 {
		return ctx.JSON(http.StatusBadRequest, ValidationResponse{Error: "validation failed", Messages: messages})
	}

	// The image is optional on update, the stored one is kept when omitted
	oldImage := ""
	newImage := ""
	if image, err := ctx.FormFile("image"); err == nil {
		filename, err := c.Images.Save(image, input.Name, userID)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to store image", statusForError(err))
		}
		oldImage = pokemon.ImageURL
		newImage = filename
		pokemon.ImageURL = filename
	}

	category, err := c.DS.ResolveCategory(input.Category)
	if err != nil {
		go c.Images.Remove(newImage)
		return c.HandleError(ctx, err, "Failed to resolve category", http.StatusInternalServerError)
	}

	pokemon.Name = input.Name
	pokemon.CategoryID = category.ID
	pokemon.Latitude = input.Latitude
	pokemon.Longitude = input.Longitude

	if err := c.DS.UpdatePokemon(&pokemon, input.TypeIDs); err != nil {
		// The row keeps its previous state, the replacement file is orphaned
		go c.Images.Remove(newImage)
		return c.HandleError(ctx, err, "Failed to update pokemon", statusForError(err))
	}

	// Stale image cleanup is best-effort and never blocks the response
	if oldImage != "" && oldImage != pokemon.ImageURL {
		go c.Images.Remove(oldImage)
	}

	view, err := c.pokemonView(&pokemon)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to assemble pokemon view", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, "Pokemon updated", "pokemon_id", pokemon.ID, "user_id", userID)

	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "updated", Data: view})
}

// DeletePokemon handles DELETE /api/v1/pokemons/:id
func (c *Controller) DeletePokemon(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		return c.HandleError(ctx, nil, "Authentication required", http.StatusUnauthorized)
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid pokemon id", http.StatusBadRequest)
	}

	pokemon, err := c.DS.GetPokemon(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Pokemon not found", statusForError(err))
	}

	if pokemon.UserID != userID {
		return c.HandleError(ctx, nil, "Only the owner may delete this pokemon", http.StatusUnauthorized)
	}

	view, err := c.pokemonView(&pokemon)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to assemble pokemon view", http.StatusInternalServerError)
	}

	if err := c.DS.DeletePokemon(pokemon.ID); err != nil {
		return c.HandleError(ctx, err, "Failed to delete pokemon", statusForError(err))
	}

	// The deletion is confirmed even when image removal silently fails
	if pokemon.ImageURL != "" {
		go c.Images.Remove(pokemon.ImageURL)
	}

	c.logAPIRequest(ctx, "Pokemon deleted", "pokemon_id", pokemon.ID, "user_id", userID)

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "deleted", Data: view})
}
