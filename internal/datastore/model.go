// model.go this code defines the data model for the application
package datastore

import "time"

// User represents a registered account that owns catalog entries
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:24;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Pokemons []Pokemon `gorm:"foreignKey:UserID" json:"-"`
}

// Category is a free-text classification tag, created lazily on first use.
// The unique index on Name closes the duplicate-insert race of concurrent
// find-or-create calls.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Pokemons []Pokemon `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

// TypeList is one entry of the fixed tag vocabulary
type TypeList struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pokemon represents a single location-tagged catalog entry
type Pokemon struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null;index:idx_pokemons_name" json:"name"`
	ImageURL   string    `gorm:"size:255" json:"image_url"` // stored filename under the asset directory
	CategoryID uint      `gorm:"index;not null" json:"category_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Types []PokemonType `gorm:"foreignKey:PokemonID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

// PokemonType records that a Pokemon carries a given TypeList tag.
// Many-to-many join table, no payload beyond the pair and timestamps.
type PokemonType struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PokemonID uint      `gorm:"index;not null" json:"pokemon_id"`
	TypeID    uint      `gorm:"index;not null" json:"type_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the association table named like the original schema
func (PokemonType) TableName() string {
	return "types"
}
