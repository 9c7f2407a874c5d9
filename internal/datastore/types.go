package datastore

import (
	"fmt"

	"gorm.io/gorm"
)

// GetType retrieves a type vocabulary entry by id.
func (ds *DataStore) GetType(id uint) (TypeList, error) {
	var t TypeList
	if err := ds.DB.First(&t, id).Error; err != nil {
		return TypeList{}, fmt.Errorf("getting type with ID %d: %w", id, err)
	}
	return t, nil
}

// ListTypes retrieves the full type vocabulary ordered by id.
func (ds *DataStore) ListTypes() ([]TypeList, error) {
	var types []TypeList
	if err := ds.DB.Order("id ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}
	return types, nil
}

// CreateType inserts a new type vocabulary entry.
func (ds *DataStore) CreateType(t *TypeList) error {
	if err := ds.DB.Create(t).Error; err != nil {
		return fmt.Errorf("creating type: %w", err)
	}
	return nil
}

// UpdateType updates an existing type vocabulary entry.
func (ds *DataStore) UpdateType(t *TypeList) error {
	if err := ds.DB.Save(t).Error; err != nil {
		return fmt.Errorf("updating type with ID %d: %w", t.ID, err)
	}
	return nil
}

// DeleteType removes a type vocabulary entry, associations referencing it
// are removed by the declared cascade.
func (ds *DataStore) DeleteType(id uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		// SQLite enforces the cascade only through the schema constraint,
		// remove associations explicitly so both backends behave the same.
		if err := tx.Where("type_id = ?", id).Delete(&PokemonType{}).Error; err != nil {
			return fmt.Errorf("deleting associations for type ID %d: %w", id, err)
		}

		result := tx.Delete(&TypeList{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting type with ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("deleting type with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil
	})
}
