package datastore

import (
	"fmt"

	"gorm.io/gorm"
)

// GetCategory retrieves a category by id.
func (ds *DataStore) GetCategory(id uint) (Category, error) {
	var category Category
	if err := ds.DB.First(&category, id).Error; err != nil {
		return Category{}, fmt.Errorf("getting category with ID %d: %w", id, err)
	}
	return category, nil
}

// GetCategoryByName retrieves a category by exact name match.
func (ds *DataStore) GetCategoryByName(name string) (Category, error) {
	var category Category
	if err := ds.DB.Where("name = ?", name).First(&category).Error; err != nil {
		return Category{}, fmt.Errorf("getting category by name %q: %w", name, err)
	}
	return category, nil
}

// ResolveCategory maps a category name to a row, creating it when unseen.
// The unique index on name plus a retry on conflict makes concurrent
// duplicate-name resolution converge on a single row.
func (ds *DataStore) ResolveCategory(name string) (Category, error) {
	var category Category

	err := ds.DB.Where(Category{Name: name}).FirstOrCreate(&category).Error
	if err == nil {
		return category, nil
	}

	// A concurrent insert between the lookup and the create trips the
	// unique index, the row exists now so re-read it.
	if ds.DB.Where("name = ?", name).First(&category).Error == nil {
		return category, nil
	}

	return Category{}, fmt.Errorf("resolving category %q: %w", name, err)
}

// ListCategories retrieves all categories ordered by name.
func (ds *DataStore) ListCategories() ([]Category, error) {
	var categories []Category
	if err := ds.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a new category row.
func (ds *DataStore) CreateCategory(category *Category) error {
	if err := ds.DB.Create(category).Error; err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

// UpdateCategory updates an existing category row.
func (ds *DataStore) UpdateCategory(category *Category) error {
	if err := ds.DB.Save(category).Error; err != nil {
		return fmt.Errorf("updating category with ID %d: %w", category.ID, err)
	}
	return nil
}

// DeleteCategory removes a category. Dependent pokemons and their
// associations are removed by the declared cascade.
func (ds *DataStore) DeleteCategory(id uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Category{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting category with ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("deleting category with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// CategoriesByID fetches the given categories in one query, keyed by id.
func (ds *DataStore) CategoriesByID(ids []uint) (map[uint]Category, error) {
	result := make(map[uint]Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var categories []Category
	if err := ds.DB.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("fetching categories by id: %w", err)
	}

	for _, category := range categories {
		result[category.ID] = category
	}
	return result, nil
}
