package datastore

import (
	"fmt"
)

// CreateUser inserts a new user row.
func (ds *DataStore) CreateUser(user *User) error {
	if err := ds.DB.Create(user).Error; err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (ds *DataStore) GetUser(id uint) (User, error) {
	var user User
	if err := ds.DB.First(&user, id).Error; err != nil {
		return User{}, fmt.Errorf("getting user with ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (ds *DataStore) GetUserByEmail(email string) (User, error) {
	var user User
	if err := ds.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return User{}, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}
