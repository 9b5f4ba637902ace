// Package users provides database operations for library accounts and the
// permission grants attached to them.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByUsername(ctx, "librarian")
//	err = repo.GrantPermission(ctx, user.ID, entities.PermissionCanMarkReturned)
package users

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/locallibrary/internal/database"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user. Password hashing is the caller's concern.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Omit("Permissions").Create(user).Error
}

// GetByID retrieves a user with their permission grants.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Preload("Permissions").First(&user, id).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username with their permission grants.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Preload("Permissions").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// GetByLogin matches either username or email.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Preload("Permissions").
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// Exists reports whether a username or email is already taken.
func (r *Repository) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// List returns all users ordered by username.
func (r *Repository) List(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).Preload("Permissions").Order("username ASC").Find(&users).Error
	return users, err
}

// Count returns the number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}

// Updates applies a column map to a single user.
func (r *Repository) Updates(ctx context.Context, id uint, values map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// GrantPermission gives a user a capability. Granting twice is a no-op.
func (r *Repository) GrantPermission(ctx context.Context, userID uint, perm entities.Permission) error {
	if !isKnownPermission(perm) {
		return fmt.Errorf("unknown permission %q", perm)
	}
	if _, err := r.GetByID(ctx, userID); err != nil {
		return err
	}
	grant := &entities.UserPermission{UserID: userID, Codename: perm}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(grant).Error
}

// RevokePermission removes a capability grant.
func (r *Repository) RevokePermission(ctx context.Context, userID uint, perm entities.Permission) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND codename = ?", userID, perm).
		Delete(&entities.UserPermission{}).Error
}

func isKnownPermission(perm entities.Permission) bool {
	for _, known := range entities.KnownPermissions() {
		if known == perm {
			return true
		}
	}
	return false
}
