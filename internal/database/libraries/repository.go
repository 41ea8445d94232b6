// Package libraries provides database operations for library collections.
package libraries

import (
	"gorm.io/gorm"

	"github.com/shelflib/shelflib/internal/entities"
)

// Repository handles all library database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new libraries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateLibrary persists a new library with empty membership.
func (r *Repository) CreateLibrary(library *entities.Library) error {
	return r.db.Create(library).Error
}

// GetLibraryByID retrieves a library with its admin and member books.
func (r *Repository) GetLibraryByID(id uint) (*entities.Library, error) {
	var library entities.Library
	err := r.db.Preload("Admin").Preload("Books").First(&library, id).Error
	if err != nil {
		return nil, err
	}
	return &library, nil
}

// GetLibrariesForAdmin returns the admin's libraries with member books
// resolved, most recently created first.
func (r *Repository) GetLibrariesForAdmin(adminID uint) ([]entities.Library, error) {
	var libs []entities.Library
	err := r.db.Preload("Books").
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Find(&libs).Error
	return libs, err
}

// GetPublicLibraries returns all public libraries with their admins resolved.
// Member books are deliberately not loaded: the public listing omits them.
func (r *Repository) GetPublicLibraries() ([]entities.Library, error) {
	var libs []entities.Library
	err := r.db.Preload("Admin").
		Where("is_public = ?", true).
		Order("created_at DESC").
		Find(&libs).Error
	return libs, err
}

// SetVisibility updates the library's public flag.
func (r *Repository) SetVisibility(libraryID uint, isPublic bool) error {
	return r.db.Model(&entities.Library{}).
		Where("id = ?", libraryID).
		Update("is_public", isPublic).Error
}

// LinkBook adds the book to the library's membership. The check and insert
// run in one transaction so a repeated link never produces a duplicate row,
// and there is no window where only one side of the relationship exists:
// both directions read the same join table.
func (r *Repository) LinkBook(libraryID, bookID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Table("library_books").
			Where("library_id = ? AND book_id = ?", libraryID, bookID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		var library entities.Library
		if err := tx.First(&library, libraryID).Error; err != nil {
			return err
		}
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			return err
		}
		return tx.Model(&library).Association("Books").Append(&book)
	})
}

// IsMember reports whether the book belongs to the library.
func (r *Repository) IsMember(libraryID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Table("library_books").
		Where("library_id = ? AND book_id = ?", libraryID, bookID).
		Count(&count).Error
	return count > 0, err
}

// CountForAdmin returns how many libraries the admin owns.
func (r *Repository) CountForAdmin(adminID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Library{}).Where("admin_id = ?", adminID).Count(&count).Error
	return count, err
}

// CountPublic returns how many libraries are public overall.
func (r *Repository) CountPublic() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Library{}).Where("is_public = ?", true).Count(&count).Error
	return count, err
}
