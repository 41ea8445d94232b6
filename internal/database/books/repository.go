// Package books provides database operations for book records.
package books

import (
	"time"

	"gorm.io/gorm"

	"github.com/shelflib/shelflib/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook persists a new book with no library memberships.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetBookByID retrieves a book with its library memberships.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Libraries").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBooksForOwner returns the owner's books, most recently created first,
// with library memberships resolved.
func (r *Repository) GetBooksForOwner(ownerID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Libraries").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// GetAllBooks returns every book with its owner resolved, newest first.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("User").Order("created_at DESC").Find(&books).Error
	return books, err
}

// SetVisibility updates the book's public flag. When the value actually
// changes, every library containing the book gets its updated_at bumped in
// the same transaction, so library viewers observe the change without
// re-fetching the book. Returns whether anything changed.
func (r *Repository) SetVisibility(bookID uint, isPublic bool) (bool, error) {
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		return false, err
	}
	if book.IsPublic == isPublic {
		return false, nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&book).Update("is_public", isPublic).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Library{}).
			Where("id IN (SELECT library_id FROM library_books WHERE book_id = ?)", bookID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountForOwner returns the owner's total and public book counts.
func (r *Repository) CountForOwner(ownerID uint) (total int64, public int64, err error) {
	err = r.db.Model(&entities.Book{}).Where("user_id = ?", ownerID).Count(&total).Error
	if err != nil {
		return
	}
	err = r.db.Model(&entities.Book{}).
		Where("user_id = ? AND is_public = ?", ownerID, true).
		Count(&public).Error
	return
}
