// Package admin implements the super-admin audit and cascade-delete
// operations.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	bookrepo "github.com/shelflib/shelflib/internal/database/books"
	userrepo "github.com/shelflib/shelflib/internal/database/users"
	"github.com/shelflib/shelflib/internal/entities"
	"github.com/shelflib/shelflib/internal/faults"
	"github.com/shelflib/shelflib/internal/identity"
	"github.com/shelflib/shelflib/internal/libraries"
)

// AuditedBook is the audit view of a book: the record plus its owner's
// identity resolved, since the entity itself never serializes the owner.
type AuditedBook struct {
	entities.Book
	OwnerUsername string `json:"ownerUsername"`
	OwnerEmail    string `json:"ownerEmail"`
}

// Service performs cross-tenant reads and deletes. Every operation requires
// the super-admin flag; cascades run in a single transaction.
type Service struct {
	db        *gorm.DB
	users     *userrepo.Repository
	books     *bookrepo.Repository
	libraries *libraries.Service
}

// NewService creates the admin service.
func NewService(db *gorm.DB, users *userrepo.Repository, books *bookrepo.Repository, libs *libraries.Service) *Service {
	return &Service{
		db:        db,
		users:     users,
		books:     books,
		libraries: libs,
	}
}

// DeleteUser removes the user, deletes every book they own (pulling each
// from library memberships) and orphans their libraries by nulling the admin
// reference. The libraries themselves survive. Books go before the user row
// so no book ever points at a deleted owner.
func (s *Service) DeleteUser(ctx context.Context, requester identity.Identity, userID uint) error {
	if !identity.IsSuperAdmin(requester) {
		return deniedFor(requester)
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return notFoundOr(err, "user")
	}

	if user.ID == requester.UserID {
		return fmt.Errorf("%w: cannot delete your own account", faults.ErrInvalidOperation)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM library_books WHERE book_id IN (SELECT id FROM books WHERE user_id = ?)",
			userID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&entities.Book{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Library{}).
			Where("admin_id = ?", userID).
			Update("admin_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.User{}, userID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	// The public listing resolves admin usernames; orphaning invalidates it.
	s.libraries.InvalidatePublicList(ctx)

	logrus.WithFields(logrus.Fields{
		"userId":    userID,
		"deletedBy": requester.UserID,
	}).Info("user deleted with cascade")

	return nil
}

// DeleteBook removes the book from every library's membership and then
// deletes it.
func (s *Service) DeleteBook(ctx context.Context, requester identity.Identity, bookID uint) error {
	if !identity.IsSuperAdmin(requester) {
		return deniedFor(requester)
	}

	if _, err := s.books.GetBookByID(bookID); err != nil {
		return notFoundOr(err, "book")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM library_books WHERE book_id = ?", bookID).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, bookID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"bookId":    bookID,
		"deletedBy": requester.UserID,
	}).Info("book deleted")

	return nil
}

// ListUsers returns every account for audit, newest first. Password hashes
// never serialize.
func (s *Service) ListUsers(requester identity.Identity) ([]entities.User, error) {
	if !identity.IsSuperAdmin(requester) {
		return nil, deniedFor(requester)
	}
	return s.users.GetAllUsers()
}

// ListBooks returns every book with its owner's username and email resolved,
// newest first.
func (s *Service) ListBooks(requester identity.Identity) ([]AuditedBook, error) {
	if !identity.IsSuperAdmin(requester) {
		return nil, deniedFor(requester)
	}

	listed, err := s.books.GetAllBooks()
	if err != nil {
		return nil, err
	}

	audited := make([]AuditedBook, 0, len(listed))
	for _, book := range listed {
		audited = append(audited, AuditedBook{
			Book:          book,
			OwnerUsername: book.User.Username,
			OwnerEmail:    book.User.Email,
		})
	}
	return audited, nil
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", faults.ErrNotFound, resource)
	}
	return err
}

func deniedFor(requester identity.Identity) error {
	if !requester.IsAuthenticated() {
		return fmt.Errorf("%w: authentication required", faults.ErrUnauthorized)
	}
	return fmt.Errorf("%w: super-admin access required", faults.ErrForbidden)
}
