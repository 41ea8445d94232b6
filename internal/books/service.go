// Package books implements the book lifecycle: upload, listing, download
// access and visibility changes.
package books

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	bookrepo "github.com/shelflib/shelflib/internal/database/books"
	libraryrepo "github.com/shelflib/shelflib/internal/database/libraries"
	"github.com/shelflib/shelflib/internal/entities"
	"github.com/shelflib/shelflib/internal/faults"
	"github.com/shelflib/shelflib/internal/identity"
	"github.com/shelflib/shelflib/internal/media"
)

// AddBookInput carries the metadata and spooled upload files for a new book.
type AddBookInput struct {
	Title         string
	Author        string
	Genre         string
	PublishedYear int
	Publisher     string

	CoverPath   string // Local spool path of the cover image
	CoverName   string
	CoverFormat string
	FilePath    string // Local spool path of the book file
	FileName    string
	FileFormat  string
}

// Stats summarizes an owner's shelf for the dashboard.
type Stats struct {
	TotalBooks      int64 `json:"totalBooks"`
	PublicBooks     int64 `json:"publicBooks"`
	OwnedLibraries  int64 `json:"ownedLibraries"`
	PublicLibraries int64 `json:"publicLibraries"`
}

// Service coordinates book operations across the repositories and the media
// uploader.
type Service struct {
	books     *bookrepo.Repository
	libraries *libraryrepo.Repository
	uploader  media.Uploader
}

// NewService creates the book service.
func NewService(books *bookrepo.Repository, libraries *libraryrepo.Repository, uploader media.Uploader) *Service {
	return &Service{
		books:     books,
		libraries: libraries,
		uploader:  uploader,
	}
}

// AddBook uploads both files to the media host and persists the book for the
// requester. The spooled local copies are removed when the attempt finishes,
// whether or not it succeeded.
func (s *Service) AddBook(ctx context.Context, requester identity.Identity, input AddBookInput) (*entities.Book, error) {
	defer removeSpooled(input.CoverPath)
	defer removeSpooled(input.FilePath)

	if !requester.IsAuthenticated() {
		return nil, fmt.Errorf("%w: sign in to add books", faults.ErrUnauthorized)
	}

	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Author) == "" ||
		strings.TrimSpace(input.Genre) == "" ||
		strings.TrimSpace(input.Publisher) == "" ||
		input.PublishedYear <= 0 {
		return nil, fmt.Errorf("%w: all metadata fields are required", faults.ErrInvalidInput)
	}
	if input.CoverPath == "" || input.FilePath == "" {
		return nil, fmt.Errorf("%w: cover image and book file are required", faults.ErrInvalidInput)
	}

	coverURL, err := s.upload(ctx, media.UploadRequest{
		LocalPath: input.CoverPath,
		FileName:  input.CoverName,
		Folder:    "coverImages",
		Format:    input.CoverFormat,
	})
	if err != nil {
		return nil, err
	}

	fileURL, err := s.upload(ctx, media.UploadRequest{
		LocalPath: input.FilePath,
		FileName:  input.FileName,
		Folder:    "pdfs",
		Format:    input.FileFormat,
	})
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:         input.Title,
		Author:        input.Author,
		Genre:         input.Genre,
		PublishedYear: input.PublishedYear,
		Publisher:     input.Publisher,
		CoverImage:    coverURL,
		BookFile:      fileURL,
		UserID:        requester.UserID,
	}
	if err := s.books.CreateBook(book); err != nil {
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	return book, nil
}

func (s *Service) upload(ctx context.Context, req media.UploadRequest) (string, error) {
	result, err := s.uploader.Upload(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("file", req.FileName).Error("media upload failed")
		return "", fmt.Errorf("%w: %s", faults.ErrUploadFailed, req.FileName)
	}
	if result == nil || result.SecureURL == "" {
		return "", fmt.Errorf("%w: media host returned no URL for %s", faults.ErrUploadFailed, req.FileName)
	}
	return result.SecureURL, nil
}

// ListOwnedBooks returns the requester's books, newest first.
func (s *Service) ListOwnedBooks(requester identity.Identity) ([]entities.Book, error) {
	if !requester.IsAuthenticated() {
		return nil, fmt.Errorf("%w: sign in to list your books", faults.ErrUnauthorized)
	}
	return s.books.GetBooksForOwner(requester.UserID)
}

// GetDownloadTarget returns the book's file URL. Public books are
// downloadable by anyone; private books only by their owner.
func (s *Service) GetDownloadTarget(requester identity.Identity, bookID uint) (string, error) {
	book, err := s.books.GetBookByID(bookID)
	if err != nil {
		return "", notFoundOr(err, "book")
	}

	if book.IsPublic {
		return book.BookFile, nil
	}
	if !identity.CanReadBook(requester, book) {
		return "", deniedFor(requester)
	}
	return book.BookFile, nil
}

// SetVisibility updates the book's public flag on behalf of its owner.
func (s *Service) SetVisibility(requester identity.Identity, bookID uint, isPublic bool) (*entities.Book, error) {
	book, err := s.books.GetBookByID(bookID)
	if err != nil {
		return nil, notFoundOr(err, "book")
	}
	if !identity.CanWriteBook(requester, book) {
		return nil, deniedFor(requester)
	}

	if _, err := s.books.SetVisibility(bookID, isPublic); err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}
	book.IsPublic = isPublic
	return book, nil
}

// ListLibraryBooks returns the library's member books visible to the
// requester: the owning admin sees every member, anyone else only the public
// ones. Private libraries are invisible to non-admins.
func (s *Service) ListLibraryBooks(requester identity.Identity, libraryID uint) ([]entities.Book, error) {
	library, err := s.libraries.GetLibraryByID(libraryID)
	if err != nil {
		return nil, notFoundOr(err, "library")
	}

	if !library.IsPublic && !identity.CanReadLibrary(requester, library) {
		return nil, deniedFor(requester)
	}

	return VisibleMembers(requester, library), nil
}

// DashboardStats returns the owner's shelf counts.
func (s *Service) DashboardStats(requester identity.Identity) (*Stats, error) {
	if !requester.IsAuthenticated() {
		return nil, fmt.Errorf("%w: sign in to view stats", faults.ErrUnauthorized)
	}

	total, public, err := s.books.CountForOwner(requester.UserID)
	if err != nil {
		return nil, err
	}
	ownedLibs, err := s.libraries.CountForAdmin(requester.UserID)
	if err != nil {
		return nil, err
	}
	publicLibs, err := s.libraries.CountPublic()
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalBooks:      total,
		PublicBooks:     public,
		OwnedLibraries:  ownedLibs,
		PublicLibraries: publicLibs,
	}, nil
}

// VisibleMembers applies the single visibility rule for library member
// books: the owning admin sees all of them, every other viewer only the
// public ones.
func VisibleMembers(requester identity.Identity, library *entities.Library) []entities.Book {
	if identity.CanWriteLibrary(requester, library) {
		return library.Books
	}
	visible := make([]entities.Book, 0, len(library.Books))
	for _, b := range library.Books {
		if b.IsPublic {
			visible = append(visible, b)
		}
	}
	return visible
}

func removeSpooled(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", path).Warn("failed to remove spooled upload")
	}
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
	return fmt.Errorf("%w: not allowed", faults.ErrForbidden)
}
