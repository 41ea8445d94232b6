// Package libraries implements the library lifecycle: creation, membership
// linking, detail views and the public listing.
package libraries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shelflib/shelflib/internal/books"
	"github.com/shelflib/shelflib/internal/cache"
	bookrepo "github.com/shelflib/shelflib/internal/database/books"
	libraryrepo "github.com/shelflib/shelflib/internal/database/libraries"
	"github.com/shelflib/shelflib/internal/entities"
	"github.com/shelflib/shelflib/internal/faults"
	"github.com/shelflib/shelflib/internal/identity"
)

// publicListCacheKey and publicListCacheTTL control the cache-aside entry
// for the public-libraries listing, the only anonymous hot-path read.
const (
	publicListCacheKey = "libraries:public"
	publicListCacheTTL = 5 * time.Minute
)

// CreateLibraryInput carries the fields of a new library.
type CreateLibraryInput struct {
	Name        string
	Description string
	IsPublic    bool
}

// LibraryDetails is a library with its member books filtered to what the
// requester may see and the admin's username resolved.
type LibraryDetails struct {
	entities.Library
	AdminUsername string `json:"adminUsername,omitempty"`
}

// PublicLibrary is the payload-economical public listing entry: no member
// books, just the collection itself and who runs it.
type PublicLibrary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	AdminUsername string    `json:"adminUsername,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Service coordinates library operations.
type Service struct {
	libraries *libraryrepo.Repository
	books     *bookrepo.Repository
	cache     *cache.Cache
}

// NewService creates the library service.
func NewService(libraries *libraryrepo.Repository, books *bookrepo.Repository, c *cache.Cache) *Service {
	return &Service{
		libraries: libraries,
		books:     books,
		cache:     c,
	}
}

// Create makes the requester the admin of a new, initially empty library.
func (s *Service) Create(ctx context.Context, requester identity.Identity, input CreateLibraryInput) (*entities.Library, error) {
	if !requester.IsAuthenticated() {
		return nil, fmt.Errorf("%w: sign in to create libraries", faults.ErrUnauthorized)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: library name is required", faults.ErrInvalidInput)
	}
	if len(name) > entities.MaxLibraryNameLength {
		return nil, fmt.Errorf("%w: library name exceeds %d characters", faults.ErrInvalidInput, entities.MaxLibraryNameLength)
	}
	if len(input.Description) > entities.MaxLibraryDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", faults.ErrInvalidInput, entities.MaxLibraryDescriptionLength)
	}

	adminID := requester.UserID
	library := &entities.Library{
		Name:        name,
		Description: input.Description,
		IsPublic:    input.IsPublic,
		AdminID:     &adminID,
	}
	if err := s.libraries.CreateLibrary(library); err != nil {
		return nil, fmt.Errorf("failed to create library: %w", err)
	}

	if library.IsPublic {
		s.invalidatePublicList(ctx)
	}

	return library, nil
}

// ListOwned returns the requester's libraries with member books resolved.
func (s *Service) ListOwned(requester identity.Identity) ([]entities.Library, error) {
	if !requester.IsAuthenticated() {
		return nil, fmt.Errorf("%w: sign in to list your libraries", faults.ErrUnauthorized)
	}
	return s.libraries.GetLibrariesForAdmin(requester.UserID)
}

// AddBook links the book into the library. Linking is idempotent and both
// sides of the relationship update together; only the library's admin may
// link.
func (s *Service) AddBook(requester identity.Identity, libraryID, bookID uint) error {
	library, err := s.libraries.GetLibraryByID(libraryID)
	if err != nil {
		return notFoundOr(err, "library")
	}
	if !identity.CanWriteLibrary(requester, library) {
		return deniedFor(requester)
	}

	if _, err := s.books.GetBookByID(bookID); err != nil {
		return notFoundOr(err, "book")
	}

	if err := s.libraries.LinkBook(libraryID, bookID); err != nil {
		return fmt.Errorf("failed to link book: %w", err)
	}
	return nil
}

// Details returns the library with member books filtered to the requester's
// view. Private libraries require the admin.
func (s *Service) Details(requester identity.Identity, libraryID uint) (*LibraryDetails, error) {
	library, err := s.libraries.GetLibraryByID(libraryID)
	if err != nil {
		return nil, notFoundOr(err, "library")
	}

	if !identity.CanReadLibrary(requester, library) {
		return nil, deniedFor(requester)
	}

	details := &LibraryDetails{Library: *library}
	details.Books = books.VisibleMembers(requester, library)
	if library.Admin != nil {
		details.AdminUsername = library.Admin.Username
	}
	return details, nil
}

// SetVisibility updates the library's public flag on behalf of its admin.
func (s *Service) SetVisibility(ctx context.Context, requester identity.Identity, libraryID uint, isPublic bool) (*entities.Library, error) {
	library, err := s.libraries.GetLibraryByID(libraryID)
	if err != nil {
		return nil, notFoundOr(err, "library")
	}
	if !identity.CanWriteLibrary(requester, library) {
		return nil, deniedFor(requester)
	}

	if err := s.libraries.SetVisibility(libraryID, isPublic); err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}
	library.IsPublic = isPublic

	s.invalidatePublicList(ctx)

	return library, nil
}

// ListPublic returns every public library without member lists, served
// through the cache when one is configured.
func (s *Service) ListPublic(ctx context.Context) ([]PublicLibrary, error) {
	var cached []PublicLibrary
	hit, err := s.cache.Get(ctx, publicListCacheKey, &cached)
	if err != nil {
		logrus.WithError(err).Warn("public libraries cache read failed")
	} else if hit {
		return cached, nil
	}

	libs, err := s.libraries.GetPublicLibraries()
	if err != nil {
		return nil, err
	}

	result := make([]PublicLibrary, 0, len(libs))
	for _, lib := range libs {
		entry := PublicLibrary{
			ID:          lib.ID,
			Name:        lib.Name,
			Description: lib.Description,
			CreatedAt:   lib.CreatedAt,
			UpdatedAt:   lib.UpdatedAt,
		}
		if lib.Admin != nil {
			entry.AdminUsername = lib.Admin.Username
		}
		result = append(result, entry)
	}

	if err := s.cache.Set(ctx, publicListCacheKey, result, publicListCacheTTL); err != nil {
		logrus.WithError(err).Warn("public libraries cache write failed")
	}

	return result, nil
}

// InvalidatePublicList drops the cached public listing. Exposed for the
// admin cascades, which can orphan or remove public libraries' admins.
func (s *Service) InvalidatePublicList(ctx context.Context) {
	s.invalidatePublicList(ctx)
}

func (s *Service) invalidatePublicList(ctx context.Context) {
	if err := s.cache.Delete(ctx, publicListCacheKey); err != nil {
		logrus.WithError(err).Warn("public libraries cache invalidation failed")
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
