package identity

import "github.com/shelflib/shelflib/internal/entities"

// CanReadBook reports whether the requester may read the book: public books
// are readable by anyone, private books only by their owner.
func CanReadBook(requester Identity, book *entities.Book) bool {
	if book.IsPublic {
		return true
	}
	return requester.IsAuthenticated() && requester.UserID == book.UserID
}

// CanWriteBook reports whether the requester may mutate the book. Only the
// owner may, regardless of visibility.
func CanWriteBook(requester Identity, book *entities.Book) bool {
	return requester.IsAuthenticated() && requester.UserID == book.UserID
}

// CanReadLibrary reports whether the requester may read the library. An
// orphaned library (no admin) is readable only if public.
func CanReadLibrary(requester Identity, library *entities.Library) bool {
	if library.IsPublic {
		return true
	}
	return isLibraryAdmin(requester, library)
}

// CanWriteLibrary reports whether the requester may mutate the library.
// Orphaned libraries are writable by no one.
func CanWriteLibrary(requester Identity, library *entities.Library) bool {
	return isLibraryAdmin(requester, library)
}

// IsSuperAdmin reports whether the requester carries the super-admin flag.
func IsSuperAdmin(requester Identity) bool {
	return requester.IsAuthenticated() && requester.IsSuperAdmin
}

func isLibraryAdmin(requester Identity, library *entities.Library) bool {
	if !requester.IsAuthenticated() || library.AdminID == nil {
		return false
	}
	return requester.UserID == *library.AdminID
}
