package entities

import (
	"time"
)

// User is an account holder. PasswordHash never leaves the process: it is
// excluded from JSON and callers that return users to clients use the
// sanitized views in the auth package.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	IsSuperAdmin bool      `gorm:"default:false" json:"isSuperAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Book holds uploaded book metadata plus pointers to the externally hosted
// cover image and book file. UserID is the owner and is never reassigned
// after creation.
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"index;size:512" json:"title"`
	Author        string    `gorm:"index;size:256" json:"author"`
	Genre         string    `gorm:"size:100" json:"genre"`
	PublishedYear int       `json:"publishedYear"`
	Publisher     string    `gorm:"size:256" json:"publisher"`
	CoverImage    string    `gorm:"size:2048" json:"coverImage"`
	BookFile      string    `gorm:"size:2048" json:"bookFile"`
	UserID        uint      `gorm:"index" json:"userId"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
	IsPublic      bool      `gorm:"default:false" json:"isPublic"`
	Libraries     []Library `gorm:"many2many:library_books" json:"libraries,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Library is a named collection of books. AdminID becomes nil when the owning
// user is deleted: the library is orphaned, never cascaded away.
//
// Membership lives in the library_books join table, shared with
// Book.Libraries, so the two sides of the relationship cannot diverge.
type Library struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	IsPublic    bool      `gorm:"default:false" json:"isPublic"`
	AdminID     *uint     `gorm:"index" json:"adminId"`
	Admin       *User     `gorm:"foreignKey:AdminID" json:"-"`
	Books       []Book    `gorm:"many2many:library_books" json:"books,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MaxLibraryNameLength bounds Library.Name; MaxLibraryDescriptionLength
// bounds Library.Description. Both match the column sizes above.
const (
	MaxLibraryNameLength        = 100
	MaxLibraryDescriptionLength = 500
)

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (Library) TableName() string {
	return "libraries"
}
