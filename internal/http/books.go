package http

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shelflib/shelflib/internal/auth"
	"github.com/shelflib/shelflib/internal/books"
)

// BooksController serves the book lifecycle endpoints.
type BooksController struct {
	service   *books.Service
	uploadDir string
}

// NewBooksController creates the books controller. uploadDir is the local
// spool directory for multipart uploads before they move to the media host.
func NewBooksController(service *books.Service, uploadDir string) *BooksController {
	return &BooksController{service: service, uploadDir: uploadDir}
}

// AddBook accepts multipart metadata plus exactly one cover image and one
// book file. Both files are spooled locally, pushed to the media host by the
// service, and always cleaned up afterwards.
func (ctrl *BooksController) AddBook(c *gin.Context) {
	ident := auth.CurrentIdentity(c)

	coverHeader, coverErr := c.FormFile("coverImage")
	fileHeader, fileErr := c.FormFile("file")
	if coverErr != nil || fileErr != nil {
		respondBadRequest(c, "cover image and book file are required")
		return
	}

	year, _ := strconv.Atoi(c.PostForm("publishedYear"))

	input := books.AddBookInput{
		Title:         c.PostForm("title"),
		Author:        c.PostForm("author"),
		Genre:         c.PostForm("genre"),
		PublishedYear: year,
		Publisher:     c.PostForm("publisher"),
		CoverName:     coverHeader.Filename,
		CoverFormat:   formatOf(coverHeader, "jpg"),
		FileName:      fileHeader.Filename,
		FileFormat:    formatOf(fileHeader, "pdf"),
	}

	coverPath, err := ctrl.spool(c, coverHeader)
	if err != nil {
		respondServiceError(c, err, "spool cover image")
		return
	}
	input.CoverPath = coverPath

	filePath, err := ctrl.spool(c, fileHeader)
	if err != nil {
		os.Remove(coverPath)
		respondServiceError(c, err, "spool book file")
		return
	}
	input.FilePath = filePath

	book, err := ctrl.service.AddBook(c.Request.Context(), ident, input)
	if err != nil {
		respondServiceError(c, err, "add book")
		return
	}

	respondCreated(c, gin.H{"message": "book added successfully", "data": book})
}

// MyBooks lists the requester's books, newest first.
func (ctrl *BooksController) MyBooks(c *gin.Context) {
	booksList, err := ctrl.service.ListOwnedBooks(auth.CurrentIdentity(c))
	if err != nil {
		respondServiceError(c, err, "list owned books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": booksList})
}

// Download redirects to the book's file URL when the requester may read it.
func (ctrl *BooksController) Download(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	url, err := ctrl.service.GetDownloadTarget(auth.CurrentIdentity(c), bookID)
	if err != nil {
		respondServiceError(c, err, "download book")
		return
	}

	c.Redirect(http.StatusFound, url)
}

// SetVisibility toggles the book's public flag.
func (ctrl *BooksController) SetVisibility(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req struct {
		IsPublic bool `json:"isPublic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := ctrl.service.SetVisibility(auth.CurrentIdentity(c), bookID, req.IsPublic)
	if err != nil {
		respondServiceError(c, err, "set book visibility")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book visibility updated", "data": book})
}

// LibraryBooks lists the member books of a library visible to the requester.
func (ctrl *BooksController) LibraryBooks(c *gin.Context) {
	libraryID, ok := parseIDParam(c, "libraryId")
	if !ok {
		return
	}

	members, err := ctrl.service.ListLibraryBooks(auth.CurrentIdentity(c), libraryID)
	if err != nil {
		respondServiceError(c, err, "list library books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

// DashboardStats returns the requester's shelf counts.
func (ctrl *BooksController) DashboardStats(c *gin.Context) {
	stats, err := ctrl.service.DashboardStats(auth.CurrentIdentity(c))
	if err != nil {
		respondServiceError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// spool saves an uploaded part into the local upload directory under a
// collision-free name.
func (ctrl *BooksController) spool(c *gin.Context, header *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst := filepath.Join(ctrl.uploadDir, name)
	if err := c.SaveUploadedFile(header, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func formatOf(header *multipart.FileHeader, fallback string) string {
	ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	if ext == "" {
		return fallback
	}
	return strings.ToLower(ext)
}
