package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelflib/shelflib/internal/auth"
	"github.com/shelflib/shelflib/internal/libraries"
)

// LibrariesController serves the library lifecycle endpoints.
type LibrariesController struct {
	service *libraries.Service
}

// NewLibrariesController creates the libraries controller.
func NewLibrariesController(service *libraries.Service) *LibrariesController {
	return &LibrariesController{service: service}
}

// Create makes a new library administered by the requester.
func (ctrl *LibrariesController) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"isPublic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	library, err := ctrl.service.Create(c.Request.Context(), auth.CurrentIdentity(c), libraries.CreateLibraryInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondServiceError(c, err, "create library")
		return
	}

	respondCreated(c, gin.H{"message": "library created successfully", "data": library})
}

// MyLibraries lists the requester's libraries with member books resolved.
func (ctrl *LibrariesController) MyLibraries(c *gin.Context) {
	libs, err := ctrl.service.ListOwned(auth.CurrentIdentity(c))
	if err != nil {
		respondServiceError(c, err, "list owned libraries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": libs})
}

// Public lists every public library without member lists.
func (ctrl *LibrariesController) Public(c *gin.Context) {
	libs, err := ctrl.service.ListPublic(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list public libraries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": libs})
}

// AddBook links a book into the library.
func (ctrl *LibrariesController) AddBook(c *gin.Context) {
	libraryID, ok := parseIDParam(c, "libraryId")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := ctrl.service.AddBook(auth.CurrentIdentity(c), libraryID, bookID); err != nil {
		respondServiceError(c, err, "add book to library")
		return
	}

	respondSuccess(c, "book added to library successfully")
}

// Details returns a library with member books filtered to the requester's
// view.
func (ctrl *LibrariesController) Details(c *gin.Context) {
	libraryID, ok := parseIDParam(c, "libraryId")
	if !ok {
		return
	}

	details, err := ctrl.service.Details(auth.CurrentIdentity(c), libraryID)
	if err != nil {
		respondServiceError(c, err, "library details")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": details})
}

// SetVisibility toggles the library's public flag.
func (ctrl *LibrariesController) SetVisibility(c *gin.Context) {
	libraryID, ok := parseIDParam(c, "libraryId")
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

	library, err := ctrl.service.SetVisibility(c.Request.Context(), auth.CurrentIdentity(c), libraryID, req.IsPublic)
	if err != nil {
		respondServiceError(c, err, "set library visibility")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "library visibility updated", "data": library})
}
