package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelflib/shelflib/internal/admin"
	"github.com/shelflib/shelflib/internal/auth"
)

// AdminController serves the super-admin audit and delete endpoints.
type AdminController struct {
	service *admin.Service
}

// NewAdminController creates the admin controller.
func NewAdminController(service *admin.Service) *AdminController {
	return &AdminController{service: service}
}

// ListUsers returns every account for audit.
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	users, err := ctrl.service.ListUsers(auth.CurrentIdentity(c))
	if err != nil {
		respondServiceError(c, err, "list all users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// ListBooks returns every book for audit.
func (ctrl *AdminController) ListBooks(c *gin.Context) {
	books, err := ctrl.service.ListBooks(auth.CurrentIdentity(c))
	if err != nil {
		respondServiceError(c, err, "list all books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": books})
}

// DeleteUser cascade-deletes a user: their books go, their libraries are
// orphaned.
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := ctrl.service.DeleteUser(c.Request.Context(), auth.CurrentIdentity(c), userID); err != nil {
		respondServiceError(c, err, "delete user")
		return
	}

	respondSuccess(c, "user and all associated data deleted successfully")
}

// DeleteBook removes a book and pulls it from every library membership.
func (ctrl *AdminController) DeleteBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := ctrl.service.DeleteBook(c.Request.Context(), auth.CurrentIdentity(c), bookID); err != nil {
		respondServiceError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted successfully")
}
