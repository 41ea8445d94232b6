package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shelflib/shelflib/internal/auth"
)

// RouterConfig carries every dependency the router needs, keeping NewRouter
// testable without the full entrypoint wiring.
type RouterConfig struct {
	AuthController *auth.Controller
	AuthMiddleware *auth.Middleware

	Books     *BooksController
	Libraries *LibrariesController
	Admin     *AdminController
}

// NewRouter creates and configures the HTTP router with all endpoints.
// The identity middleware runs globally and never rejects: endpoints gate
// access themselves through the services' authorization checks.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cfg.AuthMiddleware.Handler())

	// Identity and session
	cfg.AuthController.RegisterRoutes(router)

	// Books
	book := router.Group("/book")
	book.POST("/add", cfg.Books.AddBook)
	book.GET("/my-books", cfg.Books.MyBooks)
	book.GET("/download/:bookId", cfg.Books.Download)
	book.GET("/dashboard-stats", cfg.Books.DashboardStats)
	book.GET("/library/:libraryId", cfg.Books.LibraryBooks)
	book.PUT("/:bookId/visibility", cfg.Books.SetVisibility)

	// Libraries
	library := router.Group("/library")
	library.POST("", cfg.Libraries.Create)
	library.GET("/my-libraries", cfg.Libraries.MyLibraries)
	library.GET("/public", cfg.Libraries.Public)
	library.PUT("/:libraryId/visibility", cfg.Libraries.SetVisibility)
	library.POST("/:libraryId/books/:bookId", cfg.Libraries.AddBook)
	library.GET("/:libraryId", cfg.Libraries.Details)

	// Super-admin audit and cascades
	user := router.Group("/user")
	user.GET("/", cfg.Admin.ListUsers)
	user.GET("/books/all", cfg.Admin.ListBooks)
	user.DELETE("/books/:bookId", cfg.Admin.DeleteBook)
	user.DELETE("/:userId", cfg.Admin.DeleteUser)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	return router
}
