package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelflib/shelflib/internal/admin"
	"github.com/shelflib/shelflib/internal/auth"
	"github.com/shelflib/shelflib/internal/books"
	"github.com/shelflib/shelflib/internal/cache"
	"github.com/shelflib/shelflib/internal/config"
	"github.com/shelflib/shelflib/internal/database"
	bookrepo "github.com/shelflib/shelflib/internal/database/books"
	libraryrepo "github.com/shelflib/shelflib/internal/database/libraries"
	userrepo "github.com/shelflib/shelflib/internal/database/users"
	"github.com/shelflib/shelflib/internal/entities"
	"github.com/shelflib/shelflib/internal/libraries"
	"github.com/shelflib/shelflib/internal/media"
)

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, req media.UploadRequest) (*media.UploadResult, error) {
	return &media.UploadResult{SecureURL: "https://cdn.example/" + req.Folder + "/" + req.FileName}, nil
}

func setupAPITest(t *testing.T) (*gin.Engine, *database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	authCfg := config.Auth{
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
		BcryptCost:  bcrypt.MinCost,
	}

	userRepo := userrepo.NewRepository(db.DB)
	bookRepo := bookrepo.NewRepository(db.DB)
	libRepo := libraryrepo.NewRepository(db.DB)

	authService := auth.NewService(userRepo, authCfg)
	bookService := books.NewService(bookRepo, libRepo, stubUploader{})
	libService := libraries.NewService(libRepo, bookRepo, cache.New(nil))
	adminService := admin.NewService(db.DB, userRepo, bookRepo, libService)

	router := NewRouter(RouterConfig{
		AuthController: auth.NewController(authService, authCfg),
		AuthMiddleware: auth.NewMiddleware(authService, authCfg.TokenSecret),
		Books:          NewBooksController(bookService, t.TempDir()),
		Libraries:      NewLibrariesController(libService),
		Admin:          NewAdminController(adminService),
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, db, cleanup
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signupAndSignin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, router, "POST", "/user/signup", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/user/signin", gin.H{
		"email":    username + "@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.TokenCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatal("signin response carried no session cookie")
	return ""
}

func TestSessionEndpoints(t *testing.T) {
	router, _, cleanup := setupAPITest(t)
	defer cleanup()

	t.Run("signup, signin and me round trip", func(t *testing.T) {
		token := signupAndSignin(t, router, "alice")

		w := doJSON(t, router, "GET", "/user/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
		assert.NotContains(t, w.Body.String(), "secret123")
	})

	t.Run("me without a session is unauthorized", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/user/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("signout expires the cookie", func(t *testing.T) {
		token := signupAndSignin(t, router, "bob")

		w := doJSON(t, router, "GET", "/user/signout", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var cleared bool
		for _, cookie := range w.Result().Cookies() {
			if cookie.Name == auth.TokenCookieName {
				cleared = cookie.Value == "" || cookie.MaxAge < 0
			}
		}
		assert.True(t, cleared)
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		signupAndSignin(t, router, "carol")

		w := doJSON(t, router, "POST", "/user/signup", gin.H{
			"username": "carol2",
			"email":    "carol@example.com",
			"password": "secret123",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBookEndpoints(t *testing.T) {
	router, db, cleanup := setupAPITest(t)
	defer cleanup()

	token := signupAndSignin(t, router, "dana")

	t.Run("multipart add book uploads and responds with URLs", func(t *testing.T) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		for field, value := range map[string]string{
			"title":         "Dune",
			"author":        "Frank Herbert",
			"genre":         "Science Fiction",
			"publishedYear": "1965",
			"publisher":     "Chilton Books",
		} {
			require.NoError(t, writer.WriteField(field, value))
		}
		cover, err := writer.CreateFormFile("coverImage", "dune.png")
		require.NoError(t, err)
		cover.Write([]byte("png bytes"))
		file, err := writer.CreateFormFile("file", "dune.pdf")
		require.NoError(t, err)
		file.Write([]byte("pdf bytes"))
		require.NoError(t, writer.Close())

		req, err := http.NewRequest("POST", "/book/add", &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "https://cdn.example/coverImages/dune.png")
		assert.Contains(t, w.Body.String(), "https://cdn.example/pdfs/dune.pdf")
	})

	t.Run("my-books lists the new book", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/book/my-books", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dune")
	})

	t.Run("visibility change opens the download to anyone", func(t *testing.T) {
		var book entities.Book
		require.NoError(t, db.DB.Where("title = ?", "Dune").First(&book).Error)

		w := doJSON(t, router, "GET", "/book/download/1", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(t, router, "PUT", "/book/1/visibility", gin.H{"isPublic": true}, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/book/download/1", nil, "")
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, book.BookFile, w.Header().Get("Location"))
	})

	t.Run("malformed id is a bad request", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/book/download/abc", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("dashboard stats require a session", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/book/dashboard-stats", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(t, router, "GET", "/book/dashboard-stats", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "totalBooks")
	})
}

func TestLibraryEndpoints(t *testing.T) {
	router, _, cleanup := setupAPITest(t)
	defer cleanup()

	adminToken := signupAndSignin(t, router, "erin")
	strangerToken := signupAndSignin(t, router, "frank")

	t.Run("create requires a session", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/library", gin.H{"name": "Shelf"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("create and fetch details", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/library", gin.H{
			"name":        "Fantasy",
			"description": "Dragons and such",
			"isPublic":    true,
		}, adminToken)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, "GET", "/library/1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Fantasy")
		assert.Contains(t, w.Body.String(), "erin")
	})

	t.Run("public listing is served to anonymous clients", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/library/public", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Fantasy")
	})

	t.Run("private library details are gated", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/library", gin.H{"name": "Secret Stash"}, adminToken)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, "GET", "/library/2", nil, strangerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, "GET", "/library/2", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(t, router, "GET", "/library/2", nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("only the admin links books", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/library/1/books/1", nil, strangerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, "POST", "/library/1/books/999", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	router, db, cleanup := setupAPITest(t)
	defer cleanup()

	regularToken := signupAndSignin(t, router, "gina")
	superToken := signupAndSignin(t, router, "root")
	require.NoError(t, db.DB.Model(&entities.User{}).
		Where("username = ?", "root").
		Update("is_super_admin", true).Error)

	t.Run("audit listings are super-admin only", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/user/", nil, regularToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, "GET", "/user/", nil, superToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "gina")

		var gina entities.User
		require.NoError(t, db.DB.Where("username = ?", "gina").First(&gina).Error)
		require.NoError(t, db.DB.Create(&entities.Book{Title: "Audit Me", Author: "G", UserID: gina.ID}).Error)

		w = doJSON(t, router, "GET", "/user/books/all", nil, superToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Audit Me")
		assert.Contains(t, w.Body.String(), `"ownerUsername":"gina"`)
		assert.Contains(t, w.Body.String(), `"ownerEmail":"gina@example.com"`)
	})

	t.Run("delete user cascades", func(t *testing.T) {
		var victim entities.User
		require.NoError(t, db.DB.Where("username = ?", "gina").First(&victim).Error)
		require.NoError(t, db.DB.Create(&entities.Book{Title: "Gina's Book", Author: "G", UserID: victim.ID}).Error)

		w := doJSON(t, router, "DELETE", fmt.Sprintf("/user/%d", victim.ID), nil, regularToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, "DELETE", fmt.Sprintf("/user/%d", victim.ID), nil, superToken)
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, db.DB.Model(&entities.Book{}).Where("user_id = ?", victim.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("self-deletion is refused", func(t *testing.T) {
		var root entities.User
		require.NoError(t, db.DB.Where("username = ?", "root").First(&root).Error)

		w := doJSON(t, router, "DELETE", fmt.Sprintf("/user/%d", root.ID), nil, superToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete book by id", func(t *testing.T) {
		var root entities.User
		require.NoError(t, db.DB.Where("username = ?", "root").First(&root).Error)
		book := &entities.Book{Title: "Stray", Author: "S", UserID: root.ID}
		require.NoError(t, db.DB.Create(book).Error)

		w := doJSON(t, router, "DELETE", "/user/books/999", nil, superToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, router, "DELETE", fmt.Sprintf("/user/books/%d", book.ID), nil, superToken)
		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPing(t *testing.T) {
	router, _, cleanup := setupAPITest(t)
	defer cleanup()

	w := doJSON(t, router, "GET", "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}
