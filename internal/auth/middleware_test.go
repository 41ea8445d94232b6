package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflib/shelflib/internal/database/users"
	"github.com/shelflib/shelflib/internal/entities"
	"github.com/shelflib/shelflib/internal/identity"
)

func resolveWithCookie(t *testing.T, m *Middleware, cookie string) identity.Identity {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var resolved identity.Identity
	router := gin.New()
	router.Use(m.Handler())
	router.GET("/probe", func(c *gin.Context) {
		resolved = CurrentIdentity(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/probe", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: cookie})
	}
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	return resolved
}

func TestMiddleware_Handler(t *testing.T) {
	db, cleanup := setupAuthTestDB(t)
	defer cleanup()

	repo := users.NewRepository(db.DB)
	cfg := testAuthConfig()
	service := NewService(repo, cfg)
	middleware := NewMiddleware(service, cfg.TokenSecret)

	hash, err := HashPassword("secret123", cfg.BcryptCost)
	require.NoError(t, err)
	user := &entities.User{Username: "dave", Email: "dave@example.com", PasswordHash: hash}
	require.NoError(t, repo.CreateUser(user))

	super := &entities.User{Username: "root", Email: "root@example.com", PasswordHash: hash, IsSuperAdmin: true}
	require.NoError(t, repo.CreateUser(super))

	t.Run("missing cookie resolves to anonymous", func(t *testing.T) {
		resolved := resolveWithCookie(t, middleware, "")
		assert.False(t, resolved.IsAuthenticated())
	})

	t.Run("garbage token resolves to anonymous", func(t *testing.T) {
		resolved := resolveWithCookie(t, middleware, "not-a-token")
		assert.False(t, resolved.IsAuthenticated())
	})

	t.Run("expired token resolves to anonymous", func(t *testing.T) {
		token, err := SignToken(user.ID, false, cfg.TokenSecret, -time.Minute)
		require.NoError(t, err)

		resolved := resolveWithCookie(t, middleware, token)
		assert.False(t, resolved.IsAuthenticated())
	})

	t.Run("token signed with another secret resolves to anonymous", func(t *testing.T) {
		token, err := SignToken(user.ID, false, "other-secret", time.Hour)
		require.NoError(t, err)

		resolved := resolveWithCookie(t, middleware, token)
		assert.False(t, resolved.IsAuthenticated())
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		token, err := SignToken(user.ID, false, cfg.TokenSecret, time.Hour)
		require.NoError(t, err)

		resolved := resolveWithCookie(t, middleware, token)
		assert.True(t, resolved.IsAuthenticated())
		assert.Equal(t, user.ID, resolved.UserID)
		assert.False(t, resolved.IsSuperAdmin)
	})

	t.Run("super-admin flag comes from the record, not the token", func(t *testing.T) {
		// Token claims no admin rights; the stored account does.
		token, err := SignToken(super.ID, false, cfg.TokenSecret, time.Hour)
		require.NoError(t, err)

		resolved := resolveWithCookie(t, middleware, token)
		assert.True(t, resolved.IsAuthenticated())
		assert.True(t, resolved.IsSuperAdmin)
	})

	t.Run("token for a deleted user resolves to anonymous", func(t *testing.T) {
		ghost := &entities.User{Username: "ghost", Email: "ghost@example.com", PasswordHash: hash}
		require.NoError(t, repo.CreateUser(ghost))

		token, err := SignToken(ghost.ID, false, cfg.TokenSecret, time.Hour)
		require.NoError(t, err)
		require.NoError(t, db.DB.Delete(&entities.User{}, ghost.ID).Error)

		resolved := resolveWithCookie(t, middleware, token)
		assert.False(t, resolved.IsAuthenticated())
	})
}
