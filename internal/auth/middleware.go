package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/shelflib/shelflib/internal/identity"
)

// TokenCookieName is the cookie carrying the signed session token.
const TokenCookieName = "token"

// ContextKeyIdentity is where the middleware stores the resolved identity.
const ContextKeyIdentity = "auth_identity"

// Middleware resolves the session cookie into an identity on every request.
type Middleware struct {
	service *Service
	secret  string
}

// NewMiddleware creates the identity-resolving middleware.
func NewMiddleware(service *Service, secret string) *Middleware {
	return &Middleware{service: service, secret: secret}
}

// Handler resolves the token cookie. Any failure — missing cookie, bad
// signature, expired token, deleted user — yields an anonymous identity and
// the request proceeds; endpoints decide whether anonymous is acceptable.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyIdentity, m.resolve(c))
		c.Next()
	}
}

func (m *Middleware) resolve(c *gin.Context) identity.Identity {
	tokenStr, err := c.Cookie(TokenCookieName)
	if err != nil || tokenStr == "" {
		return identity.Anonymous()
	}

	claims, err := ParseToken(tokenStr, m.secret)
	if err != nil {
		return identity.Anonymous()
	}

	// Load the record so a deleted user or a changed admin flag takes
	// effect before the token expires.
	user, err := m.service.GetUserByID(claims.UserID)
	if err != nil {
		return identity.Anonymous()
	}

	return identity.Authenticated(user.ID, user.IsSuperAdmin)
}

// CurrentIdentity retrieves the resolved identity from the Gin context.
// Returns anonymous when the middleware did not run.
func CurrentIdentity(c *gin.Context) identity.Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if ident, ok := v.(identity.Identity); ok {
			return ident
		}
	}
	return identity.Anonymous()
}
