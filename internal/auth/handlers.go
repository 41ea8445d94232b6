package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelflib/shelflib/internal/config"
	"github.com/shelflib/shelflib/internal/faults"
)

// Controller serves the signup/signin/session endpoints.
type Controller struct {
	service *Service
	config  config.Auth
}

// NewController creates the auth controller.
func NewController(service *Service, cfg config.Auth) *Controller {
	return &Controller{service: service, config: cfg}
}

// RegisterRoutes registers the identity endpoints on the router.
func (ctrl *Controller) RegisterRoutes(router gin.IRouter) {
	router.POST("/user/signup", ctrl.Signup)
	router.POST("/user/signin", ctrl.Signin)
	router.GET("/user/me", ctrl.Me)
	router.GET("/user/signout", ctrl.Signout)
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ctrl *Controller) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := ctrl.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (ctrl *Controller) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := ctrl.service.Authenticate(req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	ctrl.setTokenCookie(c, token, int(ctrl.config.TokenTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me resolves the current session to the account record. The super-admin
// flag is included here so clients can route admin views.
func (ctrl *Controller) Me(c *gin.Context) {
	ident := CurrentIdentity(c)
	if !ident.IsAuthenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := ctrl.service.GetUserByID(ident.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ctrl *Controller) Signout(c *gin.Context) {
	ctrl.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// setTokenCookie delivers the session token as an HTTP-only, cross-site
// capable cookie. SameSite=None requires Secure on modern browsers; the
// config switch exists for local development over plain HTTP.
func (ctrl *Controller) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(TokenCookieName, token, maxAge, "/", "", ctrl.config.SecureCookies, true)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, faults.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, faults.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, faults.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
