// Package controller provides the HTTP request handlers of the harmonia
// server: authentication, server browsing and user administration.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-media/harmonia/web/middleware"
	"github.com/harmonia-media/harmonia/web/service"
)

// LoginForm is the login request body.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// RegisterForm is the registration request body.
type RegisterForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// RefreshForm is the token refresh request body.
type RefreshForm struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// AuthController handles the /auth routes.
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController creates the controller and registers its routes. The
// logout route runs behind the authentication middleware; the rest are
// reachable without a token.
func NewAuthController(g *gin.RouterGroup, authService *service.AuthService, authenticate gin.HandlerFunc) *AuthController {
	a := &AuthController{authService: authService}
	a.initRouter(g, authenticate)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup, authenticate gin.HandlerFunc) {
	auth := g.Group("/auth")
	auth.POST("/login", a.login)
	auth.POST("/register", a.register)
	auth.POST("/refresh", a.refresh)
	auth.POST("/logout", authenticate, a.logout)
}

func (a *AuthController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid form data.")
		return
	}
	if form.Username == "" || form.Password == "" {
		jsonError(c, http.StatusBadRequest, "Username and password are required.")
		return
	}

	result, err := a.authService.Login(form.Username, form.Password)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusOK, result)
}

func (a *AuthController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid form data.")
		return
	}
	if form.Username == "" || form.Password == "" {
		jsonError(c, http.StatusBadRequest, "Username and password are required.")
		return
	}

	user, err := a.authService.Register(form.Username, form.Password)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusCreated, user)
}

func (a *AuthController) logout(c *gin.Context) {
	user := middleware.GetAuthUser(c)
	if err := a.authService.Logout(user.Id); err != nil {
		jsonServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *AuthController) refresh(c *gin.Context) {
	var form RefreshForm
	if err := c.ShouldBind(&form); err != nil || form.RefreshToken == "" {
		jsonError(c, http.StatusBadRequest, "Invalid form data.")
		return
	}

	accessToken, err := a.authService.Refresh(form.RefreshToken)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusOK, gin.H{"accessToken": accessToken})
}
