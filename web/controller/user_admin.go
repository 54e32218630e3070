package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-media/harmonia/web/service"
)

// UserAdminController exposes the out-of-band account administration
// routes: enabling and disabling accounts and granting server access.
// All routes require an admin token.
type UserAdminController struct {
	userService *service.UserService
}

func NewUserAdminController(g *gin.RouterGroup, userService *service.UserService) *UserAdminController {
	a := &UserAdminController{userService: userService}
	a.initRouter(g)
	return a
}

func (a *UserAdminController) initRouter(g *gin.RouterGroup) {
	g.POST("/users/:id/enable", a.enableUser)
	g.POST("/users/:id/disable", a.disableUser)
	g.POST("/users/:id/permissions/server", a.grantServer)
	g.POST("/users/:id/permissions/serverFolder", a.grantServerFolder)
}

func (a *UserAdminController) enableUser(c *gin.Context) {
	user, err := a.userService.SetEnabled(c.Param("id"), true)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusOK, user)
}

func (a *UserAdminController) disableUser(c *gin.Context) {
	user, err := a.userService.SetEnabled(c.Param("id"), false)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusOK, user)
}

type grantForm struct {
	ServerId       string `json:"serverId" form:"serverId"`
	ServerFolderId string `json:"serverFolderId" form:"serverFolderId"`
}

func (a *UserAdminController) grantServer(c *gin.Context) {
	var form grantForm
	if err := c.ShouldBind(&form); err != nil || form.ServerId == "" {
		jsonError(c, http.StatusBadRequest, "Invalid form data.")
		return
	}
	perm, err := a.userService.GrantServerPermission(c.Param("id"), form.ServerId)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusCreated, perm)
}

func (a *UserAdminController) grantServerFolder(c *gin.Context) {
	var form grantForm
	if err := c.ShouldBind(&form); err != nil || form.ServerFolderId == "" {
		jsonError(c, http.StatusBadRequest, "Invalid form data.")
		return
	}
	perm, err := a.userService.GrantServerFolderPermission(c.Param("id"), form.ServerFolderId)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusCreated, perm)
}
