package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-media/harmonia/web/middleware"
	"github.com/harmonia-media/harmonia/web/service"
)

// ServerController serves the music servers a user is granted. It is the
// main consumer of the authorization context: every handler checks the
// flattened permission sets attached by the middleware.
type ServerController struct {
	serverService *service.ServerService
}

func NewServerController(g *gin.RouterGroup, serverService *service.ServerService) *ServerController {
	a := &ServerController{serverService: serverService}
	a.initRouter(g)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g.GET("/servers", a.listServers)
	g.GET("/servers/:serverId", a.getServer)
	g.GET("/servers/:serverId/folders", a.getServerFolders)

	g.POST("/servers", middleware.RequireAdmin(), a.addServer)
	g.POST("/servers/:serverId/folders", middleware.RequireAdmin(), a.addServerFolder)
}

// listServers returns the servers the user holds a grant for. Admins see
// all servers.
func (a *ServerController) listServers(c *gin.Context) {
	user := middleware.GetAuthUser(c)

	if user.IsAdmin {
		servers, err := a.serverService.GetAllServers()
		if err != nil {
			jsonServiceError(c, err)
			return
		}
		jsonData(c, http.StatusOK, servers)
		return
	}

	servers, err := a.serverService.GetServers(user.FlatServerPermissions)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusOK, servers)
}

func (a *ServerController) getServer(c *gin.Context) {
	user := middleware.GetAuthUser(c)
	serverId := c.Param("serverId")

	if !user.CanAccessServer(serverId) {
		jsonError(c, http.StatusForbidden, "You do not have permission to access this server.")
		return
	}

	server, err := a.serverService.GetServer(serverId)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusOK, server)
}

// getServerFolders returns the folders of a server the user may see:
// either every folder via a server grant, or the folder subset granted
// individually.
func (a *ServerController) getServerFolders(c *gin.Context) {
	user := middleware.GetAuthUser(c)
	serverId := c.Param("serverId")

	folders, err := a.serverService.GetServerFolders(serverId)
	if err != nil {
		jsonServiceError(c, err)
		return
	}

	if user.CanAccessServer(serverId) {
		jsonData(c, http.StatusOK, folders)
		return
	}

	allowed := folders[:0]
	for _, folder := range folders {
		if user.CanAccessServerFolder(folder.Id) {
			allowed = append(allowed, folder)
		}
	}
	if len(allowed) == 0 {
		jsonError(c, http.StatusForbidden, "You do not have permission to access this server.")
		return
	}
	jsonData(c, http.StatusOK, allowed)
}

type serverForm struct {
	Name string `json:"name" form:"name"`
	Url  string `json:"url" form:"url"`
}

func (a *ServerController) addServer(c *gin.Context) {
	var form serverForm
	if err := c.ShouldBind(&form); err != nil || form.Name == "" {
		jsonError(c, http.StatusBadRequest, "Invalid form data.")
		return
	}
	server, err := a.serverService.AddServer(form.Name, form.Url)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusCreated, server)
}

func (a *ServerController) addServerFolder(c *gin.Context) {
	var form serverForm
	if err := c.ShouldBind(&form); err != nil || form.Name == "" {
		jsonError(c, http.StatusBadRequest, "Invalid form data.")
		return
	}
	folder, err := a.serverService.AddServerFolder(c.Param("serverId"), form.Name)
	if err != nil {
		jsonServiceError(c, err)
		return
	}
	jsonData(c, http.StatusCreated, folder)
}
