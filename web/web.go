// Package web provides the HTTP server of the harmonia backend: routing,
// middleware wiring and background job scheduling.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/harmonia-media/harmonia/config"
	"github.com/harmonia-media/harmonia/logger"
	"github.com/harmonia-media/harmonia/util/common"
	"github.com/harmonia-media/harmonia/web/controller"
	"github.com/harmonia-media/harmonia/web/entity"
	"github.com/harmonia-media/harmonia/web/job"
	"github.com/harmonia-media/harmonia/web/middleware"
	"github.com/harmonia-media/harmonia/web/service"
)

// Server is the harmonia web server: gin engine, services, controllers and
// the cron scheduler for maintenance jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	userService         *service.UserService
	tokenService        *service.TokenService
	refreshTokenService *service.RefreshTokenService
	authService         *service.AuthService
	serverService       *service.ServerService

	auth    *controller.AuthController
	servers *controller.ServerController
	users   *controller.UserAdminController

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

func (s *Server) initServices() {
	s.userService = service.NewUserService()
	s.tokenService = service.NewTokenService()
	s.refreshTokenService = service.NewRefreshTokenService()
	s.authService = service.NewAuthService(s.userService, s.tokenService, s.refreshTokenService)
	s.serverService = service.NewServerService()
}

// initRouter initializes gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authenticate := middleware.Authenticate(s.tokenService, s.userService)

	g := engine.Group("/")
	s.auth = controller.NewAuthController(g, s.authService, authenticate)

	protected := engine.Group("/", authenticate)
	s.servers = controller.NewServerController(protected, s.serverService)

	admin := engine.Group("/", authenticate, middleware.RequireAdmin())
	s.users = controller.NewUserAdminController(admin, s.userService)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound,
			entity.NewErrorResponse(http.StatusNotFound, "Not found.", c.Request.URL.Path))
	})

	return engine, nil
}

// startTask schedules the background maintenance jobs.
func (s *Server) startTask() {
	s.cron.AddJob("@hourly", job.NewPruneRefreshTokensJob(s.refreshTokenService))
	s.cron.AddJob("@daily", job.NewCheckpointJob())
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	s.initServices()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

// Stop gracefully shuts down the web server and the cron scheduler.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }
