package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/services/filestore"
)

type Server struct {
	conf     *core.Config
	app      *echo.Echo
	logger   core.Logger
	errors   chan error
	shutdown chan os.Signal
}

var _ http.Handler = (*Server)(nil)

func NewServer(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	courseSvc *coursework.Service,
	dashSvc *dashboard.Service,
	files *filestore.Memory,
) *Server {
	s := &Server{
		conf:     conf,
		app:      echo.New(),
		logger:   logger,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.MaxUploadSize > 0 {
		s.app.Use(middleware.BodyLimit(bytes.Format(conf.MaxUploadSize)))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(logger, translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET(filestore.URLPrefix+"*", serveFile(files))

	v1 := s.app.Group("/v1")
	registerChartAPI(v1, conf)
	registerDashboardAPI(v1, dashSvc)
	registerDraftAPI(v1, courseSvc, validate, conf.MaxUploadSize)
	registerAssignmentAPI(v1, courseSvc)

	return s
}

// Start listens on the configured host; a failure is sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the app to shut down gracefully.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Masomo Dashboard API!")
}

func serveFile(files *filestore.Memory) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		f, err := files.Get(ctx.Param("*"))
		if err != nil {
			return errHttpNotFound
		}
		return ctx.Blob(http.StatusOK, f.ContentType, f.Content)
	}
}
