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
	"github.com/labstack/gommon/log"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/notify"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		Syncer     *portal.Syncer
		NotifySvc  *notify.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	initAuth(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, func() {
		s.shutdown <- syscall.SIGTERM
	})
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", metricsHandler())

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)
	ready := readyMiddleware(s.deps.Syncer)

	v1.GET("/status", s.status)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate, s.deps.Translator)

	// portal endpoints are served only once the first snapshot has landed
	pg := v1.Group("", jwt, ready)
	registerDashboardAPI(pg, s.deps.Syncer)
	registerStudentAPI(pg, s.deps.Syncer, s.deps.UserSvc, s.deps.Validate)
	registerTeacherAPI(pg, s.deps.Syncer, s.deps.Validate)
	registerScheduleAPI(pg, s.deps.Syncer, s.deps.Validate)
	registerExamAPI(pg, s.deps.Syncer, s.deps.Validate)
	registerFeesAPI(pg, s.deps.Syncer, s.deps.Validate)
	registerAttendanceAPI(pg, s.deps.Syncer, s.deps.Validate)
	registerAnnouncementAPI(pg, s.deps.Syncer, s.deps.Validate)
	registerNotifyAPI(pg, s.deps.Syncer, s.deps.NotifySvc, s.deps.Validate)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"state": s.deps.Syncer.State().String()})
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ShikshaSetu API!")
}
