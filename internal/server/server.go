// Package server exposes registered forms over HTTP: rendering, saving,
// datasource queries and registry inspection.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/internal/backends"
	"github.com/goliatone/go-formfields/internal/config"
	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/datastore/memory"
	"github.com/goliatone/go-formfields/pkg/definitions"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/registry"
	"github.com/goliatone/go-formfields/pkg/render"
	"github.com/goliatone/go-formfields/pkg/renderers/jsonview"
	"github.com/goliatone/go-formfields/pkg/renderers/vanilla"
)

// Route prefixes.
const (
	AssetsPath  = "/assets/formfields"
	ChoicesPath = "/choices"
)

const principalKey = "formfields.principal"

// Option customises the server.
type Option func(*Server)

// WithBackend sets the backend every reloaded registry persists to.
func WithBackend(backend datastore.Backend) Option {
	return func(s *Server) {
		if backend != nil {
			s.backend = backend
		}
	}
}

// WithSourceDB enables table datasources.
func WithSourceDB(db *gorm.DB) Option {
	return func(s *Server) {
		s.db = db
	}
}

// WithUsers turns on basic auth. Each user's capabilities become the request
// principal.
func WithUsers(users []config.User) Option {
	return func(s *Server) {
		for _, user := range users {
			s.users[user.Name] = user
		}
	}
}

// WithTheme applies a resolved theme to every rendered form.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// state is everything derived from one definitions load. It is replaced as
// a whole so in-flight requests keep a consistent view.
type state struct {
	registry  *registry.Registry
	choices   *choices.Registry
	controls  *controls.Renderer
	renderers *render.Registry
}

// Server is the admin HTTP server.
type Server struct {
	echo    *echo.Echo
	state   atomic.Pointer[state]
	backend datastore.Backend
	db      *gorm.DB
	users   map[string]config.User
	theme   *theme.RendererConfig
	logger  *zap.Logger
}

// New builds a server with an empty registry. Call Load or Swap before
// serving forms.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		backend: memory.New(),
		users:   make(map[string]config.User),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := s.Swap(registry.New(registry.WithBackend(s.backend), registry.WithLogger(s.logger)), nil); err != nil {
		return nil, err
	}
	s.echo = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Registry returns the registry currently served.
func (s *Server) Registry() *registry.Registry { return s.state.Load().registry }

// Load builds a fresh registry from set and swaps it in. On error the
// current registry keeps serving.
func (s *Server) Load(ctx context.Context, set *definitions.Set) error {
	reg := registry.New(registry.WithBackend(s.backend), registry.WithLogger(s.logger))
	if err := reg.OnInit(set.Hook()); err != nil {
		return err
	}
	if err := reg.Init(ctx); err != nil {
		return err
	}
	sources, err := backends.Choices(set.Datasources(), s.db)
	if err != nil {
		return err
	}
	if err := s.Swap(reg, sources); err != nil {
		return err
	}
	s.logger.Info("registry loaded", zap.Int("entities", reg.Len()), zap.Strings("datasources", sources.Names()))
	return nil
}

// Swap atomically replaces the served registry and datasources.
func (s *Server) Swap(reg *registry.Registry, sources *choices.Registry) error {
	if reg == nil {
		return errors.New("server: registry is required")
	}
	if sources == nil {
		sources = choices.NewRegistry()
	}
	renderer, err := controls.NewRenderer(
		controls.WithTypes(reg.ControlTypes()),
		controls.WithChoices(sources),
		controls.WithEndpointBase(ChoicesPath),
	)
	if err != nil {
		return fmt.Errorf("server: control renderer: %w", err)
	}
	html, err := vanilla.New(vanilla.WithDefaultStyles())
	if err != nil {
		return fmt.Errorf("server: html renderer: %w", err)
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(html)
	renderers.MustRegister(jsonview.New())

	s.state.Store(&state{
		registry:  reg,
		choices:   sources,
		controls:  renderer,
		renderers: renderers,
	})
	return nil
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "entities": s.Registry().Len()})
	})
	e.GET(AssetsPath+"/*", echo.WrapHandler(
		http.StripPrefix(AssetsPath+"/", http.FileServer(http.FS(vanilla.AssetsFS()))),
	))

	admin := e.Group("")
	if len(s.users) > 0 {
		admin.Use(middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Validator: s.authenticate,
		}))
	}
	admin.GET("/forms/:object/:screen", s.renderForm)
	admin.POST("/forms/:object/:screen", s.saveForm)
	admin.GET(ChoicesPath+"/:name", s.queryChoices)
	admin.GET("/registry/:object", s.listRegistry)
	return e
}

func (s *Server) authenticate(username, password string, c echo.Context) (bool, error) {
	user, ok := s.users[username]
	if !ok || subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return false, nil
	}
	c.Set(principalKey, fields.NewCapabilities(user.Capabilities...))
	return true, nil
}

// principal is the authenticated user's capabilities. Without configured
// users every capability is granted.
func (s *Server) principal(c echo.Context) fields.Principal {
	if p, ok := c.Get(principalKey).(fields.Principal); ok {
		return p
	}
	if len(s.users) == 0 {
		return fields.Superuser
	}
	return fields.Anonymous
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}
