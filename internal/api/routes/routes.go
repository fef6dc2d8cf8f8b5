package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/hoadb/memberwall/internal/api/handlers"
	"github.com/hoadb/memberwall/internal/api/middleware"
	"github.com/hoadb/memberwall/internal/cerberus"
	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/database"
	"github.com/hoadb/memberwall/internal/logger"
	"github.com/hoadb/memberwall/internal/metrics"
	"github.com/hoadb/memberwall/internal/services"
	"github.com/hoadb/memberwall/internal/session"
)

// App holds the long-lived components built by Register.
type App struct {
	Auth     *services.AuthService
	Cerberus *cerberus.Cerberus
	Sessions *session.Authority
	Notifier *services.Notifier
	Sweeper  *services.Sweeper
}

// Close stops the sweep schedule and flushes pending notifications.
func (a *App) Close() {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	a.Notifier.Wait()
}

// Options tune Register for tests.
type Options struct {
	// Hasher overrides the bcrypt hasher.
	Hasher services.Hasher
}

// Register migrates the schema, builds the services and wires every route.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*App, error) {
	return RegisterWithOptions(router, db, cfg, Options{})
}

// RegisterWithOptions is Register with overrides.
func RegisterWithOptions(router *gin.Engine, db *gorm.DB, cfg config.Config, opts Options) (*App, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	hasher := opts.Hasher
	if hasher == nil {
		hasher = services.NewBcryptHasher(services.DefaultBcryptCost)
	}

	notifier := services.NewNotifier(cfg.NotifyURL)
	userService := services.NewUserService(db)
	postService := services.NewPostService(db)
	securityService := services.NewSecurityService(db, notifier)
	authService, err := services.NewAuthService(userService, hasher, notifier)
	if err != nil {
		return nil, err
	}

	cerb := cerberus.New(cfg.Security, securityService)
	authority := session.NewAuthority(session.NewMemoryStore(), cfg.Session)
	sessions := middleware.NewSessions(authority, session.NewCodec(cfg.SessionSecret), cfg.Session)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	authHandler := handlers.NewAuthHandler(authService, sessions)
	memberHandler := handlers.NewMemberHandler(userService, postService, sessions)
	adminHandler := handlers.NewAdminHandler(userService, securityService)
	securityHandler := handlers.NewSecurityHandler(cfg.Security, cerb, securityService)

	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{HSTS: cfg.IsProduction()}))
	router.Use(sessions.Load())

	router.GET("/", handlers.Root)
	router.GET("/healthz", handlers.HealthHandler)

	router.GET("/login", middleware.Guard(), authHandler.LoginPage)
	router.POST("/login", noStore, cerb.LoginThrottle(), authHandler.Login)
	router.GET("/register", middleware.Guard(), authHandler.RegisterPage)
	router.POST("/register", noStore, authHandler.Register)
	router.GET("/logout", authHandler.Logout)
	router.POST("/logout", authHandler.Logout)

	router.GET("/home", middleware.Guard(), memberHandler.Home)
	router.POST("/createPost", middleware.Guard(), memberHandler.CreatePost)

	router.GET("/adminDelete", middleware.Guard(), adminHandler.AdminDelete)
	router.POST("/delete/:id", middleware.Guard(), adminHandler.Delete)
	router.GET("/adminUpdate", middleware.Guard(), adminHandler.AdminUpdate)
	router.POST("/update/:id", middleware.Guard(), adminHandler.Update)
	router.POST("/debugger", middleware.Guard(), adminHandler.Debugger)
	router.GET("/security", middleware.Guard(), securityHandler.GetStatus)
	router.GET("/metrics", middleware.Guard(),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.NoRoute(handlers.NotFound)

	app := &App{
		Auth:     authService,
		Cerberus: cerb,
		Sessions: authority,
		Notifier: notifier,
	}

	if cfg.SweepSchedule != "" {
		sweeper := services.NewSweeper(map[string]services.SweepFunc{
			"rate_windows": cerb.Limiter().Sweep,
			"blocks":       cerb.Blocklist().Sweep,
			"sessions":     authority.Sweep,
		})
		if err := sweeper.Start(cfg.SweepSchedule); err != nil {
			return nil, fmt.Errorf("start sweeper: %w", err)
		}
		app.Sweeper = sweeper
	}

	logger.Log().WithField("max_attempts", cfg.Security.LoginMaxAttempts).Info("routes registered")
	return app, nil
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store, must-revalidate")
	c.Next()
}
