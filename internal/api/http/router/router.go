// Package router wires the REST handlers into a fiber application.
package router

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hiready/hiready-server/internal/api/http/handler"
	"github.com/hiready/hiready-server/internal/api/http/middleware"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth      handler.AuthService
	Profile   handler.ProfileService
	Resumes   handler.ResumeService
	Interview handler.InterviewService
	Aptitude  handler.AptitudeService
	Sessions  handler.SessionService
	Analysis  Analyzer
	Reports   handler.ReportService
}

// Analyzer scores resumes and interviews.
type Analyzer interface {
	handler.ResumeAnalyzer
	handler.InterviewAnalyzer
}

// Options tune the HTTP surface.
type Options struct {
	AllowedOrigins []string
	SecureCookie   bool
	BodyLimit      int
}

// Router represents the REST router of the API.
type Router struct {
	services       Services
	tokens         middleware.TokenVerifier
	contextManager model.ContextManager
	options        Options
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	services Services,
	tokens middleware.TokenVerifier,
	contextManager model.ContextManager,
	options Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		tokens:         tokens,
		contextManager: contextManager,
		options:        options,
		logger:         logger,
	}
}

// Register builds the fiber application with middleware and all routes.
func (r *Router) Register() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "HiREady API",
		BodyLimit:             r.options.BodyLimit,
		ErrorHandler:          handler.ErrorHandler(r.logger),
		DisableStartupMessage: true,
	})

	logging := middleware.NewLogging(r.logger)
	app.Use(recover.New())
	app.Use(logging.Handle)
	app.Use(cors.New(r.corsConfig()))

	app.Get("/", handler.Root)
	app.Get("/health", handler.Health)

	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)

	r.registerAuthRoutes(app, authenticate.Handle)
	r.registerProfileRoutes(app, authenticate.Handle)
	r.registerResumeRoutes(app, authenticate.Handle)
	r.registerInterviewRoutes(app, authenticate.Handle)
	r.registerAptitudeRoutes(app, authenticate.Handle)
	r.registerSessionRoutes(app, authenticate.Handle)
	r.registerReportRoutes(app, authenticate.Handle)

	return app
}

// corsConfig allows credentials only for explicit origins.
func (r *Router) corsConfig() cors.Config {
	origins := r.options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: !slices.Contains(origins, "*"),
	}
}

func (r *Router) registerAuthRoutes(app *fiber.App, auth fiber.Handler) {
	h := handler.NewAuth(r.services.Auth, r.contextManager, r.options.SecureCookie, r.logger)

	g := app.Group("/auth")
	g.Post("/signup", h.Signup)
	g.Post("/login", h.Login)
	g.Get("/session", auth, h.Session)
	g.Post("/logout", auth, h.Logout)
}

func (r *Router) registerProfileRoutes(app *fiber.App, auth fiber.Handler) {
	h := handler.NewProfile(r.services.Profile, r.contextManager, r.logger)

	g := app.Group("/profile", auth)
	g.Get("/me", h.Get)
	g.Put("/me", h.Update)
}

func (r *Router) registerResumeRoutes(app *fiber.App, auth fiber.Handler) {
	h := handler.NewResume(r.services.Resumes, r.services.Analysis, r.contextManager, r.logger)

	g := app.Group("/resumes", auth)
	g.Post("/", h.Create)
	g.Post("/upload", h.Upload)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/analyze", h.Analyze)
}

func (r *Router) registerInterviewRoutes(app *fiber.App, auth fiber.Handler) {
	h := handler.NewInterview(r.services.Interview, r.services.Analysis, r.contextManager, r.logger)

	g := app.Group("/interviews", auth)
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/analyze", h.Analyze)
}

func (r *Router) registerAptitudeRoutes(app *fiber.App, auth fiber.Handler) {
	h := handler.NewAptitude(r.services.Aptitude, r.contextManager, r.logger)

	g := app.Group("/aptitude", auth)
	g.Get("/questions", h.Questions)
	g.Get("/best-score", h.BestScore)
	g.Post("/", h.Submit)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Delete("/:id", h.Delete)
}

func (r *Router) registerSessionRoutes(app *fiber.App, auth fiber.Handler) {
	h := handler.NewSession(r.services.Sessions, r.contextManager, r.logger)

	g := app.Group("/interview-sessions", auth)
	g.Post("/", h.Start)
	g.Get("/:id", h.Get)
	g.Post("/:id/reply", h.Reply)
	g.Post("/:id/audio", h.Audio)
	g.Post("/:id/transcript", h.Transcript)
	g.Post("/:id/utterance-end", h.UtteranceEnd)
	g.Post("/:id/capture-error", h.CaptureError)
	g.Post("/:id/end", h.End)
}

func (r *Router) registerReportRoutes(app *fiber.App, auth fiber.Handler) {
	h := handler.NewReport(r.services.Reports, r.contextManager, r.logger)

	app.Get("/reports/export", auth, h.Export)
}
