package server

import (
	"fmt"

	"subbridge-be/internal/bootstrap"
	"subbridge-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	container *bootstrap.Container
}

func NewServer(container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName: "subbridge-be",
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
	}))
	app.Use(serverutils.ErrorHandlerMiddleware())

	s := &Server{
		app:       app,
		container: container,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	requireSession := serverutils.SessionMiddleware(
		s.container.SessionRepository,
		s.container.Config.Session.CookieName,
	)

	s.app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(serverutils.SuccessResponse[any]("ok", nil))
	})

	s.container.SessionController.RegisterRoutes(s.app, requireSession)
	s.container.BillingController.RegisterRoutes(s.app, requireSession)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.container.Config.App.Port)
	s.container.Logger.Info("Server", "Listening", map[string]interface{}{"addr": addr})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
