package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"signtusk/internal/config"
	"signtusk/internal/delivery/http/handler"
)

type Router struct {
	app              *fiber.App
	config           *config.Config
	documentHandler  *handler.DocumentHandler
	multiSignHandler *handler.MultiSignHandler
	verifyHandler    *handler.VerifyHandler
	healthHandler    *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	documentHandler *handler.DocumentHandler,
	multiSignHandler *handler.MultiSignHandler,
	verifyHandler *handler.VerifyHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:              app,
		config:           cfg,
		documentHandler:  documentHandler,
		multiSignHandler: multiSignHandler,
		verifyHandler:    verifyHandler,
		healthHandler:    healthHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		// Single-signer lifecycle
		documents := api.Group("/documents")
		{
			documents.Post("", r.documentHandler.Upload)
			documents.Get("", r.documentHandler.List)
			documents.Get("/:id", r.documentHandler.Get)
			documents.Post("/:id/preview", r.documentHandler.Preview)
			documents.Post("/:id/decision", r.documentHandler.Decide)
			documents.Post("/:id/sign", r.documentHandler.Sign)
			documents.Post("/:id/finalize", r.documentHandler.Finalize)
			documents.Get("/:id/audit", r.documentHandler.AuditHistory)
		}

		// Multi-signer coordination
		multisign := api.Group("/multisign")
		{
			multisign.Post("", r.multiSignHandler.Initiate)
			multisign.Post("/:id/sign", r.multiSignHandler.SignAsMember)
			multisign.Post("/:id/reject", r.multiSignHandler.RejectAsMember)
		}

		// Verification
		api.Post("/verify", r.verifyHandler.Verify)
		api.Get("/verify/tag/:tag", r.verifyHandler.ResolveTag)

		// Signer key registry
		api.Post("/signers/keys", r.verifyHandler.RegisterKey)
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
		},
	})
}
