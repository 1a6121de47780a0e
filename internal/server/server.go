// Package server builds the fiber application and its route table.
package server

import (
	"strings"

	"circulyte-backend/internal/admin"
	"circulyte-backend/internal/apperr"
	"circulyte-backend/internal/audit"
	"circulyte-backend/internal/auth"
	"circulyte-backend/internal/batches"
	"circulyte-backend/internal/codegen"
	"circulyte-backend/internal/config"
	"circulyte-backend/internal/dashboard"
	"circulyte-backend/internal/events"
	"circulyte-backend/internal/logging"
	"circulyte-backend/internal/models"
	"circulyte-backend/internal/shipments"
	"circulyte-backend/internal/store"
	"circulyte-backend/internal/trace"
	"circulyte-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

type Deps struct {
	Config *config.Config
	Store  store.Store
	Broker events.Broker
	Logger *zap.Logger
}

func corsOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}

// NewApp wires every handler against the given store and broker.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	loc := cfg.Location()

	app := fiber.New(fiber.Config{
		AppName:      "circulyte-backend",
		ErrorHandler: apperr.ErrorHandler(d.Logger),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
	}))
	app.Use(logging.Middleware(d.Logger))

	auditSvc := audit.NewService(d.Store, d.Logger)
	userSvc := users.NewService(d.Store, auditSvc, d.Broker, cfg.ProtectedAdminEmail, d.Logger)
	adminDeps := admin.Deps{
		Sources: d.Store,
		Vendors: d.Store,
		Audit:   auditSvc,
		Broker:  d.Broker,
		Logger:  d.Logger,
	}
	trackers := trace.NewRegistry(trace.NewResolver(d.Store, d.Store))
	generator := codegen.NewGenerator(loc)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(d.Store, cfg.ProtectedAdminEmail))
	api.Post("/auth/login", auth.LoginHandler(d.Store, cfg.JWTSecret))
	api.Post("/auth/logout", auth.LogoutHandler(cfg.JWTSecret, trackers.Forget))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	protected.Use(auth.RequireRole(models.RoleAdmin))

	protected.Get("/auth/me", auth.MeHandler(d.Store))

	// User management
	protected.Post("/functions/createNewUser", users.CreateNewUserHandler(userSvc))
	protected.Post("/functions/deleteUser", users.DeleteUserHandler(userSvc))
	protected.Get("/users", users.ListUsersHandler(userSvc))

	// Registries
	protected.Get("/sources/stream", admin.SourceStreamHandler(adminDeps))
	protected.Post("/sources", admin.CreateSourceHandler(adminDeps))
	protected.Get("/sources", admin.ListSourcesHandler(adminDeps))
	protected.Delete("/sources/:id", admin.DeleteSourceHandler(adminDeps))
	protected.Post("/vendors", admin.CreateVendorHandler(adminDeps))
	protected.Get("/vendors", admin.ListVendorsHandler(adminDeps))
	protected.Delete("/vendors/:id", admin.DeleteVendorHandler(adminDeps))

	// Traceability
	protected.Get("/fiber-packs", trace.ListFiberPacksHandler(d.Store))
	protected.Get("/trace/fiber-packs/:id", trace.TraceFiberPackHandler(d.Store, trackers, d.Logger))

	protected.Get("/dashboard/stats", dashboard.StatsHandler(d.Store, loc, d.Logger))
	protected.Post("/codes/generate", codegen.GenerateHandler(generator, d.Logger))
	protected.Get("/batches", batches.ListBatchesHandler(d.Store, loc, d.Logger))

	// Vendor shipments
	protected.Get("/vendor-shipments", shipments.ListShipmentsHandler(d.Store))
	protected.Get("/vendor-shipments/vendors", shipments.ListShipmentVendorsHandler(d.Store))
	protected.Get("/vendor-shipments/:id/export", shipments.ExportShipmentHandler(d.Store, d.Logger))

	protected.Get("/audit-logs", audit.ListAuditLogsHandler(auditSvc))

	return app
}
