package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maestral4ik/warehouse1/internal/application/auth"
	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/application/usecase"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CategoryUC *usecase.CategoryUseCase
	ItemUC     *usecase.ItemUseCase
	MovementUC *inventory.MovementUseCase
	ReportUC   *inventory.ReportUseCase
	JWTSecret  string
	Logger     *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	readers := RequireRole(entity.RoleAdmin, entity.RoleBodeguero, entity.RoleAuditor)
	writers := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	admins := RequireRole(entity.RoleAdmin)

	// Auth: login público, alta de usuarios solo admin
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret), admins, authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories.Get("/", readers, categoryHandler.Tree)
	categories.Get("/:id", readers, categoryHandler.GetByID)
	categories.Post("/", admins, categoryHandler.Create)
	categories.Put("/:id", admins, categoryHandler.Update)
	categories.Delete("/:id", admins, categoryHandler.Delete)

	itemHandler := NewItemHandler(deps.ItemUC, log)
	movementHandler := NewMovementHandler(deps.MovementUC, log)
	reportHandler := NewReportHandler(deps.ReportUC, log)

	items := protected.Group("/items")
	items.Get("/", readers, itemHandler.List)
	items.Post("/", writers, itemHandler.Create)
	items.Get("/:id", readers, itemHandler.GetByID)
	items.Put("/:id", writers, itemHandler.Update)
	items.Delete("/:id", writers, itemHandler.Delete)
	items.Get("/:id/history", readers, itemHandler.History)
	items.Get("/:id/movements", readers, movementHandler.ListByItem)
	items.Get("/:id/ledger", readers, reportHandler.ItemLedger)
	items.Post("/:id/write-offs", writers, movementHandler.WriteOff)
	items.Post("/:id/quantity-corrections", admins, movementHandler.CorrectQuantity)

	movements := protected.Group("/movements")
	movements.Post("/", writers, movementHandler.Register)
	movements.Get("/:id", readers, movementHandler.GetByID)
	movements.Put("/:id", admins, movementHandler.Update)
	movements.Delete("/:id", admins, movementHandler.Delete)

	reports := protected.Group("/reports")
	reports.Get("/monthly", readers, reportHandler.Monthly)
}
