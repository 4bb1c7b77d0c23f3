package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/auth"
	"github.com/jhoicas/kardex-api/internal/application/history"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/usecase"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	ApplyUC     *inventory.ApplyMovementUseCase
	DeleteUC    *history.DeleteMovementUseCase
	Feed        *history.MovementFeed
	MovRepo     repository.MovementRepository
	ProductRepo repository.ProductRepository
	PDFGen      kardexPDFGenerator
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Movements (protegido)
	movementHandler := NewMovementHandler(deps.ApplyUC, deps.DeleteUC, deps.MovRepo, deps.ProductRepo, deps.PDFGen)
	products.Post("/:id/movements", movementHandler.Apply)
	products.Get("/:id/movements", movementHandler.List)
	products.Get("/:id/kardex.pdf", movementHandler.ExportPDF)

	// Feed en vivo (SSE)
	feedHandler := NewFeedHandler(deps.Feed)
	products.Get("/:id/movements/stream", feedHandler.Stream)

	// Borrado compensado: además del token se exige rol con permiso de borrado
	// y la contraseña del usuario en el body.
	protected.Delete("/movements/:id",
		RequireRole(entity.RoleAdmin, entity.RoleBodeguero),
		movementHandler.Delete,
	)
}
