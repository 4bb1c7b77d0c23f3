package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/history"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// kardexPDFGenerator es el contrato mínimo que necesita el handler para exportar.
// Lo implementa *pdf.KardexPDFGenerator; la interfaz local evita acoplar capas.
type kardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, product *entity.Product, movements []*entity.Movement) ([]byte, error)
}

// MovementHandler maneja las peticiones HTTP de movimientos (protegido).
type MovementHandler struct {
	applyUC     *inventory.ApplyMovementUseCase
	deleteUC    *history.DeleteMovementUseCase
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	pdfGen      kardexPDFGenerator
}

// NewMovementHandler construye el handler.
func NewMovementHandler(
	applyUC *inventory.ApplyMovementUseCase,
	deleteUC *history.DeleteMovementUseCase,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	pdfGen kardexPDFGenerator,
) *MovementHandler {
	return &MovementHandler{
		applyUC:     applyUC,
		deleteUC:    deleteUC,
		movRepo:     movRepo,
		productRepo: productRepo,
		pdfGen:      pdfGen,
	}
}

// Apply godoc
// @Summary      Registrar movimiento (entrada o salida)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.ApplyMovementRequest  true  "type, quantity, price (entradas), date, description, warehouse, supplier"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [post]
func (h *MovementHandler) Apply(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := inventory.MovementInput{
		UserID:      userID,
		ProductID:   c.Params("id"),
		Type:        in.Type,
		Quantity:    in.Quantity,
		Price:       in.Price,
		Description: in.Description,
		Warehouse:   in.Warehouse,
		Supplier:    in.Supplier,
	}
	if in.Date != nil {
		input.Date = *in.Date
	}
	mov, err := h.applyUC.Apply(c.Context(), input)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		if err == domain.ErrInsufficientStock {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// List godoc
// @Summary      Historial de movimientos de un producto (ordenado por fecha desc)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/products/{id}/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	movs, err := h.movRepo.ListByProduct(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	sorted := history.SortByDateDesc(movs)
	out := make([]dto.MovementResponse, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar movimiento (protegido por contraseña)
// @Description  Re-verifica la contraseña del usuario y, en una sola transacción,
//
//	restaura el producto al snapshot previo del movimiento y elimina el registro.
//
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.DeleteMovementRequest  true  "password"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DeleteMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.movRepo.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if mov == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}

	err = h.deleteUC.Delete(c.Context(), history.DeleteInput{
		UserID:   userID,
		Password: in.Password,
		Movement: mov,
	})
	if err != nil {
		if err == domain.ErrUnauthorized {
			// Puerta declinada: sin escrituras; abortado en silencio.
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "AUTH_DECLINED", Message: "contraseña incorrecta"})
		}
		if err == domain.ErrConflict {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DELETE_IN_FLIGHT", Message: "borrado en curso para este movimiento"})
		}
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo eliminar el movimiento"})
	}
	return c.JSON(fiber.Map{"message": "movimiento eliminado y saldo restaurado"})
}

// ExportPDF godoc
// @Summary      Exportar kardex del producto como PDF
// @Tags         movements
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/kardex.pdf [get]
func (h *MovementHandler) ExportPDF(c *fiber.Ctx) error {
	product, err := h.productRepo.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}
	movs, err := h.movRepo.ListByProduct(product.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	bytes, err := h.pdfGen.GenerateKardexPDF(c.Context(), product, history.SortByDateDesc(movs))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_FAILED", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="kardex-`+product.ID+`.pdf"`)
	return c.Send(bytes)
}

// toMovementResponse mapea la entidad al DTO de la API.
func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Price:       m.Price,
		TotalPrice:  m.TotalPrice,
		Date:        m.Date,
		Description: m.Description,
		Warehouse:   m.Warehouse,
		Supplier:    m.Supplier,

		PreviousQuantity:     m.PreviousQuantity,
		NewQuantity:          m.NewQuantity,
		PreviousAveragePrice: m.PreviousAveragePrice,
		NewAveragePrice:      m.NewAveragePrice,
	}
}
