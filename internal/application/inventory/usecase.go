package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	dominv "github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ApplyMovementUseCase registra movimientos de inventario (in/out) de forma
// transaccional: captura el snapshot previo del producto, calcula el nuevo saldo
// y costo promedio, y persiste movimiento + producto con Commit/Rollback.
type ApplyMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	events      ChangePublisher
}

// NewApplyMovementUseCase construye el caso de uso.
func NewApplyMovementUseCase(txRunner TxRunner, productRepo repository.ProductRepository, events ChangePublisher) *ApplyMovementUseCase {
	return &ApplyMovementUseCase{txRunner: txRunner, productRepo: productRepo, events: events}
}

// MovementInput entrada para aplicar un movimiento.
// Para entradas (in) Price es obligatorio; para salidas (out) se usa el costo
// promedio vigente del producto como precio del movimiento.
type MovementInput struct {
	UserID      string
	ProductID   string
	Type        string
	Quantity    decimal.Decimal
	Price       *decimal.Decimal
	Date        time.Time
	Description string
	Warehouse   string
	Supplier    string
}

// Apply valida la entrada, bloquea la fila del producto (SELECT FOR UPDATE),
// escribe el movimiento con su par de snapshots y actualiza el producto, todo en
// una transacción. Devuelve el movimiento persistido.
func (uc *ApplyMovementUseCase) Apply(ctx context.Context, input MovementInput) (*entity.Movement, error) {
	switch input.Type {
	case entity.MovementTypeIn:
		if input.Price == nil || input.Price.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	case entity.MovementTypeOut:
		// el precio de salida sale del costo promedio; no se acepta uno arbitrario
	default:
		return nil, domain.ErrInvalidInput
	}
	if input.ProductID == "" || !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	// Existencia del producto fuera de la tx: corta rápido los IDs inválidos.
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	var mov *entity.Movement
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		// Bloquea la fila del producto para evitar condiciones de carrera entre aplicaciones concurrentes.
		locked, err := productRepo.GetForUpdate(input.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}

		prevQty := locked.Quantity
		prevAvg := locked.AveragePurchasePrice

		var newQty, newAvg, price decimal.Decimal
		switch input.Type {
		case entity.MovementTypeIn:
			price = *input.Price
			newQty = prevQty.Add(input.Quantity)
			newAvg = dominv.CostCalculator(prevQty, prevAvg, input.Quantity, price)
		case entity.MovementTypeOut:
			if prevQty.LessThan(input.Quantity) {
				return domain.ErrInsufficientStock
			}
			price = prevAvg
			newQty = prevQty.Sub(input.Quantity)
			newAvg = prevAvg
		}

		mov = &entity.Movement{
			ID:          uuid.New().String(),
			ProductID:   input.ProductID,
			Type:        input.Type,
			Quantity:    input.Quantity,
			Price:       price,
			TotalPrice:  input.Quantity.Mul(price),
			Date:        date,
			Description: input.Description,
			Warehouse:   input.Warehouse,
			Supplier:    input.Supplier,

			PreviousQuantity:     prevQty,
			NewQuantity:          newQty,
			PreviousAveragePrice: prevAvg,
			NewAveragePrice:      newAvg,

			CreatedAt: now,
			CreatedBy: input.UserID,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		return productRepo.UpdateStock(input.ProductID, newQty, newAvg)
	})
	if err != nil {
		return nil, err
	}

	if uc.events != nil {
		uc.events.MovementsChanged(ctx, input.ProductID)
	}
	return mov, nil
}
