package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_id, type, quantity, price, total_price, date,
	description, warehouse, supplier, previous_quantity, new_quantity,
	previous_average_price, new_average_price, created_at, created_by`

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento con su par de snapshots.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	supplier := (*string)(nil)
	if movement.Supplier != "" {
		supplier = &movement.Supplier
	}
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Type,
		movement.Quantity, movement.Price, movement.TotalPrice, movement.Date,
		movement.Description, movement.Warehouse, supplier,
		movement.PreviousQuantity, movement.NewQuantity,
		movement.PreviousAveragePrice, movement.NewAveragePrice,
		movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. (nil, nil) si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByProduct lista todos los movimientos de un producto.
// Sin ORDER BY deliberadamente: el almacén no garantiza orden y ordenar es
// responsabilidad del feed (cliente). Una fila que falla al escanear se excluye
// y se registra en el log; no aborta el lote completo.
func (r *MovementRepo) ListByProduct(productID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE product_id = $1`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			log.Warn().Err(err).Str("product_id", productID).Msg("movimiento ilegible excluido del historial")
			continue
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Delete elimina un movimiento por ID. ErrNoRows si ya no existe.
func (r *MovementRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// scanMovement escanea una fila (pgx.Row o pgx.Rows) a la entidad.
func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var supplier, createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Type,
		&m.Quantity, &m.Price, &m.TotalPrice, &m.Date,
		&m.Description, &m.Warehouse, &supplier,
		&m.PreviousQuantity, &m.NewQuantity,
		&m.PreviousAveragePrice, &m.NewAveragePrice,
		&m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if supplier != nil {
		m.Supplier = *supplier
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
