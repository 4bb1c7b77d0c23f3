package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	product   *entity.Product
	movements map[string]*entity.Movement
}

func newMemStore(p *entity.Product) *memStore {
	return &memStore{product: p, movements: map[string]*entity.Movement{}}
}

func (s *memStore) clone() *memStore {
	c := &memStore{movements: map[string]*entity.Movement{}}
	if s.product != nil {
		p := *s.product
		c.product = &p
	}
	for id, m := range s.movements {
		cm := *m
		c.movements[id] = &cm
	}
	return c
}

type memMovRepo struct{ s *memStore }

func (r *memMovRepo) Create(m *entity.Movement) error { r.s.movements[m.ID] = m; return nil }
func (r *memMovRepo) GetByID(id string) (*entity.Movement, error) {
	return r.s.movements[id], nil
}
func (r *memMovRepo) ListByProduct(string) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0, len(r.s.movements))
	for _, m := range r.s.movements {
		out = append(out, m)
	}
	return out, nil
}
func (r *memMovRepo) Delete(id string) error { delete(r.s.movements, id); return nil }

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error { r.s.product = p; return nil }
func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	if r.s.product == nil || r.s.product.ID != id {
		return nil, nil
	}
	return r.s.product, nil
}
func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}
func (r *memProductRepo) List() ([]*entity.Product, error) {
	return []*entity.Product{r.s.product}, nil
}
func (r *memProductRepo) UpdateStock(_ string, quantity, averagePrice decimal.Decimal) error {
	r.s.product.Quantity = quantity
	r.s.product.AveragePurchasePrice = averagePrice
	return nil
}

type memTxRunner struct {
	s         *memStore
	commitErr error
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	work := r.s.clone()
	if err := fn(&memMovRepo{s: work}, &memProductRepo{s: work}); err != nil {
		return err
	}
	if r.commitErr != nil {
		return r.commitErr
	}
	*r.s = *work
	return nil
}

type fakePublisher struct{ changed []string }

func (p *fakePublisher) MovementsChanged(_ context.Context, productID string) {
	p.changed = append(p.changed, productID)
}

func dec(v string) decimal.Decimal     { return decimal.RequireFromString(v) }
func decPtr(v string) *decimal.Decimal { d := dec(v); return &d }

func buildUC(store *memStore) (*inventory.ApplyMovementUseCase, *fakePublisher) {
	events := &fakePublisher{}
	uc := inventory.NewApplyMovementUseCase(&memTxRunner{s: store}, &memProductRepo{s: store}, events)
	return uc, events
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Apply
// ──────────────────────────────────────────────────────────────────────────────

// Entrada de 20 @ $14 sobre {80, $9}: saldo 100 y promedio ponderado
// (80*9 + 20*14) / 100 = $10. El movimiento guarda el par de snapshots completo.
func TestApply_Entrada_ActualizaSaldoYPromedioPonderado(t *testing.T) {
	store := newMemStore(&entity.Product{ID: "p1", Quantity: dec("80"), AveragePurchasePrice: dec("9")})
	uc, events := buildUC(store)

	mov, err := uc.Apply(context.Background(), inventory.MovementInput{
		UserID:    "u1",
		ProductID: "p1",
		Type:      entity.MovementTypeIn,
		Quantity:  dec("20"),
		Price:     decPtr("14"),
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.True(t, mov.PreviousQuantity.Equal(dec("80")))
	assert.True(t, mov.NewQuantity.Equal(dec("100")))
	assert.True(t, mov.PreviousAveragePrice.Equal(dec("9")))
	assert.True(t, mov.NewAveragePrice.Equal(dec("10")), "promedio ponderado, got %s", mov.NewAveragePrice)
	assert.True(t, mov.TotalPrice.Equal(dec("280")))

	assert.True(t, store.product.Quantity.Equal(dec("100")))
	assert.True(t, store.product.AveragePurchasePrice.Equal(dec("10")))
	assert.Contains(t, store.movements, mov.ID, "el movimiento quedó persistido")
	assert.Equal(t, []string{"p1"}, events.changed)
}

// Salida: el precio del movimiento es el costo promedio vigente y el promedio no cambia.
func TestApply_Salida_UsaCostoPromedioVigente(t *testing.T) {
	store := newMemStore(&entity.Product{ID: "p1", Quantity: dec("100"), AveragePurchasePrice: dec("10")})
	uc, _ := buildUC(store)

	mov, err := uc.Apply(context.Background(), inventory.MovementInput{
		UserID:    "u1",
		ProductID: "p1",
		Type:      entity.MovementTypeOut,
		Quantity:  dec("30"),
	})

	require.NoError(t, err)
	assert.True(t, mov.Price.Equal(dec("10")))
	assert.True(t, mov.TotalPrice.Equal(dec("300")))
	assert.True(t, mov.PreviousQuantity.Equal(dec("100")))
	assert.True(t, mov.NewQuantity.Equal(dec("70")))
	assert.True(t, mov.NewAveragePrice.Equal(dec("10")), "el promedio no cambia en salidas")
	assert.True(t, store.product.Quantity.Equal(dec("70")))
}

func TestApply_Salida_StockInsuficiente(t *testing.T) {
	store := newMemStore(&entity.Product{ID: "p1", Quantity: dec("100"), AveragePurchasePrice: dec("10")})
	uc, events := buildUC(store)

	_, err := uc.Apply(context.Background(), inventory.MovementInput{
		UserID:    "u1",
		ProductID: "p1",
		Type:      entity.MovementTypeOut,
		Quantity:  dec("150"),
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.product.Quantity.Equal(dec("100")), "sin escrituras al fallar")
	assert.Empty(t, store.movements)
	assert.Empty(t, events.changed)
}

func TestApply_FechaCero_UsaAhora(t *testing.T) {
	store := newMemStore(&entity.Product{ID: "p1", Quantity: dec("0"), AveragePurchasePrice: dec("0")})
	uc, _ := buildUC(store)

	antes := time.Now()
	mov, err := uc.Apply(context.Background(), inventory.MovementInput{
		UserID:    "u1",
		ProductID: "p1",
		Type:      entity.MovementTypeIn,
		Quantity:  dec("5"),
		Price:     decPtr("2"),
	})

	require.NoError(t, err)
	assert.False(t, mov.Date.IsZero())
	assert.False(t, mov.Date.Before(antes))
}

func TestApply_EntradasInvalidas(t *testing.T) {
	store := newMemStore(&entity.Product{ID: "p1", Quantity: dec("10"), AveragePurchasePrice: dec("5")})
	uc, _ := buildUC(store)

	casos := []inventory.MovementInput{
		{UserID: "u1", ProductID: "p1", Type: "ajuste", Quantity: dec("1")},                       // tipo desconocido
		{UserID: "u1", ProductID: "p1", Type: entity.MovementTypeIn, Quantity: dec("1")},          // entrada sin precio
		{UserID: "u1", ProductID: "p1", Type: entity.MovementTypeIn, Quantity: dec("0"), Price: decPtr("1")},
		{UserID: "u1", ProductID: "", Type: entity.MovementTypeOut, Quantity: dec("1")},           // sin producto
		{UserID: "u1", ProductID: "p1", Type: entity.MovementTypeIn, Quantity: dec("1"), Price: decPtr("-3")},
	}
	for _, in := range casos {
		_, err := uc.Apply(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestApply_ProductoInexistente(t *testing.T) {
	store := newMemStore(&entity.Product{ID: "p1", Quantity: dec("10"), AveragePurchasePrice: dec("5")})
	uc, _ := buildUC(store)

	_, err := uc.Apply(context.Background(), inventory.MovementInput{
		UserID:    "u1",
		ProductID: "no-existe",
		Type:      entity.MovementTypeOut,
		Quantity:  dec("1"),
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApply_CommitFalla_SinEfectoParcial(t *testing.T) {
	store := newMemStore(&entity.Product{ID: "p1", Quantity: dec("80"), AveragePurchasePrice: dec("9")})
	uc := inventory.NewApplyMovementUseCase(
		&memTxRunner{s: store, commitErr: errors.New("commit falló")},
		&memProductRepo{s: store},
		&fakePublisher{},
	)

	_, err := uc.Apply(context.Background(), inventory.MovementInput{
		UserID:    "u1",
		ProductID: "p1",
		Type:      entity.MovementTypeIn,
		Quantity:  dec("20"),
		Price:     decPtr("14"),
	})

	require.Error(t, err)
	assert.True(t, store.product.Quantity.Equal(dec("80")))
	assert.Empty(t, store.movements)
}
