package history_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/history"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// memStore estado compartido de los repos en memoria.
type memStore struct {
	product   *entity.Product
	movements map[string]*entity.Movement
}

func newMemStore(p *entity.Product, movs ...*entity.Movement) *memStore {
	s := &memStore{product: p, movements: map[string]*entity.Movement{}}
	for _, m := range movs {
		s.movements[m.ID] = m
	}
	return s
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
func (r *memMovRepo) Delete(id string) error {
	if _, ok := r.s.movements[id]; !ok {
		return errors.New("movimiento no existe")
	}
	delete(r.s.movements, id)
	return nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error { r.s.product = p; return nil }
func (r *memProductRepo) GetByID(string) (*entity.Product, error) {
	return r.s.product, nil
}
func (r *memProductRepo) GetForUpdate(string) (*entity.Product, error) {
	return r.s.product, nil
}
func (r *memProductRepo) List() ([]*entity.Product, error) {
	return []*entity.Product{r.s.product}, nil
}
func (r *memProductRepo) UpdateStock(_ string, quantity, averagePrice decimal.Decimal) error {
	r.s.product.Quantity = quantity
	r.s.product.AveragePurchasePrice = averagePrice
	return nil
}

// memTxRunner aplica fn sobre una copia del estado y solo publica el resultado si
// fn y el commit tienen éxito: todo o nada, como la transacción real.
type memTxRunner struct {
	s          *memStore
	commitErr  error
	runInvoked int
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.runInvoked++
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

// fakeAuth puerta de contraseña controlable. block permite retener un borrado en
// curso para probar la exclusión por movimiento; entered avisa que la llamada
// quedó retenida.
type fakeAuth struct {
	ok      bool
	err     error
	calls   int
	block   chan struct{}
	entered chan struct{}
}

func (a *fakeAuth) Authenticate(context.Context, string, string) (bool, error) {
	a.calls++
	if a.entered != nil {
		a.entered <- struct{}{}
	}
	if a.block != nil {
		<-a.block
	}
	return a.ok, a.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errs      []string
}

func (n *fakeNotifier) ShowSuccess(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *fakeNotifier) ShowError(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, msg)
}

type fakePublisher struct{ changed []string }

func (p *fakePublisher) MovementsChanged(_ context.Context, productID string) {
	p.changed = append(p.changed, productID)
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Tests Delete
// ──────────────────────────────────────────────────────────────────────────────

// Escenario de referencia: producto en {100, $10} por una entrada de 20 unidades
// cuyo snapshot previo era {80, $9}. Al eliminarla el producto vuelve a {80, $9}.
func TestDelete_RestauraSnapshotYEliminaElMovimiento(t *testing.T) {
	product := &entity.Product{ID: "p1", Name: "Arroz", Quantity: dec("100"), AveragePurchasePrice: dec("10")}
	movement := &entity.Movement{
		ID:        "m1",
		ProductID: "p1",
		Type:      entity.MovementTypeIn,
		Quantity:  dec("20"),
		Price:     dec("14"),
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),

		PreviousQuantity:     dec("80"),
		NewQuantity:          dec("100"),
		PreviousAveragePrice: dec("9"),
		NewAveragePrice:      dec("10"),
	}
	store := newMemStore(product, movement)
	notifier := &fakeNotifier{}
	events := &fakePublisher{}
	uc := history.NewDeleteMovementUseCase(
		&memTxRunner{s: store}, &fakeAuth{ok: true}, notifier, events, logger.NewNop(),
	)

	err := uc.Delete(context.Background(), history.DeleteInput{
		UserID:   "u1",
		Password: "secreta",
		Movement: movement,
	})

	require.NoError(t, err)
	assert.True(t, store.product.Quantity.Equal(dec("80")), "cantidad restaurada, got %s", store.product.Quantity)
	assert.True(t, store.product.AveragePurchasePrice.Equal(dec("9")), "costo promedio restaurado, got %s", store.product.AveragePurchasePrice)
	assert.NotContains(t, store.movements, "m1", "el movimiento ya no existe")
	assert.Equal(t, []string{"movimiento eliminado correctamente"}, notifier.successes)
	assert.Empty(t, notifier.errs)
	assert.Equal(t, []string{"p1"}, events.changed, "el feed debe re-consultar tras el borrado")
}

// Para salidas la restauración es idéntica: se aplica el snapshot previo tal cual,
// sin distinguir la dirección del movimiento.
func TestDelete_SalidaRestauraConElMismoSnapshot(t *testing.T) {
	product := &entity.Product{ID: "p1", Quantity: dec("70"), AveragePurchasePrice: dec("10")}
	movement := &entity.Movement{
		ID:        "m2",
		ProductID: "p1",
		Type:      entity.MovementTypeOut,
		Quantity:  dec("30"),

		PreviousQuantity:     dec("100"),
		NewQuantity:          dec("70"),
		PreviousAveragePrice: dec("10"),
		NewAveragePrice:      dec("10"),
	}
	store := newMemStore(product, movement)
	uc := history.NewDeleteMovementUseCase(
		&memTxRunner{s: store}, &fakeAuth{ok: true}, &fakeNotifier{}, &fakePublisher{}, logger.NewNop(),
	)

	err := uc.Delete(context.Background(), history.DeleteInput{UserID: "u1", Password: "x", Movement: movement})

	require.NoError(t, err)
	assert.True(t, store.product.Quantity.Equal(dec("100")))
	assert.True(t, store.product.AveragePurchasePrice.Equal(dec("10")))
	assert.Empty(t, store.movements)
}

// Puerta declinada (contraseña incorrecta o cancelación): cero escrituras y
// cero notificaciones; el caller recibe ErrUnauthorized.
func TestDelete_PuertaDeclinada_SinEscriturasNiNotificaciones(t *testing.T) {
	product := &entity.Product{ID: "p1", Quantity: dec("100"), AveragePurchasePrice: dec("10")}
	movement := &entity.Movement{
		ID: "m1", ProductID: "p1", Type: entity.MovementTypeIn,
		PreviousQuantity: dec("80"), PreviousAveragePrice: dec("9"),
	}
	store := newMemStore(product, movement)
	tx := &memTxRunner{s: store}
	notifier := &fakeNotifier{}
	auth := &fakeAuth{ok: false}
	uc := history.NewDeleteMovementUseCase(tx, auth, notifier, &fakePublisher{}, logger.NewNop())

	err := uc.Delete(context.Background(), history.DeleteInput{UserID: "u1", Password: "mala", Movement: movement})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, auth.calls)
	assert.Zero(t, tx.runInvoked, "la transacción nunca debe iniciarse")
	assert.True(t, store.product.Quantity.Equal(dec("100")), "producto intacto")
	assert.Contains(t, store.movements, "m1", "movimiento intacto")
	assert.Empty(t, notifier.successes)
	assert.Empty(t, notifier.errs, "el aborto por puerta es silencioso")
}

// Fallo del autenticador (infraestructura) se propaga envuelto, sin notificaciones.
func TestDelete_ErrorDelAutenticador_SePropaga(t *testing.T) {
	movement := &entity.Movement{ID: "m1", ProductID: "p1"}
	store := newMemStore(&entity.Product{ID: "p1"}, movement)
	notifier := &fakeNotifier{}
	uc := history.NewDeleteMovementUseCase(
		&memTxRunner{s: store}, &fakeAuth{err: errors.New("bd caída")}, notifier, &fakePublisher{}, logger.NewNop(),
	)

	err := uc.Delete(context.Background(), history.DeleteInput{UserID: "u1", Password: "x", Movement: movement})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, notifier.successes)
	assert.Empty(t, notifier.errs)
	assert.Contains(t, store.movements, "m1")
}

// Fallo de la transacción: ningún efecto parcial y exactamente una notificación de error.
func TestDelete_TransaccionFalla_SinEfectoParcial(t *testing.T) {
	product := &entity.Product{ID: "p1", Quantity: dec("100"), AveragePurchasePrice: dec("10")}
	movement := &entity.Movement{
		ID: "m1", ProductID: "p1", Type: entity.MovementTypeIn,
		PreviousQuantity: dec("80"), PreviousAveragePrice: dec("9"),
	}
	store := newMemStore(product, movement)
	notifier := &fakeNotifier{}
	events := &fakePublisher{}
	uc := history.NewDeleteMovementUseCase(
		&memTxRunner{s: store, commitErr: errors.New("commit falló")},
		&fakeAuth{ok: true}, notifier, events, logger.NewNop(),
	)

	err := uc.Delete(context.Background(), history.DeleteInput{UserID: "u1", Password: "x", Movement: movement})

	require.Error(t, err)
	assert.True(t, store.product.Quantity.Equal(dec("100")), "la restauración no debe aplicarse a medias")
	assert.Contains(t, store.movements, "m1", "el movimiento sigue existiendo")
	assert.Len(t, notifier.errs, 1, "exactamente una notificación de error")
	assert.Empty(t, notifier.successes)
	assert.Empty(t, events.changed)
}

// Solo un borrado en curso por movimiento: el segundo intento concurrente recibe
// ErrConflict y el estado pendiente se limpia al terminar el primero.
func TestDelete_ConcurrenteSobreElMismoMovimiento_Conflicto(t *testing.T) {
	product := &entity.Product{ID: "p1", Quantity: dec("100"), AveragePurchasePrice: dec("10")}
	movement := &entity.Movement{
		ID: "m1", ProductID: "p1",
		PreviousQuantity: dec("80"), PreviousAveragePrice: dec("9"),
	}
	store := newMemStore(product, movement)
	auth := &fakeAuth{ok: true, block: make(chan struct{}), entered: make(chan struct{})}
	uc := history.NewDeleteMovementUseCase(
		&memTxRunner{s: store}, auth, &fakeNotifier{}, &fakePublisher{}, logger.NewNop(),
	)

	done := make(chan error, 1)
	go func() {
		done <- uc.Delete(context.Background(), history.DeleteInput{UserID: "u1", Password: "x", Movement: movement})
	}()
	// Espera a que el primer borrado quede retenido dentro del autenticador.
	select {
	case <-auth.entered:
	case <-time.After(time.Second):
		t.Fatal("el primer borrado nunca llegó al autenticador")
	}

	err := uc.Delete(context.Background(), history.DeleteInput{UserID: "u2", Password: "x", Movement: movement})
	assert.ErrorIs(t, err, domain.ErrConflict)

	close(auth.block)
	require.NoError(t, <-done)

	// Terminado el primero, el movimiento ya no existe y un reintento no queda bloqueado por el guard.
	auth.block = nil
	auth.entered = nil
	err = uc.Delete(context.Background(), history.DeleteInput{UserID: "u2", Password: "x", Movement: movement})
	require.Error(t, err, "el movimiento ya fue eliminado; falla la tx, no el guard")
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestDelete_EntradaInvalida(t *testing.T) {
	uc := history.NewDeleteMovementUseCase(
		&memTxRunner{s: newMemStore(&entity.Product{ID: "p1"})},
		&fakeAuth{ok: true}, &fakeNotifier{}, &fakePublisher{}, logger.NewNop(),
	)

	casos := []history.DeleteInput{
		{UserID: "u1", Password: "x", Movement: nil},
		{UserID: "u1", Password: "x", Movement: &entity.Movement{}},
		{UserID: "", Password: "x", Movement: &entity.Movement{ID: "m1"}},
	}
	for _, in := range casos {
		assert.ErrorIs(t, uc.Delete(context.Background(), in), domain.ErrInvalidInput)
	}
}
