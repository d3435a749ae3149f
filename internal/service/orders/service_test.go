package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newService(validator *catalog.MockValidator) (*orders.Service, domain.OrderRepository) {
	repo := memory.NewOrderRepository()
	return orders.NewService(repo, validator, nil, nil, loggerForTests()), repo
}

func seededValidator() *catalog.MockValidator {
	return catalog.NewMockValidator().Seed(
		domain.Product{ID: "P1", Name: "Widget", PriceMinor: 1000},
		domain.Product{ID: "P2", Name: "Gadget", PriceMinor: 500},
	)
}

func TestCreate_TotalsFromValidatedPrices(t *testing.T) {
	validator := seededValidator()
	svc, _ := newService(validator)

	order, err := svc.Create(context.Background(), []orders.CreateItemInput{
		{ProductID: "P1", Qty: 2},
		{ProductID: "P2", Qty: 1},
	})
	require.NoError(t, err)

	// totalAmount = 2*1000 + 1*500, totalItems = 3.
	require.Equal(t, int64(2500), order.AmountMinor)
	require.Equal(t, int32(3), order.TotalItems)
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.NotEmpty(t, order.ID)
	require.Len(t, order.Items, 2)

	// Цены — снимки из каталога, не клиентские.
	require.Equal(t, int64(1000), order.Items[0].PriceMinor)
	require.Equal(t, int64(500), order.Items[1].PriceMinor)

	// Ответ обогащён названиями из того же вызова каталога.
	require.NotNil(t, order.Items[0].Name)
	require.Equal(t, "Widget", *order.Items[0].Name)
	require.NotNil(t, order.Items[1].Name)
	require.Equal(t, "Gadget", *order.Items[1].Name)

	// Один батчевый вызов на создание.
	require.Equal(t, 1, validator.ValidateCalls)
	require.Equal(t, []string{"P1", "P2"}, validator.LastRequested)
}

func TestCreate_DuplicateProductLinesAggregateIndependently(t *testing.T) {
	validator := seededValidator()
	svc, _ := newService(validator)

	order, err := svc.Create(context.Background(), []orders.CreateItemInput{
		{ProductID: "P1", Qty: 2},
		{ProductID: "P1", Qty: 3},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	require.Equal(t, int64(5000), order.AmountMinor)
	require.Equal(t, int32(5), order.TotalItems)
	// В каталог уходит только множество уникальных id.
	require.Equal(t, []string{"P1"}, validator.LastRequested)
}

func TestCreate_UnknownProductIsAtomic(t *testing.T) {
	validator := seededValidator()
	svc, repo := newService(validator)

	_, err := svc.Create(context.Background(), []orders.CreateItemInput{
		{ProductID: "P1", Qty: 1},
		{ProductID: "P404", Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrProductUnknown)

	var unknown *domain.UnknownProductsError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, []string{"P404"}, unknown.ProductIDs)

	// Ни заказа, ни позиций: хранилище не изменилось.
	_, total, listErr := repo.List(domain.ListFilter{Page: 1, Limit: 10})
	require.NoError(t, listErr)
	require.Zero(t, total)
}

func TestCreate_ValidatorUnreachable(t *testing.T) {
	validator := catalog.NewMockValidator()
	validator.ValidateErr = domain.ErrProductValidatorUnavailable
	svc, repo := newService(validator)

	_, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 1}})
	require.ErrorIs(t, err, domain.ErrProductValidatorUnavailable)

	_, total, listErr := repo.List(domain.ListFilter{Page: 1, Limit: 10})
	require.NoError(t, listErr)
	require.Zero(t, total)
}

func TestCreate_InputValidation(t *testing.T) {
	svc, _ := newService(seededValidator())

	_, err := svc.Create(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrItemsRequired)

	_, err = svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 0}})
	require.ErrorIs(t, err, domain.ErrItemQtyInvalid)

	_, err = svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "", Qty: 1}})
	require.ErrorIs(t, err, domain.ErrItemProductRequired)
}

func TestCreate_PersistenceFailureSurfaced(t *testing.T) {
	validator := seededValidator()
	repo := &failingRepo{createErr: errors.New("disk on fire")}
	svc := orders.NewService(repo, validator, nil, nil, loggerForTests())

	_, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 1}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk on fire")
}

func TestList_PaginationMeta(t *testing.T) {
	validator := seededValidator()
	svc, _ := newService(validator)

	for i := 0; i < 10; i++ {
		_, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 1}})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), orders.ListQuery{Page: 1, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 10, page.Meta.TotalOrders)
	require.Equal(t, 1, page.Meta.CurrentPage)
	// lastPage = ceil(10/3) = 4.
	require.Equal(t, 4, page.Meta.LastPage)
	require.LessOrEqual(t, len(page.Data), 3)

	tail, err := svc.List(context.Background(), orders.ListQuery{Page: 4, Limit: 3})
	require.NoError(t, err)
	require.Len(t, tail.Data, 1)
}

func TestList_EmptyResult(t *testing.T) {
	svc, _ := newService(seededValidator())

	delivered := domain.OrderStatusDelivered
	page, err := svc.List(context.Background(), orders.ListQuery{Status: &delivered, Page: 1, Limit: 5})
	require.NoError(t, err)
	require.Zero(t, page.Meta.TotalOrders)
	// ceil(0/n) = 0.
	require.Zero(t, page.Meta.LastPage)
	require.Empty(t, page.Data)
}

func TestList_InvalidPagination(t *testing.T) {
	svc, _ := newService(seededValidator())

	_, err := svc.List(context.Background(), orders.ListQuery{Page: 1, Limit: 0})
	require.ErrorIs(t, err, domain.ErrPaginationInvalid)

	_, err = svc.List(context.Background(), orders.ListQuery{Page: 0, Limit: 5})
	require.ErrorIs(t, err, domain.ErrPaginationInvalid)
}

func TestList_StatusFilter(t *testing.T) {
	validator := seededValidator()
	svc, _ := newService(validator)

	created, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 1}})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P2", Qty: 1}})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), created.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)

	delivered := domain.OrderStatusDelivered
	page, err := svc.List(context.Background(), orders.ListQuery{Status: &delivered, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, page.Meta.TotalOrders)
	require.Equal(t, created.ID, page.Data[0].ID)
}

func TestGet_EnrichesNamesFreshly(t *testing.T) {
	validator := seededValidator()
	svc, _ := newService(validator)

	created, err := svc.Create(context.Background(), []orders.CreateItemInput{
		{ProductID: "P1", Qty: 2},
		{ProductID: "P2", Qty: 1},
	})
	require.NoError(t, err)
	callsAfterCreate := validator.ValidateCalls

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.Items[0].Name)
	require.Equal(t, "Widget", *got.Items[0].Name)

	// Чтение делает свежий вызов каталога, без кэша.
	require.Equal(t, callsAfterCreate+1, validator.ValidateCalls)
}

func TestGet_MissingCatalogEntryYieldsNilName(t *testing.T) {
	repo := memory.NewOrderRepository()
	validator := seededValidator()
	svc := orders.NewService(repo, validator, nil, nil, loggerForTests())

	created, err := svc.Create(context.Background(), []orders.CreateItemInput{
		{ProductID: "P1", Qty: 1},
		{ProductID: "P2", Qty: 1},
	})
	require.NoError(t, err)

	// Товар P2 исчез из каталога после создания заказа.
	shrunk := catalog.NewMockValidator().Seed(domain.Product{ID: "P1", Name: "Widget", PriceMinor: 1000})
	svc2 := orders.NewService(repo, shrunk, nil, nil, loggerForTests())

	got, err := svc2.Get(context.Background(), created.ID)
	require.NoError(t, err)

	byProduct := map[string]*string{}
	for _, item := range got.Items {
		byProduct[item.ProductID] = item.Name
	}
	require.NotNil(t, byProduct["P1"])
	require.Equal(t, "Widget", *byProduct["P1"])
	// Нет падения: отсутствующее название — явный nil.
	require.Nil(t, byProduct["P2"])

	// Цена-снимок не зависит от текущего состояния каталога.
	for _, item := range got.Items {
		if item.ProductID == "P2" {
			require.Equal(t, int64(500), item.PriceMinor)
		}
	}
}

func TestGet_NotFoundEmbedsID(t *testing.T) {
	svc, _ := newService(seededValidator())

	_, err := svc.Get(context.Background(), "nonexistent-id")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.Contains(t, err.Error(), "nonexistent-id")
}

func TestChangeStatus_Transition(t *testing.T) {
	validator := seededValidator()
	svc, _ := newService(validator)

	created, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 2}})
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(context.Background(), created.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusDelivered, updated.Status)
	// Суммы и позиции не тронуты.
	require.Equal(t, created.AmountMinor, updated.AmountMinor)
	require.Equal(t, created.TotalItems, updated.TotalItems)
	require.Len(t, updated.Items, 1)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestChangeStatus_IdempotentNoop(t *testing.T) {
	validator := seededValidator()
	repo := memory.NewOrderRepository()
	spy := &statusSpyRepo{OrderRepository: repo}
	svc := orders.NewService(spy, validator, nil, nil, loggerForTests())

	created, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 1}})
	require.NoError(t, err)

	before, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	got, err := svc.ChangeStatus(context.Background(), created.ID, domain.OrderStatusPending)
	require.NoError(t, err)
	require.Equal(t, before.Status, got.Status)
	require.Equal(t, before.UpdatedAt, got.UpdatedAt)
	// Записи в хранилище не было.
	require.Zero(t, spy.updateCalls)
}

func TestChangeStatus_NotFound(t *testing.T) {
	svc, _ := newService(seededValidator())

	_, err := svc.ChangeStatus(context.Background(), "nonexistent-id", domain.OrderStatusCancelled)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.Contains(t, err.Error(), "nonexistent-id")
}

func TestCreate_PublishesEvent(t *testing.T) {
	validator := seededValidator()
	repo := memory.NewOrderRepository()
	events := &capturingPublisher{}
	svc := orders.NewService(repo, validator, events, nil, loggerForTests())

	created, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 1}})
	require.NoError(t, err)
	require.Equal(t, []string{created.ID}, events.created)

	_, err = svc.ChangeStatus(context.Background(), created.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	require.Len(t, events.statusChanged, 1)
	require.Equal(t, domain.OrderStatusPending, events.statusChanged[0].previous)
}

func TestCreate_EventPublishFailureDoesNotFailRequest(t *testing.T) {
	validator := seededValidator()
	repo := memory.NewOrderRepository()
	events := &capturingPublisher{err: errors.New("broker down")}
	svc := orders.NewService(repo, validator, events, nil, loggerForTests())

	created, err := svc.Create(context.Background(), []orders.CreateItemInput{{ProductID: "P1", Qty: 1}})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
}

// statusSpyRepo считает обращения к UpdateStatus.
type statusSpyRepo struct {
	domain.OrderRepository
	mu          sync.Mutex
	updateCalls int
}

func (r *statusSpyRepo) UpdateStatus(id string, status domain.OrderStatus) error {
	r.mu.Lock()
	r.updateCalls++
	r.mu.Unlock()
	return r.OrderRepository.UpdateStatus(id, status)
}

// capturingPublisher записывает публикации событий.
type capturingPublisher struct {
	err           error
	created       []string
	statusChanged []struct {
		orderID  string
		previous domain.OrderStatus
	}
}

func (p *capturingPublisher) PublishOrderCreated(order domain.Order) error {
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, order.ID)
	return nil
}

func (p *capturingPublisher) PublishOrderStatusChanged(order domain.Order, previous domain.OrderStatus) error {
	if p.err != nil {
		return p.err
	}
	p.statusChanged = append(p.statusChanged, struct {
		orderID  string
		previous domain.OrderStatus
	}{order.ID, previous})
	return nil
}

// failingRepo возвращает настроенную ошибку на Create.
type failingRepo struct {
	createErr error
}

func (r *failingRepo) Create(domain.Order) error { return r.createErr }
func (r *failingRepo) Get(string) (domain.Order, error) {
	return domain.Order{}, domain.ErrOrderNotFound
}
func (r *failingRepo) List(domain.ListFilter) ([]domain.Order, int, error) {
	return nil, 0, nil
}
func (r *failingRepo) UpdateStatus(string, domain.OrderStatus) error { return nil }
