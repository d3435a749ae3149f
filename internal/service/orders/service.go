package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

// Service реализует бизнес-логику заказов поверх репозитория и каталога товаров.
type Service struct {
	repo      domain.OrderRepository
	validator domain.ProductValidator
	events    domain.OrderEventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
}

// NewService конструирует сервис с зависимостями.
// events и orderMetrics могут быть nil — публикация событий и метрики опциональны.
func NewService(
	repo domain.OrderRepository,
	validator domain.ProductValidator,
	events domain.OrderEventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		repo:      repo,
		validator: validator,
		events:    events,
		metrics:   orderMetrics,
		logger:    logger,
	}
}

// CreateItemInput — запрошенная позиция корзины. Цена не принимается:
// она берётся только из ответа каталога.
type CreateItemInput struct {
	ProductID string
	Qty       int32
}

// ListQuery задаёт параметры выборки заказов.
type ListQuery struct {
	Status *domain.OrderStatus
	Page   int
	Limit  int
}

// ListMeta описывает пагинацию выборки.
type ListMeta struct {
	TotalOrders int
	CurrentPage int
	LastPage    int
}

// OrderPage — страница заказов с метаданными пагинации.
type OrderPage struct {
	Data []domain.Order
	Meta ListMeta
}

// Create проводит полный цикл создания заказа: проверка товаров в каталоге,
// расчёт сумм по подтверждённым ценам и атомарная запись заказа с позициями.
// Заказ либо создаётся целиком, либо не создаётся вовсе.
func (s *Service) Create(ctx context.Context, items []CreateItemInput) (domain.Order, error) {
	started := time.Now()

	if len(items) == 0 {
		s.metrics.RecordCreateFailure("empty_items")
		return domain.Order{}, domain.ErrItemsRequired
	}
	for _, item := range items {
		if item.ProductID == "" {
			s.metrics.RecordCreateFailure("invalid_item")
			return domain.Order{}, domain.ErrItemProductRequired
		}
		if item.Qty <= 0 {
			s.metrics.RecordCreateFailure("invalid_item")
			return domain.Order{}, domain.ErrItemQtyInvalid
		}
	}

	// Дубликаты productId допустимы: каждая позиция агрегируется
	// независимо, но в каталог идёт только множество уникальных id.
	products, err := s.validateProducts(ctx, distinctProductIDs(items))
	if err != nil {
		s.metrics.RecordCreateFailure("validation")
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	orderItems := make([]domain.OrderItem, 0, len(items))
	var amountMinor int64
	var totalItems int32
	var missing []string
	seenMissing := make(map[string]struct{})
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			if _, dup := seenMissing[item.ProductID]; !dup {
				seenMissing[item.ProductID] = struct{}{}
				missing = append(missing, item.ProductID)
			}
			continue
		}
		orderItems = append(orderItems, domain.OrderItem{
			ID:         uuid.NewString(),
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: product.PriceMinor,
			CreatedAt:  now,
		})
		amountMinor += int64(item.Qty) * product.PriceMinor
		totalItems += item.Qty
	}
	if len(missing) > 0 {
		s.metrics.RecordCreateFailure("unknown_product")
		return domain.Order{}, &domain.UnknownProductsError{ProductIDs: missing}
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		AmountMinor: amountMinor,
		TotalItems:  totalItems,
		Status:      domain.OrderStatusPending,
		Items:       orderItems,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		s.metrics.RecordCreateFailure("invariants")
		return domain.Order{}, errors.Join(errs...)
	}

	if err := s.repo.Create(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to persist order")
		s.metrics.RecordCreateFailure("storage")
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	// Названия товаров — presentation-only join из уже полученного ответа каталога.
	enrichItems(order.Items, products)

	s.metrics.RecordOrderCreated()
	s.metrics.RecordCreateDuration(time.Since(started))
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"amount_minor": order.AmountMinor,
		"total_items":  order.TotalItems,
	}).Info("order created")

	s.publishCreated(order)

	return order, nil
}

// List возвращает страницу заказов с метаданными пагинации.
func (s *Service) List(_ context.Context, query ListQuery) (OrderPage, error) {
	// Limit проверяется здесь же, чтобы расчёт lastPage не делил на ноль.
	if query.Page < 1 || query.Limit < 1 {
		return OrderPage{}, domain.ErrPaginationInvalid
	}

	orders, total, err := s.repo.List(domain.ListFilter{
		Status: query.Status,
		Page:   query.Page,
		Limit:  query.Limit,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to list orders")
		return OrderPage{}, fmt.Errorf("list orders: %w", err)
	}

	return OrderPage{
		Data: orders,
		Meta: ListMeta{
			TotalOrders: total,
			CurrentPage: query.Page,
			LastPage:    (total + query.Limit - 1) / query.Limit,
		},
	}, nil
}

// Get возвращает заказ с позициями, дополняя их названиями из каталога.
// Названия в хранилище не дублируются, поэтому каждый вызов — свежий запрос к каталогу.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.Get(id)
	if err != nil {
		if domain.IsNotFound(err) {
			s.metrics.RecordOrderNotFound()
			return domain.Order{}, &domain.NotFoundError{OrderID: id}
		}
		s.logger.WithError(err).WithField("order_id", id).Error("failed to load order")
		return domain.Order{}, fmt.Errorf("load order: %w", err)
	}

	ids := make([]CreateItemInput, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, CreateItemInput{ProductID: item.ProductID})
	}
	products, err := s.validateProducts(ctx, distinctProductIDs(ids))
	if err != nil {
		return domain.Order{}, err
	}

	// Товар мог исчезнуть из каталога после создания заказа:
	// для таких позиций Name остаётся nil, ошибки это не вызывает.
	enrichItems(order.Items, products)

	return order, nil
}

// ChangeStatus переводит заказ в новый статус. Повторный запрос текущего
// статуса — идемпотентный no-op: заказ возвращается без записи в хранилище.
func (s *Service) ChangeStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if order.Status == status {
		s.metrics.RecordStatusNoop()
		return order, nil
	}

	previous := order.Status
	if err := s.repo.UpdateStatus(id, status); err != nil {
		if domain.IsNotFound(err) {
			s.metrics.RecordOrderNotFound()
			return domain.Order{}, &domain.NotFoundError{OrderID: id}
		}
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": id,
			"status":   status,
		}).Error("failed to update order status")
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	// Перечитываем запись, чтобы вернуть актуальный updated_at,
	// и переносим уже разрешённые названия: позиции не менялись.
	updated, err := s.repo.Get(id)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("failed to reload order after status update")
		return domain.Order{}, fmt.Errorf("reload order: %w", err)
	}
	carryNames(updated.Items, order.Items)

	s.metrics.RecordStatusChange(string(status))
	s.logger.WithFields(log.Fields{
		"order_id": id,
		"from":     previous,
		"to":       status,
	}).Info("order status changed")

	s.publishStatusChanged(updated, previous)

	return updated, nil
}

// validateProducts делает один батчевый вызов каталога и возвращает подтверждённые товары.
func (s *Service) validateProducts(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	if len(productIDs) == 0 {
		return map[string]domain.Product{}, nil
	}

	started := time.Now()
	products, err := s.validator.Validate(ctx, productIDs)
	s.metrics.RecordValidationDuration(time.Since(started))
	if err != nil {
		s.logger.WithError(err).WithField("product_ids", productIDs).Warn("product validation failed")
		return nil, fmt.Errorf("validate products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return byID, nil
}

func (s *Service) publishCreated(order domain.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderCreated(order); err != nil {
		s.metrics.RecordEventPublishError()
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order created event")
		return
	}
	s.metrics.RecordEventPublished()
}

func (s *Service) publishStatusChanged(order domain.Order, previous domain.OrderStatus) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderStatusChanged(order, previous); err != nil {
		s.metrics.RecordEventPublishError()
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish status changed event")
		return
	}
	s.metrics.RecordEventPublished()
}

// distinctProductIDs возвращает уникальные productId в порядке первого появления.
func distinctProductIDs(items []CreateItemInput) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// enrichItems проставляет позициям названия из ответа каталога.
func enrichItems(items []domain.OrderItem, products map[string]domain.Product) {
	for i := range items {
		if product, ok := products[items[i].ProductID]; ok {
			name := product.Name
			items[i].Name = &name
		}
	}
}

// carryNames переносит разрешённые названия между двумя загрузками одного заказа.
func carryNames(dst, src []domain.OrderItem) {
	names := make(map[string]*string, len(src))
	for _, item := range src {
		names[item.ID] = item.Name
	}
	for i := range dst {
		if name, ok := names[dst[i].ID]; ok {
			dst[i].Name = name
		}
	}
}
