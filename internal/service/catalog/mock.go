package catalog

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// MockValidator — конфигурируемая заглушка ProductValidator для тестов
// и локальной разработки без брокера.
type MockValidator struct {
	mu sync.Mutex

	products map[string]domain.Product

	// ValidateErr возвращается вместо ответа, если задана.
	ValidateErr error

	ValidateCalls int
	LastRequested []string
}

// NewMockValidator возвращает mock с пустым каталогом.
func NewMockValidator() *MockValidator {
	return &MockValidator{products: make(map[string]domain.Product)}
}

// Seed добавляет товары в каталог заглушки.
func (m *MockValidator) Seed(products ...domain.Product) *MockValidator {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, product := range products {
		m.products[product.ID] = product
	}
	return m
}

// Validate возвращает подмножество запрошенных id, известных каталогу,
// и считает вызовы. Порядок ответа соответствует порядку запроса.
func (m *MockValidator) Validate(_ context.Context, productIDs []string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ValidateCalls++
	m.LastRequested = append([]string(nil), productIDs...)

	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}

	result := make([]domain.Product, 0, len(productIDs))
	for _, id := range productIDs {
		if product, ok := m.products[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

var _ domain.ProductValidator = (*MockValidator)(nil)
