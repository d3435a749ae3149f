package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка несоответствия количества единиц и позиций.
	ErrTotalItemsMismatch = errors.New("order total_items does not match items sum")
	// Ошибка статуса вне закрытого множества.
	ErrStatusInvalid = errors.New("order status is not a known value")
	// Ошибка некорректных параметров пагинации (page < 1 или limit < 1).
	ErrPaginationInvalid = errors.New("page and limit must be greater than zero")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists сигнализирует о конфликте идентификаторов при создании.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrProductValidatorUnavailable — каталог недоступен (timeout/транспорт).
	// Создание заказа без подтверждения каталога не выполняется.
	ErrProductValidatorUnavailable = errors.New("product validator is unavailable")
	// ErrProductUnknown — каталог не подтвердил один или несколько товаров.
	ErrProductUnknown = errors.New("unknown product")
)

// UnknownProductsError перечисляет товары, которые каталог не подтвердил.
// Оборачивает ErrProductUnknown, чтобы транспорт мог классифицировать ошибку через errors.Is.
type UnknownProductsError struct {
	ProductIDs []string
}

func (e *UnknownProductsError) Error() string {
	return fmt.Sprintf("unknown products: %s", strings.Join(e.ProductIDs, ", "))
}

func (e *UnknownProductsError) Unwrap() error {
	return ErrProductUnknown
}

// NotFoundError дополняет ErrOrderNotFound идентификатором, который искали.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order with id %s not found", e.OrderID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrOrderNotFound
}

// IsNotFound проверяет, относится ли ошибка к классу "заказ не найден".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
