package domain

// ListFilter задаёт параметры выборки заказов.
type ListFilter struct {
	// Status фильтрует по статусу; nil означает "все заказы".
	Status *OrderStatus
	// Page — номер страницы, начиная с 1.
	Page int
	// Limit — размер страницы, строго больше нуля.
	Limit int
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ вместе со всеми позициями как одну атомарную
	// запись: либо заказ и все позиции, либо ничего. Возвращает
	// ErrOrderAlreadyExists при конфликте идентификаторов.
	Create(order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// List возвращает страницу заказов (без позиций) в стабильном порядке
	// создания и общее число заказов, подходящих под фильтр.
	List(filter ListFilter) ([]Order, int, error)
	// UpdateStatus меняет только статус заказа и updated_at.
	// Конкурентные обновления одного заказа сериализуются хранилищем,
	// побеждает последняя зафиксированная запись.
	UpdateStatus(id string, status OrderStatus) error
}
