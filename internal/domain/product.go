package domain

// Product — авторитетные данные о товаре, возвращаемые каталогом.
// Цена берётся только отсюда, клиентским ценам сервис не доверяет.
type Product struct {
	ID         string
	Name       string
	PriceMinor int64
}
