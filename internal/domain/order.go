package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает обработки.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён до доставки.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderStatuses — закрытое множество допустимых статусов.
var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ParseOrderStatus валидирует статус на границе системы.
// Внешние значения не принимаются на веру: всё, что не входит
// в закрытое множество, отклоняется с ErrStatusInvalid.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if _, ok := orderStatuses[status]; !ok {
		return "", ErrStatusInvalid
	}
	return status, nil
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — внешний идентификатор товара в каталоге.
	// Сам товар локально не хранится, только ссылка.
	ProductID string
	// Qty — количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу в минимальных денежных единицах,
	// зафиксированная на момент создания заказа. Последующие изменения
	// цены в каталоге на неё не влияют.
	PriceMinor int64
	// Name — название товара, подтягиваемое из каталога при чтении.
	// Никогда не персистится; nil означает, что каталог товар больше не знает.
	Name *string
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID string
	// AmountMinor — сумма qty*price по всем позициям на момент создания.
	// Снимок, после создания не пересчитывается.
	AmountMinor int64
	// TotalItems — суммарное количество единиц по всем позициям, тоже снимок.
	TotalItems int32
	Status     OrderStatus
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if _, ok := orderStatuses[o.Status]; !ok {
		errs = append(errs, ErrStatusInvalid)
	}

	// Сверяем снимки сумм с позициями: amount = Σ qty*price, total = Σ qty.
	var amount int64
	var total int32
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		amount += int64(item.Qty) * item.PriceMinor
		total += item.Qty
	}
	if amount != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}
	if total != o.TotalItems {
		errs = append(errs, ErrTotalItemsMismatch)
	}

	return errs
}
