package httpsvc

import (
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

// CreateOrderRequest — тело POST /orders.
type CreateOrderRequest struct {
	Items []CreateOrderItemRequest `json:"items"`
}

// CreateOrderItemRequest — позиция корзины. Цена клиентом не передаётся.
type CreateOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// ChangeStatusRequest — тело PATCH /orders/{id}/status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// OrderItemResponse — позиция заказа в ответе API. Name равен null, когда
// каталог не знает продукт (снимок цены при этом сохраняется).
type OrderItemResponse struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	Quantity   int32   `json:"quantity"`
	PriceMinor int64   `json:"price_minor"`
	Name       *string `json:"name"`
}

// OrderResponse — заказ в ответе API.
type OrderResponse struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	AmountMinor int64               `json:"amount_minor"`
	TotalItems  int32               `json:"total_items"`
	Items       []OrderItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ListOrdersResponse — страница заказов.
type ListOrdersResponse struct {
	Data []OrderResponse `json:"data"`
	Meta ListMeta        `json:"meta"`
}

// ListMeta — метаданные пагинации.
type ListMeta struct {
	TotalOrders int `json:"totalOrders"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
}

// ErrorResponse — единый формат ошибок API.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func mapOrderToResponse(order domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID,
		Status:      string(order.Status),
		AmountMinor: order.AmountMinor,
		TotalItems:  order.TotalItems,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if len(order.Items) > 0 {
		resp.Items = make([]OrderItemResponse, 0, len(order.Items))
		for _, item := range order.Items {
			resp.Items = append(resp.Items, OrderItemResponse{
				ID:         item.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Qty,
				PriceMinor: item.PriceMinor,
				Name:       item.Name,
			})
		}
	}
	return resp
}

func mapPageToResponse(page orders.OrderPage) ListOrdersResponse {
	data := make([]OrderResponse, 0, len(page.Data))
	for _, order := range page.Data {
		data = append(data, mapOrderToResponse(order))
	}
	return ListOrdersResponse{
		Data: data,
		Meta: ListMeta{
			TotalOrders: page.Meta.TotalOrders,
			CurrentPage: page.Meta.CurrentPage,
			LastPage:    page.Meta.LastPage,
		},
	}
}
