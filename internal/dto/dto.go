// dto.go
package dto

import (
	"time"

	"order-tracking-service/internal/model"
)

// InitOrderRequest inicializa el registro de tracking de una orden.
// Lo usan la API (pruebas / fallback) y el consumer de Rabbit.
type InitOrderRequest struct {
	OrderID      int64 `json:"orderId" binding:"required"`
	UserID       int64 `json:"userId" binding:"required"`
	RestaurantID int64 `json:"restaurantId" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignCourierRequest struct {
	CourierID int64 `json:"courierId" binding:"required"`
}

type OrderResponse struct {
	OrderID      int64             `json:"orderId"`
	UserID       int64             `json:"userId"`
	RestaurantID int64             `json:"restaurantId"`
	CourierID    *int64            `json:"courierId,omitempty"`
	Status       model.OrderStatus `json:"status"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}
