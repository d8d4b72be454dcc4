// models.go
package model

import "time"

// Role es la identidad funcional de un cliente conectado.
// Agregar un rol nuevo implica tocar solo este archivo y los switch exhaustivos
// del dispatcher y del broadcaster.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleDelivery   Role = "delivery"
	RoleAdmin      Role = "admin"
)

// IsValid reporta si el rol pertenece al conjunto cerrado.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleDelivery, RoleAdmin:
		return true
	}
	return false
}

// OrderStatus es el estado actual de una orden.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusAccepted       OrderStatus = "accepted"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusOnDelivery     OrderStatus = "on_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// ForwardChain es la cadena de avance de estados (cancelled queda fuera:
// es alcanzable desde cualquier estado no final).
var ForwardChain = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusReadyForPickup,
	StatusOnDelivery,
	StatusDelivered,
}

// IsTerminal reporta si el estado no admite más transiciones.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsValid reporta si el estado pertenece al conjunto cerrado.
func (s OrderStatus) IsValid() bool {
	if s == StatusCancelled {
		return true
	}
	for _, v := range ForwardChain {
		if s == v {
			return true
		}
	}
	return false
}

// Next devuelve el sucesor inmediato en la cadena de avance, o "" si no hay.
func (s OrderStatus) Next() OrderStatus {
	for i, v := range ForwardChain {
		if s == v && i+1 < len(ForwardChain) {
			return ForwardChain[i+1]
		}
	}
	return ""
}

// Order es el registro durable de una orden tal como lo ve el núcleo de tracking.
// CourierID y las coordenadas quedan en nil hasta que haya repartidor asignado.
type Order struct {
	OrderID      int64       `bson:"order_id" json:"orderId"`
	UserID       int64       `bson:"user_id" json:"userId"`
	RestaurantID int64       `bson:"restaurant_id" json:"restaurantId"`
	CourierID    *int64      `bson:"courier_id,omitempty" json:"courierId,omitempty"`
	Status       OrderStatus `bson:"status" json:"status"`
	CourierLat   *float64    `bson:"courier_lat,omitempty" json:"courierLat,omitempty"`
	CourierLng   *float64    `bson:"courier_lng,omitempty" json:"courierLng,omitempty"`
	CreatedAt    time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updatedAt"`
}
