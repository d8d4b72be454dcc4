// events.go
package ws

import "order-tracking-service/internal/model"

// Event es la unidad de broadcast en memoria. Se construye inmediatamente
// después de una mutación exitosa en el store y el Broadcaster la consume
// una sola vez, en forma síncrona: no hay cola ni reintentos.
// La unión es cerrada (método no exportado).
type Event interface {
	eventOrderID() int64
}

type StatusChanged struct {
	OrderID   int64
	NewStatus model.OrderStatus
}

type CourierLocationChanged struct {
	OrderID int64
	Lat     float64
	Lng     float64
}

type NewOrder struct {
	OrderID      int64
	RestaurantID int64
}

func (e StatusChanged) eventOrderID() int64          { return e.OrderID }
func (e CourierLocationChanged) eventOrderID() int64 { return e.OrderID }
func (e NewOrder) eventOrderID() int64               { return e.OrderID }
