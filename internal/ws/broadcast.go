// broadcast.go
package ws

import (
	"context"
	"log"
	"time"

	"order-tracking-service/internal/model"

	"github.com/google/uuid"
)

// OrderLookup es lo único que el broadcaster necesita del servicio de órdenes.
type OrderLookup interface {
	GetByOrderID(ctx context.Context, orderID int64) (*model.Order, error)
}

// Broadcaster calcula la audiencia de cada evento y hace el fan-out.
// La entrega es fire-and-forget por socket: un write que falla se loguea y
// no frena a los demás ni reencola el evento.
type Broadcaster struct {
	registry *Registry
	orders   OrderLookup
}

func NewBroadcaster(r *Registry, orders OrderLookup) *Broadcaster {
	return &Broadcaster{registry: r, orders: orders}
}

// Publish entrega el evento a su audiencia y devuelve cuántas entregas
// salieron bien. La audiencia se evalúa contra el registro ACTUAL de la
// orden en el store; si la orden no existe, se aborta con cero entregas.
//
// Orden dentro de un mismo Publish: primero los suscriptores exactos (payload
// crudo), después las notificaciones por rol. Entre eventos distintos no hay
// garantía de orden.
func (b *Broadcaster) Publish(ctx context.Context, ev Event) int {
	ord, err := b.orders.GetByOrderID(ctx, ev.eventOrderID())
	if err != nil {
		log.Println("[Broadcast] evento descartado, orden no encontrada:", ev.eventOrderID())
		return 0
	}

	now := time.Now().UTC()
	delivered := 0

	// 1) Suscriptores exactos: reciben el payload crudo del evento.
	//    Una conexión anónima (sin identify) también entra acá si está
	//    suscripta: es el link de seguimiento sin login.
	raw := subscriberFrame(ev, now)
	gotRaw := make(map[uuid.UUID]bool)

	delivered += b.registry.ForEach(
		func(c ClientInfo) bool {
			if c.SubscribedOrderID != nil && *c.SubscribedOrderID == ord.OrderID {
				gotRaw[c.ID] = true
				return true
			}
			return false
		},
		func(id uuid.UUID, sock Conn) error { return sock.WriteJSON(raw) },
	)

	// Los cambios de posición del repartidor solo interesan a quien sigue la
	// orden: no generan notificaciones por rol.
	if _, ok := ev.(CourierLocationChanged); ok {
		return delivered
	}

	// 2) Cliente dueño de la orden: notificación localizada, salvo que ese
	//    mismo socket ya haya recibido el payload crudo como suscriptor
	//    (nunca dos frames por un mismo evento).
	customerMsg := customerNotification(ev, ord, now)
	delivered += b.registry.ForEach(
		func(c ClientInfo) bool {
			return !gotRaw[c.ID] &&
				c.Role == model.RoleCustomer &&
				c.UserID != nil && *c.UserID == ord.UserID
		},
		func(id uuid.UUID, sock Conn) error { return sock.WriteJSON(customerMsg) },
	)

	// 3) Restaurante de la orden: frame propio, con redacción distinta para
	//    orden nueva vs cambio de estado.
	restaurantMsg := restaurantNotification(ev, ord, now)
	delivered += b.registry.ForEach(
		func(c ClientInfo) bool {
			return c.Role == model.RoleRestaurant &&
				c.RestaurantID != nil && *c.RestaurantID == ord.RestaurantID
		},
		func(id uuid.UUID, sock Conn) error { return sock.WriteJSON(restaurantMsg) },
	)

	// 4) Repartidor asignado: se matchea por userId contra order.courierId.
	if ord.CourierID != nil {
		courierMsg := courierNotification(ev, ord, now)
		delivered += b.registry.ForEach(
			func(c ClientInfo) bool {
				return c.Role == model.RoleDelivery &&
					c.UserID != nil && *c.UserID == *ord.CourierID
			},
			func(id uuid.UUID, sock Conn) error { return sock.WriteJSON(courierMsg) },
		)
	}

	return delivered
}

// subscriberFrame arma el payload crudo que reciben los suscriptores exactos.
func subscriberFrame(ev Event, now time.Time) any {
	switch e := ev.(type) {
	case StatusChanged:
		return orderStatusUpdateFrame{
			Type:      FrameOrderStatusUpdate,
			OrderID:   e.OrderID,
			Status:    e.NewStatus,
			Timestamp: now,
		}
	case CourierLocationChanged:
		return driverLocationUpdateFrame{
			Type:      FrameDriverLocationUpdate,
			OrderID:   e.OrderID,
			Lat:       e.Lat,
			Lng:       e.Lng,
			Timestamp: now,
		}
	case NewOrder:
		return newOrderFrame{
			Type:         FrameNewOrder,
			OrderID:      e.OrderID,
			RestaurantID: e.RestaurantID,
			Timestamp:    now,
		}
	}
	return nil
}

func customerNotification(ev Event, ord *model.Order, now time.Time) any {
	return orderUpdateNotificationFrame{
		Type:      FrameOrderUpdateNotification,
		OrderID:   ord.OrderID,
		Status:    ord.Status,
		Message:   customerMessage(ev, ord),
		Timestamp: now,
	}
}

func restaurantNotification(ev Event, ord *model.Order, now time.Time) any {
	if _, ok := ev.(NewOrder); ok {
		return newOrderNotificationFrame{
			Type:      FrameNewOrderNotification,
			OrderID:   ord.OrderID,
			Message:   restaurantNewOrderMessage(ord),
			Timestamp: now,
		}
	}
	return orderUpdateNotificationFrame{
		Type:      FrameOrderUpdateNotification,
		OrderID:   ord.OrderID,
		Status:    ord.Status,
		Message:   restaurantStatusMessage(ord),
		Timestamp: now,
	}
}

func courierNotification(ev Event, ord *model.Order, now time.Time) any {
	return deliveryUpdateNotificationFrame{
		Type:      FrameDeliveryUpdateNotification,
		OrderID:   ord.OrderID,
		Status:    ord.Status,
		Message:   courierMessage(ord),
		Timestamp: now,
	}
}
