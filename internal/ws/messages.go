// messages.go
package ws

import (
	"fmt"

	"order-tracking-service/internal/model"
)

// Textos localizados de las notificaciones. Los frames crudos llevan el
// estado como dato; estos mensajes son para mostrar directamente al usuario.

var customerStatusMessages = map[model.OrderStatus]string{
	model.StatusPending:        "Tu pedido fue recibido y está pendiente de confirmación",
	model.StatusAccepted:       "El restaurante aceptó tu pedido",
	model.StatusPreparing:      "Tu pedido se está preparando",
	model.StatusReadyForPickup: "Tu pedido está listo, esperando al repartidor",
	model.StatusOnDelivery:     "Tu pedido está en camino",
	model.StatusDelivered:      "Tu pedido fue entregado. ¡Buen provecho!",
	model.StatusCancelled:      "Tu pedido fue cancelado",
}

func customerMessage(ev Event, ord *model.Order) string {
	if _, ok := ev.(NewOrder); ok {
		return fmt.Sprintf("Recibimos tu pedido #%d", ord.OrderID)
	}
	if msg, ok := customerStatusMessages[ord.Status]; ok {
		return msg
	}
	return fmt.Sprintf("El estado de tu pedido #%d cambió a %s", ord.OrderID, ord.Status)
}

func restaurantNewOrderMessage(ord *model.Order) string {
	return fmt.Sprintf("Nueva orden #%d recibida", ord.OrderID)
}

func restaurantStatusMessage(ord *model.Order) string {
	return fmt.Sprintf("La orden #%d pasó a estado %s", ord.OrderID, ord.Status)
}

func courierMessage(ord *model.Order) string {
	switch ord.Status {
	case model.StatusReadyForPickup:
		return fmt.Sprintf("La orden #%d está lista para retirar", ord.OrderID)
	case model.StatusCancelled:
		return fmt.Sprintf("La orden #%d fue cancelada", ord.OrderID)
	default:
		return fmt.Sprintf("La orden #%d asignada a vos pasó a estado %s", ord.OrderID, ord.Status)
	}
}
