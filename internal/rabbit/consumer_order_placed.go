package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"order-tracking-service/internal/service"
	"order-tracking-service/internal/ws"
)

type OrderPlacedConsumer struct {
	Service     *service.OrderTrackingService
	Broadcaster *ws.Broadcaster
}

func NewOrderPlacedConsumer(s *service.OrderTrackingService, b *ws.Broadcaster) *OrderPlacedConsumer {
	return &OrderPlacedConsumer{Service: s, Broadcaster: b}
}

// Envolvente que publica el servicio de checkout en el exchange order_placed.
type OrderPlacedMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID      int64 `json:"orderId"`
		UserID       int64 `json:"userId"`
		RestaurantID int64 `json:"restaurantId"`
	} `json:"message"`
}

func (c *OrderPlacedConsumer) Handle(msg []byte) error {

	log.Println("[Rabbit] Evento recibido: order_placed")

	var event OrderPlacedMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Println("Error parseando mensaje:", err)
		return err
	}

	ord, err := c.Service.InitOrder(
		context.Background(),
		event.Message.OrderID,
		event.Message.UserID,
		event.Message.RestaurantID,
	)

	if errors.Is(err, service.ErrOrderAlreadyExists) {
		// reentrega de la cola; ya está inicializada, no se re-broadcastea
		log.Println("[Rabbit] Orden ya inicializada:", event.Message.OrderID)
		return nil
	}
	if err != nil {
		log.Println("❌ Error creando estado inicial:", err)
		return err
	}

	// avisar en vivo al restaurante (y a quien ya esté suscripto)
	c.Broadcaster.Publish(context.Background(), ws.NewOrder{
		OrderID:      ord.OrderID,
		RestaurantID: ord.RestaurantID,
	})

	log.Println("✔ Estado inicial procesado para orden:", event.Message.OrderID)
	return nil
}
