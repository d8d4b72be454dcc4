// frames.go
package ws

import (
	"time"

	"order-tracking-service/internal/model"
)

// Unión cerrada de frames del canal persistente. El campo "type" discrimina;
// un type desconocido es un error de protocolo (se loguea y se ignora),
// nunca un crash del handler.
const (
	// entrantes
	FramePing                 = "ping"
	FrameIdentify             = "identify"
	FrameSubscribe            = "subscribe"
	FrameUpdateDriverLocation = "updateDriverLocation"

	// salientes
	FramePong                       = "pong"
	FrameIdentified                 = "identified"
	FrameSubscribed                 = "subscribed"
	FrameInitialState               = "initialState"
	FrameNewOrder                   = "new_order"
	FrameOrderStatusUpdate          = "order_status_update"
	FrameDriverLocationUpdate       = "driver_location_update"
	FrameOrderUpdateNotification    = "order_update_notification"
	FrameNewOrderNotification       = "new_order_notification"
	FrameDeliveryUpdateNotification = "delivery_update_notification"
)

// inboundEnvelope solo extrae el discriminante; el resto del frame se
// decodifica según el tipo.
type inboundEnvelope struct {
	Type string `json:"type"`
}

type identifyFrame struct {
	UserID       int64      `json:"userId"`
	Role         model.Role `json:"role"`
	RestaurantID *int64     `json:"restaurantId,omitempty"`
}

type subscribeFrame struct {
	OrderID int64 `json:"orderId"`
}

type driverLocationFrame struct {
	OrderID int64   `json:"orderId"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type pongFrame struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type identifiedFrame struct {
	Type      string     `json:"type"`
	UserID    int64      `json:"userId"`
	Role      model.Role `json:"role"`
	Timestamp time.Time  `json:"timestamp"`
}

type subscribedFrame struct {
	Type      string    `json:"type"`
	OrderID   int64     `json:"orderId"`
	Timestamp time.Time `json:"timestamp"`
}

// LatLng es la posición del repartidor dentro de initialState.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type initialStateData struct {
	Status         model.OrderStatus `json:"status"`
	DriverLocation *LatLng           `json:"driverLocation"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type initialStateFrame struct {
	Type string           `json:"type"`
	Data initialStateData `json:"data"`
}

type orderStatusUpdateFrame struct {
	Type      string            `json:"type"`
	OrderID   int64             `json:"orderId"`
	Status    model.OrderStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
}

type driverLocationUpdateFrame struct {
	Type      string    `json:"type"`
	OrderID   int64     `json:"orderId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type newOrderFrame struct {
	Type         string    `json:"type"`
	OrderID      int64     `json:"orderId"`
	RestaurantID int64     `json:"restaurantId"`
	Timestamp    time.Time `json:"timestamp"`
}

type orderUpdateNotificationFrame struct {
	Type      string            `json:"type"`
	OrderID   int64             `json:"orderId"`
	Status    model.OrderStatus `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
}

type newOrderNotificationFrame struct {
	Type      string    `json:"type"`
	OrderID   int64     `json:"orderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type deliveryUpdateNotificationFrame struct {
	Type      string            `json:"type"`
	OrderID   int64             `json:"orderId"`
	Status    model.OrderStatus `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
}
