// dispatcher.go
package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"order-tracking-service/internal/model"

	"github.com/google/uuid"
)

// OrderService es lo que el dispatcher necesita del servicio de órdenes.
type OrderService interface {
	GetByOrderID(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateCourierLocation(ctx context.Context, orderID int64, lat, lng float64) (*model.Order, error)
}

// Dispatcher rutea cada frame entrante hacia registry, servicio y broadcaster.
// Ningún frame inválido tira abajo la conexión: JSON roto o type desconocido
// se loguean y se siguen leyendo frames.
type Dispatcher struct {
	registry    *Registry
	orders      OrderService
	broadcaster *Broadcaster
}

func NewDispatcher(r *Registry, orders OrderService, b *Broadcaster) *Dispatcher {
	return &Dispatcher{registry: r, orders: orders, broadcaster: b}
}

// Dispatch procesa un frame crudo de la conexión id.
func (d *Dispatcher) Dispatch(ctx context.Context, id uuid.UUID, sock Conn, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Println("[WS] frame con JSON inválido de", id, ":", err)
		return
	}

	switch env.Type {
	case FramePing:
		d.handlePing(id, sock)
	case FrameIdentify:
		d.handleIdentify(id, sock, raw)
	case FrameSubscribe:
		d.handleSubscribe(ctx, id, sock, raw)
	case FrameUpdateDriverLocation:
		d.handleDriverLocation(ctx, id, raw)
	default:
		log.Println("[WS] tipo de frame desconocido:", env.Type)
	}
}

func (d *Dispatcher) handlePing(id uuid.UUID, sock Conn) {
	d.registry.MarkAlive(id)
	d.reply(id, sock, pongFrame{Type: FramePong, Timestamp: time.Now().UTC()})
}

func (d *Dispatcher) handleIdentify(id uuid.UUID, sock Conn, raw []byte) {
	var f identifyFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		log.Println("[WS] identify malformado:", err)
		return
	}
	if !f.Role.IsValid() {
		log.Println("[WS] identify con rol desconocido:", f.Role)
		return
	}

	d.registry.Identify(id, f.UserID, f.Role, f.RestaurantID)
	d.reply(id, sock, identifiedFrame{
		Type:      FrameIdentified,
		UserID:    f.UserID,
		Role:      f.Role,
		Timestamp: time.Now().UTC(),
	})
}

func (d *Dispatcher) handleSubscribe(ctx context.Context, id uuid.UUID, sock Conn, raw []byte) {
	var f subscribeFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		log.Println("[WS] subscribe malformado:", err)
		return
	}

	if !d.registry.Subscribe(id, f.OrderID) {
		return
	}
	d.reply(id, sock, subscribedFrame{
		Type:      FrameSubscribed,
		OrderID:   f.OrderID,
		Timestamp: time.Now().UTC(),
	})

	// Bootstrap de consistencia: el suscriptor tardío recibe el estado
	// actual de la orden, haya habido eventos antes o no.
	ord, err := d.orders.GetByOrderID(ctx, f.OrderID)
	if err != nil {
		log.Println("[WS] initialState omitido, orden no encontrada:", f.OrderID)
		return
	}

	var loc *LatLng
	if ord.CourierLat != nil && ord.CourierLng != nil {
		loc = &LatLng{Lat: *ord.CourierLat, Lng: *ord.CourierLng}
	}
	d.reply(id, sock, initialStateFrame{
		Type: FrameInitialState,
		Data: initialStateData{
			Status:         ord.Status,
			DriverLocation: loc,
			UpdatedAt:      ord.UpdatedAt,
		},
	})
}

func (d *Dispatcher) handleDriverLocation(ctx context.Context, id uuid.UUID, raw []byte) {
	// Solo un repartidor identificado puede reportar posición. Un intento
	// no autorizado se descarta sin broadcast y sin respuesta al emisor.
	info, ok := d.registry.Get(id)
	if !ok || info.Role != model.RoleDelivery {
		log.Println("[WS] updateDriverLocation no autorizado desde", id)
		return
	}

	var f driverLocationFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		log.Println("[WS] updateDriverLocation malformado:", err)
		return
	}

	if _, err := d.orders.UpdateCourierLocation(ctx, f.OrderID, f.Lat, f.Lng); err != nil {
		log.Println("[WS] no se pudo guardar la posición de la orden", f.OrderID, ":", err)
		return
	}

	d.broadcaster.Publish(ctx, CourierLocationChanged{OrderID: f.OrderID, Lat: f.Lat, Lng: f.Lng})
}

func (d *Dispatcher) reply(id uuid.UUID, sock Conn, frame any) {
	if err := sock.WriteJSON(frame); err != nil {
		log.Println("[WS] error respondiendo a", id, ":", err)
	}
}
