// registry.go
package ws

import (
	"log"
	"sync"

	"order-tracking-service/internal/model"

	"github.com/google/uuid"
)

// Conn abstrae el socket subyacente para que registry, monitor, broadcaster
// y dispatcher se puedan testear sin red. La implementación real (gorilla)
// vive en handler.go.
type Conn interface {
	WriteJSON(v any) error
	Ping() error
	Close() error
}

// client es una conexión viva con sus atributos de identidad. Todos los
// campos mutables se leen y escriben bajo el mutex del Registry.
type client struct {
	id   uuid.UUID
	sock Conn

	userID            *int64
	role              model.Role // "" hasta identify
	subscribedOrderID *int64
	restaurantID      *int64
	courierID         *int64
	alive             bool
}

// ClientInfo es la copia inmutable que el registro entrega hacia afuera.
type ClientInfo struct {
	ID                uuid.UUID
	UserID            *int64
	Role              model.Role
	SubscribedOrderID *int64
	RestaurantID      *int64
	CourierID         *int64
}

// Registry es el único recurso mutable compartido del núcleo: lo tocan todas
// las goroutines de conexión y el monitor de liveness. Es una instancia
// inyectada, no un global de paquete.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[uuid.UUID]*client)}
}

// Register da de alta una conexión anónima y devuelve su handle.
func (r *Registry) Register(sock Conn) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.clients[id] = &client{id: id, sock: sock, alive: true}
	r.mu.Unlock()
	return id
}

// Identify adjunta la identidad a la conexión. Sobrescribe TODOS los campos
// de identidad: un segundo identify no hereda restaurantId ni courierId del
// anterior. Si el handle ya no existe (conexión cerrada) se loguea y listo.
func (r *Registry) Identify(id uuid.UUID, userID int64, role model.Role, restaurantID *int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		log.Println("[Registry] identify sobre conexión inexistente:", id)
		return
	}

	c.userID = &userID
	c.role = role
	c.restaurantID = nil
	c.courierID = nil
	switch role {
	case model.RoleRestaurant:
		c.restaurantID = restaurantID
	case model.RoleDelivery:
		// el courier se identifica con su propio userId
		cid := userID
		c.courierID = &cid
	}
}

// Subscribe fija la orden seguida por la conexión, reemplazando cualquier
// suscripción anterior (una sola orden activa por conexión).
func (r *Registry) Subscribe(id uuid.UUID, orderID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		log.Println("[Registry] subscribe sobre conexión inexistente:", id)
		return false
	}
	c.subscribedOrderID = &orderID
	return true
}

// Unregister elimina la conexión. Idempotente: borrar dos veces no falla ni
// afecta a las demás conexiones.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

// MarkAlive rearma el flag de liveness; lo dispara cada pong o ping recibido.
func (r *Registry) MarkAlive(id uuid.UUID) {
	r.mu.Lock()
	if c, ok := r.clients[id]; ok {
		c.alive = true
	}
	r.mu.Unlock()
}

// Get devuelve la vista de la conexión, si existe.
func (r *Registry) Get(id uuid.UUID) (ClientInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return ClientInfo{}, false
	}
	return c.info(), true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// ForEach entrega a cada conexión viva que cumpla el predicado. El snapshot
// se toma bajo lock y la entrega ocurre fuera, así un socket lento o un
// register/unregister concurrente no bloquean la iteración. Un error de
// escritura en un socket se loguea y NO aborta el resto del fan-out.
// Devuelve la cantidad de entregas exitosas.
func (r *Registry) ForEach(pred func(ClientInfo) bool, deliver func(id uuid.UUID, sock Conn) error) int {
	type target struct {
		id   uuid.UUID
		sock Conn
	}

	r.mu.RLock()
	var targets []target
	for _, c := range r.clients {
		if pred(c.info()) {
			targets = append(targets, target{id: c.id, sock: c.sock})
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, t := range targets {
		if err := deliver(t.id, t.sock); err != nil {
			log.Println("[Registry] error entregando a", t.id, ":", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (c *client) info() ClientInfo {
	return ClientInfo{
		ID:                c.id,
		UserID:            c.userID,
		Role:              c.role,
		SubscribedOrderID: c.subscribedOrderID,
		RestaurantID:      c.restaurantID,
		CourierID:         c.courierID,
	}
}
