package ws

import (
	"errors"
	"sync"
	"testing"

	"order-tracking-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	id := r.Register(&fakeConn{})

	info, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, info.ID)
	assert.Nil(t, info.UserID)
	assert.Equal(t, model.Role(""), info.Role)
	assert.Nil(t, info.SubscribedOrderID)
	assert.Equal(t, 1, r.Count())
}

func TestIdentifyOverwritesIdentity(t *testing.T) {
	r := NewRegistry()
	id := r.Register(&fakeConn{})

	// primero como restaurante
	r.Identify(id, 10, model.RoleRestaurant, ptr(int64(99)))
	info, ok := r.Get(id)
	require.True(t, ok)
	require.NotNil(t, info.RestaurantID)
	assert.Equal(t, int64(99), *info.RestaurantID)
	assert.Nil(t, info.CourierID)

	// re-identify como repartidor: no debe sobrevivir el restaurantId viejo
	r.Identify(id, 7, model.RoleDelivery, nil)
	info, ok = r.Get(id)
	require.True(t, ok)
	assert.Nil(t, info.RestaurantID)
	require.NotNil(t, info.CourierID)
	assert.Equal(t, int64(7), *info.CourierID)
	require.NotNil(t, info.UserID)
	assert.Equal(t, int64(7), *info.UserID)
	assert.Equal(t, model.RoleDelivery, info.Role)
}

func TestIdentifyUnknownHandleIsSilent(t *testing.T) {
	r := NewRegistry()
	// no debe entrar en pánico ni crear nada
	r.Identify(uuid.New(), 1, model.RoleCustomer, nil)
	assert.Equal(t, 0, r.Count())
}

func TestSubscribeReplacesPrevious(t *testing.T) {
	r := NewRegistry()
	id := r.Register(&fakeConn{})

	require.True(t, r.Subscribe(id, 42))
	require.True(t, r.Subscribe(id, 43))

	info, ok := r.Get(id)
	require.True(t, ok)
	require.NotNil(t, info.SubscribedOrderID)
	assert.Equal(t, int64(43), *info.SubscribedOrderID)

	assert.False(t, r.Subscribe(uuid.New(), 1))
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a := r.Register(&fakeConn{})
	b := r.Register(&fakeConn{})

	r.Unregister(a)
	assert.NotPanics(t, func() { r.Unregister(a) })

	// la otra conexión no se ve afectada
	_, ok := r.Get(b)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Count())
}

func TestForEachIsolatesWriteFailures(t *testing.T) {
	r := NewRegistry()
	good1 := &fakeConn{}
	bad := &fakeConn{writeErr: errors.New("socket roto")}
	good2 := &fakeConn{}
	r.Register(good1)
	r.Register(bad)
	r.Register(good2)

	delivered := r.ForEach(
		func(ClientInfo) bool { return true },
		func(_ uuid.UUID, sock Conn) error { return sock.WriteJSON(pongFrame{Type: FramePong}) },
	)

	// el socket roto no aborta el fan-out de los demás
	assert.Equal(t, 2, delivered)
	assert.Len(t, good1.Frames(), 1)
	assert.Len(t, good2.Frames(), 1)
	assert.Empty(t, bad.Frames())
}

func TestForEachFiltersByPredicate(t *testing.T) {
	r := NewRegistry()
	sub := &fakeConn{}
	other := &fakeConn{}
	id := r.Register(sub)
	r.Register(other)
	r.Subscribe(id, 42)

	delivered := r.ForEach(
		func(c ClientInfo) bool { return c.SubscribedOrderID != nil && *c.SubscribedOrderID == 42 },
		func(_ uuid.UUID, sock Conn) error { return sock.WriteJSON(pongFrame{Type: FramePong}) },
	)

	assert.Equal(t, 1, delivered)
	assert.Len(t, sub.Frames(), 1)
	assert.Empty(t, other.Frames())
}

// El registro se toca desde muchas goroutines de conexión más el monitor:
// register/identify/subscribe/forEach/unregister concurrentes no deben
// romperse entre sí.
func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			id := r.Register(&fakeConn{})
			r.Identify(id, n, model.RoleCustomer, nil)
			r.Subscribe(id, n%5)
			r.ForEach(
				func(ClientInfo) bool { return true },
				func(_ uuid.UUID, sock Conn) error { return sock.WriteJSON(pongFrame{Type: FramePong}) },
			)
			r.MarkAlive(id)
			r.Unregister(id)
		}(int64(i))
	}

	wg.Wait()
	assert.Equal(t, 0, r.Count())
}
