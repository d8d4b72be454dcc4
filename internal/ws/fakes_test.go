package ws

import (
	"context"
	"errors"
	"sync"

	"order-tracking-service/internal/model"
	"order-tracking-service/internal/repository"
)

var errBroken = errors.New("socket roto")

// fakeConn graba los frames escritos para poder afirmar sobre ellos sin red.
type fakeConn struct {
	mu       sync.Mutex
	frames   []any
	writeErr error
	pingErr  error
	closed   bool
	onWrite  func(v any) // opcional, para registrar orden global entre sockets
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.frames = append(f.frames, v)
	if f.onWrite != nil {
		f.onWrite(v)
	}
	return nil
}

func (f *fakeConn) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) Frames() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.frames))
	copy(out, f.frames)
	return out
}

func (f *fakeConn) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// frameTypes devuelve los discriminantes de los frames grabados, en orden.
func (f *fakeConn) frameTypes() []string {
	var out []string
	for _, fr := range f.Frames() {
		switch v := fr.(type) {
		case pongFrame:
			out = append(out, v.Type)
		case identifiedFrame:
			out = append(out, v.Type)
		case subscribedFrame:
			out = append(out, v.Type)
		case initialStateFrame:
			out = append(out, v.Type)
		case orderStatusUpdateFrame:
			out = append(out, v.Type)
		case driverLocationUpdateFrame:
			out = append(out, v.Type)
		case newOrderFrame:
			out = append(out, v.Type)
		case orderUpdateNotificationFrame:
			out = append(out, v.Type)
		case newOrderNotificationFrame:
			out = append(out, v.Type)
		case deliveryUpdateNotificationFrame:
			out = append(out, v.Type)
		default:
			out = append(out, "???")
		}
	}
	return out
}

// fakeOrderStore implementa OrderLookup y OrderService en memoria.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
}

func newFakeOrderStore(orders ...*model.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[int64]*model.Order)}
	for _, o := range orders {
		s.orders[o.OrderID] = o
	}
	return s
}

func (s *fakeOrderStore) GetByOrderID(_ context.Context, orderID int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) UpdateCourierLocation(_ context.Context, orderID int64, lat, lng float64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.CourierLat = &lat
	o.CourierLng = &lng
	cp := *o
	return &cp, nil
}

func ptr[T any](v T) *T { return &v }
