package service

import (
	"context"
	"testing"
	"time"

	"order-tracking-service/internal/model"
	"order-tracking-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo implementa OrderRepository en memoria.
type fakeRepo struct {
	orders map[int64]*model.Order
}

func newFakeRepo(orders ...*model.Order) *fakeRepo {
	r := &fakeRepo{orders: make(map[int64]*model.Order)}
	for _, o := range orders {
		r.orders[o.OrderID] = o
	}
	return r
}

func (r *fakeRepo) Save(_ context.Context, o *model.Order) error {
	cp := *o
	r.orders[o.OrderID] = &cp
	return nil
}

func (r *fakeRepo) FindByOrderID(_ context.Context, orderID int64) (*model.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) UpdateCourierLocation(_ context.Context, orderID int64, lat, lng float64) (*model.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.CourierLat, o.CourierLng = &lat, &lng
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) AssignCourier(_ context.Context, orderID, courierID int64) (*model.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.CourierID = &courierID
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) FindAll(_ context.Context) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) FindByStatus(_ context.Context, status model.OrderStatus) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range r.orders {
		if o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindByUserID(_ context.Context, userID int64) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func orderIn(status model.OrderStatus) *model.Order {
	return &model.Order{OrderID: 42, UserID: 5, RestaurantID: 9, Status: status}
}

func TestInitOrderCreatesPending(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo())

	ord, err := svc.InitOrder(context.Background(), 42, 5, 9)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, ord.Status)
	assert.Equal(t, int64(5), ord.UserID)
	assert.Equal(t, int64(9), ord.RestaurantID)
}

func TestInitOrderRejectsDuplicate(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo(orderIn(model.StatusPending)))

	_, err := svc.InitOrder(context.Background(), 42, 5, 9)
	assert.ErrorIs(t, err, ErrOrderAlreadyExists)
}

// La cadena completa de avance, de a un paso por vez.
func TestUpdateStatusWalksForwardChain(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo(orderIn(model.StatusPending)))

	for _, next := range model.ForwardChain[1:] {
		ord, err := svc.UpdateStatus(context.Background(), 42, next)
		require.NoError(t, err, "transición hacia %s", next)
		assert.Equal(t, next, ord.Status)
	}
}

func TestUpdateStatusRejectsForwardJumps(t *testing.T) {
	cases := []struct {
		from, to model.OrderStatus
	}{
		{model.StatusPending, model.StatusPreparing},
		{model.StatusPending, model.StatusOnDelivery},
		{model.StatusAccepted, model.StatusDelivered},
		{model.StatusPreparing, model.StatusOnDelivery},
	}
	for _, tc := range cases {
		svc := NewOrderTrackingService(newFakeRepo(orderIn(tc.from)))
		_, err := svc.UpdateStatus(context.Background(), 42, tc.to)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s → %s debería rechazarse", tc.from, tc.to)
	}
}

func TestUpdateStatusRejectsBackwardAndSame(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo(orderIn(model.StatusPreparing)))

	_, err := svc.UpdateStatus(context.Background(), 42, model.StatusAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(context.Background(), 42, model.StatusPreparing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo(orderIn(model.StatusPending)))

	_, err := svc.UpdateStatus(context.Background(), 42, model.OrderStatus("en_la_luna"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelFromAnyNonTerminalState(t *testing.T) {
	for _, from := range model.ForwardChain[:len(model.ForwardChain)-1] {
		svc := NewOrderTrackingService(newFakeRepo(orderIn(from)))
		ord, err := svc.UpdateStatus(context.Background(), 42, model.StatusCancelled)
		require.NoError(t, err, "cancelar desde %s", from)
		assert.Equal(t, model.StatusCancelled, ord.Status)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	for _, terminal := range []model.OrderStatus{model.StatusDelivered, model.StatusCancelled} {
		svc := NewOrderTrackingService(newFakeRepo(orderIn(terminal)))

		_, err := svc.UpdateStatus(context.Background(), 42, model.StatusAccepted)
		assert.ErrorIs(t, err, ErrFinalState)

		_, err = svc.UpdateStatus(context.Background(), 42, model.StatusCancelled)
		assert.ErrorIs(t, err, ErrFinalState, "cancelado dos veces no es válido")
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo())

	_, err := svc.UpdateStatus(context.Background(), 42, model.StatusAccepted)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateCourierLocation(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo(orderIn(model.StatusOnDelivery)))

	ord, err := svc.UpdateCourierLocation(context.Background(), 42, 33.51, 36.28)
	require.NoError(t, err)
	require.NotNil(t, ord.CourierLat)
	assert.Equal(t, 33.51, *ord.CourierLat)
	assert.Equal(t, 36.28, *ord.CourierLng)
}

func TestAssignCourier(t *testing.T) {
	svc := NewOrderTrackingService(newFakeRepo(orderIn(model.StatusReadyForPickup)))

	ord, err := svc.AssignCourier(context.Background(), 42, 7)
	require.NoError(t, err)
	require.NotNil(t, ord.CourierID)
	assert.Equal(t, int64(7), *ord.CourierID)
}
