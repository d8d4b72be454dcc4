package service

import (
	"context"
	"errors"
	"time"

	"order-tracking-service/internal/model"
)

// Interfaz que debe implementar repository
type OrderRepository interface {
	Save(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error)
	UpdateCourierLocation(ctx context.Context, orderID int64, lat, lng float64) (*model.Order, error)
	AssignCourier(ctx context.Context, orderID, courierID int64) (*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error)
	FindByUserID(ctx context.Context, userID int64) ([]*model.Order, error)
}

// Errores de negocio exportados (los usan el controller y el dispatcher)
var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrFinalState         = errors.New("no se puede cambiar el estado de una orden en estado final")
	ErrOrderAlreadyExists = errors.New("la orden ya fue inicializada previamente")
)

type OrderTrackingService struct {
	repo OrderRepository
}

func NewOrderTrackingService(r OrderRepository) *OrderTrackingService {
	return &OrderTrackingService{repo: r}
}

// InitOrder crea el registro de tracking de la orden en estado "pending".
// Se puede invocar desde el consumer Rabbit (primario) o vía API para pruebas.
func (s *OrderTrackingService) InitOrder(ctx context.Context, orderID, userID, restaurantID int64) (*model.Order, error) {

	// Si ya existe, no hacemos nada: el estado lo manejan las transiciones.
	existing, err := s.repo.FindByOrderID(ctx, orderID)
	if err == nil && existing != nil {
		return nil, ErrOrderAlreadyExists
	}

	order := &model.Order{
		OrderID:      orderID,
		UserID:       userID,
		RestaurantID: restaurantID,
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	return order, s.repo.Save(ctx, order)
}

// Getters
func (s *OrderTrackingService) GetByOrderID(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *OrderTrackingService) GetAll(ctx context.Context) ([]*model.Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *OrderTrackingService) GetByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	return s.repo.FindByStatus(ctx, status)
}

func (s *OrderTrackingService) GetByUserID(ctx context.Context, userID int64) ([]*model.Order, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// UpdateStatus valida la transición y la persiste, devolviendo el registro actualizado.
//
// Reglas:
//   - desde un estado final no se sale (ErrFinalState)
//   - "cancelled" es alcanzable desde cualquier estado no final
//   - hacia adelante solo se acepta el sucesor inmediato de la cadena;
//     los saltos (p. ej. pending → on_delivery) se rechazan con ErrInvalidTransition
func (s *OrderTrackingService) UpdateStatus(ctx context.Context, orderID int64, newStatus model.OrderStatus) (*model.Order, error) {
	ord, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := validateTransition(ord.Status, newStatus); err != nil {
		return nil, err
	}

	return s.repo.UpdateStatus(ctx, orderID, newStatus)
}

// UpdateCourierLocation persiste la posición del repartidor asignado.
// La autorización por rol (solo delivery) la hace el dispatcher; acá solo
// se valida que la orden exista.
func (s *OrderTrackingService) UpdateCourierLocation(ctx context.Context, orderID int64, lat, lng float64) (*model.Order, error) {
	return s.repo.UpdateCourierLocation(ctx, orderID, lat, lng)
}

// AssignCourier asocia un repartidor a la orden.
func (s *OrderTrackingService) AssignCourier(ctx context.Context, orderID, courierID int64) (*model.Order, error) {
	return s.repo.AssignCourier(ctx, orderID, courierID)
}

func validateTransition(current, requested model.OrderStatus) error {
	if current.IsTerminal() {
		return ErrFinalState
	}
	if !requested.IsValid() || requested == current {
		return ErrInvalidTransition
	}
	if requested == model.StatusCancelled {
		return nil
	}
	if current.Next() != requested {
		return ErrInvalidTransition
	}
	return nil
}
