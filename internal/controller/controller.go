package controller

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"order-tracking-service/internal/dto"
	"order-tracking-service/internal/model"
	"order-tracking-service/internal/repository"
	"order-tracking-service/internal/service"
	"order-tracking-service/internal/ws"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service     *service.OrderTrackingService
	Broadcaster *ws.Broadcaster
}

func NewOrderController(s *service.OrderTrackingService, b *ws.Broadcaster) *OrderController {
	return &OrderController{Service: s, Broadcaster: b}
}

// POST /status/init — No requiere token
// Camino alternativo al consumer de Rabbit (pruebas, o cola caída).
func (ctl *OrderController) InitOrder(c *gin.Context) {
	var req dto.InitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ord, err := ctl.Service.InitOrder(c.Request.Context(), req.OrderID, req.UserID, req.RestaurantID)
	if err != nil {
		if errors.Is(err, service.ErrOrderAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctl.Broadcaster.Publish(c.Request.Context(), ws.NewOrder{OrderID: ord.OrderID, RestaurantID: ord.RestaurantID})
	c.JSON(http.StatusCreated, toResponse(ord))
}

// PATCH /orders/:orderId/status — requiere token
// El que llama ya viene autenticado por el API layer; acá solo se valida la
// transición y se dispara el broadcast.
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ord, err := ctl.Service.UpdateStatus(c.Request.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, service.ErrFinalState), errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	delivered := ctl.Broadcaster.Publish(c.Request.Context(), ws.StatusChanged{OrderID: ord.OrderID, NewStatus: ord.Status})
	c.JSON(http.StatusOK, gin.H{"message": "status updated", "delivered": delivered})
}

// PATCH /orders/:orderId/courier — requiere token
func (ctl *OrderController) AssignCourier(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req dto.AssignCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ord, err := ctl.Service.AssignCourier(c.Request.Context(), orderID, req.CourierID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResponse(ord))
}

// GET /orders/mine - user (middleware debe poner userID)
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	userID := c.GetInt64("userID")
	orders, err := ctl.Service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/orders - admin only (middleware AdminOnly)
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Service.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/orders/state/:state - admin only
func (ctl *OrderController) GetAllOrdersByState(c *gin.Context) {
	state := model.OrderStatus(c.Param("state"))
	orders, err := ctl.Service.GetByStatus(c.Request.Context(), state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId/latest - dueño o admin
func (ctl *OrderController) GetLatestStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	actorID := c.GetInt64("userID")
	perms := c.GetStringSlice("userPermissions")
	isAdmin := slices.Contains(perms, "admin")

	ord, err := ctl.Service.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	if !isAdmin && ord.UserID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return
	}

	c.JSON(http.StatusOK, toResponse(ord))
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

func toResponse(o *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		OrderID:      o.OrderID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		CourierID:    o.CourierID,
		Status:       o.Status,
		UpdatedAt:    o.UpdatedAt,
	}
}
