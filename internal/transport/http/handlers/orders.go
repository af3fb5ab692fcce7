package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/transport/http/middleware"
	"github.com/msubchak/online-cinema/internal/usecase"
)

// OrderHandler exposes the order lifecycle endpoints.
type OrderHandler struct {
	orders *usecase.OrderService
}

func NewOrderHandler(orders *usecase.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// OrderListResponse is one page of orders.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	PageMeta
}

// Create handles POST /orders turning the caller's cart into a pending order.
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	order, err := h.orders.Create(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmptyCart, Status: http.StatusNotFound, Message: "Your cart is empty or not found."},
			{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: "A movie in your cart is no longer available."},
			{Err: usecase.ErrMovieAlreadyPurchased, Status: http.StatusBadRequest, Message: "A movie in your cart has already been purchased."},
			{Err: usecase.ErrMovieAlreadyOrdered, Status: http.StatusBadRequest, Message: "A movie in your cart is already in a pending order."},
		}, http.StatusInternalServerError, "Could not create order.")
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ListOwn handles GET /orders for the calling user.
func (h *OrderHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	orders, err := h.orders.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Could not list orders."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
}

func parseOrderFilter(c *gin.Context) (port.OrderFilter, bool) {
	var filter port.OrderFilter

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id must be a positive integer"))
			return filter, false
		}
		filter.UserID = &id
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.OrderStatus(raw)
		switch status {
		case domain.OrderPending, domain.OrderPaid, domain.OrderCanceled:
			filter.Status = &status
		default:
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status must be one of: pending, paid, canceled"))
			return filter, false
		}
	}

	for param, target := range map[string]**time.Time{
		"created_from": &filter.CreatedFrom,
		"created_to":   &filter.CreatedTo,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, param+" must be a date in YYYY-MM-DD format"))
			return filter, false
		}
		if param == "created_to" {
			ts = ts.Add(24*time.Hour - time.Nanosecond)
		}
		*target = &ts
	}

	return filter, true
}

// ListAll handles GET /orders/all with admin filters and pagination.
func (h *OrderHandler) ListAll(c *gin.Context) {
	page, perPage, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	filter, ok := parseOrderFilter(c)
	if !ok {
		return
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	result, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Could not list orders."))
		return
	}
	if result.TotalItems == 0 {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "No orders found."))
		return
	}

	c.JSON(http.StatusOK, OrderListResponse{
		Orders:   toOrderResponses(result.Orders),
		PageMeta: newPageMeta(c, page, perPage, result.TotalItems),
	})
}

// Get handles GET /orders/:id. Staff callers can read any order.
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	group, _ := middleware.GetUserGroup(c)
	staff := group == domain.GroupModerator || group == domain.GroupAdmin

	order, err := h.orders.Get(c.Request.Context(), userID, orderID, staff)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "Order not found."},
		}, http.StatusInternalServerError, "Could not load order.")
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Pay handles POST /orders/:id/pay for the order's owner.
func (h *OrderHandler) Pay(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orders.Pay(c.Request.Context(), userID, orderID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "Order not found."},
			{Err: usecase.ErrOrderAlreadyPaid, Status: http.StatusBadRequest, Message: "Order is already paid."},
			{Err: usecase.ErrOrderAlreadyCanceled, Status: http.StatusBadRequest, Message: "Order is canceled and cannot be paid."},
		}, http.StatusInternalServerError, "Could not pay order.")
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Cancel handles POST /orders/:id/cancel for the order's owner.
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), userID, orderID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "Order not found."},
			{Err: usecase.ErrPaidOrderCancel, Status: http.StatusBadRequest, Message: "Paid orders cannot be canceled directly. Request a refund instead."},
			{Err: usecase.ErrOrderAlreadyCanceled, Status: http.StatusBadRequest, Message: "Order is already canceled."},
		}, http.StatusInternalServerError, "Could not cancel order.")
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}
