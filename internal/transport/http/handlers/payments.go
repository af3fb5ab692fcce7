package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/transport/http/middleware"
	"github.com/msubchak/online-cinema/internal/usecase"
)

// PaymentHandler exposes checkout, payment history, and the gateway webhook.
type PaymentHandler struct {
	payments *usecase.PaymentService
	gateway  port.PaymentGateway
	logger   *zap.Logger
}

func NewPaymentHandler(payments *usecase.PaymentService, gateway port.PaymentGateway, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, gateway: gateway, logger: log}
}

// PaymentListResponse is one page of payments.
type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	PageMeta
}

// CheckoutRequest names the pending order to charge.
type CheckoutRequest struct {
	OrderID int64 `json:"order_id" binding:"required"`
}

// Checkout handles POST /payments charging a pending order.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "order_id is required"))
		return
	}

	result, err := h.payments.Checkout(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "Order not found."},
			{Err: usecase.ErrOrderAlreadyPaid, Status: http.StatusBadRequest, Message: "Order is already paid."},
			{Err: usecase.ErrOrderAlreadyCanceled, Status: http.StatusBadRequest, Message: "Order is canceled and cannot be paid."},
			{Err: port.ErrGatewayNotConfigured, Status: http.StatusServiceUnavailable, Message: "Payments are temporarily unavailable."},
			{Err: port.ErrInvalidPaymentMethod, Status: http.StatusBadRequest, Message: "The payment was rejected by the provider."},
			{Err: port.ErrGatewayUnavailable, Status: http.StatusBadGateway, Message: "The payment provider is unavailable. Try again later."},
		}, http.StatusInternalServerError, "Could not process payment.")
		return
	}

	c.JSON(http.StatusCreated, CheckoutResponse{
		Payment:      toPaymentResponse(result.Payment),
		ClientSecret: result.ClientSecret,
	})
}

// ListOwn handles GET /payments for the calling user.
func (h *PaymentHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	payments, err := h.payments.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Could not list payments."))
		return
	}
	if len(payments) == 0 {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "No payments found."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": toPaymentResponses(payments)})
}

func parsePaymentFilter(c *gin.Context) (port.PaymentFilter, bool) {
	var filter port.PaymentFilter

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id must be a positive integer"))
			return filter, false
		}
		filter.UserID = &id
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.PaymentStatus(raw)
		switch status {
		case domain.PaymentSuccessful, domain.PaymentCanceled, domain.PaymentRefunded:
			filter.Status = &status
		default:
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status must be one of: successful, canceled, refunded"))
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

// ListAll handles GET /payments/all with admin filters and pagination.
func (h *PaymentHandler) ListAll(c *gin.Context) {
	page, perPage, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	filter, ok := parsePaymentFilter(c)
	if !ok {
		return
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	result, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Could not list payments."))
		return
	}
	if result.TotalItems == 0 {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "No payments found."))
		return
	}

	c.JSON(http.StatusOK, PaymentListResponse{
		Payments: toPaymentResponses(result.Payments),
		PageMeta: newPageMeta(c, page, perPage, result.TotalItems),
	})
}

// Webhook handles POST /payments/webhook. The body is verified against the
// gateway signature before any state changes.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "could not read webhook payload"))
		return
	}

	event, err := h.gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("Webhook verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid webhook signature"))
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), event); err != nil {
		h.logger.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not process webhook"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "ok"})
}
