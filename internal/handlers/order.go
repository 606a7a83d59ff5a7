package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/abnahid/zenvira-backend/internal/middleware"
	"github.com/abnahid/zenvira-backend/internal/models"
	"github.com/abnahid/zenvira-backend/internal/orders"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	MedicineID string `json:"medicineId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	ShippingName  string                   `json:"shippingName" binding:"required"`
	ShippingPhone string                   `json:"shippingPhone" binding:"required"`
	ShippingEmail string                   `json:"shippingEmail" binding:"required,email"`
	Address       string                   `json:"address" binding:"required"`
	PaymentMethod string                   `json:"paymentMethod" binding:"required"`
	Items         []createOrderItemRequest `json:"items" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

// OrderHandler maps the HTTP surface onto the order lifecycle service.
// Authorization (whose order is this) lives here; the service performs no
// identity checks.
type OrderHandler struct {
	svc    *orders.Service
	logger *zap.Logger
}

func NewOrderHandler(svc *orders.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

/* =========================
   CREATE ORDER
========================= */

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	const route = "POST /orders"
	defer handlePanic(c, h.logger, route)

	customerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid request body")
		return
	}

	items := make([]orders.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.MedicineID)
		if err != nil {
			respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid medicineId")
			return
		}
		items = append(items, orders.LineItem{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := h.svc.Create(c.Request.Context(), orders.CreateInput{
		CustomerID:    customerID,
		ShippingName:  req.ShippingName,
		ShippingPhone: req.ShippingPhone,
		ShippingEmail: req.ShippingEmail,
		Address:       req.Address,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Items:         items,
	})
	if err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	middleware.RecordOrderPlaced()
	c.JSON(http.StatusCreated, order)
}

/* =========================
   CUSTOMER VIEW
========================= */

// ListMine handles GET /orders: the requester's own orders.
func (h *OrderHandler) ListMine(c *gin.Context) {
	const route = "GET /orders"
	defer handlePanic(c, h.logger, route)

	customerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	filter, err := parseListFilter(c)
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, err.Error())
		return
	}

	found, total, err := h.svc.ListCustomerOrders(c.Request.Context(), customerID, filter)
	if err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": found, "total": total})
}

// CancelMine handles PATCH /orders/:id/status. A customer may only set
// their own order to cancelled; everything else is the admin's surface.
func (h *OrderHandler) CancelMine(c *gin.Context) {
	const route = "PATCH /orders/:id/status"
	defer handlePanic(c, h.logger, route)

	customerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid id")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid request body")
		return
	}
	if models.OrderStatus(req.Status) != models.OrderCancelled {
		respondWithError(c, h.logger, http.StatusForbidden, route, "customers may only cancel")
		return
	}

	existing, err := h.svc.Get(c.Request.Context(), orderID)
	if err != nil {
		h.respondOrderError(c, route, err)
		return
	}
	if existing.CustomerID != customerID {
		respondWithError(c, h.logger, http.StatusForbidden, route, "forbidden")
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), orderID, models.OrderCancelled)
	if err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	middleware.RecordOrderCancelled()
	c.JSON(http.StatusOK, order)
}

/* =========================
   ERROR MAPPING
========================= */

func (h *OrderHandler) respondOrderError(c *gin.Context, route string, err error) {
	var vErr orders.ValidationError
	if errors.As(err, &vErr) {
		respondWithError(c, h.logger, http.StatusBadRequest, route, vErr.Message)
		return
	}

	var notFoundErr orders.ProductNotFoundError
	if errors.As(err, &notFoundErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "product not found",
			"productId": notFoundErr.ProductID.Hex(),
		})
		return
	}

	var inactiveErr orders.ProductInactiveError
	if errors.As(err, &inactiveErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "product not available",
			"productId": inactiveErr.ProductID.Hex(),
		})
		return
	}

	var stockErr orders.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"productId": stockErr.ProductID.Hex(),
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	var orderNotFound orders.OrderNotFoundError
	if errors.As(err, &orderNotFound) {
		respondWithError(c, h.logger, http.StatusNotFound, route, "order not found")
		return
	}

	var conflictErr orders.ConflictError
	if errors.As(err, &conflictErr) {
		respondWithError(c, h.logger, http.StatusConflict, route, "operation conflicted, please retry")
		return
	}

	h.logger.Error("order operation failed", zap.String("route", route), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}
