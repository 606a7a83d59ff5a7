package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/abnahid/zenvira-backend/internal/middleware"
	"github.com/abnahid/zenvira-backend/internal/models"
	"github.com/abnahid/zenvira-backend/internal/orders"
)

// AdminList handles GET /admin/api/orders: the unrestricted view,
// optionally filtered by customer or status.
func (h *OrderHandler) AdminList(c *gin.Context) {
	const route = "GET /admin/api/orders"
	defer handlePanic(c, h.logger, route)

	listFilter, err := parseListFilter(c)
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, err.Error())
		return
	}

	filter := orders.AdminFilter{ListFilter: listFilter}
	if raw := c.Query("customerId"); raw != "" {
		customerID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid customerId")
			return
		}
		filter.CustomerID = &customerID
	}

	found, total, err := h.svc.ListAllOrders(c.Request.Context(), filter)
	if err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": found, "total": total})
}

// AdminUpdateStatus handles PATCH /admin/api/orders/:id/status. Any of the
// five status values may be set; entering cancelled restores stock.
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	const route = "PATCH /admin/api/orders/:id/status"
	defer handlePanic(c, h.logger, route)

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

	order, err := h.svc.UpdateStatus(c.Request.Context(), orderID, models.OrderStatus(req.Status))
	if err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	if order.Status == models.OrderCancelled {
		middleware.RecordOrderCancelled()
	}
	c.JSON(http.StatusOK, order)
}

// AdminUpdatePaymentStatus handles PATCH /admin/api/orders/:id/payment-status.
func (h *OrderHandler) AdminUpdatePaymentStatus(c *gin.Context) {
	const route = "PATCH /admin/api/orders/:id/payment-status"
	defer handlePanic(c, h.logger, route)

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid id")
		return
	}

	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid request body")
		return
	}

	if err := h.svc.UpdatePaymentStatus(c.Request.Context(), orderID, models.PaymentStatus(req.PaymentStatus)); err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment status updated"})
}

// AdminDelete handles DELETE /admin/api/orders/:id. Stock is restored
// first unless the order was already cancelled.
func (h *OrderHandler) AdminDelete(c *gin.Context) {
	const route = "DELETE /admin/api/orders/:id"
	defer handlePanic(c, h.logger, route)

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid id")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), orderID); err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}
