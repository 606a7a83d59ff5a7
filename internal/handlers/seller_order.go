package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abnahid/zenvira-backend/internal/middleware"
)

// SellerList handles GET /seller/orders: every order containing at least
// one of the seller's items, reduced to those items with the seller's
// subtotal and item count derived at read time.
func (h *OrderHandler) SellerList(c *gin.Context) {
	const route = "GET /seller/orders"
	defer handlePanic(c, h.logger, route)

	sellerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	filter, err := parseListFilter(c)
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, err.Error())
		return
	}

	views, total, err := h.svc.ListSellerOrders(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.respondOrderError(c, route, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": views, "total": total})
}
