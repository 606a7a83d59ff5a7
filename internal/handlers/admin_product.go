package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abnahid/zenvira-backend/internal/models"
)

type moderateProductRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminModerateProduct handles PATCH /admin/api/products/:id/status:
// platform-level activation and deactivation of any seller's product.
// Deactivation blocks new orders but leaves existing orders untouched.
func (h *ProductHandler) AdminModerateProduct(c *gin.Context) {
	const route = "PATCH /admin/api/products/:id/status"
	defer handlePanic(c, h.logger, route)

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid id")
		return
	}

	var req moderateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid request body")
		return
	}
	status := models.ProductStatus(req.Status)
	if !status.Valid() {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid status")
		return
	}

	var existing models.Product
	err = h.db.Collection("products").
		FindOneAndUpdate(
			c.Request.Context(),
			bson.M{"_id": productID},
			bson.M{"$set": bson.M{"status": status}},
		).
		Decode(&existing)
	if err == mongo.ErrNoDocuments {
		respondWithError(c, h.logger, http.StatusNotFound, route, "product not found")
		return
	}
	if err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}

	h.invalidateCache(c, existing.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "product status updated"})
}
