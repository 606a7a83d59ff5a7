package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abnahid/zenvira-backend/internal/middleware"
	"github.com/abnahid/zenvira-backend/internal/models"
)

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	SaleEnabled bool    `json:"saleEnabled"`
	SalePrice   float64 `json:"salePrice"`
	Stock       int     `json:"stock" binding:"gte=0"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	SaleEnabled *bool    `json:"saleEnabled"`
	SalePrice   *float64 `json:"salePrice"`
	Stock       *int     `json:"stock"`
	Status      *string  `json:"status"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
}

/* =========================
   SELLER CRUD
========================= */

// SellerListProducts handles GET /seller/products.
func (h *ProductHandler) SellerListProducts(c *gin.Context) {
	const route = "GET /seller/products"
	defer handlePanic(c, h.logger, route)

	sellerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	cursor, err := h.db.Collection("products").Find(c.Request.Context(), bson.M{"sellerId": sellerID})
	if err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}
	defer cursor.Close(c.Request.Context())

	var products []models.Product
	if err := cursor.All(c.Request.Context(), &products); err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}
	for i := range products {
		products[i].Normalize()
	}

	c.JSON(http.StatusOK, products)
}

// SellerCreateProduct handles POST /seller/products.
func (h *ProductHandler) SellerCreateProduct(c *gin.Context) {
	const route = "POST /seller/products"
	defer handlePanic(c, h.logger, route)

	sellerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid request body")
		return
	}

	if err := models.ValidateSaleFields(req.Price, req.SaleEnabled, req.SalePrice, req.SalePrice > 0); err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, err.Error())
		return
	}

	now := time.Now().UTC()
	product := models.Product{
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.TrimSpace(req.Slug),
		Price:       req.Price,
		SaleEnabled: req.SaleEnabled,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		Status:      models.ProductActive,
		Category:    strings.TrimSpace(req.Category),
		SellerID:    sellerID,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := h.db.Collection("products").InsertOne(c.Request.Context(), product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, h.logger, http.StatusConflict, route, "slug already in use")
			return
		}
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	product.Normalize()

	c.JSON(http.StatusCreated, product)
}

// SellerUpdateProduct handles PUT /seller/products/:id. Catalog edits here
// may change price, sale fields, stock and status; existing orders keep
// their frozen item prices regardless.
func (h *ProductHandler) SellerUpdateProduct(c *gin.Context) {
	const route = "PUT /seller/products/:id"
	defer handlePanic(c, h.logger, route)

	sellerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid id")
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid request body")
		return
	}

	var existing models.Product
	err = h.db.Collection("products").
		FindOne(c.Request.Context(), bson.M{"_id": productID, "sellerId": sellerID}).
		Decode(&existing)
	if err == mongo.ErrNoDocuments {
		respondWithError(c, h.logger, http.StatusNotFound, route, "product not found")
		return
	}
	if err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}

	sale, err := models.ResolveSaleUpdate(existing.Price, existing.SaleEnabled, existing.SalePrice, models.SaleUpdateInput{
		Price:       req.Price,
		SaleEnabled: req.SaleEnabled,
		SalePrice:   req.SalePrice,
	})
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, err.Error())
		return
	}

	update := bson.M{
		"price":     sale.Price,
		"updatedAt": time.Now().UTC(),
	}
	if sale.SetSaleEnabled {
		update["saleEnabled"] = sale.SaleEnabled
	}
	if sale.SetSalePrice {
		update["salePrice"] = sale.SalePrice
	}
	if req.Name != nil {
		update["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			respondWithError(c, h.logger, http.StatusBadRequest, route, "stock must not be negative")
			return
		}
		update["stock"] = *req.Stock
	}
	if req.Status != nil {
		status := models.ProductStatus(*req.Status)
		if !status.Valid() {
			respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid status")
			return
		}
		update["status"] = status
	}
	if req.Category != nil {
		update["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}

	_, err = h.db.Collection("products").UpdateOne(
		c.Request.Context(),
		bson.M{"_id": productID, "sellerId": sellerID},
		bson.M{"$set": update},
	)
	if err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}

	h.invalidateCache(c, existing.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "product updated"})
}

// SellerDeleteProduct handles DELETE /seller/products/:id.
func (h *ProductHandler) SellerDeleteProduct(c *gin.Context) {
	const route = "DELETE /seller/products/:id"
	defer handlePanic(c, h.logger, route)

	sellerID, ok := middleware.CallerID(c)
	if !ok {
		respondWithError(c, h.logger, http.StatusUnauthorized, route, "unauthorized")
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid id")
		return
	}

	var existing models.Product
	err = h.db.Collection("products").
		FindOne(c.Request.Context(), bson.M{"_id": productID, "sellerId": sellerID}).
		Decode(&existing)
	if err == mongo.ErrNoDocuments {
		respondWithError(c, h.logger, http.StatusNotFound, route, "product not found")
		return
	}
	if err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}

	if _, err := h.db.Collection("products").DeleteOne(c.Request.Context(), bson.M{"_id": productID, "sellerId": sellerID}); err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}

	h.invalidateCache(c, existing.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}
