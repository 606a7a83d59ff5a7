package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/abnahid/zenvira-backend/internal/cache"
	"github.com/abnahid/zenvira-backend/internal/models"
)

// ProductHandler serves the public catalog and the seller's product CRUD.
// The order engine only reads these rows; stock mutation from orders goes
// through the inventory ledger, never through this handler.
type ProductHandler struct {
	db       *mongo.Database
	rdb      *redis.Client // nil disables caching
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewProductHandler(db *mongo.Database, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{db: db, rdb: rdb, cacheTTL: cacheTTL, logger: logger}
}

/* =========================
   PUBLIC CATALOG
========================= */

// List handles GET /products. Pagination is optional: without page+limit
// the full active catalog is returned.
func (h *ProductHandler) List(c *gin.Context) {
	const route = "GET /products"
	defer handlePanic(c, h.logger, route)

	if err := ensureDBConnection(c.Request.Context(), h.db); err != nil {
		respondWithError(c, h.logger, http.StatusServiceUnavailable, route, "database unavailable")
		return
	}

	filter := bson.M{"status": models.ProductActive}

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter["category"] = category
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	pageStr := c.Query("page")
	limitStr := c.Query("limit")
	if pageStr != "" || limitStr != "" {
		page, limit, err := parsePaginationParams(pageStr, limitStr)
		if err != nil {
			respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid pagination")
			return
		}
		findOptions.SetSkip((page - 1) * limit).SetLimit(limit)
	}

	cursor, err := h.db.Collection("products").Find(c.Request.Context(), filter, findOptions)
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

// GetBySlug handles GET /products/:slug, serving from Redis when the
// entry is warm. Stock counts in the cached copy may lag behind the
// catalog by up to the TTL; checkout never reads the cache.
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	const route = "GET /products/:slug"
	defer handlePanic(c, h.logger, route)

	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondWithError(c, h.logger, http.StatusBadRequest, route, "invalid slug")
		return
	}

	if h.rdb != nil {
		if data, err := cache.GetProduct(c.Request.Context(), h.rdb, slug); err == nil {
			c.Data(http.StatusOK, "application/json", data)
			return
		}
	}

	var product models.Product
	err := h.db.Collection("products").
		FindOne(c.Request.Context(), bson.M{"slug": slug, "status": models.ProductActive}).
		Decode(&product)
	if err == mongo.ErrNoDocuments {
		respondWithError(c, h.logger, http.StatusNotFound, route, "product not found")
		return
	}
	if err != nil {
		respondWithError(c, h.logger, http.StatusInternalServerError, route, "db error")
		return
	}
	product.Normalize()

	if h.rdb != nil {
		if err := cache.SetProduct(c.Request.Context(), h.rdb, slug, product, h.cacheTTL); err != nil {
			h.logger.Warn("product cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) invalidateCache(c *gin.Context, slug string) {
	if h.rdb == nil || slug == "" {
		return
	}
	if err := cache.DeleteProduct(c.Request.Context(), h.rdb, slug); err != nil {
		h.logger.Warn("product cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}
