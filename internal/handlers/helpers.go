package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/abnahid/zenvira-backend/internal/models"
	"github.com/abnahid/zenvira-backend/internal/orders"
)

func handlePanic(c *gin.Context, logger *zap.Logger, route string) {
	if r := recover(); r != nil {
		logger.Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, logger *zap.Logger, status int, route string, message string) {
	logger.Warn("request rejected",
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("message", message),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

const maxPageLimit = int64(100)

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errors.New("invalid page")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errors.New("invalid limit")
		}
		if l > maxPageLimit {
			l = maxPageLimit
		}
		limit = l
	}

	return page, limit, nil
}

// parseListFilter reads the shared page/limit/status query parameters of
// the order list endpoints.
func parseListFilter(c *gin.Context) (orders.ListFilter, error) {
	page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		return orders.ListFilter{}, err
	}

	filter := orders.ListFilter{Page: page, Limit: limit}
	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		if !status.Valid() {
			return orders.ListFilter{}, errors.New("invalid status")
		}
		filter.Status = &status
	}
	return filter, nil
}
