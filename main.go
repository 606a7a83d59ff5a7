package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abnahid/zenvira-backend/internal/cache"
	"github.com/abnahid/zenvira-backend/internal/config"
	"github.com/abnahid/zenvira-backend/internal/database"
	"github.com/abnahid/zenvira-backend/internal/handlers"
	"github.com/abnahid/zenvira-backend/internal/middleware"
	"github.com/abnahid/zenvira-backend/internal/orders"
)

func main() {
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.Error(err))
	}
	db := client.Database(config.AppEnv.DBName)
	logger.Info("MongoDB connected", zap.String("db", db.Name()))

	if err := database.EnsureProductIndexes(db, logger); err != nil {
		logger.Warn("product index warning", zap.Error(err))
	}
	if err := database.EnsureOrderIndexes(db, logger); err != nil {
		logger.Warn("order index warning", zap.Error(err))
	}

	rdb, err := cache.Init(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword, logger)
	if err != nil {
		logger.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
		rdb = nil
	}

	store := orders.NewMongoStore(db)
	orderService := orders.NewService(store, store, store, store, logger)

	orderHandler := handlers.NewOrderHandler(orderService, logger)
	productHandler := handlers.NewProductHandler(db, rdb, config.AppEnv.CatalogCacheTTL, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", middleware.PrometheusHandler())

	r.GET("/products", productHandler.List)
	r.GET("/products/:slug", productHandler.GetBySlug)

	secret := config.AppEnv.JWTSecret

	r.POST("/orders", middleware.CustomerAuth(secret), orderHandler.Create)
	r.GET("/orders", middleware.CustomerAuth(secret), orderHandler.ListMine)
	r.PATCH("/orders/:id/status", middleware.CustomerAuth(secret), orderHandler.CancelMine)

	seller := r.Group("/seller")
	seller.Use(middleware.SellerAuth(secret))
	{
		seller.GET("/orders", orderHandler.SellerList)
		seller.GET("/products", productHandler.SellerListProducts)
		seller.POST("/products", productHandler.SellerCreateProduct)
		seller.PUT("/products/:id", productHandler.SellerUpdateProduct)
		seller.DELETE("/products/:id", productHandler.SellerDeleteProduct)
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(secret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		admin.GET("/orders", orderHandler.AdminList)
		admin.PATCH("/orders/:id/status", orderHandler.AdminUpdateStatus)
		admin.PATCH("/orders/:id/payment-status", orderHandler.AdminUpdatePaymentStatus)
		admin.DELETE("/orders/:id", orderHandler.AdminDelete)

		admin.PATCH("/products/:id/status", productHandler.AdminModerateProduct)
	}

	logger.Info("server starting", zap.String("port", config.AppEnv.Port))
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
