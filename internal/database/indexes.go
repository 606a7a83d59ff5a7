package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func EnsureProductIndexes(db *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "sellerId", Value: 1}},
			Options: options.Index().SetName("sellerId_index"),
		},
	})
	if err != nil {
		logger.Warn("product index creation failed", zap.Error(err))
		return err
	}
	logger.Info("product indexes ensured")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}},
			Options: options.Index().SetName("customerId_index"),
		},
		{
			Keys:    bson.D{{Key: "items.sellerId", Value: 1}},
			Options: options.Index().SetName("itemsSellerId_index"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_index"),
		},
	})
	if err != nil {
		logger.Warn("order index creation failed", zap.Error(err))
		return err
	}
	logger.Info("order indexes ensured")
	return nil
}
