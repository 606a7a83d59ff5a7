package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abnahid/zenvira-backend/internal/models"
)

const (
	productCollection = "products"
	orderCollection   = "orders"
)

// MongoStore implements the Catalog, Inventory, OrderStore and UnitOfWork
// ports against MongoDB. Run executes its body inside a session
// transaction; port calls made with the transaction context join it, so a
// stock check and the matching debit commit or abort together.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (m *MongoStore) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil && isTransactionConflict(err) {
		return ConflictError{Err: err}
	}
	return err
}

// isTransactionConflict reports whether the store aborted the transaction
// because of a concurrent modification. Such failures leave no partial
// state and the whole operation may be retried.
func isTransactionConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.HasErrorLabel("TransientTransactionError") ||
			cmdErr.HasErrorLabel("UnknownTransactionCommitResult") ||
			cmdErr.Code == 112 { // WriteConflict
			return true
		}
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		return writeErr.HasErrorLabel("TransientTransactionError")
	}
	return false
}

/* =========================
   CATALOG
========================= */

func (m *MongoStore) Lookup(ctx context.Context, productID primitive.ObjectID) (CatalogEntry, error) {
	var product models.Product
	err := m.db.Collection(productCollection).
		FindOne(ctx, bson.M{"_id": productID}).
		Decode(&product)
	if err == mongo.ErrNoDocuments {
		return CatalogEntry{}, ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return CatalogEntry{}, err
	}

	return CatalogEntry{
		ProductID:   product.ID,
		SellerID:    product.SellerID,
		Name:        product.Name,
		Price:       product.Price,
		SaleEnabled: product.SaleEnabled,
		SalePrice:   product.SalePrice,
		Stock:       product.Stock,
		Active:      product.Status == models.ProductActive,
	}, nil
}

/* =========================
   INVENTORY
========================= */

// ApplyDelta adjusts stock by delta. Debits are conditional updates that
// match only when the resulting stock stays non-negative; a non-match is
// an invariant violation because the snapshotter has already confirmed
// stock inside the same transaction. Credits are unconditional; a credit
// whose product row no longer exists is dropped rather than failing the
// cancellation that issued it.
func (m *MongoStore) ApplyDelta(ctx context.Context, productID primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": productID}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := m.db.Collection(productCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 && delta < 0 {
		return StockInvariantError{ProductID: productID, Delta: delta}
	}
	return nil
}

/* =========================
   ORDER STORE
========================= */

func (m *MongoStore) Insert(ctx context.Context, order *models.Order) error {
	res, err := m.db.Collection(orderCollection).InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (m *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := m.db.Collection(orderCollection).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, OrderNotFoundError{OrderID: id}
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (m *MongoStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	return m.setField(ctx, id, "status", status)
}

func (m *MongoStore) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	return m.setField(ctx, id, "paymentStatus", status)
}

func (m *MongoStore) setField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error {
	res, err := m.db.Collection(orderCollection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return OrderNotFoundError{OrderID: id}
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.db.Collection(orderCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return OrderNotFoundError{OrderID: id}
	}
	return nil
}

/* =========================
   VIEW QUERIES
========================= */

func (m *MongoStore) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, filter ListFilter) ([]models.Order, int64, error) {
	query := bson.M{"customerId": customerID}
	applyStatusFilter(query, filter.Status)
	return m.list(ctx, query, filter.Page, filter.Limit)
}

func (m *MongoStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID, filter ListFilter) ([]models.Order, int64, error) {
	query := bson.M{"items.sellerId": sellerID}
	applyStatusFilter(query, filter.Status)
	return m.list(ctx, query, filter.Page, filter.Limit)
}

func (m *MongoStore) ListAll(ctx context.Context, filter AdminFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	applyStatusFilter(query, filter.Status)
	if filter.CustomerID != nil {
		query["customerId"] = *filter.CustomerID
	}
	return m.list(ctx, query, filter.Page, filter.Limit)
}

func applyStatusFilter(query bson.M, status *models.OrderStatus) {
	if status != nil {
		query["status"] = *status
	}
}

func (m *MongoStore) list(ctx context.Context, query bson.M, page, limit int64) ([]models.Order, int64, error) {
	coll := m.db.Collection(orderCollection)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := coll.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var found []models.Order
	if err := cursor.All(ctx, &found); err != nil {
		return nil, 0, err
	}
	return found, total, nil
}
