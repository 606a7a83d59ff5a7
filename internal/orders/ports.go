package orders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/abnahid/zenvira-backend/internal/models"
)

// CatalogEntry is the slice of a product the order engine needs: the
// current purchasable price inputs, the stock level, and whether the
// product may be sold at all.
type CatalogEntry struct {
	ProductID   primitive.ObjectID
	SellerID    primitive.ObjectID
	Name        string
	Price       float64
	SaleEnabled bool
	SalePrice   float64
	Stock       int
	Active      bool
}

// UnitPrice is the price a buyer pays for one unit right now.
func (e CatalogEntry) UnitPrice() float64 {
	return models.EffectiveProductPrice(e.Price, e.SaleEnabled, e.SalePrice)
}

// Catalog reads product rows. Inside a UnitOfWork the reads join the
// surrounding transaction, which is what makes the snapshotter's
// check-then-debit atomic.
type Catalog interface {
	Lookup(ctx context.Context, productID primitive.ObjectID) (CatalogEntry, error)
}

// Inventory is the sole mutation point for stock. Negative deltas debit,
// positive deltas credit. A debit that would leave stock negative is
// rejected, never clamped.
type Inventory interface {
	ApplyDelta(ctx context.Context, productID primitive.ObjectID, delta int) error
}

// ListFilter is the shared pagination + status filter for the order views.
type ListFilter struct {
	Status *models.OrderStatus
	Page   int64
	Limit  int64
}

// AdminFilter extends ListFilter with the admin-only customer filter.
type AdminFilter struct {
	ListFilter
	CustomerID *primitive.ObjectID
}

// OrderStore persists and queries order aggregates.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	ListByCustomer(ctx context.Context, customerID primitive.ObjectID, filter ListFilter) ([]models.Order, int64, error)
	ListBySeller(ctx context.Context, sellerID primitive.ObjectID, filter ListFilter) ([]models.Order, int64, error)
	ListAll(ctx context.Context, filter AdminFilter) ([]models.Order, int64, error)
}

// UnitOfWork runs fn so that every Catalog/Inventory/OrderStore call made
// with the ctx it passes either all commit together or leave no trace.
// A store-level conflict surfaces as ConflictError and the caller may
// retry the whole operation.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}
