// Package orderstest provides an in-memory implementation of the order
// engine's ports for tests. Run serializes transactions with a mutex and
// rolls state back when the body fails, mirroring the all-or-nothing
// semantics of the real store.
package orderstest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/abnahid/zenvira-backend/internal/models"
	"github.com/abnahid/zenvira-backend/internal/orders"
)

type Store struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
	orders   map[primitive.ObjectID]models.Order
}

func New() *Store {
	return &Store{
		products: make(map[primitive.ObjectID]*models.Product),
		orders:   make(map[primitive.ObjectID]models.Order),
	}
}

// AddProduct seeds a product, defaulting status to active, and returns its
// id.
func (f *Store) AddProduct(p models.Product) primitive.ObjectID {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Status == "" {
		p.Status = models.ProductActive
	}
	copied := p
	f.products[p.ID] = &copied
	return p.ID
}

// AddOrder seeds an already-committed order for view tests.
func (f *Store) AddOrder(o models.Order) primitive.ObjectID {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	f.orders[o.ID] = o
	return o.ID
}

func (f *Store) StockOf(id primitive.ObjectID) int {
	return f.products[id].Stock
}

func (f *Store) SellerOf(id primitive.ObjectID) primitive.ObjectID {
	return f.products[id].SellerID
}

// SetPrice changes the live catalog price, bypassing the engine, the way
// an external catalog edit would.
func (f *Store) SetPrice(id primitive.ObjectID, price float64) {
	f.products[id].Price = price
}

func (f *Store) OrderCount() int {
	return len(f.orders)
}

func (f *Store) Run(_ context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	productBackup := make(map[primitive.ObjectID]*models.Product, len(f.products))
	for id, p := range f.products {
		copied := *p
		productBackup[id] = &copied
	}
	orderBackup := make(map[primitive.ObjectID]models.Order, len(f.orders))
	for id, o := range f.orders {
		orderBackup[id] = o
	}

	if err := fn(context.Background()); err != nil {
		f.products = productBackup
		f.orders = orderBackup
		return err
	}
	return nil
}

func (f *Store) Lookup(_ context.Context, productID primitive.ObjectID) (orders.CatalogEntry, error) {
	p, ok := f.products[productID]
	if !ok {
		return orders.CatalogEntry{}, orders.ProductNotFoundError{ProductID: productID}
	}
	return orders.CatalogEntry{
		ProductID:   p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Price:       p.Price,
		SaleEnabled: p.SaleEnabled,
		SalePrice:   p.SalePrice,
		Stock:       p.Stock,
		Active:      p.Status == models.ProductActive,
	}, nil
}

func (f *Store) ApplyDelta(_ context.Context, productID primitive.ObjectID, delta int) error {
	p, ok := f.products[productID]
	if !ok {
		if delta < 0 {
			return orders.StockInvariantError{ProductID: productID, Delta: delta}
		}
		return nil
	}
	if p.Stock+delta < 0 {
		return orders.StockInvariantError{ProductID: productID, Delta: delta}
	}
	p.Stock += delta
	return nil
}

func (f *Store) Insert(_ context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	f.orders[order.ID] = *order
	return nil
}

func (f *Store) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return models.Order{}, orders.OrderNotFoundError{OrderID: id}
	}
	return order, nil
}

func (f *Store) SetStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return orders.OrderNotFoundError{OrderID: id}
	}
	order.Status = status
	f.orders[id] = order
	return nil
}

func (f *Store) SetPaymentStatus(_ context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return orders.OrderNotFoundError{OrderID: id}
	}
	order.PaymentStatus = status
	f.orders[id] = order
	return nil
}

func (f *Store) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.orders[id]; !ok {
		return orders.OrderNotFoundError{OrderID: id}
	}
	delete(f.orders, id)
	return nil
}

func (f *Store) ListByCustomer(_ context.Context, customerID primitive.ObjectID, filter orders.ListFilter) ([]models.Order, int64, error) {
	return f.filterOrders(filter.Status, filter.Page, filter.Limit, func(o models.Order) bool {
		return o.CustomerID == customerID
	})
}

func (f *Store) ListBySeller(_ context.Context, sellerID primitive.ObjectID, filter orders.ListFilter) ([]models.Order, int64, error) {
	return f.filterOrders(filter.Status, filter.Page, filter.Limit, func(o models.Order) bool {
		for _, item := range o.Items {
			if item.SellerID == sellerID {
				return true
			}
		}
		return false
	})
}

func (f *Store) ListAll(_ context.Context, filter orders.AdminFilter) ([]models.Order, int64, error) {
	return f.filterOrders(filter.Status, filter.Page, filter.Limit, func(o models.Order) bool {
		return filter.CustomerID == nil || o.CustomerID == *filter.CustomerID
	})
}

func (f *Store) filterOrders(status *models.OrderStatus, page, limit int64, match func(models.Order) bool) ([]models.Order, int64, error) {
	var found []models.Order
	for _, order := range f.orders {
		if !match(order) {
			continue
		}
		if status != nil && order.Status != *status {
			continue
		}
		found = append(found, order)
	}

	total := int64(len(found))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return found[start:end], total, nil
}
