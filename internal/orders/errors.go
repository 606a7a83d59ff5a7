package orders

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationError rejects a request before any transaction begins.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ProductNotFoundError is terminal for the whole operation that referenced
// the product.
type ProductNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID.Hex())
}

// ProductInactiveError rejects a line referencing a product that exists
// but is not purchasable.
type ProductInactiveError struct {
	ProductID primitive.ObjectID
}

func (e ProductInactiveError) Error() string {
	return fmt.Sprintf("product %s is not active", e.ProductID.Hex())
}

// InsufficientStockError carries enough detail for the caller to adjust
// the requested quantity and resubmit.
type InsufficientStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s out of stock: %d available, %d requested", e.ProductID.Hex(), e.Available, e.Requested)
}

// OrderNotFoundError reports an operation on a nonexistent order.
type OrderNotFoundError struct {
	OrderID primitive.ObjectID
}

func (e OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID.Hex())
}

// StockInvariantError reports a debit that would have driven stock below
// zero outside the expected check-then-debit path. It indicates a logic or
// concurrency-control bug, not a user-correctable condition.
type StockInvariantError struct {
	ProductID primitive.ObjectID
	Delta     int
}

func (e StockInvariantError) Error() string {
	return fmt.Sprintf("stock delta %d on product %s would go negative", e.Delta, e.ProductID.Hex())
}

// ConflictError wraps a store-detected concurrent-modification failure.
// The operation left no partial state; the caller may retry it whole.
type ConflictError struct {
	Err error
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("transaction conflict: %v", e.Err)
}

func (e ConflictError) Unwrap() error {
	return e.Err
}
