package orders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one requested line of a checkout.
type LineItem struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// PricedLine is a line item with its unit price frozen at read time. The
// price becomes the order item's historical price and is never recomputed.
type PricedLine struct {
	ProductID primitive.ObjectID
	SellerID  primitive.ObjectID
	Name      string
	Quantity  int
	UnitPrice float64
}

// Snapshotter validates and prices a set of line items in a single pass
// over the catalog. Run it with a transaction-bound context so the checks
// hold until the matching debits commit.
type Snapshotter struct {
	catalog Catalog
}

func NewSnapshotter(catalog Catalog) *Snapshotter {
	return &Snapshotter{catalog: catalog}
}

// Snapshot rejects the whole request on the first unavailable line:
// ProductNotFoundError, ProductInactiveError or InsufficientStockError,
// each terminal for this call. Lines referencing the same product are
// merged first, so the stock check sees the combined quantity rather than
// each line against the same unconsumed stock.
func (s *Snapshotter) Snapshot(ctx context.Context, items []LineItem) ([]PricedLine, error) {
	merged := mergeLines(items)
	priced := make([]PricedLine, 0, len(merged))

	for _, item := range merged {
		entry, err := s.catalog.Lookup(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !entry.Active {
			return nil, ProductInactiveError{ProductID: item.ProductID}
		}
		if entry.Stock < item.Quantity {
			return nil, InsufficientStockError{
				ProductID: item.ProductID,
				Available: entry.Stock,
				Requested: item.Quantity,
			}
		}

		priced = append(priced, PricedLine{
			ProductID: item.ProductID,
			SellerID:  entry.SellerID,
			Name:      entry.Name,
			Quantity:  item.Quantity,
			UnitPrice: entry.UnitPrice(),
		})
	}

	return priced, nil
}

// mergeLines collapses duplicate product references into one line each,
// summing quantities and keeping first-seen order.
func mergeLines(items []LineItem) []LineItem {
	merged := make([]LineItem, 0, len(items))
	index := make(map[primitive.ObjectID]int, len(items))

	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
