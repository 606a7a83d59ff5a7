package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/abnahid/zenvira-backend/internal/models"
)

// SellerOrder is a read-time projection of an order limited to one
// seller's items. SellerSubtotal and SellerItemCount are derived fresh on
// every read and never stored; they do not touch the order's own total.
type SellerOrder struct {
	ID              primitive.ObjectID   `json:"id"`
	CustomerID      primitive.ObjectID   `json:"customerId"`
	Items           []models.OrderItem   `json:"items"`
	SellerSubtotal  float64              `json:"sellerSubtotal"`
	SellerItemCount int                  `json:"sellerItemCount"`
	Status          models.OrderStatus   `json:"status"`
	PaymentStatus   models.PaymentStatus `json:"paymentStatus"`
	ShippingName    string               `json:"shippingName"`
	ShippingPhone   string               `json:"shippingPhone"`
	ShippingEmail   string               `json:"shippingEmail"`
	Address         string               `json:"address"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// ProjectSellerOrder filters an order down to one seller's items. The
// second return is false when no item in the order belongs to the seller.
func ProjectSellerOrder(order models.Order, sellerID primitive.ObjectID) (SellerOrder, bool) {
	var items []models.OrderItem
	subtotal := 0.0
	count := 0

	for _, item := range order.Items {
		if item.SellerID != sellerID {
			continue
		}
		items = append(items, item)
		subtotal += item.Price * float64(item.Quantity)
		count += item.Quantity
	}
	if len(items) == 0 {
		return SellerOrder{}, false
	}

	return SellerOrder{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		Items:           items,
		SellerSubtotal:  subtotal,
		SellerItemCount: count,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		ShippingName:    order.ShippingName,
		ShippingPhone:   order.ShippingPhone,
		ShippingEmail:   order.ShippingEmail,
		Address:         order.Address,
		CreatedAt:       order.CreatedAt,
	}, true
}

// ListCustomerOrders returns the requester's own orders, newest first.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID primitive.ObjectID, filter ListFilter) ([]models.Order, int64, error) {
	return s.store.ListByCustomer(ctx, customerID, filter)
}

// ListSellerOrders returns every order containing at least one of the
// seller's items, projected down to those items with derived totals.
func (s *Service) ListSellerOrders(ctx context.Context, sellerID primitive.ObjectID, filter ListFilter) ([]SellerOrder, int64, error) {
	found, total, err := s.store.ListBySeller(ctx, sellerID, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]SellerOrder, 0, len(found))
	for _, order := range found {
		if view, ok := ProjectSellerOrder(order, sellerID); ok {
			views = append(views, view)
		}
	}
	return views, total, nil
}

// ListAllOrders is the unrestricted admin view.
func (s *Service) ListAllOrders(ctx context.Context, filter AdminFilter) ([]models.Order, int64, error) {
	return s.store.ListAll(ctx, filter)
}
