package orders

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/abnahid/zenvira-backend/internal/models"
)

// Service owns the order aggregate lifecycle. All stock movement funnels
// through the Inventory port, and every mutating operation runs inside one
// UnitOfWork so it either fully applies or leaves no trace.
type Service struct {
	snapshotter *Snapshotter
	inventory   Inventory
	store       OrderStore
	uow         UnitOfWork
	logger      *zap.Logger
}

func NewService(catalog Catalog, inventory Inventory, store OrderStore, uow UnitOfWork, logger *zap.Logger) *Service {
	return &Service{
		snapshotter: NewSnapshotter(catalog),
		inventory:   inventory,
		store:       store,
		uow:         uow,
		logger:      logger,
	}
}

// CreateInput carries a checkout request. The shipping fields are captured
// verbatim onto the order and never re-derived from a customer profile.
type CreateInput struct {
	CustomerID    primitive.ObjectID
	ShippingName  string
	ShippingPhone string
	ShippingEmail string
	Address       string
	PaymentMethod models.PaymentMethod
	Items         []LineItem
}

func (in CreateInput) validate() error {
	if len(in.Items) == 0 {
		return ValidationError{Message: "at least one item is required"}
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return ValidationError{Message: "quantity must be greater than zero"}
		}
	}
	if !in.PaymentMethod.Valid() {
		return ValidationError{Message: "unsupported payment method"}
	}
	for _, field := range []struct {
		name, value string
	}{
		{"shippingName", in.ShippingName},
		{"shippingPhone", in.ShippingPhone},
		{"shippingEmail", in.ShippingEmail},
		{"address", in.Address},
	} {
		if strings.TrimSpace(field.value) == "" {
			return ValidationError{Message: field.name + " is required"}
		}
	}
	return nil
}

// Create validates the request, then atomically prices every line against
// the catalog, persists the order with frozen prices, and debits stock.
// Any single line rejection aborts the whole order: no partial order, no
// partially-decremented stock.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Order, error) {
	if err := in.validate(); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		CustomerID:    in.CustomerID,
		ShippingName:  strings.TrimSpace(in.ShippingName),
		ShippingPhone: strings.TrimSpace(in.ShippingPhone),
		ShippingEmail: strings.TrimSpace(in.ShippingEmail),
		Address:       strings.TrimSpace(in.Address),
		PaymentMethod: in.PaymentMethod,
		Status:        models.OrderPlaced,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}

	err := s.uow.Run(ctx, func(txCtx context.Context) error {
		priced, err := s.snapshotter.Snapshot(txCtx, in.Items)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(priced))
		total := 0.0
		for _, line := range priced {
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				SellerID:  line.SellerID,
				Name:      line.Name,
				Price:     line.UnitPrice,
				Quantity:  line.Quantity,
			})
			total += line.UnitPrice * float64(line.Quantity)
		}
		order.Items = items
		order.Total = total

		if err := s.store.Insert(txCtx, &order); err != nil {
			return err
		}

		for _, line := range priced {
			if err := s.inventory.ApplyDelta(txCtx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID.Hex()),
		zap.String("customerId", order.CustomerID.Hex()),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// UpdateStatus sets the order status. Entering cancelled from a
// non-cancelled state credits every item's quantity back exactly once;
// setting cancelled again is a no-op for inventory. All credits and the
// status write land in one transaction, or none do.
func (s *Service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, ValidationError{Message: "invalid status"}
	}

	var order models.Order
	err := s.uow.Run(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.store.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		if status == models.OrderCancelled && order.Status != models.OrderCancelled {
			if err := s.restoreStock(txCtx, order); err != nil {
				return err
			}
		}

		if err := s.store.SetStatus(txCtx, orderID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.logger.Info("order status updated",
		zap.String("orderId", orderID.Hex()),
		zap.String("status", string(status)),
	)
	return order, nil
}

// UpdatePaymentStatus is a pure field update with no inventory interaction
// and no ordering constraint against the fulfilment status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, status models.PaymentStatus) error {
	if !status.Valid() {
		return ValidationError{Message: "invalid payment status"}
	}
	if err := s.store.SetPaymentStatus(ctx, orderID, status); err != nil {
		return err
	}
	s.logger.Info("order payment status updated",
		zap.String("orderId", orderID.Hex()),
		zap.String("paymentStatus", string(status)),
	)
	return nil
}

// Delete removes the order and its items. If the order was not already
// cancelled its stock is credited back first, in the same transaction;
// deleting an already-cancelled order must not credit again.
func (s *Service) Delete(ctx context.Context, orderID primitive.ObjectID) error {
	err := s.uow.Run(ctx, func(txCtx context.Context) error {
		order, err := s.store.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		if order.Status != models.OrderCancelled {
			if err := s.restoreStock(txCtx, order); err != nil {
				return err
			}
		}
		return s.store.Delete(txCtx, orderID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.String("orderId", orderID.Hex()))
	return nil
}

// Get loads a single order.
func (s *Service) Get(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	return s.store.FindByID(ctx, orderID)
}

func (s *Service) restoreStock(ctx context.Context, order models.Order) error {
	for _, item := range order.Items {
		if err := s.inventory.ApplyDelta(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
