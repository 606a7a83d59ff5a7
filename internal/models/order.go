package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order. The machine is
// permissive: an operator may set any value at any time; only entering
// Cancelled from another state has an inventory side effect.
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPlaced, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// PaymentStatus is an independent axis; it carries no ordering constraint
// with OrderStatus.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// PaymentMethod is a placeholder axis: only cash on delivery is supported.
type PaymentMethod string

const PaymentCOD PaymentMethod = "cod"

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD
}

// OrderItem is one line of an order. Price is the unit price frozen at
// order time; it never tracks later catalog changes. SellerID and Name are
// snapshots taken for the same reason.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	SellerID  primitive.ObjectID `bson:"sellerId" json:"sellerId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Order is the persisted checkout record. Everything except Status and
// PaymentStatus is immutable after creation.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Total         float64            `bson:"total" json:"total"`
	ShippingName  string             `bson:"shippingName" json:"shippingName"`
	ShippingPhone string             `bson:"shippingPhone" json:"shippingPhone"`
	ShippingEmail string             `bson:"shippingEmail" json:"shippingEmail"`
	Address       string             `bson:"address" json:"address"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Status        OrderStatus        `bson:"status" json:"status"`
	PaymentStatus PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
