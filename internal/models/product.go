package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStatus marks whether a product can currently be purchased.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductInactive
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Price       float64            `bson:"price" json:"price"`
	SaleEnabled bool               `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice   float64            `bson:"salePrice" json:"salePrice"`
	IsOnSale    bool               `bson:"-" json:"isOnSale"`
	Stock       int                `bson:"stock" json:"stock"`
	InStock     bool               `bson:"-" json:"inStock"`
	Status      ProductStatus      `bson:"status" json:"status"`
	Category    string             `bson:"category" json:"category"`
	SellerID    primitive.ObjectID `bson:"sellerId" json:"sellerId"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize fills the derived response-only fields.
func (p *Product) Normalize() {
	p.InStock = p.Stock > 0
	p.IsOnSale = IsProductOnSale(p.Price, p.SaleEnabled, p.SalePrice)
}
