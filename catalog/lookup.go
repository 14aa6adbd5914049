package catalog

import (
	"context"
	"errors"
	"fmt"

	"tamias/db"
	"tamias/models"
	"tamias/order"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog is the stock and price collaborator consulted by order sessions.
// Every Lookup is a point-in-time read; there is no cross-device
// reservation.
type Catalog struct{}

func New() *Catalog { return &Catalog{} }

func (c *Catalog) Lookup(ctx context.Context, storeID, productID string) (order.ProductInfo, error) {
	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{
		"productid": productID,
		"storeid":   storeID,
	}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return order.ProductInfo{}, ErrProductNotFound
		}
		return order.ProductInfo{}, fmt.Errorf("find product: %w", err)
	}

	return order.ProductInfo{
		ProductID: product.ProductID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Stock:     product.Stock,
	}, nil
}
