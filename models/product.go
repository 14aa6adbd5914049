package models

import "time"

// Product is a catalog entry owned by one store. Prices are whole rupiah.
type Product struct {
	ProductID string    `json:"productId" bson:"productid"`
	StoreID   string    `json:"storeId" bson:"storeid"`
	Name      string    `json:"name" bson:"name"`
	Price     int64     `json:"price" bson:"price"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty"`
	Stock     int       `json:"stock" bson:"stock"`
	Barcode   string    `json:"barcode,omitempty" bson:"barcode,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty" bson:"imageurl,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Category struct {
	CategoryID string `json:"categoryId" bson:"categoryid"`
	StoreID    string `json:"storeId" bson:"storeid"`
	Name       string `json:"name" bson:"name"`
}
