package transactions

import (
	"context"
	"fmt"
	"log"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/order"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Submitter persists confirmed sales and decrements catalog stock as a
// side effect. Order sessions only ever read stock; all writes happen
// here.
type Submitter struct{}

func NewSubmitter() *Submitter { return &Submitter{} }

func (s *Submitter) Submit(ctx context.Context, sub order.Submission) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	tx := models.Transaction{
		TransactionID: uuid.New().String(),
		StoreID:       sub.StoreID,
		CashierID:     sub.CashierID,
		Items:         make([]models.TransactionItem, 0, len(sub.Items)),
		Subtotal:      sub.Subtotal,
		Tax:           sub.Tax,
		Total:         sub.Total,
		PaymentMethod: string(sub.PaymentMethod),
		PaymentAmount: sub.TenderedAmount,
		ChangeAmount:  sub.ChangeAmount,
		Status:        "completed",
		CreatedAt:     time.Now(),
	}
	for _, item := range sub.Items {
		tx.Items = append(tx.Items, models.TransactionItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	if _, err := db.TransactionCollection.InsertOne(ctx, tx); err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	// Stock updates are best-effort after the sale is recorded; a stock
	// race across devices is accepted, the count is clamped at zero.
	for _, item := range sub.Items {
		if err := decrementStock(ctx, sub.StoreID, item.ProductID, item.Quantity); err != nil {
			log.Printf("transactions: stock decrement failed for %s: %v", item.ProductID, err)
		}
	}

	return tx.TransactionID, nil
}

// decrementStock subtracts qty guarded by a stock >= qty condition, then
// falls back to a clamped read-modify-write when the guard does not match.
func decrementStock(ctx context.Context, storeID, productID string, qty int) error {
	res, err := db.ProductCollection.UpdateOne(ctx,
		bson.M{"productid": productID, "storeid": storeID, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err == nil && res.ModifiedCount > 0 {
		return nil
	}
	if err != nil {
		log.Printf("transactions: guarded decrement for %s: %v", productID, err)
	}

	var product models.Product
	if err := db.ProductCollection.FindOne(ctx,
		bson.M{"productid": productID, "storeid": storeID}).Decode(&product); err != nil {
		return fmt.Errorf("fallback read: %w", err)
	}

	newStock := product.Stock - qty
	if newStock < 0 {
		newStock = 0
	}
	_, err = db.ProductCollection.UpdateOne(ctx,
		bson.M{"productid": productID, "storeid": storeID},
		bson.M{"$set": bson.M{"stock": newStock}},
	)
	if err != nil {
		return fmt.Errorf("fallback update: %w", err)
	}
	return nil
}
