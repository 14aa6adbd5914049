package models

import "time"

// TransactionItem is one sold line, with the unit price frozen at the
// moment the cashier added it to the cart.
type TransactionItem struct {
	ProductID string `json:"productId" bson:"productid"`
	Name      string `json:"name" bson:"name"`
	UnitPrice int64  `json:"unitPrice" bson:"unitprice"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Transaction is a persisted sale.
type Transaction struct {
	TransactionID string            `json:"transactionId" bson:"transactionid"`
	StoreID       string            `json:"storeId" bson:"storeid"`
	CashierID     string            `json:"cashierId" bson:"cashierid"`
	Items         []TransactionItem `json:"items" bson:"items"`
	Subtotal      int64             `json:"subtotal" bson:"subtotal"`
	Tax           int64             `json:"tax" bson:"tax"`
	Discount      int64             `json:"discount" bson:"discount"`
	Total         int64             `json:"total" bson:"total"`
	PaymentMethod string            `json:"paymentMethod" bson:"paymentmethod"`
	PaymentAmount int64             `json:"paymentAmount" bson:"paymentamount"`
	ChangeAmount  int64             `json:"changeAmount" bson:"changeamount"`
	Status        string            `json:"status" bson:"status"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdAt"`
}
