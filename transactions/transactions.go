package transactions

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultHistoryLimit = 50

// GetTransactions lists the store's sales, newest first. ?limit= caps the
// result (default 50).
func GetTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := int64(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.TransactionCollection.Find(ctx, bson.M{"storeid": storeID}, opts)
	if err != nil {
		log.Println("GetTransactions Find error:", err)
		http.Error(w, "Could not retrieve transactions", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		log.Println("GetTransactions cursor.All error:", err)
		http.Error(w, "Error reading transaction data", http.StatusInternalServerError)
		return
	}
	if len(txs) == 0 {
		txs = []models.Transaction{}
	}

	utils.RespondWithJSON(w, http.StatusOK, txs)
}

// GetTransaction returns one sale by ID.
func GetTransaction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var tx models.Transaction
	err := db.TransactionCollection.FindOne(ctx, bson.M{
		"transactionid": ps.ByName("transactionid"),
		"storeid":       storeID,
	}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		log.Println("GetTransaction FindOne error:", err)
		http.Error(w, "Could not retrieve transaction", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tx)
}
