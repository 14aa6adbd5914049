package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/rdx"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const statsCacheTTL = 30 * time.Second

// GetStats returns today's sales summary, cached briefly in Redis so a
// dashboard polling every few seconds does not hammer Mongo.
func GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cacheKey := "dashboard:stats:" + storeID
	if cached, err := rdx.RdxGet(ctx, cacheKey); err == nil && cached != "" {
		var stats Stats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			utils.RespondWithJSON(w, http.StatusOK, stats)
			return
		}
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	todayTx, err := findTransactions(ctx, storeID, todayStart, now)
	if err != nil {
		log.Println("GetStats today query error:", err)
		http.Error(w, "Could not compute stats", http.StatusInternalServerError)
		return
	}
	yesterdayTx, err := findTransactions(ctx, storeID, yesterdayStart, todayStart)
	if err != nil {
		log.Println("GetStats yesterday query error:", err)
		http.Error(w, "Could not compute stats", http.StatusInternalServerError)
		return
	}

	customerCount, err := db.CustomerCollection.CountDocuments(ctx, bson.M{"storeid": storeID})
	if err != nil {
		log.Println("GetStats customer count error:", err)
		customerCount = 0
	}

	stats := ComputeStats(todayTx, yesterdayTx, customerCount)

	if data, err := json.Marshal(stats); err == nil {
		if err := rdx.RdxSet(ctx, cacheKey, string(data), statsCacheTTL); err != nil {
			log.Println("GetStats cache set error:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GetRecentTransactions lists the latest sales for the home screen.
func GetRecentTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(5)

	cursor, err := db.TransactionCollection.Find(ctx, bson.M{"storeid": storeID}, opts)
	if err != nil {
		log.Println("GetRecentTransactions Find error:", err)
		http.Error(w, "Could not retrieve transactions", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		log.Println("GetRecentTransactions cursor.All error:", err)
		http.Error(w, "Error reading transaction data", http.StatusInternalServerError)
		return
	}
	if len(txs) == 0 {
		txs = []models.Transaction{}
	}

	utils.RespondWithJSON(w, http.StatusOK, txs)
}

func findTransactions(ctx context.Context, storeID string, from, to time.Time) ([]models.Transaction, error) {
	cursor, err := db.TransactionCollection.Find(ctx, bson.M{
		"storeid":   storeID,
		"createdAt": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
