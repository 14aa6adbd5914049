package catalog

import (
	"context"
	"log"
	"net/http"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetCategories lists the store's categories ordered by name.
func GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := db.CategoryCollection.Find(ctx, bson.M{"storeid": storeID}, opts)
	if err != nil {
		log.Println("GetCategories Find error:", err)
		http.Error(w, "Could not retrieve categories", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		log.Println("GetCategories cursor.All error:", err)
		http.Error(w, "Error reading category data", http.StatusInternalServerError)
		return
	}
	if len(categories) == 0 {
		categories = []models.Category{}
	}

	utils.RespondWithJSON(w, http.StatusOK, categories)
}
