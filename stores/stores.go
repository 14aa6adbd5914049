package stores

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// GetStore returns the authenticated cashier's store, used for the
// receipt header and the settings screen.
func GetStore(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var store models.Store
	err := db.StoreCollection.FindOne(ctx, bson.M{"storeid": storeID}).Decode(&store)
	if err != nil {
		http.Error(w, "Store not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, store)
}

// UpdateStore changes the store's name, address or phone.
func UpdateStore(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if role := utils.GetRoleFromRequest(r); role != "admin" && role != "manager" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var payload struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "Store name is required", http.StatusBadRequest)
		return
	}

	update := bson.M{"$set": bson.M{
		"name":      payload.Name,
		"address":   payload.Address,
		"phone":     payload.Phone,
		"updatedAt": time.Now(),
	}}
	res, err := db.StoreCollection.UpdateOne(ctx, bson.M{"storeid": storeID}, update)
	if err != nil {
		log.Println("UpdateStore:", err)
		http.Error(w, "Failed to update store", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Store not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}
