package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProducts lists the store's products ordered by name. Optional
// ?search= matches name or barcode, ?category= filters by category.
func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := bson.M{"storeid": storeID}
	if cat := r.URL.Query().Get("category"); cat != "" {
		filter["category"] = cat
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"barcode": search},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := db.ProductCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Println("GetProducts Find error:", err)
		http.Error(w, "Could not retrieve products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		log.Println("GetProducts cursor.All error:", err)
		http.Error(w, "Error reading product data", http.StatusInternalServerError)
		return
	}
	if len(products) == 0 {
		products = []models.Product{}
	}

	utils.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct returns a single product by ID.
func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{
		"productid": ps.ByName("productid"),
		"storeid":   storeID,
	}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		log.Println("GetProduct FindOne error:", err)
		http.Error(w, "Could not retrieve product", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}

// GetProductByBarcode resolves a scanned barcode string to a product.
// Camera access happens on the device; the API only does the lookup.
func GetProductByBarcode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{
		"barcode": ps.ByName("barcode"),
		"storeid": storeID,
	}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "No product with that barcode", http.StatusNotFound)
			return
		}
		log.Println("GetProductByBarcode FindOne error:", err)
		http.Error(w, "Could not retrieve product", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}

type productPayload struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Barcode  string `json:"barcode"`
	ImageURL string `json:"imageUrl"`
}

func (p productPayload) validate() string {
	if p.Name == "" {
		return "Product name is required"
	}
	if p.Price < 0 {
		return "Price cannot be negative"
	}
	if p.Stock < 0 {
		return "Stock cannot be negative"
	}
	return ""
}

// CreateProduct adds a product to the store catalog.
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("CreateProduct decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	now := time.Now()
	product := models.Product{
		ProductID: uuid.New().String(),
		StoreID:   storeID,
		Name:      payload.Name,
		Price:     payload.Price,
		Category:  payload.Category,
		Stock:     payload.Stock,
		Barcode:   payload.Barcode,
		ImageURL:  payload.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := db.ProductCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateProduct InsertOne error:", err)
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces a product's editable fields.
func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("UpdateProduct decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	filter := bson.M{"productid": ps.ByName("productid"), "storeid": storeID}
	update := bson.M{"$set": bson.M{
		"name":      payload.Name,
		"price":     payload.Price,
		"category":  payload.Category,
		"stock":     payload.Stock,
		"barcode":   payload.Barcode,
		"imageurl":  payload.ImageURL,
		"updatedAt": time.Now(),
	}}

	res := db.ProductCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var product models.Product
	if err := res.Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		log.Println("UpdateProduct error:", err)
		http.Error(w, "Failed to update product", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog.
func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	res, err := db.ProductCollection.DeleteOne(ctx, bson.M{
		"productid": ps.ByName("productid"),
		"storeid":   storeID,
	})
	if err != nil {
		log.Println("DeleteProduct error:", err)
		http.Error(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
