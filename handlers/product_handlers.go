package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"retail-admin/cache"
	"retail-admin/database"
	"retail-admin/models"
)

var productSortFields = map[string]string{
	"name":         "name",
	"price":        "price",
	"countInStock": "countInStock",
	"createdAt":    "createdAt",
}

type productPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// GetProducts handles retrieving a list of products with filtering and sorting
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, limit := pagination(r, 10)

	productType := q.Get("type")
	status := q.Get("status")
	searchQuery := q.Get("search")
	order := q.Get("order")

	cacheKey := fmt.Sprintf("products:p%d:l%d:type%s:st%s:q%s:o%s",
		page, limit, productType, status, searchQuery, order)

	var cached productPage
	err := cache.GetCache(ctx, cacheKey, &cached)
	if err == nil {
		w.Header().Set("X-Cache", "HIT")
		h.ResponseHdlr.Paginated(w, "Products fetched from cache", cached.Products, page, limit, int(cached.Total))
		return
	}
	if !cache.IsMiss(err) {
		h.Logger.Warn("read product list cache", zap.Error(err))
	}
	w.Header().Set("X-Cache", "MISS")

	filterQuery := bson.M{}
	if productType != "" {
		filterQuery["type"] = productType
	}
	if status != "" {
		s, err := strconv.Atoi(status)
		if err != nil {
			h.ErrorHdlr.HandleBadRequest(w, "Invalid status")
			return
		}
		filterQuery["status"] = s
	}
	if searchQuery != "" {
		filterQuery["$or"] = regexAny(searchQuery, "name", "description")
	}

	products := h.collection(database.ProductsCollection)
	total, err := products.CountDocuments(ctx, filterQuery)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error counting products")
		return
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(sortOrder(order, productSortFields, bson.D{{Key: "name", Value: 1}}))
	cursor, err := products.Find(ctx, filterQuery, opts)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error fetching products")
		return
	}
	defer cursor.Close(ctx)

	found := []models.Product{}
	if err := cursor.All(ctx, &found); err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error processing products data")
		return
	}

	if err := cache.SetCache(ctx, cacheKey, productPage{Products: found, Total: total}, 5*time.Minute); err != nil && !cache.IsMiss(err) {
		h.Logger.Warn("cache product list", zap.Error(err))
	}

	h.ResponseHdlr.Paginated(w, "Products fetched successfully", found, page, limit, int(total))
}

// GetProductDetails handles retrieving a single product by ID
func (h *Handler) GetProductDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := mux.Vars(r)["id"]
	cacheKey := fmt.Sprintf(cache.ProductDetailPattern, productID)

	var product models.Product
	if err := cache.GetCache(ctx, cacheKey, &product); err == nil {
		w.Header().Set("X-Cache", "HIT")
		h.ResponseHdlr.Success(w, "Product details fetched from cache", product)
		return
	}
	w.Header().Set("X-Cache", "MISS")

	objID, ok := h.pathID(w, r, "product")
	if !ok {
		return
	}
	err := h.collection(database.ProductsCollection).FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrorHdlr.HandleNotFound(w, "Product not found")
			return
		}
		h.ErrorHdlr.HandleInternalError(w, "Error finding product")
		return
	}

	if err := cache.SetCache(ctx, cacheKey, product, 30*time.Minute); err != nil && !cache.IsMiss(err) {
		h.Logger.Warn("cache product", zap.String("product", productID), zap.Error(err))
	}
	h.ResponseHdlr.Success(w, "Product details fetched successfully", product)
}

// CreateProduct handles creating a new product
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	now := time.Now()
	product := models.Product{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Price:        req.Price,
		Discount:     req.Discount,
		Type:         req.Type,
		CountInStock: req.CountInStock,
		Status:       req.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := h.collection(database.ProductsCollection).InsertOne(r.Context(), product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			h.ErrorHdlr.HandleConflict(w, "Product slug already exists")
			return
		}
		h.ErrorHdlr.HandleInternalError(w, "Error creating product")
		return
	}
	h.invalidateProducts(r, "")

	h.ResponseHdlr.Created(w, "Product created successfully", product)
}

// UpdateProduct handles updating an existing product
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	objID, ok := h.pathID(w, r, "product")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Slug != "" {
		update["slug"] = req.Slug
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Price > 0 {
		update["price"] = req.Price
	}
	if req.Discount != nil {
		update["discount"] = *req.Discount
	}
	if req.Type != "" {
		update["type"] = req.Type
	}
	if req.CountInStock != nil {
		update["countInStock"] = *req.CountInStock
	}
	if req.Status != nil {
		update["status"] = *req.Status
	}
	if len(update) == 0 {
		h.ErrorHdlr.HandleBadRequest(w, "No fields to update")
		return
	}
	update["updatedAt"] = time.Now()

	products := h.collection(database.ProductsCollection)
	result, err := products.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			h.ErrorHdlr.HandleConflict(w, "Product slug already exists")
			return
		}
		h.ErrorHdlr.HandleInternalError(w, "Error updating product")
		return
	}
	if result.MatchedCount == 0 {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}
	h.invalidateProducts(r, objID.Hex())

	var updated models.Product
	if err := products.FindOne(ctx, bson.M{"_id": objID}).Decode(&updated); err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error getting updated product")
		return
	}
	h.ResponseHdlr.Success(w, "Product updated successfully", updated)
}

// DeleteProduct handles deleting a product
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	objID, ok := h.pathID(w, r, "product")
	if !ok {
		return
	}

	result, err := h.collection(database.ProductsCollection).DeleteOne(r.Context(), bson.M{"_id": objID})
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error deleting product")
		return
	}
	if result.DeletedCount == 0 {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}
	h.invalidateProducts(r, objID.Hex())

	h.ResponseHdlr.Success(w, "Product successfully deleted", map[string]string{"id": objID.Hex()})
}

// invalidateProducts drops the detail cache of id, if given, and every
// cached list page.
func (h *Handler) invalidateProducts(r *http.Request, id string) {
	ctx := r.Context()
	if id != "" {
		if err := cache.DeleteCache(ctx, fmt.Sprintf(cache.ProductDetailPattern, id)); err != nil && !cache.IsMiss(err) {
			h.Logger.Warn("invalidate product detail cache", zap.Error(err))
		}
	}
	if err := cache.DeleteByPattern(ctx, cache.ProductListPattern); err != nil && !cache.IsMiss(err) {
		h.Logger.Warn("invalidate product list cache", zap.Error(err))
	}
}
