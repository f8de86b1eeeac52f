package httptransport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redone-net/marketplace/internal/catalog/service/models/product"
	"github.com/redone-net/marketplace/pkg/httperr"
	"github.com/shopspring/decimal"
)

// productRequest represents a create or update product request.
type productRequest struct {
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity"    validate:"omitempty,gte=0"`
}

// Validate validates the product request.
func (r *productRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return err
	}
	if r.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}

	return nil
}

func (r *productRequest) toModel(id int64) product.Product {
	return product.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
}

func decodeProductRequest(w http.ResponseWriter, r *http.Request) (*productRequest, bool) {
	req := productRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, httperr.Wrap(httperr.KindValidation, err, "invalid request body"))
		slog.Error("Error decoding product request", "error", err)

		return nil, false
	}
	if err := req.Validate(); err != nil {
		httperr.Write(w, httperr.Wrap(httperr.KindValidation, err, "invalid request body"))
		slog.Error("Error validating product request", "error", err)

		return nil, false
	}

	return &req, true
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httperr.Write(w, httperr.New(httperr.KindNotFound, "product not found"))

		return 0, false
	}

	return id, true
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), req.toModel(0))
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating product", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", fmt.Sprintf("/api/produits/%d", created.ID))
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, created)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), req.toModel(id))
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating product", "error", err, "product_id", id)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, updated)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httperr.Write(w, err)
		slog.Error("Error deleting product", "error", err, "product_id", id)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing products", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, products)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting product", "error", err, "product_id", id)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, found)
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
