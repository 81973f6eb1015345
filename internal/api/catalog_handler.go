package api

import (
	"net/http"
	"strconv"
	"strings"

	"spalena53-be/internal/category"
	"spalena53-be/internal/product"
	"spalena53-be/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type catalogHandler struct {
	products   product.Service
	categories category.Service
}

func parseListFilter(r *http.Request) (product.ListFilter, error) {
	q := r.URL.Query()
	verr := &transport.ValidationError{}

	f := product.ListFilter{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Type:         product.Type(strings.ToUpper(strings.TrimSpace(q.Get("type")))),
		Search:       strings.TrimSpace(q.Get("search")),
		Sort:         q.Get("sort"),
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			verr.Add(p.name, "must be a number")
			continue
		}
		*p.dst = &d
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &f.Page},
		{"limit", &f.Limit},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add(p.name, "must be an integer")
			continue
		}
		*p.dst = n
	}

	return f, verr.OrNil()
}

func (h *catalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *catalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *catalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, p)
}

func (h *catalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, list)
}

func (h *catalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}
