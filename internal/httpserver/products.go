package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

// productFilterFromQuery reads catalog filters. Prices are integer cents.
func productFilterFromQuery(c *gin.Context) (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		Collection: c.Query("collection"),
		Category:   c.Query("category"),
		Materials:  splitList(c.Query("material")),
		Brands:     splitList(c.Query("brand")),
		Sizes:      splitList(c.Query("size")),
		Color:      c.Query("color"),
		Gender:     c.Query("gender"),
		Search:     strings.TrimSpace(c.Query("search")),
		Sort:       domain.ProductSort(c.Query("sortBy")),
	}
	switch f.Sort {
	case "", domain.SortPriceAsc, domain.SortPriceDesc, domain.SortPopularity:
	default:
		return f, fmt.Errorf("%w: unknown sortBy %q", domain.ErrValidation, f.Sort)
	}
	var err error
	if f.MinPriceCents, err = optionalInt(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPriceCents, err = optionalInt(c, "maxPrice"); err != nil {
		return f, err
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return f, fmt.Errorf("%w: invalid limit %q", domain.ErrValidation, v)
		}
		f.Limit = limit
	}
	return f, nil
}

func optionalInt(c *gin.Context, key string) (*int64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: invalid %s %q", domain.ErrValidation, key, v)
	}
	return &n, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *handlers) listProducts(c *gin.Context) {
	filter, err := productFilterFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	products, err := h.deps.ProductSvc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) bestSeller(c *gin.Context) {
	p, err := h.deps.ProductSvc.BestSeller(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) newArrivals(c *gin.Context) {
	products, err := h.deps.ProductSvc.NewArrivals(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *handlers) similarProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.Similar(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *handlers) createProduct(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req productsvc.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req productsvc.UpdateInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product removed"})
}

func (h *handlers) adminListProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context(), domain.ProductFilter{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}
