package product

import (
	"strings"
	"testing"

	"storefront/internal/domain"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	q, args := buildListQuery(domain.ProductFilter{})
	if strings.Contains(q, "WHERE") || len(args) != 0 {
		t.Fatalf("expected unfiltered query, got %q args=%v", q, args)
	}
	if !strings.HasSuffix(q, "ORDER BY created_at DESC, id") {
		t.Fatalf("unexpected default order: %q", q)
	}
}

func TestBuildListQuery_AllIsIgnored(t *testing.T) {
	q, args := buildListQuery(domain.ProductFilter{Collection: "ALL", Category: "all"})
	if strings.Contains(q, "WHERE") || len(args) != 0 {
		t.Fatalf("expected 'all' to be ignored, got %q", q)
	}
}

func TestBuildListQuery_CombinesFilters(t *testing.T) {
	minPrice, maxPrice := int64(1000), int64(5000)
	q, args := buildListQuery(domain.ProductFilter{
		Category:      "Top Wear",
		Sizes:         []string{"S", "M"},
		Color:         "Red",
		MinPriceCents: &minPrice,
		MaxPriceCents: &maxPrice,
		Search:        "50%_off",
		Sort:          domain.SortPriceDesc,
		Limit:         8,
	})
	for _, want := range []string{
		"category = $1",
		"sizes && $2",
		"$3 = ANY(colors)",
		"price_cents >= $4",
		"price_cents <= $5",
		"(name ILIKE $6 OR description ILIKE $6)",
		"ORDER BY price_cents DESC, id",
		"LIMIT $7",
	} {
		if !strings.Contains(q, want) {
			t.Fatalf("query %q missing %q", q, want)
		}
	}
	if len(args) != 7 {
		t.Fatalf("expected 7 args, got %d", len(args))
	}
	if args[5] != `%50\%\_off%` {
		t.Fatalf("expected escaped search pattern, got %v", args[5])
	}
}
