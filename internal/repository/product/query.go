package product

import (
	"fmt"
	"strings"

	"storefront/internal/domain"
)

const productColumns = `id::text, name, description, price_cents, discount_price_cents, count_in_stock, sku, category, brand,
sizes, colors, collections, material, gender, images, is_featured, is_published, rating, num_reviews, tags,
dimensions, weight, created_by::text, created_at, updated_at`

type queryBuilder struct {
	where []string
	args  []any
}

func (b *queryBuilder) add(clause string, arg any) {
	b.args = append(b.args, arg)
	b.where = append(b.where, fmt.Sprintf(clause, len(b.args)))
}

// buildListQuery turns a catalog filter into SQL. "all" for collection or
// category means no constraint.
func buildListQuery(f domain.ProductFilter) (string, []any) {
	b := &queryBuilder{}
	if f.Collection != "" && !strings.EqualFold(f.Collection, "all") {
		b.add("collections = $%d", f.Collection)
	}
	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		b.add("category = $%d", f.Category)
	}
	if len(f.Materials) > 0 {
		b.add("material = ANY($%d)", f.Materials)
	}
	if len(f.Brands) > 0 {
		b.add("brand = ANY($%d)", f.Brands)
	}
	if len(f.Sizes) > 0 {
		b.add("sizes && $%d", f.Sizes)
	}
	if f.Color != "" {
		b.add("$%d = ANY(colors)", f.Color)
	}
	if f.Gender != "" {
		b.add("gender = $%d", f.Gender)
	}
	if f.MinPriceCents != nil {
		b.add("price_cents >= $%d", *f.MinPriceCents)
	}
	if f.MaxPriceCents != nil {
		b.add("price_cents <= $%d", *f.MaxPriceCents)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		b.add("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+escapeLike(s)+"%")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(productColumns)
	sb.WriteString(" FROM products")
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy(f.Sort))
	if f.Limit > 0 {
		b.args = append(b.args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(b.args))
	}
	return sb.String(), b.args
}

func orderBy(s domain.ProductSort) string {
	switch s {
	case domain.SortPriceAsc:
		return "price_cents ASC, id"
	case domain.SortPriceDesc:
		return "price_cents DESC, id"
	case domain.SortPopularity:
		return "rating DESC, id"
	default:
		return "created_at DESC, id"
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
