package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	UpsertBySKU(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files and inserts/updates products keyed by sku.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *log.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *log.Logger) *CSVImporter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // continuation rows are usually short
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger,
	}
}

// Run parses CSV rows and upserts one product per sku row. Rows with an empty
// sku and an image column extend the images of the preceding product.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"sku", "name", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column: %w", required, domain.ErrValidation)
		}
	}

	var (
		current  *domain.Product
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		sku := pick(record, index, "sku")
		image := pick(record, index, "image")
		if sku == "" {
			if current != nil && image != "" {
				current.Images = append(current.Images, domain.ProductImage{URL: image, AltText: current.Name})
			}
			continue
		}

		if current != nil {
			if err := i.save(ctx, current); err != nil {
				return imported, err
			}
			imported++
		}
		current, err = parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Printf("importer: done products=%d", imported)
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	saved, err := i.productRepo.UpsertBySKU(ctx, *p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.SKU, err)
	}
	i.logger.Printf("importer: upserted sku=%s id=%s images=%d", saved.SKU, saved.ID, len(saved.Images))
	return nil
}

func parseRow(record []string, index map[string]int) (*domain.Product, error) {
	p := &domain.Product{
		SKU:         pick(record, index, "sku"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		Brand:       pick(record, index, "brand"),
		Collections: pick(record, index, "collections"),
		Material:    pick(record, index, "material"),
		Gender:      pick(record, index, "gender"),
		Sizes:       splitList(pick(record, index, "sizes")),
		Colors:      splitList(pick(record, index, "colors")),
		Tags:        splitList(pick(record, index, "tags")),
		IsPublished: true,
	}
	if p.Name == "" {
		return nil, fmt.Errorf("sku %q has no name: %w", p.SKU, domain.ErrValidation)
	}

	price, err := parseCents(pick(record, index, "price"))
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("sku %q has invalid price: %w", p.SKU, domain.ErrValidation)
	}
	p.PriceCents = price

	if raw := pick(record, index, "discountPrice"); raw != "" {
		discount, err := parseCents(raw)
		if err != nil || discount < 0 {
			return nil, fmt.Errorf("sku %q has invalid discountPrice: %w", p.SKU, domain.ErrValidation)
		}
		p.DiscountPriceCents = &discount
	}

	if raw := pick(record, index, "countInStock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("sku %q has invalid countInStock: %w", p.SKU, domain.ErrValidation)
		}
		p.CountInStock = stock
	}

	if raw := pick(record, index, "isPublished"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("sku %q has invalid isPublished: %w", p.SKU, domain.ErrValidation)
		}
		p.IsPublished = published
	}

	if image := pick(record, index, "image"); image != "" {
		p.Images = []domain.ProductImage{{URL: image, AltText: p.Name}}
	}
	return p, nil
}

func parseCents(v string) (int64, error) {
	return strconv.ParseInt(v, 10, 64)
}

// splitList accepts "|" or ";" separated values.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == '|' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
