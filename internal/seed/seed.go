package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"
)

type userCreator interface {
	Create(ctx context.Context, in usersvc.CreateInput) (*domain.User, error)
}

type productWriter interface {
	UpsertBySKU(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// Admin is the account created on first seed.
type Admin struct {
	Email    string
	Password string
}

// Apply inserts an admin account and a small demo catalog. Safe to re-run:
// an existing admin email is left untouched and products upsert by sku.
func Apply(ctx context.Context, users userCreator, products productWriter, admin Admin, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	created, err := users.Create(ctx, usersvc.CreateInput{
		Name:     "Admin",
		Email:    admin.Email,
		Password: admin.Password,
		Role:     string(domain.RoleAdmin),
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.Printf("seed: admin exists email=%s", admin.Email)
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	default:
		logger.Printf("seed: created admin id=%s", created.ID)
	}

	for _, p := range demoProducts() {
		saved, err := products.UpsertBySKU(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
		logger.Printf("seed: product sku=%s id=%s", saved.SKU, saved.ID)
	}
	return nil
}

func demoProducts() []domain.Product {
	discount := int64(3499)
	products := []domain.Product{
		{
			Name:         "Classic Oxford Button-Down Shirt",
			Description:  "Cotton oxford shirt with a button-down collar.",
			PriceCents:   3999,
			CountInStock: 20,
			SKU:          "OX-SH-001",
			Category:     "Top Wear",
			Brand:        "Urban Threads",
			Sizes:        []string{"S", "M", "L", "XL"},
			Colors:       []string{"White", "Blue"},
			Collections:  "Business Casual",
			Material:     "Cotton",
			Gender:       "Men",
			Images:       []domain.ProductImage{{URL: "https://picsum.photos/500/500?random=1", AltText: "Classic Oxford Button-Down Shirt"}},
			IsPublished:  true,
			Rating:       4.5,
			NumReviews:   12,
		},
		{
			Name:         "Slim-Fit Stretch Chinos",
			Description:  "Stretch chinos with a tapered leg.",
			PriceCents:   4999,
			CountInStock: 15,
			SKU:          "CH-BT-002",
			Category:     "Bottom Wear",
			Brand:        "Modern Fit",
			Sizes:        []string{"M", "L"},
			Colors:       []string{"Beige", "Navy"},
			Collections:  "Casual Collection",
			Material:     "Cotton Blend",
			Gender:       "Women",
			Images:       []domain.ProductImage{{URL: "https://picsum.photos/500/500?random=2", AltText: "Slim-Fit Stretch Chinos"}},
			IsPublished:  true,
			Rating:       4.2,
			NumReviews:   8,
		},
		{
			Name:         "Lightweight Knit Sweater",
			Description:  "Fine gauge knit for layering.",
			PriceCents:   5999,
			CountInStock: 8,
			SKU:          "KN-TP-003",
			Category:     "Top Wear",
			Brand:        "ComfyWear",
			Sizes:        []string{"S", "M", "L"},
			Colors:       []string{"Gray", "Black"},
			Collections:  "Winter Essentials",
			Material:     "Wool",
			Gender:       "Women",
			Images:       []domain.ProductImage{{URL: "https://picsum.photos/500/500?random=3", AltText: "Lightweight Knit Sweater"}},
			IsPublished:  true,
			Rating:       4.8,
			NumReviews:   21,
		},
	}
	products[0].DiscountPriceCents = &discount
	return products
}
