package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

const (
	newArrivalsLimit = 8
	similarLimit     = 4
)

type Service struct {
	repo     productrepo.Repository
	validate *validator.Validate
	logger   *log.Logger
}

func New(repo productrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, validate: validator.New(), logger: logger}
}

// CreateInput is an admin's new catalog entry. Prices are integer cents.
type CreateInput struct {
	Name               string                `json:"name" validate:"required"`
	Description        string                `json:"description" validate:"required"`
	PriceCents         int64                 `json:"price" validate:"gt=0"`
	DiscountPriceCents *int64                `json:"discountPrice" validate:"omitempty,gte=0"`
	CountInStock       int                   `json:"countInStock" validate:"gte=0"`
	SKU                string                `json:"sku" validate:"required"`
	Category           string                `json:"category" validate:"required"`
	Brand              string                `json:"brand"`
	Sizes              []string              `json:"sizes" validate:"required,min=1"`
	Colors             []string              `json:"colors" validate:"required,min=1"`
	Collections        string                `json:"collections" validate:"required"`
	Material           string                `json:"material"`
	Gender             string                `json:"gender" validate:"omitempty,oneof=Men Women Unisex"`
	Images             []domain.ProductImage `json:"images" validate:"dive"`
	IsFeatured         bool                  `json:"isFeatured"`
	IsPublished        bool                  `json:"isPublished"`
	Tags               []string              `json:"tags"`
	Dimensions         *domain.Dimensions    `json:"dimensions"`
	Weight             *float64              `json:"weight" validate:"omitempty,gte=0"`
}

// UpdateInput changes only the fields that are present.
type UpdateInput struct {
	Name               *string               `json:"name" validate:"omitempty,min=1"`
	Description        *string               `json:"description"`
	PriceCents         *int64                `json:"price" validate:"omitempty,gt=0"`
	DiscountPriceCents *int64                `json:"discountPrice" validate:"omitempty,gte=0"`
	CountInStock       *int                  `json:"countInStock" validate:"omitempty,gte=0"`
	SKU                *string               `json:"sku" validate:"omitempty,min=1"`
	Category           *string               `json:"category"`
	Brand              *string               `json:"brand"`
	Sizes              []string              `json:"sizes"`
	Colors             []string              `json:"colors"`
	Collections        *string               `json:"collections"`
	Material           *string               `json:"material"`
	Gender             *string               `json:"gender" validate:"omitempty,oneof=Men Women Unisex"`
	Images             []domain.ProductImage `json:"images" validate:"dive"`
	IsFeatured         *bool                 `json:"isFeatured"`
	IsPublished        *bool                 `json:"isPublished"`
	Tags               []string              `json:"tags"`
	Dimensions         *domain.Dimensions    `json:"dimensions"`
	Weight             *float64              `json:"weight" validate:"omitempty,gte=0"`
}

func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	return p, err
}

// BestSeller returns the highest rated product.
func (s *Service) BestSeller(ctx context.Context) (*domain.Product, error) {
	p, err := s.repo.TopRated(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no best seller found: %w", domain.ErrNotFound)
	}
	return p, err
}

func (s *Service) NewArrivals(ctx context.Context) ([]domain.Product, error) {
	return s.repo.Newest(ctx, newArrivalsLimit)
}

// Similar returns up to four products with the same gender and category.
func (s *Service) Similar(ctx context.Context, id string) ([]domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Similar(ctx, *p, similarLimit)
}

func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	p := domain.Product{
		Name:               strings.TrimSpace(in.Name),
		Description:        in.Description,
		PriceCents:         in.PriceCents,
		DiscountPriceCents: in.DiscountPriceCents,
		CountInStock:       in.CountInStock,
		SKU:                strings.TrimSpace(in.SKU),
		Category:           in.Category,
		Brand:              in.Brand,
		Sizes:              in.Sizes,
		Colors:             in.Colors,
		Collections:        in.Collections,
		Material:           in.Material,
		Gender:             in.Gender,
		Images:             in.Images,
		IsFeatured:         in.IsFeatured,
		IsPublished:        in.IsPublished,
		Tags:               in.Tags,
		Dimensions:         in.Dimensions,
		Weight:             in.Weight,
	}
	if createdBy != "" {
		p.CreatedBy = &createdBy
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("sku %q already exists: %w", p.SKU, domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.Printf("product: created id=%s sku=%s", created.ID, created.SKU)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(p)
	updated, err := s.repo.Update(ctx, *p)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("sku %q already exists: %w", p.SKU, domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.Printf("product: updated id=%s", id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product not found: %w", domain.ErrNotFound)
		}
		return err
	}
	s.logger.Printf("product: deleted id=%s", id)
	return nil
}

func (in UpdateInput) applyTo(p *domain.Product) {
	setString(&p.Name, in.Name)
	setString(&p.Description, in.Description)
	setString(&p.SKU, in.SKU)
	setString(&p.Category, in.Category)
	setString(&p.Brand, in.Brand)
	setString(&p.Collections, in.Collections)
	setString(&p.Material, in.Material)
	setString(&p.Gender, in.Gender)
	if in.PriceCents != nil {
		p.PriceCents = *in.PriceCents
	}
	if in.DiscountPriceCents != nil {
		p.DiscountPriceCents = in.DiscountPriceCents
	}
	if in.CountInStock != nil {
		p.CountInStock = *in.CountInStock
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	if len(in.Sizes) > 0 {
		p.Sizes = in.Sizes
	}
	if len(in.Colors) > 0 {
		p.Colors = in.Colors
	}
	if len(in.Images) > 0 {
		p.Images = in.Images
	}
	if len(in.Tags) > 0 {
		p.Tags = in.Tags
	}
	if in.Dimensions != nil {
		p.Dimensions = in.Dimensions
	}
	if in.Weight != nil {
		p.Weight = in.Weight
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
