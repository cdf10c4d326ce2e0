package domain

import "time"

type ProductImage struct {
	URL     string `json:"url" validate:"required"`
	AltText string `json:"altText,omitempty"`
}

type Dimensions struct {
	Length float64 `json:"length,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Product is a catalog entry. Prices are integer cents.
type Product struct {
	ID                 string         `json:"_id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	PriceCents         int64          `json:"price"`
	DiscountPriceCents *int64         `json:"discountPrice,omitempty"`
	CountInStock       int            `json:"countInStock"`
	SKU                string         `json:"sku"`
	Category           string         `json:"category"`
	Brand              string         `json:"brand,omitempty"`
	Sizes              []string       `json:"sizes"`
	Colors             []string       `json:"colors"`
	Collections        string         `json:"collections"`
	Material           string         `json:"material,omitempty"`
	Gender             string         `json:"gender,omitempty"`
	Images             []ProductImage `json:"images"`
	IsFeatured         bool           `json:"isFeatured"`
	IsPublished        bool           `json:"isPublished"`
	Rating             float64        `json:"rating"`
	NumReviews         int            `json:"numReviews"`
	Tags               []string       `json:"tags"`
	Dimensions         *Dimensions    `json:"dimensions,omitempty"`
	Weight             *float64       `json:"weight,omitempty"`
	CreatedBy          *string        `json:"user,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// PrimaryImage is the URL captured into cart lines.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// ProductSort names an ordering for catalog listing.
type ProductSort string

const (
	SortPriceAsc   ProductSort = "priceAsc"
	SortPriceDesc  ProductSort = "priceDesc"
	SortPopularity ProductSort = "popularity"
)

// ProductFilter narrows a catalog listing. Zero values mean no constraint.
type ProductFilter struct {
	Collection    string
	Category      string
	Materials     []string
	Brands        []string
	Sizes         []string
	Color         string
	Gender        string
	MinPriceCents *int64
	MaxPriceCents *int64
	Search        string
	Sort          ProductSort
	Limit         int
}
