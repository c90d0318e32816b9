package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Product is a catalog entry. Slug uniqueness is enforced by the database.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID               int64            `bun:",pk,autoincrement" json:"id"`
	Name             string           `bun:"name,notnull" json:"name"`
	Slug             string           `bun:"slug,notnull,unique" json:"slug"`
	Description      string           `bun:"description,nullzero" json:"description"`
	Price            decimal.Decimal  `bun:"price,type:decimal(12,2),notnull" json:"price"`
	CompareAtPrice   *decimal.Decimal `bun:"compare_at_price,type:decimal(12,2)" json:"compare_at_price"`
	CategoryID       *int64           `bun:"category_id" json:"category_id"`
	Stock            int              `bun:"stock,notnull" json:"stock"`
	IsActive         bool             `bun:"is_active,notnull" json:"is_active"`
	IsFeatured       bool             `bun:"is_featured,notnull" json:"is_featured"`
	IsTrending       bool             `bun:"is_trending,notnull" json:"is_trending"`
	ImageURL         *string          `bun:"image_url" json:"image_url"`
	AdditionalImages []string         `bun:"additional_images,type:jsonb,nullzero" json:"additional_images"`
	CreatedAt        time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time        `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

// Category groups products.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Slug      string    `bun:"slug,notnull,unique" json:"slug"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
