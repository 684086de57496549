package domain

import (
	"fmt"
	"time"
)

// Item represents a product listing in the catalog. Category and Brand are
// weak references resolved with Preload; deleting either is blocked while
// items still point at it, never cascaded.
type Item struct {
	ID            int64     `json:"id,string" form:"id"`
	Name          string    `gorm:"index" json:"name" form:"name"`
	Price         float64   `json:"price" form:"price"`
	Description   string    `json:"description" form:"description"`
	CategoryID    int64     `gorm:"index" json:"category_id,string" form:"category_id"`
	BrandID       int64     `gorm:"index" json:"brand_id,string" form:"brand_id"`
	NumberInStock int       `json:"number_in_stock" form:"number_in_stock"`
	ImageURL      string    `gorm:"size:1024" json:"image_url"`
	ImagePublicID string    `gorm:"size:256" json:"image_public_id"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brand         *Brand    `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Item) TableName() string {
	return "catalog_item"
}

// URL returns the item detail path.
func (i Item) URL() string {
	return fmt.Sprintf("/catalog/items/%d", i.ID)
}
