package domain

import (
	"fmt"
	"time"
)

// Brand represents a product brand. Same case-insensitive uniqueness
// mechanism as Category.
type Brand struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	NameKey   string    `gorm:"uniqueIndex;size:256" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Brand) TableName() string {
	return "catalog_brand"
}

// URL returns the brand detail path.
func (b Brand) URL() string {
	return fmt.Sprintf("/catalog/brands/%d", b.ID)
}
