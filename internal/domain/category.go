package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category represents a catalog taxonomy entry. NameKey holds the lowercased
// name under a unique index so duplicate names can't slip past the
// pre-insert check under concurrency.
type Category struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	NameKey     string    `gorm:"uniqueIndex;size:256" json:"-"`
	Description string    `json:"description" form:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "catalog_category"
}

// URL returns the category detail path.
func (c Category) URL() string {
	return fmt.Sprintf("/catalog/categories/%d", c.ID)
}

// NormalizeName lowercases a name for case-insensitive comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
