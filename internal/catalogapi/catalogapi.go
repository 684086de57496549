// Package catalogapi implements the catalog's HTTP surface: item, category
// and brand CRUD plus signup/login/session routes. Anonymous visitors can
// browse; every mutating route sits behind the session admin gate.
package catalogapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"shopinventory/internal/domain"
	"shopinventory/internal/media"
)

// Settings is the slice of the settings manager the handlers need.
type Settings interface {
	GetString(category, name string) string
}

type CatalogAPI struct {
	db       *gorm.DB
	media    media.Service
	settings Settings
}

func New(db *gorm.DB, mediaService media.Service, settings Settings) *CatalogAPI {
	return &CatalogAPI{db: db, media: mediaService, settings: settings}
}

// Register wires all catalog routes onto the router.
func (h *CatalogAPI) Register(e *echo.Echo) {
	g := e.Group("/catalog", h.LoadUser)

	g.GET("", h.index)

	g.GET("/items", h.listItems)
	g.GET("/items/create", h.createItemForm, h.RequireAdmin)
	g.POST("/items/create", h.createItem, h.RequireAdmin)
	g.GET("/items/:id", h.itemDetails)
	g.GET("/items/:id/update", h.updateItemForm, h.RequireAdmin)
	g.POST("/items/:id/update", h.updateItem, h.RequireAdmin)
	g.GET("/items/:id/delete", h.deleteItemForm, h.RequireAdmin)
	g.POST("/items/:id/delete", h.deleteItem, h.RequireAdmin)

	g.GET("/categories", h.listCategories)
	g.GET("/categories/create", h.createCategoryForm, h.RequireAdmin)
	g.POST("/categories/create", h.createCategory, h.RequireAdmin)
	g.GET("/categories/:id", h.categoryDetails)
	g.GET("/categories/:id/update", h.updateCategoryForm, h.RequireAdmin)
	g.POST("/categories/:id/update", h.updateCategory, h.RequireAdmin)
	g.GET("/categories/:id/delete", h.deleteCategoryForm, h.RequireAdmin)
	g.POST("/categories/:id/delete", h.deleteCategory, h.RequireAdmin)

	g.GET("/brands", h.listBrands)
	g.GET("/brands/create", h.createBrandForm, h.RequireAdmin)
	g.POST("/brands/create", h.createBrand, h.RequireAdmin)
	g.GET("/brands/:id", h.brandDetails)
	g.GET("/brands/:id/update", h.updateBrandForm, h.RequireAdmin)
	g.POST("/brands/:id/update", h.updateBrand, h.RequireAdmin)
	g.GET("/brands/:id/delete", h.deleteBrandForm, h.RequireAdmin)
	g.POST("/brands/:id/delete", h.deleteBrand, h.RequireAdmin)

	g.GET("/login", h.loginForm)
	g.POST("/login", h.login)
	g.GET("/logout", h.logout)
	g.GET("/signup", h.signupForm)
	g.POST("/signup", h.signup)
	g.GET("/user", h.userPage)
	g.GET("/loginwarning", h.loginWarning)
}

func (h *CatalogAPI) index(c echo.Context) error {
	var itemCount, categoryCount, brandCount int64

	eg, ctx := errgroup.WithContext(c.Request().Context())
	eg.Go(func() error {
		return h.db.WithContext(ctx).Model(&domain.Item{}).Count(&itemCount).Error
	})
	eg.Go(func() error {
		return h.db.WithContext(ctx).Model(&domain.Category{}).Count(&categoryCount).Error
	})
	eg.Go(func() error {
		return h.db.WithContext(ctx).Model(&domain.Brand{}).Count(&brandCount).Error
	})
	if err := eg.Wait(); err != nil {
		return dberr(err, "Failed to query catalog counts")
	}

	return render(c, 200, "index", "Fake Store Home", echo.Map{
		"number_of_items":      itemCount,
		"number_of_categories": categoryCount,
		"number_of_brands":     brandCount,
	})
}

// fetchOptions loads the category and brand option lists, name ascending,
// concurrently. Re-rendered forms must refetch them on every pass.
func (h *CatalogAPI) fetchOptions(ctx context.Context) ([]domain.Category, []domain.Brand, error) {
	var categories []domain.Category
	var brands []domain.Brand

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return h.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	})
	eg.Go(func() error {
		return h.db.WithContext(ctx).Order("name ASC").Find(&brands).Error
	})
	return categories, brands, eg.Wait()
}
