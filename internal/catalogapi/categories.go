package catalogapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"shopinventory/internal/domain"
	"shopinventory/pkg/common"
)

type categoryForm struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
}

func validateCategoryForm(f *categoryForm) []FieldError {
	var errs []FieldError
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)

	if f.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Category name must not be empty"})
	}
	if len(f.Description) < 10 {
		errs = append(errs, FieldError{Field: "description", Message: "Description must be atleast 10 characters long"})
	}
	return errs
}

func (h *CatalogAPI) listCategories(c echo.Context) error {
	var categories []domain.Category
	err := h.db.WithContext(c.Request().Context()).
		Order("name ASC").Find(&categories).Error
	if err != nil {
		return dberr(err, "Failed to query categories")
	}
	return render(c, http.StatusOK, "categories_list", "All Categories", echo.Map{
		"all_categories": categories,
	})
}

func (h *CatalogAPI) categoryDetails(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	ctx := c.Request().Context()
	var category domain.Category
	err = h.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	} else if err != nil {
		return dberr(err, "Failed to query category")
	}

	var items []domain.Item
	err = h.db.WithContext(ctx).
		Preload("Category").Preload("Brand").
		Where("category_id = ?", id).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return dberr(err, "Failed to query category items")
	}

	return render(c, http.StatusOK, "items_list", "Items in Category: "+category.Name, echo.Map{
		"category":  category,
		"all_items": buildItemSummaries(items),
	})
}

func (h *CatalogAPI) createCategoryForm(c echo.Context) error {
	return render(c, http.StatusOK, "category_form", "Create Category", echo.Map{})
}

func (h *CatalogAPI) createCategory(c echo.Context) error {
	var form categoryForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse category form").SetInternal(err)
	}

	if errs := validateCategoryForm(&form); len(errs) > 0 {
		return render(c, http.StatusBadRequest, "category_form", "Create Category", echo.Map{
			"category": form,
			"errors":   errs,
		})
	}

	ctx := c.Request().Context()

	// A same-named category is not an error: the request lands on the
	// existing one's page instead.
	var existing domain.Category
	err := h.db.WithContext(ctx).
		Where("name_key = ?", domain.NormalizeName(form.Name)).
		First(&existing).Error
	if err == nil {
		return redirect(c, existing.URL())
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dberr(err, "Failed to query categories")
	}

	category := domain.Category{
		ID:          common.UUIDint64(),
		Name:        form.Name,
		NameKey:     domain.NormalizeName(form.Name),
		Description: form.Description,
	}
	if err := h.db.WithContext(ctx).Create(&category).Error; err != nil {
		return dberr(err, "Failed to create category")
	}

	return redirect(c, category.URL())
}

func (h *CatalogAPI) updateCategoryForm(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	var category domain.Category
	err = h.db.WithContext(c.Request().Context()).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	} else if err != nil {
		return dberr(err, "Failed to query category")
	}

	return render(c, http.StatusOK, "category_form", "Update Category", echo.Map{
		"category": category,
	})
}

func (h *CatalogAPI) updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	var form categoryForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse category form").SetInternal(err)
	}

	if errs := validateCategoryForm(&form); len(errs) > 0 {
		return render(c, http.StatusBadRequest, "category_form", "Update Category", echo.Map{
			"category": form,
			"errors":   errs,
		})
	}

	ctx := c.Request().Context()
	var category domain.Category
	err = h.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	} else if err != nil {
		return dberr(err, "Failed to query category")
	}

	// Overwrite in place, id preserved.
	category.Name = form.Name
	category.NameKey = domain.NormalizeName(form.Name)
	category.Description = form.Description

	if err := h.db.WithContext(ctx).Save(&category).Error; err != nil {
		return dberr(err, "Failed to update category")
	}

	return redirect(c, category.URL())
}

// fetchCategoryWithItems loads a category and its referencing items
// concurrently for the delete-confirmation flow.
func (h *CatalogAPI) fetchCategoryWithItems(c echo.Context, id int64) (*domain.Category, []domain.Item, error) {
	var category domain.Category
	var items []domain.Item

	eg, ctx := errgroup.WithContext(c.Request().Context())
	eg.Go(func() error {
		return h.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	})
	eg.Go(func() error {
		return h.db.WithContext(ctx).
			Select("id", "name", "description").
			Where("category_id = ?", id).
			Order("name ASC").
			Find(&items).Error
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return &category, items, nil
}

func (h *CatalogAPI) deleteCategoryForm(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return redirect(c, "/catalog/categories")
	}

	category, items, err := h.fetchCategoryWithItems(c, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirect(c, "/catalog/categories")
	} else if err != nil {
		return dberr(err, "Failed to query category")
	}

	return render(c, http.StatusOK, "category_delete", "Delete Category", echo.Map{
		"category":          category,
		"items_in_category": items,
	})
}

func (h *CatalogAPI) deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return redirect(c, "/catalog/categories")
	}

	// Re-checked here, not just on the confirmation GET: items may have
	// been added between the two requests.
	category, items, err := h.fetchCategoryWithItems(c, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirect(c, "/catalog/categories")
	} else if err != nil {
		return dberr(err, "Failed to query category")
	}

	if len(items) > 0 {
		return render(c, http.StatusOK, "category_delete", "Delete Category", echo.Map{
			"category":          category,
			"items_in_category": items,
		})
	}

	if err := h.db.WithContext(c.Request().Context()).
		Delete(&domain.Category{}, "id = ?", id).Error; err != nil {
		return dberr(err, "Failed to delete category")
	}
	return redirect(c, "/catalog/categories")
}
