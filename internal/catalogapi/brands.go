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

type brandForm struct {
	Name string `form:"name" json:"name"`
}

func validateBrandForm(f *brandForm) []FieldError {
	var errs []FieldError
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Brand name must not be empty"})
	}
	return errs
}

func (h *CatalogAPI) listBrands(c echo.Context) error {
	var brands []domain.Brand
	err := h.db.WithContext(c.Request().Context()).
		Order("name ASC").Find(&brands).Error
	if err != nil {
		return dberr(err, "Failed to query brands")
	}
	return render(c, http.StatusOK, "brands_list", "All Brands", echo.Map{
		"all_brands": brands,
	})
}

func (h *CatalogAPI) brandDetails(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Brand not found")
	}

	ctx := c.Request().Context()
	var brand domain.Brand
	err = h.db.WithContext(ctx).Where("id = ?", id).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Brand not found")
	} else if err != nil {
		return dberr(err, "Failed to query brand")
	}

	var items []domain.Item
	err = h.db.WithContext(ctx).
		Preload("Category").Preload("Brand").
		Where("brand_id = ?", id).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return dberr(err, "Failed to query brand items")
	}

	return render(c, http.StatusOK, "items_list", "Items in Brand: "+brand.Name, echo.Map{
		"brand":     brand,
		"all_items": buildItemSummaries(items),
	})
}

func (h *CatalogAPI) createBrandForm(c echo.Context) error {
	return render(c, http.StatusOK, "brand_form", "Create Brand", echo.Map{})
}

func (h *CatalogAPI) createBrand(c echo.Context) error {
	var form brandForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse brand form").SetInternal(err)
	}

	if errs := validateBrandForm(&form); len(errs) > 0 {
		return render(c, http.StatusBadRequest, "brand_form", "Create Brand", echo.Map{
			"brand":  form,
			"errors": errs,
		})
	}

	ctx := c.Request().Context()
	var existing domain.Brand
	err := h.db.WithContext(ctx).
		Where("name_key = ?", domain.NormalizeName(form.Name)).
		First(&existing).Error
	if err == nil {
		return redirect(c, existing.URL())
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dberr(err, "Failed to query brands")
	}

	brand := domain.Brand{
		ID:      common.UUIDint64(),
		Name:    form.Name,
		NameKey: domain.NormalizeName(form.Name),
	}
	if err := h.db.WithContext(ctx).Create(&brand).Error; err != nil {
		return dberr(err, "Failed to create brand")
	}

	return redirect(c, brand.URL())
}

func (h *CatalogAPI) updateBrandForm(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Brand not found")
	}

	var brand domain.Brand
	err = h.db.WithContext(c.Request().Context()).Where("id = ?", id).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Brand not found")
	} else if err != nil {
		return dberr(err, "Failed to query brand")
	}

	return render(c, http.StatusOK, "brand_form", "Update Brand", echo.Map{
		"brand": brand,
	})
}

func (h *CatalogAPI) updateBrand(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Brand not found")
	}

	var form brandForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse brand form").SetInternal(err)
	}

	if errs := validateBrandForm(&form); len(errs) > 0 {
		return render(c, http.StatusBadRequest, "brand_form", "Update Brand", echo.Map{
			"brand":  form,
			"errors": errs,
		})
	}

	ctx := c.Request().Context()
	var brand domain.Brand
	err = h.db.WithContext(ctx).Where("id = ?", id).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Brand not found")
	} else if err != nil {
		return dberr(err, "Failed to query brand")
	}

	brand.Name = form.Name
	brand.NameKey = domain.NormalizeName(form.Name)

	if err := h.db.WithContext(ctx).Save(&brand).Error; err != nil {
		return dberr(err, "Failed to update brand")
	}

	return redirect(c, brand.URL())
}

func (h *CatalogAPI) fetchBrandWithItems(c echo.Context, id int64) (*domain.Brand, []domain.Item, error) {
	var brand domain.Brand
	var items []domain.Item

	eg, ctx := errgroup.WithContext(c.Request().Context())
	eg.Go(func() error {
		return h.db.WithContext(ctx).Where("id = ?", id).First(&brand).Error
	})
	eg.Go(func() error {
		return h.db.WithContext(ctx).
			Select("id", "name", "description").
			Where("brand_id = ?", id).
			Order("name ASC").
			Find(&items).Error
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return &brand, items, nil
}

func (h *CatalogAPI) deleteBrandForm(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return redirect(c, "/catalog/brands")
	}

	brand, items, err := h.fetchBrandWithItems(c, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirect(c, "/catalog/brands")
	} else if err != nil {
		return dberr(err, "Failed to query brand")
	}

	return render(c, http.StatusOK, "brand_delete", "Delete Brand", echo.Map{
		"brand":          brand,
		"items_in_brand": items,
	})
}

func (h *CatalogAPI) deleteBrand(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return redirect(c, "/catalog/brands")
	}

	brand, items, err := h.fetchBrandWithItems(c, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirect(c, "/catalog/brands")
	} else if err != nil {
		return dberr(err, "Failed to query brand")
	}

	if len(items) > 0 {
		return render(c, http.StatusOK, "brand_delete", "Delete Brand", echo.Map{
			"brand":          brand,
			"items_in_brand": items,
		})
	}

	if err := h.db.WithContext(c.Request().Context()).
		Delete(&domain.Brand{}, "id = ?", id).Error; err != nil {
		return dberr(err, "Failed to delete brand")
	}
	return redirect(c, "/catalog/brands")
}
