package catalogapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"shopinventory/internal/domain"
	"shopinventory/internal/media"
	"shopinventory/pkg/common"
)

// itemForm carries the raw submitted values. Numeric fields stay strings so
// a bad submission can be echoed back on the re-rendered form.
type itemForm struct {
	Name          string `form:"name" json:"name"`
	Price         string `form:"price" json:"price"`
	Description   string `form:"description" json:"description"`
	Category      string `form:"category" json:"category"`
	Brand         string `form:"brand" json:"brand"`
	NumberInStock string `form:"number_in_stock" json:"number_in_stock"`
}

type itemFields struct {
	price      float64
	stock      int
	categoryID int64
	brandID    int64
}

// validateItemForm checks the form and, for well-formed reference ids, that
// the referenced category and brand actually exist. A non-nil error is a
// database failure, not a validation outcome.
func (h *CatalogAPI) validateItemForm(ctx context.Context, f *itemForm) (itemFields, []FieldError, error) {
	var fields itemFields
	var errs []FieldError

	f.Name = strings.TrimSpace(f.Name)
	f.Price = strings.TrimSpace(f.Price)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.Brand = strings.TrimSpace(f.Brand)
	f.NumberInStock = strings.TrimSpace(f.NumberInStock)

	if f.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Item name must not be empty."})
	}

	if f.Price == "" {
		errs = append(errs, FieldError{Field: "price", Message: "price must be specified."})
	} else if price, err := strconv.ParseFloat(f.Price, 64); err != nil {
		errs = append(errs, FieldError{Field: "price", Message: "Price must contain only numbers."})
	} else {
		fields.price = price
	}

	if len(f.Description) < 10 {
		errs = append(errs, FieldError{Field: "description", Message: "Description must be at least 10 characters long"})
	}

	if f.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "Category must not be empty"})
	} else if id, err := strconv.ParseInt(f.Category, 10, 64); err != nil {
		errs = append(errs, FieldError{Field: "category", Message: "Selected category does not exist"})
	} else {
		var count int64
		if err := h.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fields, nil, err
		}
		if count == 0 {
			errs = append(errs, FieldError{Field: "category", Message: "Selected category does not exist"})
		} else {
			fields.categoryID = id
		}
	}

	if f.Brand == "" {
		errs = append(errs, FieldError{Field: "brand", Message: "Brand name must not be empty"})
	} else if id, err := strconv.ParseInt(f.Brand, 10, 64); err != nil {
		errs = append(errs, FieldError{Field: "brand", Message: "Selected brand does not exist"})
	} else {
		var count int64
		if err := h.db.WithContext(ctx).Model(&domain.Brand{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fields, nil, err
		}
		if count == 0 {
			errs = append(errs, FieldError{Field: "brand", Message: "Selected brand does not exist"})
		} else {
			fields.brandID = id
		}
	}

	if f.NumberInStock == "" {
		errs = append(errs, FieldError{Field: "number_in_stock", Message: "Number of items in stock must not be empty."})
	} else if stock, err := strconv.Atoi(f.NumberInStock); err != nil {
		errs = append(errs, FieldError{Field: "number_in_stock", Message: "Number of items in stock must be an integer"})
	} else {
		fields.stock = stock
	}

	return fields, errs, nil
}

// itemSummary is the list-page projection of an item.
type itemSummary struct {
	ID       int64   `json:"id,string"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
	URL      string  `json:"url"`
	Category string  `json:"category,omitempty"`
	Brand    string  `json:"brand,omitempty"`
}

func buildItemSummaries(items []domain.Item) []itemSummary {
	out := make([]itemSummary, 0, len(items))
	for _, it := range items {
		s := itemSummary{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			ImageURL: media.TransformURL(it.ImageURL, media.ThumbTransform),
			URL:      it.URL(),
		}
		if it.Category != nil {
			s.Category = it.Category.Name
		}
		if it.Brand != nil {
			s.Brand = it.Brand.Name
		}
		out = append(out, s)
	}
	return out
}

func (h *CatalogAPI) listItems(c echo.Context) error {
	var items []domain.Item
	err := h.db.WithContext(c.Request().Context()).
		Preload("Category").Preload("Brand").
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return dberr(err, "Failed to query items")
	}

	return render(c, http.StatusOK, "items_list", "All Items", echo.Map{
		"all_items": buildItemSummaries(items),
	})
}

func (h *CatalogAPI) itemDetails(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "No item found")
	}

	var item domain.Item
	err = h.db.WithContext(c.Request().Context()).
		Preload("Category").Preload("Brand").
		Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "No item found")
	} else if err != nil {
		return dberr(err, "Failed to query item")
	}

	item.ImageURL = media.TransformURL(item.ImageURL, media.DetailTransform)
	return render(c, http.StatusOK, "item_details", item.Name, echo.Map{
		"item": item,
		"url":  item.URL(),
	})
}

func (h *CatalogAPI) createItemForm(c echo.Context) error {
	categories, brands, err := h.fetchOptions(c.Request().Context())
	if err != nil {
		return dberr(err, "Failed to query item form options")
	}
	return render(c, http.StatusOK, "item_form", "Create New Item", echo.Map{
		"categories": categories,
		"brands":     brands,
	})
}

func (h *CatalogAPI) renderItemForm(c echo.Context, title string, form *itemForm, errs []FieldError) error {
	categories, brands, err := h.fetchOptions(c.Request().Context())
	if err != nil {
		return dberr(err, "Failed to query item form options")
	}
	return render(c, http.StatusBadRequest, "item_form", title, echo.Map{
		"item":       form,
		"categories": categories,
		"brands":     brands,
		"errors":     errs,
	})
}

// readImageFile pulls the uploaded image out of the multipart body. A
// missing file is an explicit failure, not a validation message.
func readImageFile(c echo.Context) (string, []byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "File not provided").SetInternal(media.ErrNoFile)
	}
	src, err := file.Open()
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "File not provided").SetInternal(err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil || len(data) == 0 {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "File not provided").SetInternal(media.ErrNoFile)
	}
	return file.Filename, data, nil
}

func (h *CatalogAPI) createItem(c echo.Context) error {
	var form itemForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse item form").SetInternal(err)
	}

	ctx := c.Request().Context()
	fields, errs, err := h.validateItemForm(ctx, &form)
	if err != nil {
		return dberr(err, "Failed to query item references")
	}
	if len(errs) > 0 {
		return h.renderItemForm(c, "Create New Item", &form, errs)
	}

	filename, data, err := readImageFile(c)
	if err != nil {
		return err
	}
	asset, err := h.media.Upload(ctx, filename, data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Image upload failed").SetInternal(err)
	}

	item := domain.Item{
		ID:            common.UUIDint64(),
		Name:          form.Name,
		Price:         fields.price,
		Description:   form.Description,
		CategoryID:    fields.categoryID,
		BrandID:       fields.brandID,
		NumberInStock: fields.stock,
		ImageURL:      asset.SecureURL,
		ImagePublicID: asset.PublicID,
	}
	if err := h.db.WithContext(ctx).Create(&item).Error; err != nil {
		return dberr(err, "Failed to create item")
	}

	return redirect(c, item.URL())
}

func (h *CatalogAPI) updateItemForm(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "No item found")
	}

	var item domain.Item
	var categories []domain.Category
	var brands []domain.Brand

	eg, ctx := errgroup.WithContext(c.Request().Context())
	eg.Go(func() error {
		return h.db.WithContext(ctx).Preload("Category").Preload("Brand").
			Where("id = ?", id).First(&item).Error
	})
	eg.Go(func() error {
		return h.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	})
	eg.Go(func() error {
		return h.db.WithContext(ctx).Order("name ASC").Find(&brands).Error
	})
	if err := eg.Wait(); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No item found")
		}
		return dberr(err, "Failed to query item")
	}

	return render(c, http.StatusOK, "item_form", "Update Item", echo.Map{
		"item":       item,
		"categories": categories,
		"brands":     brands,
	})
}

func (h *CatalogAPI) updateItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return redirect(c, "/catalog/items")
	}

	var form itemForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse item form").SetInternal(err)
	}

	ctx := c.Request().Context()
	fields, errs, err := h.validateItemForm(ctx, &form)
	if err != nil {
		return dberr(err, "Failed to query item references")
	}
	if len(errs) > 0 {
		return h.renderItemForm(c, "Update Item", &form, errs)
	}

	var item domain.Item
	err = h.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirect(c, "/catalog/items")
	} else if err != nil {
		return dberr(err, "Failed to query item")
	}

	filename, data, err := readImageFile(c)
	if err != nil {
		return err
	}

	// Replace the asset before the row: the old image is gone once
	// destroyed, so keep the new upload and the write together.
	if err := h.media.Destroy(ctx, item.ImagePublicID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Image delete failed").SetInternal(err)
	}
	asset, err := h.media.Upload(ctx, filename, data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Image upload failed").SetInternal(err)
	}

	// The fetched row keeps its id; assigning a fresh one here would orphan
	// the detail URL.
	item.Name = form.Name
	item.Price = fields.price
	item.Description = form.Description
	item.CategoryID = fields.categoryID
	item.BrandID = fields.brandID
	item.NumberInStock = fields.stock
	item.ImageURL = asset.SecureURL
	item.ImagePublicID = asset.PublicID

	if err := h.db.WithContext(ctx).Save(&item).Error; err != nil {
		return dberr(err, "Failed to update item")
	}

	return redirect(c, item.URL())
}

func (h *CatalogAPI) deleteItemForm(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return redirect(c, "/catalog/items")
	}

	var item domain.Item
	err = h.db.WithContext(c.Request().Context()).
		Select("id", "name", "description").
		Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirect(c, "/catalog/items")
	} else if err != nil {
		return dberr(err, "Failed to query item")
	}

	return render(c, http.StatusOK, "delete_item", "Delete Item", echo.Map{
		"item": item,
	})
}

func (h *CatalogAPI) deleteItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return redirect(c, "/catalog/items")
	}

	ctx := c.Request().Context()
	var item domain.Item
	err = h.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirect(c, "/catalog/items")
	} else if err != nil {
		return dberr(err, "Failed to query item")
	}

	if err := h.media.Destroy(ctx, item.ImagePublicID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Image delete failed").SetInternal(err)
	}
	if err := h.db.WithContext(ctx).Delete(&domain.Item{}, "id = ?", id).Error; err != nil {
		return dberr(err, "Failed to delete item")
	}

	return redirect(c, "/catalog/items")
}
