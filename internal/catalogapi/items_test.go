package catalogapi_test

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopinventory/internal/domain"
)

func validItemFields(categoryID, brandID int64) map[string]string {
	return map[string]string{
		"name":            "Mechanical Keyboard",
		"price":           "129.99",
		"description":     "A sturdy keyboard with clicky switches",
		"category":        strconv.FormatInt(categoryID, 10),
		"brand":           strconv.FormatInt(brandID, 10),
		"number_in_stock": "12",
	}
}

func TestCreateItemRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")

	rec := env.postMultipart("/catalog/items/create",
		validItemFields(cat.ID, brand.ID), []byte("jpeg-bytes"), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	require.NotEmpty(t, location)

	detail := env.get(location)
	require.Equal(t, http.StatusOK, detail.Code)
	body := env.body(detail)
	item := body["item"].(map[string]interface{})

	assert.Equal(t, "Mechanical Keyboard", item["name"])
	assert.Equal(t, 129.99, item["price"])
	assert.Equal(t, "A sturdy keyboard with clicky switches", item["description"])
	assert.EqualValues(t, 12, item["number_in_stock"])
	assert.Equal(t, "Peripherals", item["category"].(map[string]interface{})["name"])
	assert.Equal(t, "Clackers", item["brand"].(map[string]interface{})["name"])

	// Stored URL differs from the delivered one only by the inserted
	// transformation directive.
	var stored domain.Item
	require.NoError(t, env.db.First(&stored).Error)
	assert.NotContains(t, stored.ImageURL, "w_900")
	assert.Equal(t, "https://res.example.com/image/upload/w_900,h_600,c_fit,f_auto,q_auto/v1/shoppingInventory/img1.jpg",
		item["image_url"])
}

func TestCreateItemInvalidPricePreservesInput(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")

	fields := validItemFields(cat.ID, brand.ID)
	fields["price"] = "abc"
	rec := env.postMultipart("/catalog/items/create", fields, []byte("jpeg-bytes"), cookie)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := env.body(rec)
	assert.Equal(t, "item_form", body["view"])

	item := body["item"].(map[string]interface{})
	assert.Equal(t, "Mechanical Keyboard", item["name"])
	assert.Equal(t, "A sturdy keyboard with clicky switches", item["description"])
	assert.Equal(t, "abc", item["price"])

	errs := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "Price must contain only numbers.",
		errs[0].(map[string]interface{})["message"])

	// Option lists must be refetched for the re-rendered form.
	assert.Len(t, body["categories"].([]interface{}), 1)
	assert.Len(t, body["brands"].([]interface{}), 1)

	assert.EqualValues(t, 0, env.count(&domain.Item{}))
	assert.Zero(t, env.media.uploads)
}

func TestCreateItemMissingFile(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")

	rec := env.postMultipart("/catalog/items/create",
		validItemFields(cat.ID, brand.ID), nil, cookie)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "File not provided")
	assert.EqualValues(t, 0, env.count(&domain.Item{}))
}

func TestCreateItemUnknownCategoryRejected(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	brand := env.createBrand("Clackers")

	fields := validItemFields(99999, brand.ID)
	rec := env.postMultipart("/catalog/items/create", fields, []byte("jpeg-bytes"), cookie)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Selected category does not exist")
	assert.EqualValues(t, 0, env.count(&domain.Item{}))
}

func TestCreateItemReferenceQueryFailure(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")

	// With the category table gone the existence check is a database
	// failure, which must surface as a 500, not a validation message.
	require.NoError(t, env.db.Migrator().DropTable(&domain.Category{}))

	rec := env.postMultipart("/catalog/items/create",
		validItemFields(cat.ID, brand.ID), []byte("jpeg-bytes"), cookie)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := env.body(rec)
	assert.Equal(t, "Failed to query item references", body["message"])
	assert.EqualValues(t, 0, env.media.uploads)
}

func TestCreateItemRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")

	rec := env.postMultipart("/catalog/items/create",
		validItemFields(cat.ID, brand.ID), []byte("jpeg-bytes"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/loginwarning", rec.Header().Get("Location"))
	assert.EqualValues(t, 0, env.count(&domain.Item{}))
}

func TestUpdateItemReplacesImageAndKeepsID(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")

	rec := env.postMultipart("/catalog/items/create",
		validItemFields(cat.ID, brand.ID), []byte("first-image"), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var created domain.Item
	require.NoError(t, env.db.First(&created).Error)
	firstPublicID := created.ImagePublicID

	fields := validItemFields(cat.ID, brand.ID)
	fields["name"] = "Mechanical Keyboard v2"
	rec = env.postMultipart(fmt.Sprintf("/catalog/items/%d/update", created.ID),
		fields, []byte("second-image"), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, fmt.Sprintf("/catalog/items/%d", created.ID), rec.Header().Get("Location"))

	var updated domain.Item
	require.NoError(t, env.db.First(&updated).Error)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Mechanical Keyboard v2", updated.Name)
	assert.NotEqual(t, firstPublicID, updated.ImagePublicID)

	// Old asset must be unreachable, only the new one live.
	assert.Contains(t, env.media.destroyed, firstPublicID)
	assert.False(t, env.media.live[firstPublicID])
	assert.True(t, env.media.live[updated.ImagePublicID])
	assert.EqualValues(t, 1, env.count(&domain.Item{}))
}

func TestUpdateMissingItemRedirectsToList(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")

	rec := env.postMultipart("/catalog/items/424242/update",
		validItemFields(cat.ID, brand.ID), []byte("jpeg-bytes"), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/catalog/items", rec.Header().Get("Location"))
}

func TestDeleteItemRemovesAsset(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")
	item := env.createItem("Old Keyboard", cat.ID, brand.ID)

	rec := env.postForm(fmt.Sprintf("/catalog/items/%d/delete", item.ID), nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/catalog/items", rec.Header().Get("Location"))

	assert.EqualValues(t, 0, env.count(&domain.Item{}))
	assert.Contains(t, env.media.destroyed, item.ImagePublicID)
}

func TestDeleteMissingItemRedirectsWithoutError(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAsAdmin()

	rec := env.postForm("/catalog/items/424242/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/catalog/items", rec.Header().Get("Location"))
}

func TestListItemsSortedWithThumbTransform(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")
	env.createItem("Zebra Pad", cat.ID, brand.ID)
	env.createItem("Alpha Mouse", cat.ID, brand.ID)

	rec := env.get("/catalog/items")
	require.Equal(t, http.StatusOK, rec.Code)
	body := env.body(rec)
	items := body["all_items"].([]interface{})
	require.Len(t, items, 2)

	first := items[0].(map[string]interface{})
	second := items[1].(map[string]interface{})
	assert.Equal(t, "Alpha Mouse", first["name"])
	assert.Equal(t, "Zebra Pad", second["name"])
	assert.Contains(t, first["image_url"], "/upload/w_300,h_300,c_auto,f_auto,q_auto/")
	assert.Contains(t, first["url"], "/catalog/items/")
}

func TestItemDetailsNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get("/catalog/items/424242")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexCounts(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Peripherals", "Keyboards, mice and such")
	brand := env.createBrand("Clackers")
	env.createItem("Alpha Mouse", cat.ID, brand.ID)

	rec := env.get("/catalog")
	require.Equal(t, http.StatusOK, rec.Code)
	body := env.body(rec)
	assert.EqualValues(t, 1, body["number_of_items"])
	assert.EqualValues(t, 1, body["number_of_categories"])
	assert.EqualValues(t, 1, body["number_of_brands"])
}
