package catalogapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopinventory/internal/app"
	"shopinventory/internal/catalogapi"
	"shopinventory/internal/domain"
	"shopinventory/internal/media"
	"shopinventory/internal/sessionstore"
	"shopinventory/internal/webserver"
	"shopinventory/pkg/common"
)

const testPassphrase = "open-sesame"

type fakeMedia struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	live      map[string]bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{live: map[string]bool{}}
}

func (f *fakeMedia) Upload(_ context.Context, _ string, data []byte) (*media.Asset, error) {
	if len(data) == 0 {
		return nil, media.ErrNoFile
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	id := fmt.Sprintf("shoppingInventory/img%d", f.uploads)
	f.live[id] = true
	return &media.Asset{
		SecureURL: "https://res.example.com/image/upload/v1/" + id + ".jpg",
		PublicID:  id,
	}, nil
}

func (f *fakeMedia) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, publicID)
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type testEnv struct {
	t     *testing.T
	db    *gorm.DB
	e     *echo.Echo
	media *fakeMedia
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	e := echo.New()
	e.JSONSerializer = webserver.NewJSONSerializer()
	e.Validator = webserver.NewValidator()
	e.HTTPErrorHandler = webserver.NewHTTPErrorHandler(true)

	store := sessionstore.New(db, time.Hour, []byte("test-secret"))
	e.Use(session.Middleware(store))

	settings := app.NewSettingsManager(db)
	require.NoError(t, settings.Set(app.SettingsSystem, app.SettingsAdminPassphrase, testPassphrase))

	fake := newFakeMedia()
	catalogapi.New(db, fake, settings).Register(e)

	return &testEnv{t: t, db: db, e: e, media: fake}
}

func (env *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return env.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (env *testEnv) postForm(path string, values url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return env.do(req, cookies...)
}

// postMultipart submits a multipart form; image == nil omits the file part.
func (env *testEnv) postMultipart(path string, fields map[string]string, image []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.t, w.WriteField(k, v))
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "photo.jpg")
		require.NoError(env.t, err)
		_, err = fw.Write(image)
		require.NoError(env.t, err)
	}
	require.NoError(env.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return env.do(req, cookies...)
}

func (env *testEnv) body(rec *httptest.ResponseRecorder) map[string]interface{} {
	env.t.Helper()
	var out map[string]interface{}
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (env *testEnv) createAdmin(username, password string) *domain.SysUser {
	env.t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(env.t, err)
	user := &domain.SysUser{
		ID:       common.UUIDint64(),
		Username: username,
		Password: string(hashed),
		Admin:    true,
		Status:   common.ENABLED,
	}
	require.NoError(env.t, env.db.Create(user).Error)
	return user
}

// login authenticates and returns the session cookie for later requests.
func (env *testEnv) login(username, password string) *http.Cookie {
	env.t.Helper()
	rec := env.postForm("/catalog/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(env.t, http.StatusSeeOther, rec.Code, "login should redirect, body: %s", rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(env.t, cookies)
	return cookies[0]
}

func (env *testEnv) loginAsAdmin() *http.Cookie {
	env.t.Helper()
	env.createAdmin("testadmin", "secret12345")
	return env.login("testadmin", "secret12345")
}

func (env *testEnv) createCategory(name, description string) *domain.Category {
	env.t.Helper()
	cat := &domain.Category{
		ID:          common.UUIDint64(),
		Name:        name,
		NameKey:     domain.NormalizeName(name),
		Description: description,
	}
	require.NoError(env.t, env.db.Create(cat).Error)
	return cat
}

func (env *testEnv) createBrand(name string) *domain.Brand {
	env.t.Helper()
	brand := &domain.Brand{
		ID:      common.UUIDint64(),
		Name:    name,
		NameKey: domain.NormalizeName(name),
	}
	require.NoError(env.t, env.db.Create(brand).Error)
	return brand
}

func (env *testEnv) createItem(name string, categoryID, brandID int64) *domain.Item {
	env.t.Helper()
	item := &domain.Item{
		ID:            common.UUIDint64(),
		Name:          name,
		Price:         9.99,
		Description:   "a perfectly reasonable description",
		CategoryID:    categoryID,
		BrandID:       brandID,
		NumberInStock: 3,
		ImageURL:      "https://res.example.com/image/upload/v1/shoppingInventory/seed.jpg",
		ImagePublicID: "shoppingInventory/seed",
	}
	require.NoError(env.t, env.db.Create(item).Error)
	return item
}

func (env *testEnv) count(model interface{}) int64 {
	env.t.Helper()
	var n int64
	require.NoError(env.t, env.db.Model(model).Count(&n).Error)
	return n
}
