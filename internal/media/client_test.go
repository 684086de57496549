package media

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopinventory/config"
)

func newFakeMediaServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var destroyed []string
	mux := http.NewServeMux()

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(16<<20))
		folder := r.FormValue("folder")
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.NotEmpty(t, data)

		publicID := folder + "/fake123"
		_ = json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://res.example.com/image/upload/v1/" + publicID + ".jpg",
			"public_id":  publicID,
		})
	})

	mux.HandleFunc("/destroy", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		destroyed = append(destroyed, r.FormValue("public_id"))
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &destroyed
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.MediaConfig{
		Endpoint: srv.URL,
		APIKey:   "test-key",
		Folder:   "shoppingInventory",
	})
}

func TestClientUpload(t *testing.T) {
	srv, _ := newFakeMediaServer(t)
	client := newTestClient(srv)

	asset, err := client.Upload(context.Background(), "photo.jpg", []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "shoppingInventory/fake123", asset.PublicID)
	assert.Contains(t, asset.SecureURL, "/upload/")
}

func TestClientUploadNoFile(t *testing.T) {
	srv, _ := newFakeMediaServer(t)
	client := newTestClient(srv)

	_, err := client.Upload(context.Background(), "photo.jpg", nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestClientDestroy(t *testing.T) {
	srv, destroyed := newFakeMediaServer(t)
	client := newTestClient(srv)

	err := client.Destroy(context.Background(), "shoppingInventory/fake123")
	require.NoError(t, err)
	assert.Equal(t, []string{"shoppingInventory/fake123"}, *destroyed)
}

func TestClientDestroyEmptyID(t *testing.T) {
	srv, destroyed := newFakeMediaServer(t)
	client := newTestClient(srv)

	require.NoError(t, client.Destroy(context.Background(), ""))
	assert.Empty(t, *destroyed)
}

func TestClientSignsRequestsWithSecret(t *testing.T) {
	var gotTimestamp, gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotTimestamp = r.FormValue("timestamp")
		gotSignature = r.FormValue("signature")
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.MediaConfig{
		Endpoint: srv.URL,
		APIKey:   "test-key",
		Secret:   "test-secret",
		Folder:   "shoppingInventory",
	})

	require.NoError(t, client.Destroy(context.Background(), "shoppingInventory/fake123"))
	require.NotEmpty(t, gotTimestamp)
	assert.Equal(t, signParams(map[string]string{
		"public_id": "shoppingInventory/fake123",
		"timestamp": gotTimestamp,
	}, "test-secret"), gotSignature)
}

func TestClientUnsignedWithoutSecret(t *testing.T) {
	var hasSignature bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasSignature = r.MultipartForm.Value["signature"]
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv)
	require.NoError(t, client.Destroy(context.Background(), "shoppingInventory/fake123"))
	assert.False(t, hasSignature)
}

func TestClientUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv)
	_, err := client.Upload(context.Background(), "photo.jpg", []byte("x"))
	assert.Error(t, err)
}
