package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"shopinventory/config"
)

// ErrNoFile is returned when an upload is requested without file content.
var ErrNoFile = errors.New("file not provided")

// Asset identifies a stored image on the media service.
type Asset struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// Service is the media-hosting surface the handlers depend on.
type Service interface {
	Upload(ctx context.Context, filename string, data []byte) (*Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Client talks to the image-hosting HTTP API. Uploads land inside the
// configured folder; deletion is by public id. Calls are not retried, a
// transient failure surfaces to the caller.
type Client struct {
	cfg config.MediaConfig
}

func NewClient(cfg config.MediaConfig) *Client {
	return &Client{cfg: cfg}
}

type destroyResult struct {
	Result string `json:"result"`
}

// signParams produces the request signature: the sorted key=value pairs
// joined with '&', the API secret appended, SHA-1 in hex. The file content
// and api_key are excluded from the signed set.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// appendSignature adds timestamp and signature fields to the outgoing form
// when an API secret is configured.
func (c *Client) appendSignature(form gout.H, signed map[string]string) {
	if c.cfg.Secret == "" {
		return
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signed["timestamp"] = ts
	form["timestamp"] = ts
	form["signature"] = signParams(signed, c.cfg.Secret)
}

func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*Asset, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	form := gout.H{
		"folder":   c.cfg.Folder,
		"api_key":  c.cfg.APIKey,
		"filename": filename,
		"file":     gout.FormMem(data),
	}
	c.appendSignature(form, map[string]string{"folder": c.cfg.Folder})

	var asset Asset
	var code int
	err := gout.POST(c.cfg.Endpoint+"/upload").
		WithContext(ctx).
		SetForm(form).
		BindJSON(&asset).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "media upload")
	}
	if code != http.StatusOK {
		return nil, errors.Errorf("media upload: unexpected status %d", code)
	}
	if asset.SecureURL == "" || asset.PublicID == "" {
		return nil, errors.New("media upload: incomplete response")
	}

	zap.L().Info("uploaded media asset",
		zap.String("folder", c.cfg.Folder),
		zap.String("public_id", asset.PublicID))
	return &asset, nil
}

func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	form := gout.H{
		"api_key":   c.cfg.APIKey,
		"public_id": publicID,
	}
	c.appendSignature(form, map[string]string{"public_id": publicID})

	var result destroyResult
	var code int
	err := gout.POST(c.cfg.Endpoint+"/destroy").
		WithContext(ctx).
		SetForm(form).
		BindJSON(&result).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "media destroy")
	}
	if code != http.StatusOK {
		return errors.Errorf("media destroy: unexpected status %d", code)
	}

	zap.L().Info("destroyed media asset", zap.String("public_id", publicID))
	return nil
}
