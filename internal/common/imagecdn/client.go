package imagecdn

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.cloudinary.com/v1_1"
	defaultTimeout = 15 * time.Second
)

// Config holds image host credentials. An empty CloudName disables the
// client; Upload and Destroy then fail with ErrDisabled without any network
// call.
type Config struct {
	CloudName string        `yaml:"cloudName"`
	APIKey    string        `yaml:"apiKey"`
	APISecret string        `yaml:"apiSecret"`
	BaseURL   string        `yaml:"baseURL"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ErrDisabled is returned when the image host is not configured.
var ErrDisabled = fmt.Errorf("image cdn is not configured")

// UploadResult identifies a hosted image: the delivery URL and the public id
// used for later deletion.
type UploadResult struct {
	URL      string
	PublicID string
}

// Client talks to a Cloudinary-style image host REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// New creates an image host client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Enabled reports whether the client is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.CloudName != ""
}

// Upload sends the image payload to the host and returns its delivery URL
// and public id.
func (c *Client) Upload(ctx context.Context, payload []byte, folder string) (UploadResult, error) {
	if !c.Enabled() {
		return UploadResult{}, ErrDisabled
	}

	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	if folder != "" {
		params["folder"] = folder
	}
	params["signature"] = c.sign(params)
	params["api_key"] = c.cfg.APIKey

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range params {
		if err := writer.WriteField(name, value); err != nil {
			return UploadResult{}, fmt.Errorf("write upload field failed: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", "image")
	if err != nil {
		return UploadResult{}, fmt.Errorf("write upload file failed: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return UploadResult{}, fmt.Errorf("write upload file failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("finish upload body failed: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.cfg.BaseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("image upload request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return UploadResult{}, fmt.Errorf("image upload failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return UploadResult{}, fmt.Errorf("decode upload response failed: %w", err)
	}
	return UploadResult{URL: decoded.SecureURL, PublicID: decoded.PublicID}, nil
}

// Destroy deletes a hosted image by public id.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	if publicID == "" {
		return nil
	}

	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	params["signature"] = c.sign(params)
	params["api_key"] = c.cfg.APIKey

	form := url.Values{}
	for name, value := range params {
		form.Set(name, value)
	}

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.cfg.BaseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image destroy request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image destroy failed: status %d", resp.StatusCode)
	}
	return nil
}

// sign produces the request signature: the sorted params joined
// key=value with '&', followed by the API secret, hashed with SHA-1.
// The signature and api_key params themselves are never signed.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for name := range params {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, name := range keys {
		pairs = append(pairs, name+"="+params[name])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
