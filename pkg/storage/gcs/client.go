package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

const (
	defaultEndpoint = "https://storage.googleapis.com"
	pingTimeout     = 5 * time.Second
	requestTimeout  = 30 * time.Second
)

// ErrObjectNotFound is returned when the bucket has no object under the given name.
var ErrObjectNotFound = errors.New("gcs object not found")

// Client talks to the Cloud Storage JSON API for a single bucket.
type Client struct {
	httpClient  *http.Client
	bucket      string
	endpoint    string
	publicBase  string
	tokenSource *tokenSource
	logg        *logger.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func closeBody(ctx context.Context, logg *logger.Logger, body io.Closer, msg string) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && logg != nil {
		logg.Warn(ctx, msg)
	}
}

// NewClient builds a bucket client. Credentials come from inline JSON, a
// credentials file, or the metadata server. A custom endpoint without
// credentials talks to a local emulator anonymously.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	var ts *tokenSource
	var err error
	switch {
	case gcp.CredentialsJSON != "":
		ts, err = newServiceAccountTokenSource(httpClient, gcp.CredentialsJSON)
	case gcp.ApplicationCredentials != "":
		raw, readErr := os.ReadFile(gcp.ApplicationCredentials)
		if readErr != nil {
			return nil, fmt.Errorf("reading credentials file: %w", readErr)
		}
		ts, err = newServiceAccountTokenSource(httpClient, string(raw))
	case endpoint == defaultEndpoint:
		ts = newMetadataTokenSource(httpClient)
	}
	if err != nil {
		return nil, err
	}

	client := newClient(httpClient, cfg.BucketName, endpoint, cfg.PublicBaseURL, ts)
	client.logg = logg

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}

	return client, nil
}

func newClient(httpClient *http.Client, bucket, endpoint, publicBase string, ts *tokenSource) *Client {
	publicBase = strings.TrimRight(publicBase, "/")
	if publicBase == "" {
		publicBase = endpoint
	}
	return &Client{
		httpClient:  httpClient,
		bucket:      bucket,
		endpoint:    endpoint,
		publicBase:  publicBase,
		tokenSource: ts,
	}
}

func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

func (c *Client) Close() error {
	return nil
}

// Ping lists at most one object, which requires storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("gcs client not initialized")
	}
	if c.bucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.endpoint, url.PathEscape(c.bucket))
	resp, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return err
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs: closing ping body failed")

	if resp.StatusCode != http.StatusOK {
		return statusError("gcs object check failed", resp)
	}
	return nil
}

// Upload stores data under objectName and returns its public URL.
func (c *Client) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	if c == nil || c.httpClient == nil {
		return "", errors.New("gcs client not initialized")
	}
	objectName = strings.TrimLeft(objectName, "/")
	if objectName == "" {
		return "", errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	q := url.Values{}
	q.Set("uploadType", "media")
	q.Set("name", objectName)
	u := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", c.endpoint, url.PathEscape(c.bucket), q.Encode())

	resp, err := c.do(ctx, http.MethodPost, u, contentType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs: closing upload body failed")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError("gcs upload failed", resp)
	}
	return c.PublicURL(objectName), nil
}

// Delete removes objectName from the bucket. A missing object yields ErrObjectNotFound.
func (c *Client) Delete(ctx context.Context, objectName string) error {
	if c == nil || c.httpClient == nil {
		return errors.New("gcs client not initialized")
	}
	objectName = strings.TrimLeft(objectName, "/")
	if objectName == "" {
		return errors.New("object name is required")
	}

	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(c.bucket), url.PathEscape(objectName))
	resp, err := c.do(ctx, http.MethodDelete, u, "", nil)
	if err != nil {
		return err
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs: closing delete body failed")

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrObjectNotFound
	default:
		return statusError("gcs delete failed", resp)
	}
}

// PublicURL is the browser-facing address of an object in the bucket.
func (c *Client) PublicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBase, c.bucket, strings.TrimLeft(objectName, "/"))
}

// ObjectFromURL maps a public URL back to its object name. URLs that point
// anywhere other than this bucket report false.
func (c *Client) ObjectFromURL(raw string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", c.publicBase, c.bucket)
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(raw, prefix)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" {
		return "", false
	}
	return name, true
}

func (c *Client) do(ctx context.Context, method, u, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func statusError(prefix string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(b)); msg != "" {
		return fmt.Errorf("%s: %s: %s", prefix, resp.Status, msg)
	}
	return fmt.Errorf("%s: %s", prefix, resp.Status)
}
