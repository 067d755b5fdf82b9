// Package gcs is a small Cloud Storage client: V2 signed upload URLs, public
// object URLs and deletes over the JSON API.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/logger"
)

const (
	defaultEndpoint = "https://storage.googleapis.com"
	requestTimeout  = 10 * time.Second
	pingTimeout     = 5 * time.Second
	errBodyLimit    = 2 << 10
)

type Client struct {
	http      *http.Client
	endpoint  string
	bucket    string
	publicURL string
	tokens    *tokenCache
	signer    *urlSigner
}

// NewClient picks credentials from inline JSON, then the key file, then the
// metadata server, and fails when the bucket cannot be listed.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs: bucket name is required")
	}
	httpClient := &http.Client{Timeout: requestTimeout}

	creds := []byte(gcp.CredentialsJSON)
	if len(creds) == 0 && gcp.ApplicationCredentials != "" {
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("gcs: read credentials: %w", err)
		}
		creds = raw
	}

	c := &Client{
		http:      httpClient,
		endpoint:  defaultEndpoint,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
	if len(creds) > 0 {
		account, err := parseServiceAccount(creds)
		if err != nil {
			return nil, err
		}
		c.tokens = &tokenCache{fetch: account.exchange(httpClient)}
		c.signer = &urlSigner{email: account.ClientEmail, key: account.key}
	} else {
		c.tokens = &tokenCache{fetch: metadataToken(httpClient)}
		if logg != nil {
			logg.Warn(ctx, "gcs: no service account key, upload urls cannot be signed")
		}
	}

	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs: bucket check: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", c.bucket), "gcs client ready")
	}
	return c, nil
}

func (c *Client) Close() error { return nil }

// Ping lists at most one object from the bucket.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, c.objectsURL("")+"?maxResults=1")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return statusError("list", resp)
	}
	return nil
}

// DeleteObject treats a missing object as already deleted.
func (c *Client) DeleteObject(ctx context.Context, bucket, object string) error {
	if bucket == "" {
		bucket = c.bucket
	}
	target := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(bucket), url.PathEscape(object))
	resp, err := c.do(ctx, http.MethodDelete, target)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}
	return statusError("delete "+object, resp)
}

// PublicURL is what gets stored on a row once the client finished its upload.
func (c *Client) PublicURL(object string) string {
	base := c.publicURL
	if base == "" {
		base = defaultEndpoint
	}
	return base + "/" + c.bucket + "/" + escapePath(strings.TrimLeft(object, "/"))
}

// SignedURL lets the holder PUT one object of contentType until expires runs out.
func (c *Client) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	if c.signer == nil {
		return "", errNoSigner
	}
	if bucket == "" {
		bucket = c.bucket
	}
	return c.signer.sign(c.endpoint, http.MethodPut, bucket, object, contentType, expires, time.Now())
}

func (c *Client) objectsURL(bucket string) string {
	if bucket == "" {
		bucket = c.bucket
	}
	return fmt.Sprintf("%s/storage/v1/b/%s/o", c.endpoint, url.PathEscape(bucket))
}

func (c *Client) do(ctx context.Context, method, target string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: access token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errBodyLimit))
	_ = resp.Body.Close()
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("gcs %s: %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("gcs %s: %s", op, resp.Status)
}

func escapePath(object string) string {
	segments := strings.Split(object, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return strings.Join(segments, "/")
}
