package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	figmaAPIBase = "https://api.figma.com/v1"
	maxRetries   = 3
)

// ErrNotFound is returned when the API answers 404 for a file or image.
var ErrNotFound = errors.New("figma: not found")

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic and optimized transport settings for handling large files.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	backoff     time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root, e.g. an httptest server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the base delay between retries. Attempt n waits n*backoff.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a new Figma API client with the provided personal access token.
// The client is configured with optimized HTTP transport settings including connection pooling,
// disabled HTTP/2 (for large file stability), and a 10-minute timeout for very large files.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	// Configure transport for better handling of large files
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	c := &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports both /file/ and /design/ URL patterns (e.g., figma.com/file/ABC123/Design-Name).
func ExtractFileKey(figmaURL string) (string, error) {
	// Anchored to ensure the entire URL matches the expected pattern and prevent bypass attacks.
	re := regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design)/([A-Za-z0-9]+)(?:/|$|\?|#)`)
	matches := re.FindStringSubmatch(figmaURL)

	if len(matches) < 2 {
		return "", errors.WithHint(
			errors.New("invalid Figma URL format"),
			"use a figma.com URL with a /file/ or /design/ path",
		)
	}

	return matches[1], nil
}

var (
	nodeIDQueryRe = regexp.MustCompile(`[?&]node-id=([^&#]*)`)
	nodeIDPathRe  = regexp.MustCompile(`/nodes/([^?#]+)`)
	nodeIDHashRe  = regexp.MustCompile(`#([0-9]+[:-][0-9]+(?:,\s*[0-9]+[:-][0-9]+)*)$`)
)

// ExtractNodeIDs returns the node IDs referenced by a Figma URL, from a
// node-id query parameter, a /nodes/ path segment, or a #id fragment.
// Dash-separated IDs (as the web app writes them) are normalized to colons
// and duplicates are removed. A URL without node IDs yields an empty slice.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	var raw string
	switch {
	case nodeIDQueryRe.MatchString(figmaURL):
		raw = nodeIDQueryRe.FindStringSubmatch(figmaURL)[1]
	case nodeIDPathRe.MatchString(figmaURL):
		raw = nodeIDPathRe.FindStringSubmatch(figmaURL)[1]
	case nodeIDHashRe.MatchString(figmaURL):
		raw = nodeIDHashRe.FindStringSubmatch(figmaURL)[1]
	default:
		return []string{}, nil
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode node-id %q", raw)
	}

	ids := make([]string, 0)
	for _, part := range strings.Split(decoded, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		ids = append(ids, strings.Replace(id, "-", ":", 1))
	}

	return deduplicateNodeIDs(ids), nil
}

// deduplicateNodeIDs removes repeated IDs while preserving first-seen order.
func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// GetFile retrieves complete file data from the Figma API including document structure, styles, and metadata.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*FileResponse, error) {
	var fileResp FileResponse
	if err := c.getJSON(ctx, "/files/"+fileKey, nil, &fileResp); err != nil {
		return nil, errors.Wrapf(err, "get file %s", fileKey)
	}
	return &fileResp, nil
}

// GetFileNodes retrieves the subtrees rooted at nodeIDs. The request asks for
// geometry=paths so that vector path data, node sizes and relative transforms
// are included.
func (c *Client) GetFileNodes(ctx context.Context, fileKey string, nodeIDs []string) (*NodesResponse, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(nodeIDs, ","))
	query.Set("geometry", "paths")

	var nodesResp NodesResponse
	if err := c.getJSON(ctx, "/files/"+fileKey+"/nodes", query, &nodesResp); err != nil {
		return nil, errors.Wrapf(err, "get nodes %v of file %s", nodeIDs, fileKey)
	}
	return &nodesResp, nil
}

// GetImages asks the render API for download URLs of the given nodes rendered in format at scale.
func (c *Client) GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*ImagesResponse, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(nodeIDs, ","))
	query.Set("format", format)
	query.Set("scale", fmt.Sprintf("%g", scale))

	var imgResp ImagesResponse
	if err := c.getJSON(ctx, "/images/"+fileKey, query, &imgResp); err != nil {
		return nil, errors.Wrapf(err, "render images of file %s", fileKey)
	}
	if imgResp.Err != "" {
		return nil, errors.Newf("render images of file %s: %s", fileKey, imgResp.Err)
	}
	return &imgResp, nil
}

// GetImageFills returns the download URLs of every image used as an IMAGE paint in the file, keyed by image hash.
func (c *Client) GetImageFills(ctx context.Context, fileKey string) (*ImageFillsResponse, error) {
	var fillsResp ImageFillsResponse
	if err := c.getJSON(ctx, "/files/"+fileKey+"/images", nil, &fillsResp); err != nil {
		return nil, errors.Wrapf(err, "get image fills of file %s", fileKey)
	}
	return &fillsResp, nil
}

// Download fetches the bytes behind a URL returned by GetImages or GetImageFills.
// Those URLs are pre-signed, so no token is sent.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := c.do(ctx, rawURL, false)
	if err != nil {
		return nil, errors.Wrap(err, "download")
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	body, err := c.do(ctx, u, true)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

// do performs a GET with up to maxRetries attempts. It retries on transport
// errors, 429 (rate limit) and 5xx responses, waiting attempt*backoff in between.
func (c *Client) do(ctx context.Context, rawURL string, authenticated bool) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, retry, err := c.once(ctx, rawURL, authenticated)
		if err == nil {
			return body, nil
		}
		lastErr = errors.Wrapf(err, "attempt %d", attempt)
		if !retry || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.CombineErrors(lastErr, ctx.Err())
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	return nil, lastErr
}

func (c *Client) once(ctx context.Context, rawURL string, authenticated bool) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create request")
	}
	if authenticated {
		req.Header.Set("X-Figma-Token", c.accessToken)
	}
	// Disable HTTP/2 to avoid stream errors with large files
	req.Header.Set("Connection", "close")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, "failed to read response body")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, errors.Wrapf(ErrNotFound, "GET %s", redactToken(rawURL))
	case resp.StatusCode == http.StatusForbidden:
		return nil, false, errors.WithHint(
			errors.Newf("API request failed with status %d: %s", resp.StatusCode, string(body)),
			"check that the access token is valid and can read this file",
		)
	default:
		retry = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, errors.Newf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

// redactToken strips the query string, which for pre-signed URLs carries credentials.
func redactToken(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
