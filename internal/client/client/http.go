package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/dmitrijs2005/catalogctl/internal/logging"
	"github.com/dmitrijs2005/catalogctl/internal/netx"
	"github.com/google/uuid"
)

// ImportFieldName is the multipart field the import endpoint reads.
const ImportFieldName = "file"

// HTTPClient talks to the product API.
type HTTPClient struct {
	productsURL string
	http        *http.Client
	log         logging.Logger
	requestID   func() string
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient returns a client for the API rooted at apiURL. A zero
// timeout leaves requests bounded only by their context.
func NewHTTPClient(apiURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		productsURL: strings.TrimRight(apiURL, "/") + "/products",
		http:        &http.Client{Timeout: timeout},
		log:         logging.Nop(),
		requestID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) newRequest(ctx context.Context, method, target, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, c.requestID())
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	return req, nil
}

// do sends req and returns the response only when it is 2xx; the caller
// closes its body.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(req.Context(), "request failed",
			"method", req.Method, "url", req.URL.Path,
			"request_id", req.Header.Get(common.RequestIDHeaderName), "error", err)
		return nil, mapTransportError(err)
	}

	c.log.Debug(req.Context(), "request done",
		"method", req.Method, "url", req.URL.Path, "status", resp.StatusCode,
		"request_id", req.Header.Get(common.RequestIDHeaderName),
		"elapsed", time.Since(start))

	if !netx.IsSuccess(resp) {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}
	return resp, nil
}

func (c *HTTPClient) send(ctx context.Context, method, target, token string, p *models.Product) error {
	var body io.Reader
	if p != nil {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, target, token, body)
	if err != nil {
		return err
	}
	if p != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) itemURL(id int64) string {
	return c.productsURL + "/" + strconv.FormatInt(id, 10)
}

// List fetches the catalog ordered by spec. The read is unauthenticated.
func (c *HTTPClient) List(ctx context.Context, spec models.SortSpec) ([]models.Product, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("order_by", string(spec.Field))
	q.Set("direction", string(spec.Direction))

	req, err := c.newRequest(ctx, http.MethodGet, c.productsURL+"?"+q.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: decode products: %v", ErrUnavailable, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (c *HTTPClient) Create(ctx context.Context, token string, p models.Product) error {
	p.ID = 0
	return c.send(ctx, http.MethodPost, c.productsURL, token, &p)
}

func (c *HTTPClient) Update(ctx context.Context, token string, id int64, p models.Product) error {
	p.ID = id
	return c.send(ctx, http.MethodPut, c.itemURL(id), token, &p)
}

func (c *HTTPClient) Delete(ctx context.Context, token string, id int64) error {
	return c.send(ctx, http.MethodDelete, c.itemURL(id), token, nil)
}

// Import uploads a spreadsheet for bulk create/update.
func (c *HTTPClient) Import(ctx context.Context, token, filename string, r io.Reader) (*models.ImportResult, error) {
	body, contentType, err := netx.MultipartFile(ImportFieldName, filename, r)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.productsURL+"/upload/", token, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var res models.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: decode import result: %v", ErrUnavailable, err)
	}
	return &res, nil
}
