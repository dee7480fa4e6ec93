// Package storeapi is the HTTP session with the remote store API. Each Client
// owns its cookie jar, so the CSRF cookie fetched by RefreshCSRF is the one
// sent with the next CreateOrder.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/metric"
	"github.com/genzzone/storefront/internal/pkg/interceptors"
	"github.com/genzzone/storefront/internal/pkg/interceptors/constants"
	"github.com/genzzone/storefront/internal/ports"
)

// DefaultBaseURL is the production store API.
const DefaultBaseURL = "https://api.genzzone.com/api"

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

var (
	_ ports.Catalog  = (*Client)(nil)
	_ ports.OrderAPI = (*Client)(nil)
)

// Config of a Client. Zero values fall back to DefaultBaseURL and a 15s
// timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport replaces http.DefaultTransport underneath the tracing and
	// request-id layers.
	Transport http.RoundTripper
}

// Client is one HTTP session with the store API. It implements both the
// catalog and the order ports and is safe for concurrent use.
type Client struct {
	base   *url.URL
	origin string
	http   *http.Client
	jar    http.CookieJar

	products singleflight.Group
}

// New validates the base URL and builds a traced client with its own cookie
// jar.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("storeapi: invalid base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("storeapi: cookie jar: %w", err)
	}

	transport := otelhttp.NewTransport(
		interceptors.PropagatingTransport{Base: cfg.Transport},
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "storeapi " + r.Method + " " + r.URL.Path
		}),
	)

	return &Client{
		base:   base,
		origin: base.Scheme + "://" + base.Host,
		http:   &http.Client{Jar: jar, Timeout: cfg.Timeout, Transport: transport},
		jar:    jar,
	}, nil
}

// Origin is scheme://host of the API, the root relative media paths resolve
// against.
func (c *Client) Origin() string { return c.origin }

// GetProduct fetches one product with absolute image URLs. Concurrent calls
// for the same id share one request; that request is not cancelled with any
// single caller, and each caller stops waiting when its own ctx is done.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	key := strconv.FormatInt(id, 10)
	ch := c.products.DoChan(key, func() (any, error) {
		var p domain.Product
		if err := c.do(context.WithoutCancel(ctx), http.MethodGet, "/products/"+key+"/", nil, nil, "product", &p); err != nil {
			return nil, err
		}
		c.resolveImages(&p)
		return &p, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get product %d: %w", id, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("get product %d: %w", id, res.Err)
		}
		return res.Val.(*domain.Product), nil
	}
}

// ListProducts accepts both a bare array and a paginated {"results": [...]} body.
func (c *Client) ListProducts(ctx context.Context, search, category string) ([]*domain.Product, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if category != "" {
		q.Set("category", category)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/", q, nil, "products", &raw); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var products []*domain.Product
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results []*domain.Product `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("list products: decode: %w", err)
		}
		products = page.Results
	} else if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, fmt.Errorf("list products: decode: %w", err)
	}

	for _, p := range products {
		c.resolveImages(p)
	}
	return products, nil
}

// CategoryTree reads the category hierarchy for the product picker.
func (c *Client) CategoryTree(ctx context.Context) ([]domain.Category, error) {
	var tree []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories/tree/", nil, nil, "categories", &tree); err != nil {
		return nil, fmt.Errorf("category tree: %w", err)
	}
	return tree, nil
}

// RefreshCSRF asks the API to set a fresh csrftoken cookie in the jar.
func (c *Client) RefreshCSRF(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/csrf/", nil, nil, "csrf", nil); err != nil {
		return fmt.Errorf("refresh csrf: %w", err)
	}
	return nil
}

// CreateOrder posts the order. The CSRF cookie is fetched first when the jar
// has none yet.
func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.PlacedOrder, error) {
	if c.csrfToken() == "" {
		if err := c.RefreshCSRF(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("create order: encode: %w", err)
	}
	headers := http.Header{}
	if req.IdempotencyKey != "" {
		headers.Set(constants.HeaderXIdempotencyKey, req.IdempotencyKey)
	}

	var placed domain.PlacedOrder
	if err := c.do(ctx, http.MethodPost, "/orders/create/", nil, headers, "orders.create", &placed, body...); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &placed, nil
}

func (c *Client) csrfToken() string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == constants.CookieCSRF {
			return ck.Value
		}
	}
	return ""
}

// do performs one request. A 2xx body is decoded into out when out is not
// nil; anything else becomes a *domain.ServerError or *domain.TransportError.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, headers http.Header, endpoint string, out any, body ...byte) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		// Django checks Referer on secure unsafe requests
		req.Header.Set("Origin", c.origin)
		req.Header.Set("Referer", c.origin+"/")
		if token := c.csrfToken(); token != "" {
			req.Header.Set(constants.HeaderCSRFToken, token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metric.ObserveUpstream(endpoint, time.Since(start), 0)
		return &domain.TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	metric.ObserveUpstream(endpoint, time.Since(start), resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &domain.TransportError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// IsNotFound reports whether err is the API's 404.
func IsNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
