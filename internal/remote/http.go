package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxErrorBody      = 64 << 10
)

// HTTPClient talks to the storefront API with a bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// HTTPOption customizes an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.http = c
		}
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) HTTPOption {
	return func(h *HTTPClient) {
		h.token = strings.TrimSpace(token)
	}
}

func NewHTTPClient(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) GetCart(ctx context.Context) (types.Cart, error) {
	var out types.Cart
	err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) AddCartItem(ctx context.Context, productID uuid.UUID, quantity int) (types.Cart, error) {
	var out types.Cart
	body := map[string]any{"product_id": productID, "quantity": quantity}
	err := c.do(ctx, http.MethodPost, "/api/v1/cart/items", body, nil, &out)
	return out, err
}

func (c *HTTPClient) UpdateCartItem(ctx context.Context, productID uuid.UUID, quantity int) (types.Cart, error) {
	var out types.Cart
	body := map[string]any{"quantity": quantity}
	err := c.do(ctx, http.MethodPatch, "/api/v1/cart/items/"+productID.String(), body, nil, &out)
	return out, err
}

func (c *HTTPClient) RemoveCartItem(ctx context.Context, productID uuid.UUID) (types.Cart, error) {
	var out types.Cart
	err := c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+productID.String(), nil, nil, &out)
	return out, err
}

func (c *HTTPClient) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart", nil, nil, nil)
}

// MergeCart sends an Idempotency-Key derived from the request, so a retry of
// a merge the server already committed replays instead of adding again.
func (c *HTTPClient) MergeCart(ctx context.Context, req types.MergeCartRequest) (types.Cart, error) {
	var out types.Cart
	key, err := mergeKey("cart", req)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, "/api/v1/cart/merge", req, map[string]string{idempotencyHeader: key}, &out)
	return out, err
}

func (c *HTTPClient) GetWishlist(ctx context.Context) (types.Wishlist, error) {
	var out types.Wishlist
	err := c.do(ctx, http.MethodGet, "/api/v1/wishlist", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) AddWishlistItem(ctx context.Context, productID uuid.UUID) (types.Wishlist, error) {
	var out types.Wishlist
	body := map[string]any{"product_id": productID}
	err := c.do(ctx, http.MethodPost, "/api/v1/wishlist/items", body, nil, &out)
	return out, err
}

func (c *HTTPClient) RemoveWishlistItem(ctx context.Context, productID uuid.UUID) (types.Wishlist, error) {
	var out types.Wishlist
	err := c.do(ctx, http.MethodDelete, "/api/v1/wishlist/items/"+productID.String(), nil, nil, &out)
	return out, err
}

func (c *HTTPClient) MergeWishlist(ctx context.Context, req types.MergeWishlistRequest) (types.Wishlist, error) {
	var out types.Wishlist
	key, err := mergeKey("wishlist", req)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, "/api/v1/wishlist/merge", req, map[string]string{idempotencyHeader: key}, &out)
	return out, err
}

// mergeKey hashes the encoded request, which is exactly the body do sends.
func mergeKey(collection string, req any) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode merge request")
	}
	sum := sha256.Sum256(payload)
	return "merge-" + collection + "-" + hex.EncodeToString(sum[:]), nil
}

func (c *HTTPClient) ValidateCoupon(ctx context.Context, req types.CouponRequest) (types.CouponResult, error) {
	var out types.CouponResult
	err := c.do(ctx, http.MethodPost, "/api/v1/coupons/validate", req, nil, &out)
	return out, err
}

func (c *HTTPClient) PreviewPromotions(ctx context.Context, req types.PreviewRequest) (types.PromotionPreview, error) {
	var out types.PromotionPreview
	err := c.do(ctx, http.MethodPost, "/api/v1/promotions/preview", req, nil, &out)
	return out, err
}

func (c *HTTPClient) ShippingConfig(ctx context.Context) (types.ShippingConfig, error) {
	var out types.ShippingConfig
	err := c.do(ctx, http.MethodGet, "/api/v1/shipping-config", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req types.CreateOrderRequest, idempotencyKey string) (types.Order, error) {
	var out types.Order
	headers := map[string]string{}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		headers[idempotencyHeader] = key
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/orders", req, headers, &out)
	return out, err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

// decodeError turns an error envelope back into a typed error. Unknown codes
// and unparseable bodies become DEPENDENCY_ERROR.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	envelope := struct {
		Error struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("remote store responded %d", resp.StatusCode))
	}

	code := pkgerrors.Code(envelope.Error.Code)
	if !pkgerrors.IsKnown(code) {
		return pkgerrors.New(pkgerrors.CodeDependency, envelope.Error.Message).
			WithDetails(map[string]any{"remote_code": envelope.Error.Code})
	}

	typed := pkgerrors.New(code, envelope.Error.Message)
	if len(envelope.Error.Details) == 0 {
		return typed
	}
	if code == pkgerrors.CodeStockExceeded {
		var details pkgerrors.StockDetails
		if err := json.Unmarshal(envelope.Error.Details, &details); err == nil {
			return typed.WithDetails(details)
		}
	}
	var details any
	if err := json.Unmarshal(envelope.Error.Details, &details); err == nil {
		return typed.WithDetails(details)
	}
	return typed
}
