package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/redone-net/marketplace/internal/order/service/models/product"
	"github.com/redone-net/marketplace/pkg/httperr"
)

// Client fetches product snapshots from the catalog service, forwarding
// the caller's credential unchanged. No retry, no backoff: a catalog
// failure surfaces directly to the order placement request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// FetchSnapshot reads the current price and availability of one product.
// A remote 404 maps to a not-found error; any other failure, including an
// empty or undecodable body, maps to upstream-unavailable.
func (c *Client) FetchSnapshot(ctx context.Context, productID int64, authorization string) (*product.Snapshot, error) {
	url := fmt.Sprintf("%s/api/produits/%d", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, httperr.Wrap(httperr.KindUpstreamUnavailable, err, "produit service unavailable")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, httperr.Wrap(httperr.KindUpstreamUnavailable, err, "produit service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, httperr.New(httperr.KindNotFound, "product not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httperr.New(httperr.KindUpstreamUnavailable, "produit service unavailable")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httperr.Wrap(httperr.KindUpstreamUnavailable, err, "produit service unavailable")
	}
	if len(body) == 0 {
		return nil, httperr.New(httperr.KindUpstreamUnavailable, "empty response from produit service")
	}

	var snapshot product.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, httperr.Wrap(httperr.KindUpstreamUnavailable, err, "produit service unavailable")
	}

	return &snapshot, nil
}
