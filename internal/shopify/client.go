// internal/shopify/client.go
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// pageLimit caps each order fetch at the Shopify REST maximum. There is
	// no pagination loop: windows with more orders than this undercount.
	pageLimit = 250
	// profitMargin is the assumed margin applied to period revenue.
	profitMargin = 0.70
)

// GrowthUnavailable is the growth-rate sentinel when the prior period has no
// revenue to compare against.
const GrowthUnavailable = "N/A"

// UpstreamError is a non-2xx answer from the Shopify admin API. The whole
// summary aborts on the first one; there are no partial results.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("shopify API request failed with status %d: %s", e.Status, e.Body)
}

// TokenInvalid reports whether the failure indicates a bad or expired access
// token, so callers can answer "credentials invalid" instead of a generic
// internal error.
func (e *UpstreamError) TokenInvalid() bool {
	return e.Status == http.StatusUnauthorized
}

// Summary is the per-request financial roll-up. Computed fresh every call,
// never persisted.
type Summary struct {
	TotalRevenue             float64 `json:"totalRevenue"`
	OrderCount               int     `json:"orderCount"`
	CustomerCount            int     `json:"customerCount"`
	ProductCount             int     `json:"productCount"`
	RevenueGrowthRate        string  `json:"revenueGrowthRate"`
	ProfitEstimate           float64 `json:"profitEstimate"`
	ValuationChangeIndicator string  `json:"valuationChangeIndicator"`
}

// Client talks to the Shopify admin API with a bounded timeout.
type Client struct {
	http       *http.Client
	apiVersion string

	// baseURL builds the admin API root for a shop; tests override it.
	baseURL func(shop string) string
	now     func() time.Time
}

func NewClient(apiVersion string, timeout time.Duration) *Client {
	c := &Client{
		http:       &http.Client{Timeout: timeout},
		apiVersion: apiVersion,
		now:        time.Now,
	}
	c.baseURL = func(shop string) string {
		return "https://" + shop + "/admin/api/" + c.apiVersion
	}
	return c
}

type ordersResponse struct {
	Orders []struct {
		TotalPrice string `json:"total_price"`
	} `json:"orders"`
}

type countResponse struct {
	Count int `json:"count"`
}

// Summarize fetches two contiguous, non-overlapping order windows ending now
// plus customer and product counts, and derives revenue, growth and a
// direction indicator. periodDays is the length of each window in days.
func (c *Client) Summarize(ctx context.Context, shop, accessToken string, periodDays int) (Summary, error) {
	end2 := c.now()
	start2 := end2.AddDate(0, 0, -periodDays)
	end1 := end2.AddDate(0, 0, -periodDays-1)
	start1 := end2.AddDate(0, 0, -2*periodDays-1)

	var p2 ordersResponse
	if err := c.getJSON(ctx, shop, accessToken, ordersPath(start2, end2), &p2); err != nil {
		return Summary{}, err
	}
	rev2, err := sumTotalPrice(p2)
	if err != nil {
		return Summary{}, err
	}

	var p1 ordersResponse
	if err := c.getJSON(ctx, shop, accessToken, ordersPath(start1, end1), &p1); err != nil {
		return Summary{}, err
	}
	rev1, err := sumTotalPrice(p1)
	if err != nil {
		return Summary{}, err
	}

	var customers, products countResponse
	if err := c.getJSON(ctx, shop, accessToken, "customers/count.json", &customers); err != nil {
		return Summary{}, err
	}
	if err := c.getJSON(ctx, shop, accessToken, "products/count.json", &products); err != nil {
		return Summary{}, err
	}

	s := Summary{
		TotalRevenue:             rev2,
		OrderCount:               len(p2.Orders),
		CustomerCount:            customers.Count,
		ProductCount:             products.Count,
		ProfitEstimate:           rev2 * profitMargin,
		RevenueGrowthRate:        GrowthUnavailable,
		ValuationChangeIndicator: "neutral",
	}
	if rev1 > 0 {
		s.RevenueGrowthRate = fmt.Sprintf("%.2f%%", (rev2-rev1)/rev1*100)
	}
	switch {
	case rev2 > rev1:
		s.ValuationChangeIndicator = "positive"
	case rev2 < rev1:
		s.ValuationChangeIndicator = "negative"
	}
	return s, nil
}

func ordersPath(start, end time.Time) string {
	q := url.Values{}
	q.Set("created_at_min", start.UTC().Format(time.RFC3339))
	q.Set("created_at_max", end.UTC().Format(time.RFC3339))
	q.Set("status", "any")
	q.Set("limit", strconv.Itoa(pageLimit))
	return "orders.json?" + q.Encode()
}

func sumTotalPrice(resp ordersResponse) (float64, error) {
	total := 0.0
	for _, o := range resp.Orders {
		v, err := strconv.ParseFloat(o.TotalPrice, 64)
		if err != nil {
			return 0, fmt.Errorf("parse total_price %q: %w", o.TotalPrice, err)
		}
		total += v
	}
	return total, nil
}

func (c *Client) getJSON(ctx context.Context, shop, accessToken, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL(shop)+"/"+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &UpstreamError{Status: resp.StatusCode, Body: string(b)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
