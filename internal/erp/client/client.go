package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/erp/domain"
	"github.com/merchlab/ordersync/internal/erp/token"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Client talks to the upstream ERP's order and delivery-status endpoints.
// Every call is bearer-authenticated through the token manager and bounded
// by the client timeout.
type Client struct {
	baseURL         string
	pageConcurrency int
	tokens          *token.Manager
	log             *zap.Logger
	httpClient      *http.Client
}

func New(cfg config.Config, tokens *token.Manager, log *zap.Logger) *Client {
	concurrency := cfg.Pipeline.PageConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Client{
		baseURL:         cfg.Upstream.BaseURL,
		pageConcurrency: concurrency,
		tokens:          tokens,
		log:             log.Named("erp.client"),
		httpClient:      &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchAllOrders retrieves every page of the upstream order listing. The
// first page is fatal on failure; later pages degrade to empty so a partial
// upstream outage does not block the whole aggregation.
func (c *Client) FetchAllOrders(ctx context.Context) ([]domain.Order, error) {
	first, err := c.fetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	if first.TotalPages <= 1 {
		return first.Results, nil
	}

	pages := make([][]domain.Order, first.TotalPages+1)
	pages[1] = first.Results

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.pageConcurrency)
	for n := 2; n <= first.TotalPages; n++ {
		g.Go(func() error {
			page, err := c.fetchPage(gctx, n)
			if err != nil {
				c.log.Warn("order page fetch failed, degrading to empty page",
					zap.Int("page", n),
					zap.Error(err),
				)
				return nil
			}
			pages[n] = page.Results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var orders []domain.Order
	for _, page := range pages {
		orders = append(orders, page...)
	}
	return orders, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*domain.OrdersPage, error) {
	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/orders?page=%d", c.baseURL, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch orders page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var out domain.OrdersPage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode orders page %d: %w", page, err)
	}
	return &out, nil
}

// FetchDeliveryStatus returns the carrier waybills for an order. Tracking
// unavailability is not an error: a 404 means no tracking exists yet, and
// any other failure degrades to an empty response so one order can never
// fail the aggregation.
func (c *Client) FetchDeliveryStatus(ctx context.Context, orderID string) (*domain.TrackingResponse, error) {
	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/delivery-statuses/%s", c.baseURL, FormatOrderID(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("delivery status fetch failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return &domain.TrackingResponse{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &domain.TrackingResponse{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		c.log.Warn("delivery status endpoint returned non-2xx",
			zap.String("order_id", orderID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return &domain.TrackingResponse{}, nil
	}

	var out domain.TrackingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Warn("failed to decode delivery status",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return &domain.TrackingResponse{}, nil
	}
	return &out, nil
}

// FormatOrderID normalizes an order identifier to the carrier's expected
// BAR-SO prefix form.
func FormatOrderID(id string) string {
	id = strings.TrimSpace(id)
	switch {
	case strings.HasPrefix(id, "BAR-"):
		return id
	case strings.HasPrefix(id, "SO"):
		return "BAR-" + id
	default:
		return "BAR-SO" + id
	}
}
