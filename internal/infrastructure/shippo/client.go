package shippo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/domain/shipping"
)

// maxResponseSize is the maximum allowed API response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxLabelSize is the maximum allowed label document size (20MB)
const maxLabelSize = 20 * 1024 * 1024

// transactionStatusSuccess marks a transaction whose label was purchased
const transactionStatusSuccess = "SUCCESS"

// Client reads orders and purchased labels from the Shippo API
type Client struct {
	config        *Config
	httpClient    *http.Client
	logger        *zap.Logger
	maxLabelBytes int64
}

// NewClient creates a new Shippo client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:        logger,
		maxLabelBytes: maxLabelSize,
	}, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// ListOrders returns every order placed inside window. Unless includeAll is
// set, only PAID orders are requested. The API's date filter is not trusted
// at the boundaries, so orders with a placement time are checked again here.
func (c *Client) ListOrders(ctx context.Context, window printing.TimeWindow, includeAll bool) ([]*shipping.Order, error) {
	orders := make([]*shipping.Order, 0)

	for page := 1; ; page++ {
		if c.pageLimitReached(page) {
			c.logger.Warn("order pagination stopped at page limit", zap.Int("max_pages", c.config.MaxPages))
			break
		}

		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("results", strconv.Itoa(c.config.PageSize))
		params.Set("start_date", window.Start.UTC().Format(time.RFC3339))
		params.Set("end_date", window.End.UTC().Format(time.RFC3339))
		if !includeAll {
			params.Add("order_status[]", string(shipping.OrderStatusPaid))
		}

		var resp OrdersPage
		if err := c.getJSON(ctx, "/orders/", params, &resp); err != nil {
			return nil, fmt.Errorf("%w: list orders page %d: %w", printing.ErrFetch, page, err)
		}

		for i := range resp.Results {
			order := convertOrder(&resp.Results[i])
			if order.PlacedAt != nil && !window.Contains(*order.PlacedAt) {
				c.logger.Debug("dropping order placed outside window",
					zap.String("order_id", order.ID),
					zap.Time("placed_at", *order.PlacedAt))
				continue
			}
			orders = append(orders, order)
		}

		c.logger.Debug("fetched order page",
			zap.Int("page", page),
			zap.Int("results", len(resp.Results)),
		)

		if !hasNext(resp.Next) {
			break
		}
	}

	return orders, nil
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// ListLabels returns successful transactions created inside window.
// The endpoint has no date filter, so pages are read newest first and
// reading stops at the first transaction older than the window start.
func (c *Client) ListLabels(ctx context.Context, window printing.TimeWindow) ([]*shipping.Label, error) {
	labels := make([]*shipping.Label, 0)

	for page := 1; ; page++ {
		if c.pageLimitReached(page) {
			c.logger.Warn("transaction pagination stopped at page limit", zap.Int("max_pages", c.config.MaxPages))
			break
		}

		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("results", strconv.Itoa(c.config.PageSize))
		params.Set("object_status", transactionStatusSuccess)

		var resp TransactionsPage
		if err := c.getJSON(ctx, "/transactions/", params, &resp); err != nil {
			return nil, fmt.Errorf("%w: list transactions page %d: %w", printing.ErrFetch, page, err)
		}

		reachedStart := false
		for i := range resp.Results {
			tx := &resp.Results[i]
			if tx.ObjectStatus != "" && tx.ObjectStatus != transactionStatusSuccess {
				continue
			}
			created := parseTime(tx.ObjectCreated)
			if created == nil {
				c.logger.Debug("skipping transaction without creation time", zap.String("object_id", tx.ObjectID))
				continue
			}
			if created.Before(window.Start) {
				reachedStart = true
				break
			}
			if !window.Contains(*created) {
				continue
			}
			labels = append(labels, convertTransaction(tx, created))
		}

		if reachedStart || !hasNext(resp.Next) {
			break
		}
	}

	return labels, nil
}

// DownloadLabel fetches the label document. Label URLs are pre-signed, so
// no API token is sent.
func (c *Client) DownloadLabel(ctx context.Context, label *shipping.Label) ([]byte, error) {
	if label.LabelURL == "" {
		return nil, fmt.Errorf("%w: label %s has no document url", printing.ErrFetch, label.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, label.LabelURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: label %s: %w", printing.ErrFetch, label.ID, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download label %s: %w", printing.ErrFetch, label.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: download label %s: HTTP %d", printing.ErrFetch, label.ID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxLabelBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read label %s: %w", printing.ErrFetch, label.ID, err)
	}
	if int64(len(body)) > c.maxLabelBytes {
		return nil, fmt.Errorf("%w: label %s exceeds %d bytes", printing.ErrFetch, label.ID, c.maxLabelBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: label %s is empty", printing.ErrFetch, label.ID)
	}
	return body, nil
}

// Acquire downloads the document of a label record
func (c *Client) Acquire(ctx context.Context, rec shipping.Record) ([]byte, error) {
	label, ok := rec.(*shipping.Label)
	if !ok {
		return nil, fmt.Errorf("%w: expected a label, got %s", printing.ErrFetch, rec.Kind())
	}
	return c.DownloadLabel(ctx, label)
}

// ---------------------------------------------------------------------------
// Helper Functions
// ---------------------------------------------------------------------------

func (c *Client) pageLimitReached(page int) bool {
	return c.config.MaxPages > 0 && page > c.config.MaxPages
}

// getJSON performs an authenticated GET and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "ShippoToken "+c.config.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr ErrorJSON
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// convertOrder maps a Shippo order to the domain model
func convertOrder(o *OrderJSON) *shipping.Order {
	order := &shipping.Order{
		ID:          o.ObjectID,
		OrderNumber: o.OrderNumber,
		Status:      mapOrderStatus(o.OrderStatus),
		PlacedAt:    parseTime(o.PlacedAt),
		LineItems:   make([]shipping.LineItem, 0, len(o.LineItems)),
	}

	if o.ToAddress != nil {
		order.ToAddress = shipping.Address{
			Name:    o.ToAddress.Name,
			Company: o.ToAddress.Company,
			Street1: o.ToAddress.Street1,
			Street2: o.ToAddress.Street2,
			City:    o.ToAddress.City,
			State:   o.ToAddress.State,
			Zip:     o.ToAddress.Zip,
			Country: o.ToAddress.Country,
		}
	}

	for _, li := range o.LineItems {
		item := shipping.LineItem{
			ID:           li.ObjectID,
			Title:        li.Title,
			VariantTitle: li.VariantTitle,
			Currency:     li.Currency,
		}
		if li.Quantity != nil && *li.Quantity > 0 {
			item.Quantity = *li.Quantity
		}
		if price, err := decimal.NewFromString(li.TotalPrice); err == nil {
			item.TotalPrice = price
		}
		order.LineItems = append(order.LineItems, item)
	}

	return order
}

// convertTransaction maps a Shippo transaction to a label record
func convertTransaction(tx *TransactionJSON, created *time.Time) *shipping.Label {
	return &shipping.Label{
		ID:             tx.ObjectID,
		Status:         tx.ObjectStatus,
		CreatedAt:      created,
		TrackingNumber: tx.TrackingNumber,
		LabelURL:       tx.LabelURL,
	}
}

// mapOrderStatus maps Shippo order status strings to domain values
func mapOrderStatus(status string) shipping.OrderStatus {
	switch shipping.OrderStatus(strings.ToUpper(status)) {
	case shipping.OrderStatusAwaitPay:
		return shipping.OrderStatusAwaitPay
	case shipping.OrderStatusPaid:
		return shipping.OrderStatusPaid
	case shipping.OrderStatusRefunded:
		return shipping.OrderStatusRefunded
	case shipping.OrderStatusCancelled:
		return shipping.OrderStatusCancelled
	case shipping.OrderStatusPartiallyFilled:
		return shipping.OrderStatusPartiallyFilled
	case shipping.OrderStatusShipped:
		return shipping.OrderStatusShipped
	default:
		return shipping.OrderStatusUnknown
	}
}

// parseTime parses an RFC3339 timestamp; empty or malformed values give nil
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
