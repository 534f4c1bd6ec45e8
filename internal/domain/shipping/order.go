package shipping

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered in place of missing mandatory values
const NotAvailable = "N/A"

// OrderStatus mirrors the platform order status values
type OrderStatus string

const (
	OrderStatusUnknown         OrderStatus = "UNKNOWN"
	OrderStatusAwaitPay        OrderStatus = "AWAITPAY"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusRefunded        OrderStatus = "REFUNDED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FULFILLED"
	OrderStatusShipped         OrderStatus = "SHIPPED"
)

// Address is a postal address. Optional parts are empty strings when absent.
type Address struct {
	Name    string
	Company string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
	Country string
}

// CityLine formats "City, ST Zip"
func (a Address) CityLine() string {
	return a.City + ", " + a.State + " " + a.Zip
}

// LineItem is one ordered product
type LineItem struct {
	ID           string
	Title        string
	VariantTitle string
	Quantity     int
	TotalPrice   decimal.Decimal
	Currency     string
}

// Order is a placed order awaiting a packing slip
type Order struct {
	ID          string
	OrderNumber string
	Status      OrderStatus
	PlacedAt    *time.Time
	ToAddress   Address
	LineItems   []LineItem
}

// Kind implements Record
func (o *Order) Kind() RecordKind { return RecordKindOrder }

// ObjectID implements Record
func (o *Order) ObjectID() string { return o.ID }

// Identifier returns the order number, falling back to the object ID
func (o *Order) Identifier() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	if o.ID != "" {
		return o.ID
	}
	return "unknown"
}

// BusinessTime returns the placement time
func (o *Order) BusinessTime() *time.Time { return o.PlacedAt }

// DisplayNumber returns the number shown on the slip title
func (o *Order) DisplayNumber() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	if o.ID != "" {
		return o.ID
	}
	return NotAvailable
}

// TotalQuantity sums the quantities of all line items.
// It is not the number of line items.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.LineItems {
		if item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}

// TotalPrice sums line item prices. Items in a different currency than the first
// priced item are ignored.
func (o *Order) TotalPrice() (decimal.Decimal, string) {
	total := decimal.Zero
	currency := ""
	for _, item := range o.LineItems {
		if item.Currency == "" {
			continue
		}
		if currency == "" {
			currency = item.Currency
		}
		if item.Currency != currency {
			continue
		}
		total = total.Add(item.TotalPrice)
	}
	return total, currency
}
