package shippo

// Wire types for the Shippo REST API. Only the fields that reach a printed
// document are decoded.

// OrdersPage is one page of GET /orders/
type OrdersPage struct {
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []OrderJSON `json:"results"`
}

// OrderJSON is a Shippo order object
type OrderJSON struct {
	ObjectID    string         `json:"object_id"`
	OrderNumber string         `json:"order_number"`
	OrderStatus string         `json:"order_status"`
	PlacedAt    string         `json:"placed_at"`
	ToAddress   *AddressJSON   `json:"to_address"`
	LineItems   []LineItemJSON `json:"line_items"`
}

// AddressJSON is a Shippo address object
type AddressJSON struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// LineItemJSON is a Shippo order line item
type LineItemJSON struct {
	ObjectID     string `json:"object_id"`
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title"`
	Quantity     *int   `json:"quantity"`
	TotalPrice   string `json:"total_price"`
	Currency     string `json:"currency"`
}

// TransactionsPage is one page of GET /transactions/
type TransactionsPage struct {
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []TransactionJSON `json:"results"`
}

// TransactionJSON is a Shippo transaction (a purchased label)
type TransactionJSON struct {
	ObjectID       string `json:"object_id"`
	ObjectStatus   string `json:"object_status"`
	ObjectCreated  string `json:"object_created"`
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// ErrorJSON is the body of a failed request
type ErrorJSON struct {
	Detail string `json:"detail"`
}

// hasNext reports whether a page links to another one
func hasNext(next *string) bool {
	return next != nil && *next != ""
}
