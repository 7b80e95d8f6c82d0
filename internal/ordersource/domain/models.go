package domain

import "time"

// Credentials identify one Shopify shop. The shop URL may be a bare store
// handle, a full myshopify host, or a custom domain.
type Credentials struct {
	ShopURL  string
	APIToken string
}

type LineItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Barcode      string  `json:"barcode"`
	SKU          string  `json:"sku"`
	Price        float64 `json:"price"`
	VariantTitle string  `json:"variant_title"`
	ProductID    string  `json:"product_id"`
	ProductTitle string  `json:"product_title"`
}

type OrderCustomer struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ShippingAddress struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Company      string `json:"company"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	ProvinceCode string `json:"province_code"`
	Zip          string `json:"zip"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
	Phone        string `json:"phone"`
}

// Order is the flattened view of a Shopify order the rest of the pipeline
// works with. ID is the trailing numeric segment of the GraphQL gid.
type Order struct {
	ID                string          `json:"id"`
	GID               string          `json:"gid"`
	Name              string          `json:"name"`
	CreatedAt         time.Time       `json:"created_at"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	Note              string          `json:"note,omitempty"`
	TotalAmount       float64         `json:"total_amount"`
	Currency          string          `json:"currency"`
	Customer          OrderCustomer   `json:"customer"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	LineItems         []LineItem      `json:"line_items"`
}

type OrdersPage struct {
	Orders       []Order `json:"orders"`
	HasNextPage  bool    `json:"has_next_page"`
	EndCursor    string  `json:"end_cursor,omitempty"`
	TotalFetched int     `json:"total_fetched"`
}

type ShopInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	CurrencyCode string `json:"currency_code"`
}
