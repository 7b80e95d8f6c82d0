package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/quotient/internal/ordersource/domain"
)

type shopifyClient struct {
	apiVersion string
	client     *http.Client

	// endpointOverride points every shop at a fixed URL. Tests only.
	endpointOverride string
}

func newShopifyClient(apiVersion string, client *http.Client) *shopifyClient {
	if apiVersion == "" {
		apiVersion = "2024-01"
	}
	return &shopifyClient{apiVersion: apiVersion, client: client}
}

// normalizeShopURL reduces whatever operators paste into the settings form
// to a bare host. A handle without any dot gets the myshopify suffix; custom
// domains pass through untouched.
func normalizeShopURL(shopURL string) string {
	host := strings.TrimSpace(shopURL)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimSuffix(host, "/")

	if !strings.HasSuffix(host, ".myshopify.com") && !strings.Contains(host, ".") {
		host += ".myshopify.com"
	}

	return host
}

func (c *shopifyClient) endpoint(creds domain.Credentials) string {
	if c.endpointOverride != "" {
		return c.endpointOverride
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", normalizeShopURL(creds.ShopURL), c.apiVersion)
}

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

func (c *shopifyClient) execute(ctx context.Context, creds domain.Credentials, query string, out interface{}) error {
	payload, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(creds), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", creds.APIToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("shopify_request_failed_status_%d", resp.StatusCode)
	}

	var envelope graphqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, gqlErr := range envelope.Errors {
			messages = append(messages, gqlErr.Message)
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(messages, ", "))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

// Wire shapes for the slices of the Admin API schema the pipeline reads.

type pageInfoNode struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	EndCursor       *string `json:"endCursor"`
}

type moneyBagNode struct {
	ShopMoney struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"shopMoney"`
}

type lineItemNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Variant  *struct {
		ID      string  `json:"id"`
		Barcode *string `json:"barcode"`
		SKU     *string `json:"sku"`
		Price   string  `json:"price"`
		Title   string  `json:"title"`
		Product *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"product"`
	} `json:"variant"`
}

type lineItemConnection struct {
	PageInfo pageInfoNode `json:"pageInfo"`
	Edges    []struct {
		Node lineItemNode `json:"node"`
	} `json:"edges"`
}

type orderNode struct {
	ID                       string        `json:"id"`
	Name                     string        `json:"name"`
	CreatedAt                string        `json:"createdAt"`
	DisplayFulfillmentStatus string        `json:"displayFulfillmentStatus"`
	Note                     *string       `json:"note"`
	TotalPriceSet            *moneyBagNode `json:"totalPriceSet"`
	Customer                 *struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"customer"`
	ShippingAddress *struct {
		FirstName     string `json:"firstName"`
		LastName      string `json:"lastName"`
		Company       string `json:"company"`
		Address1      string `json:"address1"`
		Address2      string `json:"address2"`
		City          string `json:"city"`
		Province      string `json:"province"`
		ProvinceCode  string `json:"provinceCode"`
		Zip           string `json:"zip"`
		Country       string `json:"country"`
		CountryCodeV2 string `json:"countryCodeV2"`
		Phone         string `json:"phone"`
	} `json:"shippingAddress"`
	LineItems lineItemConnection `json:"lineItems"`
}

const orderFields = `
	id
	name
	createdAt
	displayFulfillmentStatus
	note
	totalPriceSet {
		shopMoney {
			amount
			currencyCode
		}
	}
	customer {
		id
		firstName
		lastName
		email
	}
	shippingAddress {
		firstName
		lastName
		company
		address1
		address2
		city
		province
		provinceCode
		zip
		country
		countryCodeV2
		phone
	}
	lineItems(first: 250) {
		pageInfo {
			hasNextPage
			endCursor
		}
		edges {
			node {
				id
				name
				quantity
				variant {
					id
					barcode
					sku
					price
					title
					product {
						id
						title
					}
				}
			}
		}
	}`

func (c *shopifyClient) shop(ctx context.Context, creds domain.Credentials) (*domain.ShopInfo, error) {
	var data struct {
		Shop *struct {
			Name         string `json:"name"`
			Email        string `json:"email"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"shop"`
	}
	query := `{ shop { name email currencyCode } }`
	if err := c.execute(ctx, creds, query, &data); err != nil {
		return nil, err
	}
	if data.Shop == nil {
		return nil, fmt.Errorf("no shop data returned")
	}
	return &domain.ShopInfo{
		Name:         data.Shop.Name,
		Email:        data.Shop.Email,
		CurrencyCode: data.Shop.CurrencyCode,
	}, nil
}

func (c *shopifyClient) unfulfilledOrders(ctx context.Context, creds domain.Credentials, daysBack, limit int, cursor string) (*domain.OrdersPage, error) {
	since := time.Now().UTC().Add(-time.Duration(daysBack) * 24 * time.Hour)
	dateFilter := since.Format("2006-01-02T15:04:05Z")

	afterClause := ""
	if cursor != "" {
		afterClause = fmt.Sprintf(`, after: "%s"`, cursor)
	}

	query := fmt.Sprintf(`{
		orders(
			first: %d,
			query: "created_at:>'%s' AND fulfillment_status:unfulfilled"
			%s
		) {
			pageInfo {
				hasNextPage
				hasPreviousPage
				endCursor
			}
			edges {
				node {%s
				}
			}
		}
	}`, limit, dateFilter, afterClause, orderFields)

	var data struct {
		Orders struct {
			PageInfo pageInfoNode `json:"pageInfo"`
			Edges    []struct {
				Node orderNode `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	}
	if err := c.execute(ctx, creds, query, &data); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(data.Orders.Edges))
	for _, edge := range data.Orders.Edges {
		order, err := c.parseOrder(ctx, creds, edge.Node)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	page := &domain.OrdersPage{
		Orders:       orders,
		HasNextPage:  data.Orders.PageInfo.HasNextPage,
		TotalFetched: len(orders),
	}
	if data.Orders.PageInfo.EndCursor != nil {
		page.EndCursor = *data.Orders.PageInfo.EndCursor
	}

	return page, nil
}

func (c *shopifyClient) orderByGID(ctx context.Context, creds domain.Credentials, orderGID string) (*domain.Order, error) {
	query := fmt.Sprintf(`{
		order(id: "%s") {%s
		}
	}`, orderGID, orderFields)

	var data struct {
		Order *orderNode `json:"order"`
	}
	if err := c.execute(ctx, creds, query, &data); err != nil {
		return nil, err
	}
	if data.Order == nil {
		return nil, nil
	}

	return c.parseOrder(ctx, creds, *data.Order)
}

// allLineItems pages through an order's remaining line items. The first 250
// arrive embedded in the order node; only oversized orders come through here.
func (c *shopifyClient) allLineItems(ctx context.Context, creds domain.Credentials, orderGID string) ([]lineItemNode, error) {
	var items []lineItemNode
	cursor := ""
	hasNext := true

	for hasNext {
		afterClause := ""
		if cursor != "" {
			afterClause = fmt.Sprintf(`, after: "%s"`, cursor)
		}

		query := fmt.Sprintf(`{
			order(id: "%s") {
				lineItems(first: 250%s) {
					pageInfo {
						hasNextPage
						endCursor
					}
					edges {
						node {
							id
							name
							quantity
							variant {
								id
								barcode
								sku
								price
								title
								product {
									id
									title
								}
							}
						}
					}
				}
			}
		}`, orderGID, afterClause)

		var data struct {
			Order *struct {
				LineItems lineItemConnection `json:"lineItems"`
			} `json:"order"`
		}
		if err := c.execute(ctx, creds, query, &data); err != nil {
			return nil, err
		}
		if data.Order == nil {
			break
		}

		for _, edge := range data.Order.LineItems.Edges {
			items = append(items, edge.Node)
		}

		hasNext = data.Order.LineItems.PageInfo.HasNextPage
		cursor = ""
		if data.Order.LineItems.PageInfo.EndCursor != nil {
			cursor = *data.Order.LineItems.PageInfo.EndCursor
		}
		if hasNext && cursor == "" {
			break
		}
	}

	return items, nil
}

func (c *shopifyClient) parseOrder(ctx context.Context, creds domain.Credentials, node orderNode) (*domain.Order, error) {
	itemNodes := make([]lineItemNode, 0, len(node.LineItems.Edges))
	for _, edge := range node.LineItems.Edges {
		itemNodes = append(itemNodes, edge.Node)
	}

	// Orders past the embedded line-item page need the sub-paginated fetch.
	if node.LineItems.PageInfo.HasNextPage {
		all, err := c.allLineItems(ctx, creds, node.ID)
		if err != nil {
			return nil, err
		}
		itemNodes = all
	}

	order := &domain.Order{
		ID:                gidTail(node.ID),
		GID:               node.ID,
		Name:              node.Name,
		FulfillmentStatus: node.DisplayFulfillmentStatus,
		LineItems:         parseLineItems(itemNodes),
		Currency:          "USD",
	}

	if node.Note != nil {
		order.Note = *node.Note
	}
	if created, err := time.Parse(time.RFC3339, node.CreatedAt); err == nil {
		order.CreatedAt = created
	}
	if node.TotalPriceSet != nil {
		order.TotalAmount = parseAmount(node.TotalPriceSet.ShopMoney.Amount)
		if node.TotalPriceSet.ShopMoney.CurrencyCode != "" {
			order.Currency = node.TotalPriceSet.ShopMoney.CurrencyCode
		}
	}
	if node.Customer != nil {
		order.Customer = domain.OrderCustomer{
			ID:        gidTail(node.Customer.ID),
			Name:      strings.TrimSpace(node.Customer.FirstName + " " + node.Customer.LastName),
			Email:     node.Customer.Email,
			FirstName: node.Customer.FirstName,
			LastName:  node.Customer.LastName,
		}
	}
	if node.ShippingAddress != nil {
		order.ShippingAddress = domain.ShippingAddress{
			FirstName:    node.ShippingAddress.FirstName,
			LastName:     node.ShippingAddress.LastName,
			Company:      node.ShippingAddress.Company,
			Address1:     node.ShippingAddress.Address1,
			Address2:     node.ShippingAddress.Address2,
			City:         node.ShippingAddress.City,
			Province:     node.ShippingAddress.Province,
			ProvinceCode: node.ShippingAddress.ProvinceCode,
			Zip:          node.ShippingAddress.Zip,
			Country:      node.ShippingAddress.Country,
			CountryCode:  node.ShippingAddress.CountryCodeV2,
			Phone:        node.ShippingAddress.Phone,
		}
	}

	return order, nil
}

func parseLineItems(nodes []lineItemNode) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(nodes))
	for _, node := range nodes {
		item := domain.LineItem{
			ID:       node.ID,
			Name:     node.Name,
			Quantity: node.Quantity,
		}
		if node.Variant != nil {
			if node.Variant.Barcode != nil {
				item.Barcode = *node.Variant.Barcode
			}
			if node.Variant.SKU != nil {
				item.SKU = *node.Variant.SKU
			}
			item.Price = parseAmount(node.Variant.Price)
			item.VariantTitle = node.Variant.Title
			if node.Variant.Product != nil {
				item.ProductID = node.Variant.Product.ID
				item.ProductTitle = node.Variant.Product.Title
			}
		}
		items = append(items, item)
	}
	return items
}

// gidTail extracts the numeric id from gid://shopify/Order/12345.
func gidTail(gid string) string {
	if gid == "" {
		return ""
	}
	parts := strings.Split(gid, "/")
	return parts[len(parts)-1]
}

func parseAmount(amount string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0
	}
	return value
}
