package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smallbiznis/quotient/internal/ordersource/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeShopURL(t *testing.T) {
	cases := map[string]string{
		"mystore":                        "mystore.myshopify.com",
		"https://mystore.myshopify.com/": "mystore.myshopify.com",
		"http://mystore":                 "mystore.myshopify.com",
		"shop.example.com":               "shop.example.com",
		"  mystore.myshopify.com  ":      "mystore.myshopify.com",
	}
	for input, want := range cases {
		assert.Equal(t, want, normalizeShopURL(input), "input %q", input)
	}
}

func TestGidTail(t *testing.T) {
	assert.Equal(t, "5551234", gidTail("gid://shopify/Order/5551234"))
	assert.Equal(t, "plain", gidTail("plain"))
	assert.Empty(t, gidTail(""))
}

// graphqlStub answers canned responses keyed on fragments of the incoming
// query, and records the queries it saw.
type graphqlStub struct {
	t       *testing.T
	queries []string
	answer  func(query string) string
}

func (g *graphqlStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(g.t, "test-token", r.Header.Get("X-Shopify-Access-Token"))

		var body struct {
			Query string `json:"query"`
		}
		require.NoError(g.t, json.NewDecoder(r.Body).Decode(&body))
		g.queries = append(g.queries, body.Query)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(g.answer(body.Query)))
	}
}

func newStubbedService(t *testing.T, stub *graphqlStub) (domain.Service, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	svc := &Service{
		log: zap.NewNop(),
		client: &shopifyClient{
			apiVersion:       "2024-01",
			client:           srv.Client(),
			endpointOverride: srv.URL,
		},
	}
	return svc, srv
}

func testCreds() domain.Credentials {
	return domain.Credentials{ShopURL: "mystore", APIToken: "test-token"}
}

func TestTestConnectionReturnsShopInfo(t *testing.T) {
	stub := &graphqlStub{t: t, answer: func(string) string {
		return `{"data":{"shop":{"name":"My Store","email":"ops@mystore.com","currencyCode":"USD"}}}`
	}}
	svc, _ := newStubbedService(t, stub)

	info, err := svc.TestConnection(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, "My Store", info.Name)
	assert.Equal(t, "ops@mystore.com", info.Email)
	assert.Equal(t, "USD", info.CurrencyCode)

	_, err = svc.TestConnection(context.Background(), domain.Credentials{APIToken: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidShopURL)
}

const singleOrderPayload = `{
	"data": {
		"orders": {
			"pageInfo": {"hasNextPage": true, "hasPreviousPage": false, "endCursor": "cursor-1"},
			"edges": [{
				"node": {
					"id": "gid://shopify/Order/5551234",
					"name": "#1001",
					"createdAt": "2026-08-20T10:30:00Z",
					"displayFulfillmentStatus": "UNFULFILLED",
					"note": null,
					"totalPriceSet": {"shopMoney": {"amount": "41.97", "currencyCode": "USD"}},
					"customer": {"id": "gid://shopify/Customer/777", "firstName": "Dana", "lastName": "Reyes", "email": "dana@example.com"},
					"shippingAddress": {
						"firstName": "Dana", "lastName": "Reyes", "company": "Reyes Hardware",
						"address1": "12 Pier Rd", "address2": "", "city": "Portland",
						"province": "Oregon", "provinceCode": "OR", "zip": "97201",
						"country": "United States", "countryCodeV2": "US", "phone": ""
					},
					"lineItems": {
						"pageInfo": {"hasNextPage": false, "endCursor": null},
						"edges": [
							{"node": {
								"id": "gid://shopify/LineItem/1",
								"name": "Hex Bolt 10mm",
								"quantity": 3,
								"variant": {
									"id": "gid://shopify/ProductVariant/9",
									"barcode": "0123456789012",
									"sku": "HB-10",
									"price": "13.99",
									"title": "Default",
									"product": {"id": "gid://shopify/Product/4", "title": "Hex Bolt"}
								}
							}},
							{"node": {
								"id": "gid://shopify/LineItem/2",
								"name": "Mystery Item",
								"quantity": 1,
								"variant": null
							}}
						]
					}
				}
			}]
		}
	}
}`

func TestListUnfulfilledOrdersParsesPage(t *testing.T) {
	stub := &graphqlStub{t: t, answer: func(string) string { return singleOrderPayload }}
	svc, _ := newStubbedService(t, stub)

	page, err := svc.ListUnfulfilledOrders(context.Background(), testCreds(), domain.ListOrdersRequest{DaysBack: 7})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "cursor-1", page.EndCursor)
	assert.Equal(t, 1, page.TotalFetched)

	order := page.Orders[0]
	assert.Equal(t, "5551234", order.ID)
	assert.Equal(t, "gid://shopify/Order/5551234", order.GID)
	assert.Equal(t, "#1001", order.Name)
	assert.Equal(t, "UNFULFILLED", order.FulfillmentStatus)
	assert.Empty(t, order.Note)
	assert.Equal(t, 41.97, order.TotalAmount)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, "Dana Reyes", order.Customer.Name)
	assert.Equal(t, "777", order.Customer.ID)
	assert.Equal(t, "OR", order.ShippingAddress.ProvinceCode)
	assert.Equal(t, "Reyes Hardware", order.ShippingAddress.Company)

	require.Len(t, order.LineItems, 2)
	assert.Equal(t, "0123456789012", order.LineItems[0].Barcode)
	assert.Equal(t, 13.99, order.LineItems[0].Price)
	assert.Equal(t, 3, order.LineItems[0].Quantity)
	// A deleted variant leaves the identifying fields blank.
	assert.Empty(t, order.LineItems[1].Barcode)
	assert.Zero(t, order.LineItems[1].Price)

	// The date filter and fulfillment filter ride in the search query.
	require.Len(t, stub.queries, 1)
	assert.Contains(t, stub.queries[0], "fulfillment_status:unfulfilled")
	assert.Contains(t, stub.queries[0], "created_at:>")
	assert.Contains(t, stub.queries[0], "first: 50")
}

func TestListUnfulfilledOrdersSurfacesGraphQLErrors(t *testing.T) {
	stub := &graphqlStub{t: t, answer: func(string) string {
		return `{"errors":[{"message":"Throttled"},{"message":"Retry later"}]}`
	}}
	svc, _ := newStubbedService(t, stub)

	_, err := svc.ListUnfulfilledOrders(context.Background(), testCreds(), domain.ListOrdersRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graphql errors: Throttled, Retry later")
}

func TestGetOrderBuildsGID(t *testing.T) {
	stub := &graphqlStub{t: t}
	stub.answer = func(query string) string {
		if strings.Contains(query, `order(id: "gid://shopify/Order/5551234")`) {
			return `{"data":{"order":{
				"id": "gid://shopify/Order/5551234",
				"name": "#1001",
				"createdAt": "2026-08-20T10:30:00Z",
				"displayFulfillmentStatus": "UNFULFILLED",
				"lineItems": {"pageInfo": {"hasNextPage": false}, "edges": []}
			}}}`
		}
		return `{"data":{"order":null}}`
	}
	svc, _ := newStubbedService(t, stub)
	ctx := context.Background()

	order, err := svc.GetOrder(ctx, testCreds(), "5551234")
	require.NoError(t, err)
	assert.Equal(t, "#1001", order.Name)

	_, err = svc.GetOrder(ctx, testCreds(), "404404")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.GetOrder(ctx, testCreds(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderID)
}

func TestLineItemSubPagination(t *testing.T) {
	orderWithOverflow := strings.Replace(singleOrderPayload,
		`"pageInfo": {"hasNextPage": false, "endCursor": null}`,
		`"pageInfo": {"hasNextPage": true, "endCursor": "li-cursor-0"}`, 1)

	pageOne := `{"data":{"order":{"lineItems":{
		"pageInfo":{"hasNextPage":true,"endCursor":"li-cursor-1"},
		"edges":[
			{"node":{"id":"gid://shopify/LineItem/1","name":"Hex Bolt 10mm","quantity":3,"variant":{"id":"v1","barcode":"0123456789012","sku":"HB-10","price":"13.99","title":"Default","product":{"id":"p1","title":"Hex Bolt"}}}},
			{"node":{"id":"gid://shopify/LineItem/2","name":"Washer","quantity":10,"variant":{"id":"v2","barcode":"0123456789013","sku":"WA-01","price":"0.25","title":"Default","product":{"id":"p2","title":"Washer"}}}}
		]}}}}`
	pageTwo := `{"data":{"order":{"lineItems":{
		"pageInfo":{"hasNextPage":false,"endCursor":null},
		"edges":[
			{"node":{"id":"gid://shopify/LineItem/3","name":"Nut","quantity":10,"variant":{"id":"v3","barcode":"0123456789014","sku":"NU-01","price":"0.30","title":"Default","product":{"id":"p3","title":"Nut"}}}}
		]}}}}`

	call := 0
	stub := &graphqlStub{t: t}
	stub.answer = func(query string) string {
		call++
		switch {
		case strings.Contains(query, "orders("):
			return orderWithOverflow
		case strings.Contains(query, `after: "li-cursor-1"`):
			return pageTwo
		default:
			return pageOne
		}
	}
	svc, _ := newStubbedService(t, stub)

	page, err := svc.ListUnfulfilledOrders(context.Background(), testCreds(), domain.ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)

	// The embedded page is replaced by the complete sub-paginated fetch.
	items := page.Orders[0].LineItems
	require.Len(t, items, 3)
	assert.Equal(t, "0123456789012", items[0].Barcode)
	assert.Equal(t, "0123456789014", items[2].Barcode)
	assert.Equal(t, 3, call)
}
