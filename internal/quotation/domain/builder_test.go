package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	reconciledomain "github.com/smallbiznis/quotient/internal/reconcile/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

func ptr[T any](v T) *T { return &v }

func buildOrder() ordersourcedomain.Order {
	return ordersourcedomain.Order{
		ID:   "5551234",
		Name: "#1001",
		ShippingAddress: ordersourcedomain.ShippingAddress{
			FirstName:    "Jane",
			LastName:     "Doe",
			Address1:     "123 Commerce Street",
			City:         "Springfield",
			ProvinceCode: "IL",
			Zip:          "62704",
		},
	}
}

func buildCustomer() catalogdomain.Customer {
	return catalogdomain.Customer{
		CustomerID:   42,
		BusinessName: ptr(strings.Repeat("B", 60)),
		AccountNo:    ptr("ACCT-123456789012345"),
		SalesRepID:   ptr(int64(7)),
	}
}

func TestBuildHeader(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	header, details := Build(BuildInput{
		Order:    buildOrder(),
		Customer: buildCustomer(),
		Defaults: storedomain.QuotationDefaults{
			ShipperID:      ptr(int64(9)),
			SalesRepID:     ptr(int64(99)),
			TermID:         ptr(int64(5)),
			ExpirationDays: 30,
		},
		Number: 6202025000,
		Now:    now,
	})
	require.Empty(t, details)

	assert.Equal(t, "6202025000", header.QuotationNumber)
	assert.Equal(t, now, header.QuotationDate)
	assert.Equal(t, "Shopify Order #1001", header.QuotationTitle)
	assert.Equal(t, "#1001", header.PoNumber)
	assert.Equal(t, now.AddDate(0, 0, 30), header.ExpirationDate)
	assert.Nil(t, header.AutoOrderNo)

	assert.Equal(t, int64(42), header.CustomerID)
	assert.Len(t, header.BusinessName, 50)
	assert.Equal(t, "ACCT-12345678", header.AccountNo)

	// No company on the address, so ship-to falls back to the contact name.
	assert.Equal(t, "Jane Doe", header.Shipto)
	assert.Equal(t, "Jane Doe", header.ShipContact)
	assert.Equal(t, "123 Commerce Street", header.ShipAddress1)
	assert.Equal(t, "", header.ShipAddress2)
	assert.Equal(t, "Springfield", header.ShipCity)
	assert.Equal(t, "IL", header.ShipState)
	assert.Equal(t, "62704", header.ShipZipCode)
	assert.Equal(t, "", header.ShipPhoneNo)

	assert.Equal(t, 1, header.Status)
	require.NotNil(t, header.ShipperID)
	assert.Equal(t, int64(9), *header.ShipperID)

	// The customer's own sales rep wins over the defaults; the term falls
	// back because the customer has none.
	require.NotNil(t, header.SalesRepID)
	assert.Equal(t, int64(7), *header.SalesRepID)
	require.NotNil(t, header.TermID)
	assert.Equal(t, int64(5), *header.TermID)

	assert.Zero(t, header.QuotationTotal)
	assert.Zero(t, header.TotalTaxes)
	assert.Zero(t, header.Flaged)
}

func TestBuildHeaderPrefixAndCompany(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	order := buildOrder()
	order.ShippingAddress.Company = "Acme Wholesale"
	order.ShippingAddress.ProvinceCode = "California"

	header, _ := Build(BuildInput{
		Order:    order,
		Customer: buildCustomer(),
		Defaults: storedomain.QuotationDefaults{
			Status:      ptr(3),
			TitlePrefix: "Web Order",
		},
		Number: 6102025001,
		Now:    now,
	})

	assert.Equal(t, "Web Order #1001", header.QuotationTitle)
	assert.Equal(t, "Acme Wholesale", header.Shipto)
	assert.Equal(t, "Cal", header.ShipState)
	assert.Equal(t, 3, header.Status)
	assert.Nil(t, header.ShipperID)

	// Blank expiration days fall back to a year.
	assert.Equal(t, now.AddDate(0, 0, 365), header.ExpirationDate)
}

func TestBuildDetails(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	resolved := []reconciledomain.ResolvedProduct{
		{
			Product: catalogdomain.Product{
				ProductID:          100,
				CateID:             ptr(int64(4)),
				SubCateID:          ptr(int64(8)),
				ProductSKU:         ptr("SKU-123456789012345678901234"),
				ProductUPC:         ptr("012345678901234567890123"),
				ProductDescription: ptr(strings.Repeat("D", 70)),
				UnitPrice:          ptr(12.0),
				UnitCost:           ptr(4.0),
				ItemSize:           ptr("12oz"),
				ItemWeight:         ptr("1.2508 lbs"),
				UnitID:             ptr(int64(3)),
				ItemTaxID:          ptr(int64(2)),
			},
			OrderQuantity: 2,
			OrderPrice:    10.50,
		},
		{
			Product: catalogdomain.Product{ProductID: 101},
		},
	}

	header, details := Build(BuildInput{
		Order:     buildOrder(),
		Resolved:  resolved,
		Customer:  buildCustomer(),
		Defaults:  storedomain.QuotationDefaults{ExpirationDays: 30},
		Number:    6202025000,
		UnitDescs: map[int64]string{3: strings.Repeat("Case of 12 ", 6)},
		Now:       now,
	})
	require.Len(t, details, 2)

	first := details[0]
	assert.Equal(t, int64(100), first.ProductID)
	assert.Equal(t, int64(4), *first.CateID)
	assert.Len(t, first.ProductSKU, 20)
	assert.Len(t, first.ProductUPC, 20)
	assert.Len(t, first.ProductDescription, 50)
	assert.Len(t, first.UnitDesc, 50)
	assert.Equal(t, 1, first.UnitQty)
	assert.Equal(t, 2, first.Qty)

	// The order's price wins; the catalog price stays as the original.
	assert.Equal(t, 10.50, first.UnitPrice)
	assert.Equal(t, 12.0, first.OriginalPrice)
	assert.Equal(t, 4.0, first.UnitCost)
	assert.Equal(t, 21.0, first.ExtendedPrice)
	assert.Equal(t, 8.0, first.ExtendedCost)

	// Line rows never carry the catalog item size.
	assert.Equal(t, "", first.ItemSize)
	assert.Equal(t, "1.2508 lbs", first.ItemWeight)
	assert.Equal(t, now.AddDate(0, 0, 365), first.ExpDate)
	require.NotNil(t, first.ItemTaxID)
	assert.Equal(t, int64(2), *first.ItemTaxID)
	assert.Zero(t, first.Taxable)
	assert.Zero(t, first.Discount)
	assert.Nil(t, first.ReasonID)
	assert.Nil(t, first.PromotionID)
	assert.Nil(t, first.Catch)

	// A bare catalog row: quantity clamps to one, prices stay zero and the
	// unit description is empty because there is no unit reference.
	second := details[1]
	assert.Equal(t, 1, second.Qty)
	assert.Zero(t, second.UnitPrice)
	assert.Zero(t, second.OriginalPrice)
	assert.Zero(t, second.ExtendedPrice)
	assert.Equal(t, "", second.UnitDesc)

	assert.Equal(t, 21.0, header.QuotationTotal)
}

func TestBuildFallsBackToCatalogPrice(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	header, details := Build(BuildInput{
		Order: buildOrder(),
		Resolved: []reconciledomain.ResolvedProduct{{
			Product:       catalogdomain.Product{ProductID: 100, UnitPrice: ptr(8.25)},
			OrderQuantity: 3,
		}},
		Customer: buildCustomer(),
		Defaults: storedomain.QuotationDefaults{ExpirationDays: 30},
		Number:   6202025000,
		Now:      now,
	})
	require.Len(t, details, 1)

	assert.Equal(t, 8.25, details[0].UnitPrice)
	assert.Equal(t, 8.25, details[0].OriginalPrice)
	assert.Equal(t, 24.75, details[0].ExtendedPrice)
	assert.Equal(t, 24.75, header.QuotationTotal)
}
