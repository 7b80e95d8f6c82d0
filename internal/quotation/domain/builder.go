package domain

import (
	"strconv"
	"strings"
	"time"

	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	reconciledomain "github.com/smallbiznis/quotient/internal/reconcile/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

// DefaultTitlePrefix is used when the store's quotation defaults leave the
// title prefix blank.
const DefaultTitlePrefix = "Shopify Order"

// Column widths of the legacy quotation tables.
const (
	widthTitle       = 50
	widthPoNumber    = 20
	widthBusiness    = 50
	widthAccountNo   = 13
	widthShipto      = 50
	widthShipAddress = 50
	widthShipContact = 50
	widthShipCity    = 20
	widthShipState   = 3
	widthShipZip     = 10
	widthUnitDesc    = 50
	widthSKU         = 20
	widthBarcode     = 20
	widthDescription = 50
	widthItemWeight  = 10
)

// BuildInput carries everything the builder needs. UnitDescs maps unit ids
// to their Units_tbl description; a resolved product whose unit id is absent
// gets an empty description. Nullable defaults fields stay unset on the
// header when nil.
type BuildInput struct {
	Order     ordersourcedomain.Order
	Resolved  []reconciledomain.ResolvedProduct
	Customer  catalogdomain.Customer
	Defaults  storedomain.QuotationDefaults
	Number    int64
	UnitDescs map[int64]string
	Now       time.Time
}

// Build maps one validated order into a quotation header and its detail
// rows. It is a pure construction step: no lookups, no side effects. The
// header total is the sum of the detail extended prices.
func Build(in BuildInput) (*Quotation, []QuotationDetail) {
	now := in.Now
	expirationDays := in.Defaults.ExpirationDays
	if expirationDays <= 0 {
		expirationDays = 365
	}

	titlePrefix := strings.TrimSpace(in.Defaults.TitlePrefix)
	if titlePrefix == "" {
		titlePrefix = DefaultTitlePrefix
	}

	address := in.Order.ShippingAddress
	contact := strings.TrimSpace(address.FirstName + " " + address.LastName)
	shipto := address.Company
	if strings.TrimSpace(shipto) == "" {
		shipto = contact
	}

	status := 1
	if in.Defaults.Status != nil {
		status = *in.Defaults.Status
	}

	header := &Quotation{
		QuotationNumber: strconv.FormatInt(in.Number, 10),
		QuotationDate:   now,
		QuotationTitle:  Truncate(strings.TrimSpace(titlePrefix+" "+in.Order.Name), widthTitle),
		PoNumber:        Truncate(in.Order.Name, widthPoNumber),
		ExpirationDate:  now.AddDate(0, 0, expirationDays),
		CustomerID:      in.Customer.CustomerID,
		BusinessName:    Truncate(strValue(in.Customer.BusinessName), widthBusiness),
		AccountNo:       Truncate(strValue(in.Customer.AccountNo), widthAccountNo),
		Shipto:          Truncate(shipto, widthShipto),
		ShipAddress1:    Truncate(address.Address1, widthShipAddress),
		ShipAddress2:    "",
		ShipContact:     Truncate(contact, widthShipContact),
		ShipCity:        Truncate(address.City, widthShipCity),
		ShipState:       Truncate(address.ProvinceCode, widthShipState),
		ShipZipCode:     Truncate(address.Zip, widthShipZip),
		ShipPhoneNo:     "",
		Status:          status,
		ShipperID:       in.Defaults.ShipperID,
		SalesRepID:      firstID(in.Customer.SalesRepID, in.Defaults.SalesRepID),
		TermID:          firstID(in.Customer.TermID, in.Defaults.TermID),
	}

	details := make([]QuotationDetail, 0, len(in.Resolved))
	for _, item := range in.Resolved {
		qty := item.OrderQuantity
		if qty <= 0 {
			qty = 1
		}
		unitPrice := item.OrderPrice
		if unitPrice == 0 {
			unitPrice = floatValue(item.UnitPrice)
		}
		originalPrice := floatValue(item.UnitPrice)
		if originalPrice == 0 {
			originalPrice = unitPrice
		}
		unitCost := floatValue(item.UnitCost)

		unitDesc := ""
		if item.UnitID != nil {
			unitDesc = in.UnitDescs[*item.UnitID]
		}

		details = append(details, QuotationDetail{
			CateID:             item.CateID,
			SubCateID:          item.SubCateID,
			UnitDesc:           Truncate(unitDesc, widthUnitDesc),
			UnitQty:            1,
			ProductID:          item.ProductID,
			ProductSKU:         Truncate(strValue(item.ProductSKU), widthSKU),
			ProductUPC:         Truncate(strValue(item.ProductUPC), widthBarcode),
			ProductDescription: Truncate(strValue(item.ProductDescription), widthDescription),
			ItemSize:           "",
			ExpDate:            now.AddDate(0, 0, 365),
			UnitPrice:          unitPrice,
			OriginalPrice:      originalPrice,
			UnitCost:           unitCost,
			Qty:                qty,
			ItemWeight:         Truncate(strValue(item.ItemWeight), widthItemWeight),
			ExtendedPrice:      float64(qty) * unitPrice,
			ExtendedCost:       float64(qty) * unitCost,
			ItemTaxID:          item.ItemTaxID,
		})
		header.QuotationTotal += float64(qty) * unitPrice
	}

	return header, details
}

func firstID(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatValue(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
