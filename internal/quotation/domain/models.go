package domain

import (
	"time"
)

// Quotation is a header row in the legacy Quotations_tbl. QuotationID is the
// identity column; QuotationNumber is stored as text in the legacy schema and
// carries the allocator's int64 formatted as digits. Column widths follow the
// legacy declarations, so every text field is truncated before it lands here.
type Quotation struct {
	QuotationID     int64     `gorm:"column:QuotationID;primaryKey" json:"quotation_id"`
	QuotationNumber string    `gorm:"column:QuotationNumber;uniqueIndex" json:"quotation_number"`
	QuotationDate   time.Time `gorm:"column:QuotationDate" json:"quotation_date"`
	QuotationTitle  string    `gorm:"column:QuotationTitle" json:"quotation_title"`
	PoNumber        string    `gorm:"column:PoNumber" json:"po_number"`
	AutoOrderNo     *string   `gorm:"column:AutoOrderNo" json:"auto_order_no,omitempty"`
	ExpirationDate  time.Time `gorm:"column:ExpirationDate" json:"expiration_date"`
	CustomerID      int64     `gorm:"column:CustomerID" json:"customer_id"`
	BusinessName    string    `gorm:"column:BusinessName" json:"business_name"`
	AccountNo       string    `gorm:"column:AccountNo" json:"account_no"`
	Shipto          string    `gorm:"column:Shipto" json:"shipto"`
	ShipAddress1    string    `gorm:"column:ShipAddress1" json:"ship_address1"`
	ShipAddress2    string    `gorm:"column:ShipAddress2" json:"ship_address2"`
	ShipContact     string    `gorm:"column:ShipContact" json:"ship_contact"`
	ShipCity        string    `gorm:"column:ShipCity" json:"ship_city"`
	ShipState       string    `gorm:"column:ShipState" json:"ship_state"`
	ShipZipCode     string    `gorm:"column:ShipZipCode" json:"ship_zip_code"`
	ShipPhoneNo     string    `gorm:"column:ShipPhoneNo" json:"ship_phone_no"`
	Status          int       `gorm:"column:Status" json:"status"`
	ShipperID       *int64    `gorm:"column:ShipperID" json:"shipper_id,omitempty"`
	SalesRepID      *int64    `gorm:"column:SalesRepID" json:"sales_rep_id,omitempty"`
	TermID          *int64    `gorm:"column:TermID" json:"term_id,omitempty"`
	TotalTaxes      float64   `gorm:"column:TotalTaxes" json:"total_taxes"`
	QuotationTotal  float64   `gorm:"column:QuotationTotal" json:"quotation_total"`
	Header          string    `gorm:"column:Header" json:"header"`
	Footer          string    `gorm:"column:Footer" json:"footer"`
	Notes           string    `gorm:"column:Notes" json:"notes"`
	Memo            string    `gorm:"column:Memo" json:"memo"`
	Flaged          int       `gorm:"column:flaged" json:"flaged"`
}

func (Quotation) TableName() string {
	return "Quotations_tbl"
}

// QuotationDetail is a line row in the legacy QuotationsDetails_tbl, keyed to
// its header by QuotationID.
type QuotationDetail struct {
	QuotationDetailID      int64     `gorm:"column:QuotationDetailID;primaryKey" json:"quotation_detail_id"`
	QuotationID            int64     `gorm:"column:QuotationID" json:"quotation_id"`
	CateID                 *int64    `gorm:"column:CateID" json:"cate_id,omitempty"`
	SubCateID              *int64    `gorm:"column:SubCateID" json:"sub_cate_id,omitempty"`
	UnitDesc               string    `gorm:"column:UnitDesc" json:"unit_desc"`
	UnitQty                int       `gorm:"column:UnitQty" json:"unit_qty"`
	ProductID              int64     `gorm:"column:ProductID" json:"product_id"`
	ProductSKU             string    `gorm:"column:ProductSKU" json:"product_sku"`
	ProductUPC             string    `gorm:"column:ProductUPC" json:"product_upc"`
	ProductDescription     string    `gorm:"column:ProductDescription" json:"product_description"`
	ItemSize               string    `gorm:"column:ItemSize" json:"item_size"`
	ExpDate                time.Time `gorm:"column:ExpDate" json:"exp_date"`
	ReasonID               *int64    `gorm:"column:ReasonID" json:"reason_id,omitempty"`
	LineMessage            string    `gorm:"column:LineMessage" json:"line_message"`
	UnitPrice              float64   `gorm:"column:UnitPrice" json:"unit_price"`
	OriginalPrice          float64   `gorm:"column:OriginalPrice" json:"original_price"`
	RememberPrice          int       `gorm:"column:RememberPrice" json:"remember_price"`
	UnitCost               float64   `gorm:"column:UnitCost" json:"unit_cost"`
	Discount               float64   `gorm:"column:Discount" json:"discount"`
	DsPercent              float64   `gorm:"column:ds_Percent" json:"ds_percent"`
	Qty                    int       `gorm:"column:Qty" json:"qty"`
	ItemWeight             string    `gorm:"column:ItemWeight" json:"item_weight"`
	ExtendedPrice          float64   `gorm:"column:ExtendedPrice" json:"extended_price"`
	ExtendedDisc           float64   `gorm:"column:ExtendedDisc" json:"extended_disc"`
	ExtendedCost           float64   `gorm:"column:ExtendedCost" json:"extended_cost"`
	PromotionID            *int64    `gorm:"column:PromotionID" json:"promotion_id,omitempty"`
	PromotionLine          int       `gorm:"column:PromotionLine" json:"promotion_line"`
	PromotionDescription   string    `gorm:"column:PromotionDescription" json:"promotion_description"`
	PromotionAmount        float64   `gorm:"column:PromotionAmount" json:"promotion_amount"`
	ActExtendedPrice       float64   `gorm:"column:ActExtendedPrice" json:"act_extended_price"`
	SPPromoted             int       `gorm:"column:SPPromoted" json:"sp_promoted"`
	SPPromotionDescription string    `gorm:"column:SPPromotionDescription" json:"sp_promotion_description"`
	Taxable                int       `gorm:"column:Taxable" json:"taxable"`
	ItemTaxID              *int64    `gorm:"column:ItemTaxID" json:"item_tax_id,omitempty"`
	Catch                  *string   `gorm:"column:Catch" json:"catch,omitempty"`
	Comments               string    `gorm:"column:Comments" json:"comments"`
	Flag                   int       `gorm:"column:Flag" json:"flag"`
}

func (QuotationDetail) TableName() string {
	return "QuotationsDetails_tbl"
}

// Truncate clips s to at most max characters. The legacy columns are
// fixed-width varchars, so every text value passes through here before an
// insert. Empty input stays empty.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
