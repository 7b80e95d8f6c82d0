package domain

// Product is a row in the legacy Items_tbl. Every column except the id can be
// NULL in practice, so the optional ones stay pointers and callers decide the
// fallback.
type Product struct {
	ProductID          int64    `gorm:"column:ProductID;primaryKey" json:"product_id"`
	CateID             *int64   `gorm:"column:CateID" json:"cate_id,omitempty"`
	SubCateID          *int64   `gorm:"column:SubCateID" json:"sub_cate_id,omitempty"`
	ProductSKU         *string  `gorm:"column:ProductSKU" json:"product_sku,omitempty"`
	ProductUPC         *string  `gorm:"column:ProductUPC" json:"product_upc,omitempty"`
	ProductDescription *string  `gorm:"column:ProductDescription" json:"product_description,omitempty"`
	UnitPrice          *float64 `gorm:"column:UnitPrice" json:"unit_price,omitempty"`
	UnitCost           *float64 `gorm:"column:UnitCost" json:"unit_cost,omitempty"`
	ItemSize           *string  `gorm:"column:ItemSize" json:"item_size,omitempty"`
	ItemWeight         *string  `gorm:"column:ItemWeight" json:"item_weight,omitempty"`
	UnitID             *int64   `gorm:"column:UnitID" json:"unit_id,omitempty"`
	ItemTaxID          *int64   `gorm:"column:ItemTaxID" json:"item_tax_id,omitempty"`
	SPPromoted         *int64   `gorm:"column:SPPromoted" json:"-"`
}

func (Product) TableName() string {
	return "Items_tbl"
}

// Barcode returns the UPC or "" when the column is NULL.
func (p *Product) Barcode() string {
	if p == nil || p.ProductUPC == nil {
		return ""
	}
	return *p.ProductUPC
}

// Customer is a row in the legacy Customers_tbl.
type Customer struct {
	CustomerID      int64   `gorm:"column:CustomerID;primaryKey" json:"customer_id"`
	AccountNo       *string `gorm:"column:AccountNo" json:"account_no,omitempty"`
	BusinessName    *string `gorm:"column:BusinessName" json:"business_name,omitempty"`
	ContactName     *string `gorm:"column:Contactname" json:"contact_name,omitempty"`
	ShipTo          *string `gorm:"column:ShipTo" json:"ship_to,omitempty"`
	ShipContact     *string `gorm:"column:ShipContact" json:"ship_contact,omitempty"`
	ShipAddress1    *string `gorm:"column:ShipAddress1" json:"ship_address1,omitempty"`
	ShipAddress2    *string `gorm:"column:ShipAddress2" json:"ship_address2,omitempty"`
	ShipCity        *string `gorm:"column:ShipCity" json:"ship_city,omitempty"`
	ShipState       *string `gorm:"column:ShipState" json:"ship_state,omitempty"`
	ShipZipCode     *string `gorm:"column:ShipZipCode" json:"ship_zip_code,omitempty"`
	ShipPhoneNumber *string `gorm:"column:ShipPhone_Number" json:"ship_phone_number,omitempty"`
	PriceLevel      *int64  `gorm:"column:PriceLevel" json:"price_level,omitempty"`
	TermID          *int64  `gorm:"column:TermID" json:"term_id,omitempty"`
	SalesRepID      *int64  `gorm:"column:SalesRepID" json:"sales_rep_id,omitempty"`
	Discontinued    *bool   `gorm:"column:Discontinued" json:"discontinued,omitempty"`
}

func (Customer) TableName() string {
	return "Customers_tbl"
}

// Unit is a row in the legacy Units_tbl.
type Unit struct {
	UnitID   int64   `gorm:"column:UnitID;primaryKey" json:"unit_id"`
	UnitDesc *string `gorm:"column:UnitDesc" json:"unit_desc,omitempty"`
}

func (Unit) TableName() string {
	return "Units_tbl"
}

// ConnectionStatus is the result of probing a catalog endpoint.
type ConnectionStatus struct {
	Role          string `json:"role"`
	ServerVersion string `json:"server_version"`
}
