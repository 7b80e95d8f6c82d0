package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// TransferRecord is one ledger row. A partial unique index on
// (store_id, order_id) where status = 'success' caps every order at one
// success row per store; failed rows accumulate freely so retries stay
// visible.
type TransferRecord struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID         snowflake.ID `gorm:"column:store_id;not null;index" json:"store_id"`
	OrderID         string       `gorm:"column:order_id;not null" json:"order_id"`
	OrderName       string       `gorm:"column:order_name" json:"order_name"`
	QuotationNumber *int64       `gorm:"column:quotation_number" json:"quotation_number,omitempty"`
	Status          string       `gorm:"column:status;not null;index" json:"status"`
	ErrorMessage    string       `gorm:"column:error_message" json:"error_message,omitempty"`
	LineItemsCount  int          `gorm:"column:line_items_count" json:"line_items_count"`
	TotalAmount     float64      `gorm:"column:total_amount" json:"total_amount"`
	TransferredAt   time.Time    `gorm:"column:transferred_at;not null;index" json:"transferred_at"`
}

func (TransferRecord) TableName() string {
	return "transfer_history"
}

// HistoryItem is a ledger row joined with the store it belongs to.
type HistoryItem struct {
	TransferRecord `gorm:"embedded"`

	StoreName string `gorm:"column:store_name" json:"store_name"`
}
