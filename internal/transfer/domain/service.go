package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/quotient/pkg/db/pagination"
)

var (
	ErrInvalidStoreID  = errors.New("invalid_store_id")
	ErrInvalidOrderIDs = errors.New("invalid_order_ids")
	ErrInvalidRecordID = errors.New("invalid_record_id")
	ErrInvalidDateFrom = errors.New("invalid_date_from")
	ErrInvalidDateTo   = errors.New("invalid_date_to")
	ErrRecordNotFound  = errors.New("record_not_found")
)

// TransferRequest is one batch: every order id is processed independently,
// in order. CustomCustomers overrides the store's customer mapping for
// single orders; the override lives only in this request.
type TransferRequest struct {
	StoreID         string           `json:"store_id"`
	OrderIDs        []string         `json:"order_ids"`
	CustomCustomers map[string]int64 `json:"custom_customers,omitempty"`
}

type TransferResultItem struct {
	OrderID         string `json:"order_id"`
	OrderName       string `json:"order_name,omitempty"`
	Success         bool   `json:"success"`
	QuotationNumber int64  `json:"quotation_number,omitempty"`
	Error           string `json:"error,omitempty"`
}

type TransferSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type TransferResponse struct {
	Summary TransferSummary      `json:"summary"`
	Results []TransferResultItem `json:"results"`
}

type ListHistoryRequest struct {
	StoreID  string `form:"store_id"`
	Status   string `form:"status"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`

	pagination.Pagination
}

type HistoryPage struct {
	Items    []*HistoryItem       `json:"items"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type DeleteFailedRequest struct {
	StoreID string `json:"store_id,omitempty"`
}

// Service runs order-to-quotation transfers and owns the ledger around
// them.
type Service interface {
	// Transfer processes the batch one order at a time: ledger check,
	// reconciliation, number allocation, build, transactional insert,
	// ledger append. One order's failure never touches the others.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)

	// TransferredSet reports which of the order ids already carry a
	// success row for the store.
	TransferredSet(ctx context.Context, storeID string, orderIDs []string) (map[string]bool, error)

	ListHistory(ctx context.Context, req ListHistoryRequest) (*HistoryPage, error)
	DeleteRecord(ctx context.Context, id string) error
	DeleteFailed(ctx context.Context, req DeleteFailedRequest) (int64, error)
}
