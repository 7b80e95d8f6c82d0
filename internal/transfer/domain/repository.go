package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/pkg/db/option"
	"gorm.io/gorm"
)

// ListFilter narrows the history listing. Zero values pass everything; the
// status literal "all" is treated as unset.
type ListFilter struct {
	StoreID  snowflake.ID
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

type Repository interface {
	// Append writes a ledger row. For success rows the partial unique
	// index absorbs a second success for the same (store, order); the
	// returned bool reports whether this call inserted the row.
	Append(ctx context.Context, db *gorm.DB, record *TransferRecord) (bool, error)

	// FindSuccess returns the success row for (store, order), nil when the
	// order has not been transferred.
	FindSuccess(ctx context.Context, db *gorm.DB, storeID snowflake.ID, orderID string) (*TransferRecord, error)

	// TransferredSet reports which of the given order ids already have a
	// success row, in one query.
	TransferredSet(ctx context.Context, db *gorm.DB, storeID snowflake.ID, orderIDs []string) (map[string]bool, error)

	List(ctx context.Context, db *gorm.DB, filter ListFilter, opts ...option.Option) ([]*HistoryItem, error)

	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)

	// DeleteAllFailed removes failed rows, optionally for one store only,
	// and returns how many went away.
	DeleteAllFailed(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (int64, error)
}
