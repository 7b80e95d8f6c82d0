package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/transfer/domain"
	"github.com/smallbiznis/quotient/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Append inserts the ledger row. Success rows name the partial unique index
// as their conflict target, so a concurrent success for the same order lands
// as a silent no-op instead of an error; the bool reports whether this call
// wrote the row.
func (r *repo) Append(ctx context.Context, db *gorm.DB, record *domain.TransferRecord) (bool, error) {
	stmt := db.WithContext(ctx)
	if record.Status == domain.StatusSuccess {
		// The predicate must be a literal: with a bound parameter neither
		// sqlite nor postgres can match the partial index to the conflict
		// target.
		stmt = stmt.Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "store_id"}, {Name: "order_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("status = 'success'")}},
			DoNothing:   true,
		})
	}

	result := stmt.Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindSuccess(ctx context.Context, db *gorm.DB, storeID snowflake.ID, orderID string) (*domain.TransferRecord, error) {
	if storeID == 0 || orderID == "" {
		return nil, nil
	}

	var record domain.TransferRecord
	stmt := db.WithContext(ctx).Raw(`
		SELECT * FROM transfer_history
		WHERE store_id = ? AND order_id = ? AND status = ?
	`, storeID, orderID, domain.StatusSuccess).Scan(&record)
	if stmt.Error != nil {
		return nil, stmt.Error
	}
	if stmt.RowsAffected == 0 {
		return nil, nil
	}

	return &record, nil
}

func (r *repo) TransferredSet(ctx context.Context, db *gorm.DB, storeID snowflake.ID, orderIDs []string) (map[string]bool, error) {
	transferred := make(map[string]bool, len(orderIDs))
	if storeID == 0 || len(orderIDs) == 0 {
		return transferred, nil
	}

	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.TransferRecord{}).
		Where("store_id = ? AND status = ? AND order_id IN ?", storeID, domain.StatusSuccess, orderIDs).
		Pluck("order_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		transferred[id] = true
	}
	return transferred, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, opts ...option.Option) ([]*domain.HistoryItem, error) {
	stmt := db.WithContext(ctx).
		Table("transfer_history AS h").
		Select("h.*, s.name AS store_name").
		Joins("LEFT JOIN stores s ON s.id = h.store_id")

	if filter.StoreID != 0 {
		stmt = stmt.Where("h.store_id = ?", filter.StoreID)
	}
	if filter.Status != "" && filter.Status != "all" {
		stmt = stmt.Where("h.status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("h.transferred_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("h.transferred_at < ?", *filter.DateTo)
	}

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var items []*domain.HistoryItem
	if err := stmt.Order("h.transferred_at desc, h.id desc").Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	if id == 0 {
		return false, nil
	}

	stmt := db.WithContext(ctx).Exec(`DELETE FROM transfer_history WHERE id = ?`, id)
	if stmt.Error != nil {
		return false, stmt.Error
	}
	return stmt.RowsAffected > 0, nil
}

func (r *repo) DeleteAllFailed(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (int64, error) {
	stmt := db.WithContext(ctx).Where("status = ?", domain.StatusFailed)
	if storeID != 0 {
		stmt = stmt.Where("store_id = ?", storeID)
	}

	result := stmt.Delete(&domain.TransferRecord{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
