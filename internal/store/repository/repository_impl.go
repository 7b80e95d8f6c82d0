package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/store/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertStore(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO stores (id, name, shop_url, api_token, is_active, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, store.ID, store.Name, store.ShopURL, store.APIToken, store.IsActive, store.Metadata, store.CreatedAt, store.UpdatedAt).Error
}

func (r *repo) UpdateStore(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Exec(`
		UPDATE stores
		SET name = ?, shop_url = ?, api_token = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, store.Name, store.ShopURL, store.APIToken, store.IsActive, store.UpdatedAt, store.ID).Error
}

func (r *repo) DeleteStore(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM stores WHERE id = ?`, id).Error
}

func (r *repo) FindStoreByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Store, error) {
	if id == 0 {
		return nil, nil
	}

	var store domain.Store
	stmt := db.WithContext(ctx).Raw(`
		SELECT id, name, shop_url, api_token, is_active, metadata, created_at, updated_at
		FROM stores
		WHERE id = ?
	`, id).Scan(&store)
	if stmt.Error != nil {
		return nil, stmt.Error
	}
	if stmt.RowsAffected == 0 {
		return nil, nil
	}

	return &store, nil
}

func (r *repo) ListStores(ctx context.Context, db *gorm.DB, filter domain.ListStoreFilter) ([]*domain.Store, error) {
	stmt := db.WithContext(ctx).Model(&domain.Store{})
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}

	var stores []*domain.Store
	if err := stmt.Order("name asc, id asc").Find(&stores).Error; err != nil {
		return nil, err
	}

	return stores, nil
}

// UpsertConnection keeps the existing row id when the role already exists,
// so the service re-reads by role after saving.
func (r *repo) UpsertConnection(ctx context.Context, db *gorm.DB, conn *domain.SQLConnection) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"host", "port", "database_name", "username", "password_sealed", "updated_at"}),
	}).Create(conn).Error
}

func (r *repo) FindConnectionByRole(ctx context.Context, db *gorm.DB, role string) (*domain.SQLConnection, error) {
	var conn domain.SQLConnection
	stmt := db.WithContext(ctx).Raw(`
		SELECT id, role, host, port, database_name, username, password_sealed, created_at, updated_at
		FROM sql_connections
		WHERE role = ?
	`, role).Scan(&conn)
	if stmt.Error != nil {
		return nil, stmt.Error
	}
	if stmt.RowsAffected == 0 {
		return nil, nil
	}

	return &conn, nil
}

func (r *repo) ListConnections(ctx context.Context, db *gorm.DB) ([]*domain.SQLConnection, error) {
	var conns []*domain.SQLConnection
	err := db.WithContext(ctx).Raw(`
		SELECT id, role, host, port, database_name, username, password_sealed, created_at, updated_at
		FROM sql_connections
		ORDER BY role asc
	`).Scan(&conns).Error
	if err != nil {
		return nil, err
	}

	return conns, nil
}

func (r *repo) UpsertCustomerMapping(ctx context.Context, db *gorm.DB, mapping *domain.CustomerMapping) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"customer_id", "business_name", "updated_at"}),
	}).Create(mapping).Error
}

func (r *repo) FindCustomerMappingByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (*domain.CustomerMapping, error) {
	if storeID == 0 {
		return nil, nil
	}

	var mapping domain.CustomerMapping
	stmt := db.WithContext(ctx).Raw(`
		SELECT id, store_id, customer_id, business_name, created_at, updated_at
		FROM customer_mappings
		WHERE store_id = ?
	`, storeID).Scan(&mapping)
	if stmt.Error != nil {
		return nil, stmt.Error
	}
	if stmt.RowsAffected == 0 {
		return nil, nil
	}

	return &mapping, nil
}

func (r *repo) DeleteCustomerMappingByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM customer_mappings WHERE store_id = ?`, storeID).Error
}

func (r *repo) UpsertQuotationDefaults(ctx context.Context, db *gorm.DB, defaults *domain.QuotationDefaults) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "shipper_id", "sales_rep_id", "term_id",
			"title_prefix", "expiration_days", "db_id", "updated_at",
		}),
	}).Create(defaults).Error
}

func (r *repo) FindQuotationDefaultsByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (*domain.QuotationDefaults, error) {
	if storeID == 0 {
		return nil, nil
	}

	var defaults domain.QuotationDefaults
	stmt := db.WithContext(ctx).Raw(`
		SELECT id, store_id, status, shipper_id, sales_rep_id, term_id,
		       title_prefix, expiration_days, db_id, created_at, updated_at
		FROM quotation_defaults
		WHERE store_id = ?
	`, storeID).Scan(&defaults)
	if stmt.Error != nil {
		return nil, stmt.Error
	}
	if stmt.RowsAffected == 0 {
		return nil, nil
	}

	return &defaults, nil
}

func (r *repo) DeleteQuotationDefaultsByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM quotation_defaults WHERE store_id = ?`, storeID).Error
}
