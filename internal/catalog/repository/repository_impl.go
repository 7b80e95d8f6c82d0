package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/quotient/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ServerVersion(ctx context.Context, db *gorm.DB) (string, error) {
	// The catalogs run on SQL Server; the other dialects cover local setups.
	query := "SELECT @@VERSION"
	switch db.Dialector.Name() {
	case "sqlite":
		query = "SELECT sqlite_version()"
	case "postgres":
		query = "SELECT version()"
	case "mysql":
		query = "SELECT VERSION()"
	}

	var version string
	if err := db.WithContext(ctx).Raw(query).Scan(&version).Error; err != nil {
		return "", err
	}

	return version, nil
}

// FindProductsByBarcodes resolves the whole batch with one membership
// predicate. Callers dedupe before handing the list over.
func (r *repo) FindProductsByBarcodes(ctx context.Context, db *gorm.DB, barcodes []string) ([]*domain.Product, error) {
	if len(barcodes) == 0 {
		return nil, nil
	}

	var products []*domain.Product
	err := db.WithContext(ctx).
		Where("ProductUPC IN ?", barcodes).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *repo) InsertProduct(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) UnitDescription(ctx context.Context, db *gorm.DB, unitID int64) (string, error) {
	if unitID == 0 {
		return "", nil
	}

	var desc *string
	stmt := db.WithContext(ctx).Raw(`
		SELECT UnitDesc FROM Units_tbl WHERE UnitID = ?
	`, unitID).Scan(&desc)
	if stmt.Error != nil {
		return "", stmt.Error
	}
	if stmt.RowsAffected == 0 || desc == nil {
		return "", nil
	}

	return *desc, nil
}

func (r *repo) FindCustomerByID(ctx context.Context, db *gorm.DB, customerID int64) (*domain.Customer, error) {
	if customerID == 0 {
		return nil, nil
	}

	var customer domain.Customer
	stmt := db.WithContext(ctx).Raw(`
		SELECT CustomerID, AccountNo, BusinessName, Contactname, ShipTo, ShipContact,
		       ShipAddress1, ShipAddress2, ShipCity, ShipState, ShipZipCode,
		       ShipPhone_Number, PriceLevel, TermID, SalesRepID, Discontinued
		FROM Customers_tbl
		WHERE CustomerID = ?
	`, customerID).Scan(&customer)
	if stmt.Error != nil {
		return nil, stmt.Error
	}
	if stmt.RowsAffected == 0 {
		return nil, nil
	}

	return &customer, nil
}

func (r *repo) ListCustomers(ctx context.Context, db *gorm.DB, limit int) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := db.WithContext(ctx).Model(&domain.Customer{}).
		Where("Discontinued = ? OR Discontinued IS NULL", false).
		Order("BusinessName asc").
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}

	return customers, nil
}

func (r *repo) SearchCustomersByAccount(ctx context.Context, db *gorm.DB, account string, limit int) ([]*domain.Customer, error) {
	pattern := "%" + strings.ToUpper(strings.TrimSpace(account)) + "%"

	var customers []*domain.Customer
	err := db.WithContext(ctx).Model(&domain.Customer{}).
		Where("UPPER(AccountNo) LIKE ?", pattern).
		Where("Discontinued = ? OR Discontinued IS NULL", false).
		Order("AccountNo asc").
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}

	return customers, nil
}
