package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/quotient/internal/secrets"
	"github.com/smallbiznis/quotient/internal/store/domain"
	"github.com/smallbiznis/quotient/internal/store/repository"
	"github.com/smallbiznis/quotient/internal/store/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, name string) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Store{},
		&domain.SQLConnection{},
		&domain.CustomerMapping{},
		&domain.QuotationDefaults{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	box, err := secrets.NewBox("store-service-test-key")
	require.NoError(t, err)

	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Box:   box,
		Repo:  repository.Provide(),
	})
}

func createStore(t *testing.T, svc domain.Service, name, shopURL string) *domain.Store {
	t.Helper()

	store, err := svc.CreateStore(context.Background(), domain.CreateStoreRequest{
		Name:     name,
		ShopURL:  shopURL,
		APIToken: "shpat_test_token",
	})
	require.NoError(t, err)
	return store
}

func TestCreateStoreAndGet(t *testing.T) {
	svc := newTestService(t, "store_create")

	store := createStore(t, svc, "Acme Outlet", "acme-outlet.myshopify.com")
	assert.True(t, store.IsActive)

	got, err := svc.GetStore(context.Background(), domain.GetStoreRequest{StoreID: store.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "Acme Outlet", got.Name)
	assert.Equal(t, "acme-outlet.myshopify.com", got.ShopURL)
	assert.Equal(t, "shpat_test_token", got.APIToken)
}

func TestCreateStoreValidation(t *testing.T) {
	svc := newTestService(t, "store_create_validation")
	ctx := context.Background()

	_, err := svc.CreateStore(ctx, domain.CreateStoreRequest{ShopURL: "x.myshopify.com", APIToken: "tok"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.CreateStore(ctx, domain.CreateStoreRequest{Name: "x", APIToken: "tok"})
	assert.ErrorIs(t, err, domain.ErrInvalidShopURL)

	_, err = svc.CreateStore(ctx, domain.CreateStoreRequest{Name: "x", ShopURL: "x.myshopify.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidAPIToken)
}

func TestUpdateStoreKeepsTokenWhenBlank(t *testing.T) {
	svc := newTestService(t, "store_update")
	ctx := context.Background()

	store := createStore(t, svc, "Acme", "acme.myshopify.com")

	inactive := false
	updated, err := svc.UpdateStore(ctx, domain.UpdateStoreRequest{
		StoreID:  store.ID.String(),
		Name:     "Acme Renamed",
		ShopURL:  "acme.myshopify.com",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", updated.Name)
	assert.Equal(t, "shpat_test_token", updated.APIToken)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateStore(ctx, domain.UpdateStoreRequest{StoreID: "9999999999", Name: "x", ShopURL: "y"})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestListActiveStoresFilters(t *testing.T) {
	svc := newTestService(t, "store_list_active")
	ctx := context.Background()

	active := createStore(t, svc, "Active Shop", "active.myshopify.com")
	dormant := createStore(t, svc, "Dormant Shop", "dormant.myshopify.com")

	off := false
	_, err := svc.UpdateStore(ctx, domain.UpdateStoreRequest{
		StoreID:  dormant.ID.String(),
		Name:     dormant.Name,
		ShopURL:  dormant.ShopURL,
		IsActive: &off,
	})
	require.NoError(t, err)

	all, err := svc.ListStores(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	actives, err := svc.ListActiveStores(ctx)
	require.NoError(t, err)
	require.Len(t, actives, 1)
	assert.Equal(t, active.ID, actives[0].ID)
}

func TestSaveConnectionSealsPassword(t *testing.T) {
	svc := newTestService(t, "store_conn_seal")
	ctx := context.Background()

	saved, err := svc.SaveConnection(ctx, domain.SaveConnectionRequest{
		Role:         domain.RoleBackoffice,
		Host:         "db.internal",
		DatabaseName: "backoffice",
		Username:     "svc_quotient",
		Password:     "s3cret",
	})
	require.NoError(t, err)
	assert.Empty(t, saved.PasswordSealed)
	assert.Equal(t, 1433, saved.Port)

	cfg, err := svc.ConnectionConfig(ctx, domain.RoleBackoffice)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "db.internal", cfg.Host)

	// A blank password on re-save keeps the stored credential.
	_, err = svc.SaveConnection(ctx, domain.SaveConnectionRequest{
		Role:         domain.RoleBackoffice,
		Host:         "db2.internal",
		Port:         11433,
		DatabaseName: "backoffice",
		Username:     "svc_quotient",
	})
	require.NoError(t, err)

	cfg, err = svc.ConnectionConfig(ctx, domain.RoleBackoffice)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "db2.internal", cfg.Host)
	assert.Equal(t, 11433, cfg.Port)
}

func TestSaveConnectionUpsertsSingleRowPerRole(t *testing.T) {
	svc := newTestService(t, "store_conn_upsert")
	ctx := context.Background()

	for _, host := range []string{"first.internal", "second.internal"} {
		_, err := svc.SaveConnection(ctx, domain.SaveConnectionRequest{
			Role:         domain.RoleInventory,
			Host:         host,
			DatabaseName: "inventory",
			Username:     "svc_quotient",
			Password:     "pw",
		})
		require.NoError(t, err)
	}

	conns, err := svc.ListConnections(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "second.internal", conns[0].Host)
	assert.Empty(t, conns[0].PasswordSealed)
}

func TestSaveConnectionValidation(t *testing.T) {
	svc := newTestService(t, "store_conn_validation")
	ctx := context.Background()

	_, err := svc.SaveConnection(ctx, domain.SaveConnectionRequest{
		Role: "warehouse", Host: "h", DatabaseName: "d", Username: "u", Password: "p",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	// First save for a role must carry a password.
	_, err = svc.SaveConnection(ctx, domain.SaveConnectionRequest{
		Role: domain.RoleBackoffice, Host: "h", DatabaseName: "d", Username: "u",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = svc.ConnectionConfig(ctx, domain.RoleInventory)
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestCustomerMappingUpsert(t *testing.T) {
	svc := newTestService(t, "store_mapping")
	ctx := context.Background()

	store := createStore(t, svc, "Acme", "acme.myshopify.com")

	_, err := svc.GetCustomerMapping(ctx, domain.GetCustomerMappingRequest{StoreID: store.ID.String()})
	assert.ErrorIs(t, err, domain.ErrMappingNotFound)

	_, err = svc.SaveCustomerMapping(ctx, domain.SaveCustomerMappingRequest{
		StoreID:      store.ID.String(),
		CustomerID:   812,
		BusinessName: "Acme Wholesale",
	})
	require.NoError(t, err)

	_, err = svc.SaveCustomerMapping(ctx, domain.SaveCustomerMappingRequest{
		StoreID:      store.ID.String(),
		CustomerID:   907,
		BusinessName: "Acme Retail",
	})
	require.NoError(t, err)

	mapping, err := svc.GetCustomerMapping(ctx, domain.GetCustomerMappingRequest{StoreID: store.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(907), mapping.CustomerID)
	assert.Equal(t, "Acme Retail", mapping.BusinessName)

	_, err = svc.SaveCustomerMapping(ctx, domain.SaveCustomerMappingRequest{StoreID: "123456789", CustomerID: 1})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestQuotationDefaultsFallbacks(t *testing.T) {
	svc := newTestService(t, "store_defaults")
	ctx := context.Background()

	store := createStore(t, svc, "Acme", "acme.myshopify.com")

	_, err := svc.GetQuotationDefaults(ctx, domain.GetQuotationDefaultsRequest{StoreID: store.ID.String()})
	assert.ErrorIs(t, err, domain.ErrDefaultsNotFound)

	status := 2
	shipper := int64(4)
	_, err = svc.SaveQuotationDefaults(ctx, domain.SaveQuotationDefaultsRequest{
		StoreID:     store.ID.String(),
		Status:      &status,
		ShipperID:   &shipper,
		TitlePrefix: "WEB",
	})
	require.NoError(t, err)

	defaults, err := svc.GetQuotationDefaults(ctx, domain.GetQuotationDefaultsRequest{StoreID: store.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, defaults.Status)
	assert.Equal(t, 2, *defaults.Status)
	require.NotNil(t, defaults.ShipperID)
	assert.Equal(t, int64(4), *defaults.ShipperID)
	assert.Nil(t, defaults.SalesRepID)
	assert.Nil(t, defaults.TermID)
	assert.Equal(t, "WEB", defaults.TitlePrefix)
	assert.Equal(t, 365, defaults.ExpirationDays)
	assert.Equal(t, "1", defaults.DBID)
}

func TestDeleteStoreRemovesSettings(t *testing.T) {
	svc := newTestService(t, "store_delete")
	ctx := context.Background()

	store := createStore(t, svc, "Acme", "acme.myshopify.com")

	_, err := svc.SaveCustomerMapping(ctx, domain.SaveCustomerMappingRequest{
		StoreID:    store.ID.String(),
		CustomerID: 11,
	})
	require.NoError(t, err)

	_, err = svc.SaveQuotationDefaults(ctx, domain.SaveQuotationDefaultsRequest{StoreID: store.ID.String()})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteStore(ctx, domain.DeleteStoreRequest{StoreID: store.ID.String()}))

	_, err = svc.GetStore(ctx, domain.GetStoreRequest{StoreID: store.ID.String()})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)

	_, err = svc.GetCustomerMapping(ctx, domain.GetCustomerMappingRequest{StoreID: store.ID.String()})
	assert.ErrorIs(t, err, domain.ErrMappingNotFound)

	_, err = svc.GetQuotationDefaults(ctx, domain.GetQuotationDefaultsRequest{StoreID: store.ID.String()})
	assert.ErrorIs(t, err, domain.ErrDefaultsNotFound)
}
