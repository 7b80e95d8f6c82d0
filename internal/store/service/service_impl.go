package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/secrets"
	"github.com/smallbiznis/quotient/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	Params struct {
		fx.In
		DB    *gorm.DB
		Log   *zap.Logger
		GenID *snowflake.Node
		Box   *secrets.Box
		Repo  domain.Repository
	}

	Service struct {
		db    *gorm.DB
		log   *zap.Logger
		genID *snowflake.Node
		box   *secrets.Box
		repo  domain.Repository
	}
)

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("store.service"),
		genID: p.GenID,
		box:   p.Box,
		repo:  p.Repo,
	}
}

func (s *Service) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.listStores(ctx, domain.ListStoreFilter{})
}

func (s *Service) ListActiveStores(ctx context.Context) ([]domain.Store, error) {
	return s.listStores(ctx, domain.ListStoreFilter{ActiveOnly: true})
}

func (s *Service) listStores(ctx context.Context, filter domain.ListStoreFilter) ([]domain.Store, error) {
	rows, err := s.repo.ListStores(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	stores := make([]domain.Store, 0, len(rows))
	for _, row := range rows {
		stores = append(stores, *row)
	}

	return stores, nil
}

func (s *Service) CreateStore(ctx context.Context, req domain.CreateStoreRequest) (*domain.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	shopURL := strings.TrimSpace(req.ShopURL)
	if shopURL == "" {
		return nil, domain.ErrInvalidShopURL
	}

	token := strings.TrimSpace(req.APIToken)
	if token == "" {
		return nil, domain.ErrInvalidAPIToken
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now().UTC()
	store := &domain.Store{
		ID:        s.genID.Generate(),
		Name:      name,
		ShopURL:   shopURL,
		APIToken:  token,
		IsActive:  isActive,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertStore(ctx, s.db, store); err != nil {
		return nil, err
	}

	s.log.Info("store registered", zap.String("store_id", store.ID.String()), zap.String("shop_url", store.ShopURL))
	return store, nil
}

func (s *Service) UpdateStore(ctx context.Context, req domain.UpdateStoreRequest) (*domain.Store, error) {
	id, err := parseStoreID(req.StoreID)
	if err != nil {
		return nil, err
	}

	store, err := s.repo.FindStoreByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	shopURL := strings.TrimSpace(req.ShopURL)
	if shopURL == "" {
		return nil, domain.ErrInvalidShopURL
	}

	store.Name = name
	store.ShopURL = shopURL
	// Empty token keeps the stored one so edits do not force re-entry.
	if token := strings.TrimSpace(req.APIToken); token != "" {
		store.APIToken = token
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}
	store.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateStore(ctx, s.db, store); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Service) GetStore(ctx context.Context, req domain.GetStoreRequest) (*domain.Store, error) {
	id, err := parseStoreID(req.StoreID)
	if err != nil {
		return nil, err
	}

	store, err := s.repo.FindStoreByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	return store, nil
}

func (s *Service) DeleteStore(ctx context.Context, req domain.DeleteStoreRequest) error {
	id, err := parseStoreID(req.StoreID)
	if err != nil {
		return err
	}

	store, err := s.repo.FindStoreByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if store == nil {
		return domain.ErrStoreNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteCustomerMappingByStore(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteQuotationDefaultsByStore(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.DeleteStore(ctx, tx, id)
	})
}

func (s *Service) ListConnections(ctx context.Context) ([]domain.SQLConnection, error) {
	rows, err := s.repo.ListConnections(ctx, s.db)
	if err != nil {
		return nil, err
	}

	conns := make([]domain.SQLConnection, 0, len(rows))
	for _, row := range rows {
		conn := *row
		conn.PasswordSealed = ""
		conns = append(conns, conn)
	}

	return conns, nil
}

func (s *Service) SaveConnection(ctx context.Context, req domain.SaveConnectionRequest) (*domain.SQLConnection, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != domain.RoleBackoffice && role != domain.RoleInventory {
		return nil, domain.ErrInvalidRole
	}

	host := strings.TrimSpace(req.Host)
	if host == "" {
		return nil, domain.ErrInvalidHost
	}

	database := strings.TrimSpace(req.DatabaseName)
	if database == "" {
		return nil, domain.ErrInvalidDatabase
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}

	port := req.Port
	if port <= 0 {
		port = 1433
	}

	existing, err := s.repo.FindConnectionByRole(ctx, s.db, role)
	if err != nil {
		return nil, err
	}

	var sealed string
	switch {
	case strings.TrimSpace(req.Password) != "":
		sealed, err = s.box.Seal(req.Password)
		if err != nil {
			return nil, err
		}
	case existing != nil:
		sealed = existing.PasswordSealed
	default:
		return nil, domain.ErrInvalidPassword
	}

	now := time.Now().UTC()
	conn := &domain.SQLConnection{
		ID:             s.genID.Generate(),
		Role:           role,
		Host:           host,
		Port:           port,
		DatabaseName:   database,
		Username:       username,
		PasswordSealed: sealed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.UpsertConnection(ctx, s.db, conn); err != nil {
		return nil, err
	}

	// The upsert keeps the original row id, re-read for the canonical record.
	saved, err := s.repo.FindConnectionByRole(ctx, s.db, role)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, domain.ErrConnectionNotFound
	}

	saved.PasswordSealed = ""
	s.log.Info("catalog connection saved", zap.String("role", role), zap.String("host", host))
	return saved, nil
}

func (s *Service) ConnectionConfig(ctx context.Context, role string) (*domain.ConnectionConfig, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != domain.RoleBackoffice && role != domain.RoleInventory {
		return nil, domain.ErrInvalidRole
	}

	conn, err := s.repo.FindConnectionByRole(ctx, s.db, role)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, domain.ErrConnectionNotFound
	}

	password, err := s.box.Open(conn.PasswordSealed)
	if err != nil {
		return nil, fmt.Errorf("open %s connection password: %w", role, err)
	}

	return &domain.ConnectionConfig{
		Role:         conn.Role,
		Host:         conn.Host,
		Port:         conn.Port,
		DatabaseName: conn.DatabaseName,
		Username:     conn.Username,
		Password:     password,
	}, nil
}

func (s *Service) GetCustomerMapping(ctx context.Context, req domain.GetCustomerMappingRequest) (*domain.CustomerMapping, error) {
	id, err := parseStoreID(req.StoreID)
	if err != nil {
		return nil, err
	}

	mapping, err := s.repo.FindCustomerMappingByStore(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, domain.ErrMappingNotFound
	}

	return mapping, nil
}

func (s *Service) SaveCustomerMapping(ctx context.Context, req domain.SaveCustomerMappingRequest) (*domain.CustomerMapping, error) {
	id, err := parseStoreID(req.StoreID)
	if err != nil {
		return nil, err
	}

	if req.CustomerID <= 0 {
		return nil, domain.ErrInvalidCustomerID
	}

	store, err := s.repo.FindStoreByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	now := time.Now().UTC()
	mapping := &domain.CustomerMapping{
		ID:           s.genID.Generate(),
		StoreID:      id,
		CustomerID:   req.CustomerID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.UpsertCustomerMapping(ctx, s.db, mapping); err != nil {
		return nil, err
	}

	return s.repo.FindCustomerMappingByStore(ctx, s.db, id)
}

func (s *Service) GetQuotationDefaults(ctx context.Context, req domain.GetQuotationDefaultsRequest) (*domain.QuotationDefaults, error) {
	id, err := parseStoreID(req.StoreID)
	if err != nil {
		return nil, err
	}

	defaults, err := s.repo.FindQuotationDefaultsByStore(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if defaults == nil {
		return nil, domain.ErrDefaultsNotFound
	}

	return defaults, nil
}

func (s *Service) SaveQuotationDefaults(ctx context.Context, req domain.SaveQuotationDefaultsRequest) (*domain.QuotationDefaults, error) {
	id, err := parseStoreID(req.StoreID)
	if err != nil {
		return nil, err
	}

	store, err := s.repo.FindStoreByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	expirationDays := req.ExpirationDays
	if expirationDays <= 0 {
		expirationDays = 365
	}

	dbID := strings.TrimSpace(req.DBID)
	if dbID == "" {
		dbID = "1"
	}

	now := time.Now().UTC()
	defaults := &domain.QuotationDefaults{
		ID:             s.genID.Generate(),
		StoreID:        id,
		Status:         req.Status,
		ShipperID:      req.ShipperID,
		SalesRepID:     req.SalesRepID,
		TermID:         req.TermID,
		TitlePrefix:    strings.TrimSpace(req.TitlePrefix),
		ExpirationDays: expirationDays,
		DBID:           dbID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.UpsertQuotationDefaults(ctx, s.db, defaults); err != nil {
		return nil, err
	}

	return s.repo.FindQuotationDefaultsByStore(ctx, s.db, id)
}

func parseStoreID(id string) (snowflake.ID, error) {
	sid, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || sid == 0 {
		return 0, domain.ErrInvalidStoreID
	}
	return sid, nil
}
