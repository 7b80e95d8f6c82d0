package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Catalog connection roles. The backoffice catalog is where quotations are
// written; the inventory catalog is only read from when a product is missing
// from the backoffice.
const (
	RoleBackoffice = "backoffice"
	RoleInventory  = "inventory"
)

// Store is a registered Shopify shop whose orders can be transferred.
type Store struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"not null" json:"name"`
	ShopURL   string            `gorm:"not null;uniqueIndex" json:"shop_url"`
	APIToken  string            `gorm:"not null" json:"api_token"`
	IsActive  bool              `gorm:"not null;default:true" json:"is_active"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SQLConnection holds the endpoint for one catalog role. At most one row
// exists per role. The password is sealed before it reaches this struct and
// is never serialized back out.
type SQLConnection struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Role           string       `gorm:"not null;uniqueIndex" json:"role"`
	Host           string       `gorm:"not null" json:"host"`
	Port           int          `gorm:"not null;default:1433" json:"port"`
	DatabaseName   string       `gorm:"not null" json:"database_name"`
	Username       string       `gorm:"not null" json:"username"`
	PasswordSealed string       `gorm:"not null" json:"-"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ConnectionConfig is a SQLConnection with the password opened. It only ever
// lives in memory, on its way to a catalog dial.
type ConnectionConfig struct {
	Role         string
	Host         string
	Port         int
	DatabaseName string
	Username     string
	Password     string
}

// CustomerMapping binds a store to the backoffice customer every quotation
// is written against. One row per store.
type CustomerMapping struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID      snowflake.ID `gorm:"not null;uniqueIndex" json:"store_id"`
	CustomerID   int64        `gorm:"not null" json:"customer_id"`
	BusinessName string       `json:"business_name"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// QuotationDefaults carries the per-store values the builder falls back to
// when the mapped customer does not supply its own. Nil pointers mean the
// column is omitted from the quotation header. One row per store.
type QuotationDefaults struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID        snowflake.ID `gorm:"not null;uniqueIndex" json:"store_id"`
	Status         *int         `json:"status,omitempty"`
	ShipperID      *int64       `json:"shipper_id,omitempty"`
	SalesRepID     *int64       `json:"sales_rep_id,omitempty"`
	TermID         *int64       `json:"term_id,omitempty"`
	TitlePrefix    string       `json:"title_prefix"`
	ExpirationDays int          `gorm:"not null;default:365" json:"expiration_days"`
	DBID           string       `gorm:"column:db_id;not null;default:'1'" json:"db_id"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
