package db

// Config describes a single SQL endpoint. The application database and the
// per-catalog connections both reduce to this shape before a dialector is
// built.
type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}
