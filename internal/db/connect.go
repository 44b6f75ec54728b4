// Package db opens GORM connections and migrates the schema.
package db

import (
	"fmt"

	sqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the database backend. SQLite is the default for single-box
// deployments; MySQL is available when the service runs behind a shared
// database.
type Options struct {
	Driver   string // "sqlite" (default) or "mysql"
	Path     string // sqlite file path
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// Connect opens a GORM connection for the configured backend.
func Connect(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch opts.Driver {
	case "", "sqlite":
		path := opts.Path
		if path == "" {
			path = "textline.db"
		}
		gdb, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", path, err)
		}
		return gdb, nil

	case "mysql":
		gdb, err := gorm.Open(mysql.Open(MySQLDSN(opts)), cfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", opts.Host, opts.Port, opts.Name, err)
		}
		return gdb, nil

	default:
		return nil, fmt.Errorf("db: unknown driver %q", opts.Driver)
	}
}

// MySQLDSN builds the MySQL DSN from Options.
func MySQLDSN(opts Options) string {
	c := sqldriver.NewConfig()
	c.User = opts.User
	c.Passwd = opts.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	c.DBName = opts.Name
	c.ParseTime = true
	return c.FormatDSN()
}
