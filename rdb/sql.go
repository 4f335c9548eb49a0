package rdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLOptions 存储连接配置
// Driver 取值 sqlite3 (mattn/go-sqlite3)、sqlite (modernc.org/sqlite) 或 mysql
type SQLOptions struct {
	Driver   string `cfg:"driver" def:"sqlite3" validate:"oneof=sqlite3 sqlite mysql"`
	DSN      string `cfg:"dsn"`
	Host     string `cfg:"host" def:"localhost"`
	Port     string `cfg:"port" def:"3306"`
	Database string `cfg:"database" def:"orm.sqlite"`
	Username string `cfg:"username"`
	Password string `cfg:"password"`
	Charset  string `cfg:"charset" def:"utf8mb4"`
}

// DataSourceName 返回驱动使用的 DSN，显式配置的 DSN 优先
func (o *SQLOptions) DataSourceName() (string, error) {
	if o.DSN != "" {
		return o.DSN, nil
	}
	switch o.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			o.Username, o.Password, o.Host, o.Port, o.Database, o.Charset), nil
	case "sqlite3", "sqlite":
		if o.Database == "" {
			return "", errors.New("database path is empty")
		}
		return o.Database, nil
	default:
		return "", errors.Errorf("unsupported driver: %s", o.Driver)
	}
}

// Connector 持有唯一的存储连接，第一次调用 DB 时打开，之后复用
type Connector struct {
	mu      sync.Mutex
	db      *sql.DB
	options SQLOptions
	dialect Dialect
}

func NewConnectorWithOptions(options *SQLOptions) (*Connector, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	dialect, err := DialectFor(options.Driver)
	if err != nil {
		return nil, err
	}
	return &Connector{
		options: *options,
		dialect: dialect,
	}, nil
}

// NewConnectorWithDB 使用已经打开的连接，driver 用于选择方言
func NewConnectorWithDB(db *sql.DB, driver string) (*Connector, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Connector{
		db:      db,
		options: SQLOptions{Driver: driver},
		dialect: dialect,
	}, nil
}

func (c *Connector) Dialect() Dialect {
	return c.dialect
}

// DB 返回共享连接，必要时打开
func (c *Connector) DB(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	dsn, err := c.options.DataSourceName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(c.options.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "sql.Open failed, driver: %s", c.options.Driver)
	}

	// 单连接：不做连接池，也保证 sqlite 的自增主键在同一连接上读取
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping failed")
	}

	c.db = db
	return db, nil
}

// Opened 连接是否已经打开
func (c *Connector) Opened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db != nil
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
