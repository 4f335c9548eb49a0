package rdb

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Dialect 屏蔽不同存储之间的 DDL 与标识符差异
type Dialect interface {
	Name() string
	// Quote 引用表名或列名
	Quote(identifier string) string
	// IdentityColumn 自增主键列定义
	IdentityColumn() string
	// Literal 渲染 DEFAULT 子句中的字面量
	Literal(value any) string
	// SupportsDefault 列类型是否支持 DEFAULT 子句
	SupportsDefault(columnType ColumnType) bool
	// EmptyInsert 没有任何非主键列时的 INSERT 尾部
	EmptyInsert() string
}

// DialectFor 根据 database/sql 驱动名返回方言
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLiteDialect{}, nil
	case "mysql":
		return MySQLDialect{}, nil
	default:
		return nil, errors.Errorf("unsupported driver: %s", driver)
	}
}

// SQLiteDialect 同时用于 mattn/go-sqlite3 与 modernc.org/sqlite
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string {
	return "sqlite"
}

func (SQLiteDialect) Quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (d SQLiteDialect) IdentityColumn() string {
	return d.Quote(IdentityColumn) + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (SQLiteDialect) Literal(value any) string {
	return formatLiteral(value)
}

func (SQLiteDialect) SupportsDefault(columnType ColumnType) bool {
	return true
}

func (SQLiteDialect) EmptyInsert() string {
	return "DEFAULT VALUES"
}

type MySQLDialect struct{}

func (MySQLDialect) Name() string {
	return "mysql"
}

func (MySQLDialect) Quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func (d MySQLDialect) IdentityColumn() string {
	return d.Quote(IdentityColumn) + " BIGINT PRIMARY KEY AUTO_INCREMENT"
}

func (MySQLDialect) Literal(value any) string {
	return formatLiteral(value)
}

// MySQL 的 TEXT/BLOB 列不支持字面量默认值
func (MySQLDialect) SupportsDefault(columnType ColumnType) bool {
	return columnType != ColumnTypeText && columnType != ColumnTypeBlob
}

func (MySQLDialect) EmptyInsert() string {
	return "() VALUES ()"
}

// formatLiteral 格式化默认值，输入为 Encode 之后的值
func formatLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(v, "'", "''"))
	case []byte:
		return fmt.Sprintf("X'%X'", v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}
}
