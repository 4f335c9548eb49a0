package rdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/hatlonely/modelx/log/logger"
	"github.com/pkg/errors"
)

// Execer 执行不返回行的语句，*sql.DB 与 *sql.Conn 均满足
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TableRegistry 记录已经创建过的表
type TableRegistry interface {
	Created(table string) bool
	MarkCreated(table string)
	Tables() []string
}

// MemoryTableRegistry 进程内的表注册表，条目只增不减
type MemoryTableRegistry struct {
	m sync.Map
}

func NewMemoryTableRegistry() *MemoryTableRegistry {
	return &MemoryTableRegistry{}
}

func (r *MemoryTableRegistry) Created(table string) bool {
	_, ok := r.m.Load(table)
	return ok
}

func (r *MemoryTableRegistry) MarkCreated(table string) {
	r.m.Store(table, struct{}{})
}

func (r *MemoryTableRegistry) Tables() []string {
	var tables []string
	r.m.Range(func(key, _ any) bool {
		tables = append(tables, key.(string))
		return true
	})
	return tables
}

// SchemaManager 首次使用模型时建表
// 注册表只反映本进程创建过的表，不与存储中的实际状态核对：
// 进程重启后再次建表会因表已存在而返回存储错误
type SchemaManager struct {
	mu       sync.Mutex
	dialect  Dialect
	registry TableRegistry
	logger   logger.Logger
}

func NewSchemaManager(dialect Dialect, registry TableRegistry, l logger.Logger) *SchemaManager {
	if registry == nil {
		registry = NewMemoryTableRegistry()
	}
	return &SchemaManager{
		dialect:  dialect,
		registry: registry,
		logger:   l,
	}
}

// Registry 返回表注册表
func (m *SchemaManager) Registry() TableRegistry {
	return m.registry
}

// EnsureTable 表未登记时创建主键列，再为每个字段追加一列
// 所有字段的列类型先于任何 DDL 校验，不支持的类型不会留下半张表
func (m *SchemaManager) EnsureTable(ctx context.Context, db Execer, model *TableModel) error {
	if err := model.Validate(); err != nil {
		return err
	}
	if m.registry.Created(model.Table) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry.Created(model.Table) {
		return nil
	}

	statements, err := m.BuildCreateTableSQL(model)
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.WithMessagef(err, "create table %s failed", model.Table)
		}
	}

	m.registry.MarkCreated(model.Table)
	if m.logger != nil {
		m.logger.InfoContext(ctx, "table created", "table", model.Table, "columns", len(model.Fields)+1)
	}
	return nil
}

// BuildCreateTableSQL 构建建表语句：一条 CREATE TABLE 加每个字段一条 ALTER TABLE
func (m *SchemaManager) BuildCreateTableSQL(model *TableModel) ([]string, error) {
	table := m.dialect.Quote(model.Table)

	statements := make([]string, 0, len(model.Fields)+1)
	statements = append(statements, fmt.Sprintf("CREATE TABLE %s (%s)", table, m.dialect.IdentityColumn()))

	for _, field := range model.Fields {
		columnDef, err := m.buildColumnDefinition(field)
		if err != nil {
			return nil, err
		}
		statements = append(statements, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnDef))
	}
	return statements, nil
}

// buildColumnDefinition 构建单个字段定义
func (m *SchemaManager) buildColumnDefinition(field FieldDefinition) (string, error) {
	columnType, err := ColumnTypeOf(field)
	if err != nil {
		return "", err
	}

	parts := []string{m.dialect.Quote(field.Column()), string(columnType)}
	if field.Required {
		parts = append(parts, "NOT NULL")
	} else {
		parts = append(parts, "NULL")
	}

	if field.Default != nil && m.dialect.SupportsDefault(columnType) {
		value, err := Encode(field.Default, field)
		if err != nil {
			return "", errors.WithMessagef(err, "default of field %s", field.Name)
		}
		parts = append(parts, "DEFAULT "+m.dialect.Literal(value))
	}

	return strings.Join(parts, " "), nil
}
