package rdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hatlonely/modelx/log"
	"github.com/hatlonely/modelx/log/logger"
	"github.com/hatlonely/modelx/rdb/query"
	"github.com/pkg/errors"
)

// Engine 模型持久化的上下文对象，持有唯一连接与表注册表
type Engine struct {
	connector *Connector
	schema    *SchemaManager
	logger    logger.Logger
}

type engineOptions struct {
	logger   logger.Logger
	registry TableRegistry
}

type EngineOption func(*engineOptions)

func WithLogger(l logger.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = l
	}
}

func WithTableRegistry(r TableRegistry) EngineOption {
	return func(o *engineOptions) {
		o.registry = r
	}
}

func NewEngineWithOptions(options *SQLOptions, opts ...EngineOption) (*Engine, error) {
	connector, err := NewConnectorWithOptions(options)
	if err != nil {
		return nil, errors.WithMessage(err, "NewConnectorWithOptions failed")
	}
	return NewEngine(connector, opts...), nil
}

func NewEngine(connector *Connector, opts ...EngineOption) *Engine {
	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = log.Default()
	}
	l := options.logger.WithGroup("rdb")

	return &Engine{
		connector: connector,
		schema:    NewSchemaManager(connector.Dialect(), options.registry, l),
		logger:    l,
	}
}

// Schema 返回建表管理器
func (e *Engine) Schema() *SchemaManager {
	return e.schema
}

// Connector 返回连接持有者
func (e *Engine) Connector() *Connector {
	return e.connector
}

func (e *Engine) Save(ctx context.Context, model *TableModel, record *Record) (*Record, error) {
	if record == nil {
		return nil, errors.New("record is nil")
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	// 先检查字段类型，不支持的类型不应触发任何连接或写操作
	for _, field := range model.Fields {
		if _, err := ColumnTypeOf(field); err != nil {
			return nil, errors.WithMessagef(err, "table %s", model.Table)
		}
	}

	// 值的编码同样不访问存储，类型不匹配的记录不会触发建表
	args, err := e.encodeValues(model, record)
	if err != nil {
		return nil, err
	}

	db, err := e.connector.DB(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "open connection failed")
	}

	if err := e.schema.EnsureTable(ctx, db, model); err != nil {
		return nil, err
	}

	if record.ID == nil {
		err = e.insert(ctx, db, model, record, args)
	} else {
		err = e.update(ctx, db, model, record, args)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "save failed", "table", model.Table, "error", err.Error())
		return nil, err
	}
	return record, nil
}

// encodeValues 按字段顺序编码记录值，缺失的字段使用默认值，显式的 nil 写入 NULL
func (e *Engine) encodeValues(model *TableModel, record *Record) ([]any, error) {
	args := make([]any, 0, len(model.Fields))
	for _, field := range model.Fields {
		value, ok := record.Values[field.Name]
		if !ok {
			value = field.Default
		}
		encoded, err := Encode(value, field)
		if err != nil {
			return nil, errors.WithMessagef(err, "table %s", model.Table)
		}
		args = append(args, encoded)
	}
	return args, nil
}

func (e *Engine) quotedColumns(model *TableModel) []string {
	dialect := e.connector.Dialect()
	columns := make([]string, 0, len(model.Fields))
	for _, column := range model.Columns() {
		columns = append(columns, dialect.Quote(column))
	}
	return columns
}

func (e *Engine) insert(ctx context.Context, db *sql.DB, model *TableModel, record *Record, args []any) error {
	dialect := e.connector.Dialect()
	var sqlStr string
	if len(args) == 0 {
		sqlStr = fmt.Sprintf("INSERT INTO %s %s", dialect.Quote(model.Table), dialect.EmptyInsert())
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
		sqlStr = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			dialect.Quote(model.Table),
			strings.Join(e.quotedColumns(model), ", "),
			placeholders)
	}

	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return errors.WithMessagef(err, "insert into %s failed", model.Table)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.WithMessagef(err, "read identity of %s failed", model.Table)
	}
	record.ID = &id

	e.logger.DebugContext(ctx, "record inserted", "table", model.Table, "id", id)
	return nil
}

func (e *Engine) update(ctx context.Context, db *sql.DB, model *TableModel, record *Record, args []any) error {
	if len(model.Fields) == 0 {
		return nil
	}

	dialect := e.connector.Dialect()
	var setParts []string
	for _, column := range e.quotedColumns(model) {
		setParts = append(setParts, fmt.Sprintf("%s = ?", column))
	}

	whereSQL, whereArgs, err := (&query.TermQuery{Field: IdentityColumn, Value: *record.ID}).ToSQL(dialect.Quote)
	if err != nil {
		return err
	}
	args = append(args, whereArgs...)

	sqlStr := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		dialect.Quote(model.Table),
		strings.Join(setParts, ", "),
		whereSQL)

	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return errors.WithMessagef(err, "update %s failed", model.Table)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		e.logger.WarnContext(ctx, "update matched no record", "table", model.Table, "id", *record.ID)
	} else {
		e.logger.DebugContext(ctx, "record updated", "table", model.Table, "id", *record.ID)
	}
	return nil
}

func (e *Engine) FindByID(ctx context.Context, model *TableModel, id int64) (*Record, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	db, err := e.connector.DB(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "open connection failed")
	}

	dialect := e.connector.Dialect()
	columns := e.quotedColumns(model)
	if len(columns) == 0 {
		columns = []string{dialect.Quote(IdentityColumn)}
	}

	whereSQL, whereArgs, err := (&query.TermQuery{Field: IdentityColumn, Value: id}).ToSQL(dialect.Quote)
	if err != nil {
		return nil, err
	}

	sqlStr := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(columns, ", "), dialect.Quote(model.Table), whereSQL)

	rows, err := db.QueryContext(ctx, sqlStr, whereArgs...)
	if err != nil {
		return nil, errors.WithMessagef(err, "query %s failed", model.Table)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.WithMessagef(err, "query %s failed", model.Table)
		}
		e.logger.DebugContext(ctx, "record not found", "table", model.Table, "id", id)
		return nil, nil
	}

	record, err := e.scanRecord(rows, model)
	if err != nil {
		return nil, err
	}
	record.ID = &id
	return record, nil
}

// scanRecord 按返回的列名找到对应字段并解码
func (e *Engine) scanRecord(rows *sql.Rows, model *TableModel) (*Record, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(names))
	valuePtrs := make([]any, len(names))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, errors.WithMessagef(err, "scan %s failed", model.Table)
	}

	fieldsByColumn := make(map[string]FieldDefinition, len(model.Fields))
	for _, field := range model.Fields {
		fieldsByColumn[strings.ToLower(field.Column())] = field
	}

	record := NewRecord(make(map[string]any, len(model.Fields)))
	for i, name := range names {
		field, ok := fieldsByColumn[strings.ToLower(name)]
		if !ok {
			continue
		}
		value, err := Decode(values[i], field)
		if err != nil {
			return nil, errors.WithMessagef(err, "table %s", model.Table)
		}
		record.Values[field.Name] = value
	}
	return record, nil
}

func (e *Engine) Close() error {
	return e.connector.Close()
}
