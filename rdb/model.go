package rdb

import (
	"strings"

	"github.com/pkg/errors"
)

// IdentityColumn 隐式主键列名，每个模型有且只有一个
const IdentityColumn = "id"

// TableModel 表模型定义
// Fields 不包含主键字段，主键由 IdentityColumn 隐式提供
type TableModel struct {
	Table  string // 表名
	Fields []FieldDefinition
}

// FieldDefinition 字段定义
type FieldDefinition struct {
	Name     string
	Type     FieldType
	Elem     FieldType // 列表元素类型，仅 Type 为 FieldTypeList 时有效
	Alias    string    // 列名别名，为空时使用 Name
	Required bool
	Default  any
}

// FieldType 字段类型
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeInt    FieldType = "int"
	FieldTypeFloat  FieldType = "float"
	FieldTypeBool   FieldType = "bool"
	FieldTypeBytes  FieldType = "bytes"
	FieldTypeList   FieldType = "list"
)

// Column 返回字段对应的列名
func (f FieldDefinition) Column() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// FieldOption 字段选项
type FieldOption func(*FieldDefinition)

// Required 字段不可为空
func Required() FieldOption {
	return func(f *FieldDefinition) {
		f.Required = true
	}
}

// Alias 指定列名
func Alias(alias string) FieldOption {
	return func(f *FieldDefinition) {
		f.Alias = alias
	}
}

// Default 指定默认值，插入时字段缺失则使用该值
func Default(value any) FieldOption {
	return func(f *FieldDefinition) {
		f.Default = value
	}
}

func newField(name string, fieldType FieldType, elem FieldType, opts []FieldOption) FieldDefinition {
	f := FieldDefinition{Name: name, Type: fieldType, Elem: elem}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func String(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldTypeString, "", opts)
}

func Int(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldTypeInt, "", opts)
}

func Float(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldTypeFloat, "", opts)
}

func Bool(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldTypeBool, "", opts)
}

func Bytes(name string, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldTypeBytes, "", opts)
}

// List 有序列表字段，elem 为元素类型
func List(name string, elem FieldType, opts ...FieldOption) FieldDefinition {
	return newField(name, FieldTypeList, elem, opts)
}

// NewTableModel 创建表模型，字段顺序即列顺序
func NewTableModel(table string, fields ...FieldDefinition) *TableModel {
	return &TableModel{
		Table:  table,
		Fields: fields,
	}
}

// Field 按字段名查找字段定义
func (m *TableModel) Field(name string) (FieldDefinition, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Columns 返回所有非主键列名
func (m *TableModel) Columns() []string {
	columns := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		columns = append(columns, f.Column())
	}
	return columns
}

// Validate 检查表名、字段名以及列名是否合法
// 字段类型的检查由 ColumnTypeOf 负责
func (m *TableModel) Validate() error {
	if m == nil {
		return errors.Wrap(ErrInvalidModel, "model is nil")
	}
	if m.Table == "" {
		return errors.Wrap(ErrInvalidModel, "table name is empty")
	}

	names := make(map[string]struct{}, len(m.Fields))
	columns := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		if f.Name == "" {
			return errors.Wrapf(ErrInvalidModel, "table %s has a field without name", m.Table)
		}
		if strings.EqualFold(f.Column(), IdentityColumn) {
			return errors.Wrapf(ErrInvalidModel, "field %s conflicts with identity column", f.Name)
		}
		if _, ok := names[f.Name]; ok {
			return errors.Wrapf(ErrInvalidModel, "duplicate field %s", f.Name)
		}
		column := strings.ToLower(f.Column())
		if _, ok := columns[column]; ok {
			return errors.Wrapf(ErrInvalidModel, "duplicate column %s", f.Column())
		}
		names[f.Name] = struct{}{}
		columns[column] = struct{}{}
	}
	return nil
}

// Record 模型实例
// ID 在第一次成功插入前为 nil，Values 以字段名（而非列名）为键
type Record struct {
	ID     *int64
	Values map[string]any
}

// NewRecord 创建一个尚未持久化的记录
func NewRecord(values map[string]any) *Record {
	if values == nil {
		values = map[string]any{}
	}
	return &Record{Values: values}
}

// Get 获取字段值
func (r *Record) Get(name string) any {
	return r.Values[name]
}

// Set 设置字段值
func (r *Record) Set(name string, value any) *Record {
	if r.Values == nil {
		r.Values = map[string]any{}
	}
	r.Values[name] = value
	return r
}

// Persisted 记录是否已经写入存储
func (r *Record) Persisted() bool {
	return r.ID != nil
}
