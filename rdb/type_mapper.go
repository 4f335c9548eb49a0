package rdb

import (
	"github.com/pkg/errors"
)

// ColumnType 存储列类型
type ColumnType string

const (
	ColumnTypeText    ColumnType = "TEXT"
	ColumnTypeInteger ColumnType = "INTEGER"
	ColumnTypeReal    ColumnType = "REAL"
	ColumnTypeBoolean ColumnType = "BOOLEAN"
	ColumnTypeBlob    ColumnType = "BLOB"
)

var primitiveColumnTypes = map[FieldType]ColumnType{
	FieldTypeString: ColumnTypeText,
	FieldTypeInt:    ColumnTypeInteger,
	FieldTypeFloat:  ColumnTypeReal,
	FieldTypeBool:   ColumnTypeBoolean,
	FieldTypeBytes:  ColumnTypeBlob,
}

// IsPrimitive 是否为可直接映射为列的基础类型
func IsPrimitive(t FieldType) bool {
	_, ok := primitiveColumnTypes[t]
	return ok
}

// ColumnTypeOf 将字段类型映射为列类型
// 基础类型的列表序列化为 TEXT，其余类型返回 ErrUnsupportedType
func ColumnTypeOf(field FieldDefinition) (ColumnType, error) {
	if columnType, ok := primitiveColumnTypes[field.Type]; ok {
		return columnType, nil
	}
	if field.Type == FieldTypeList {
		if IsPrimitive(field.Elem) {
			return ColumnTypeText, nil
		}
		return "", errors.Wrapf(ErrUnsupportedType, "field %s: list of %q", field.Name, field.Elem)
	}
	return "", errors.Wrapf(ErrUnsupportedType, "field %s: %q", field.Name, field.Type)
}
