package rdb

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// Encode 将字段值转换为绑定到语句参数的值
// 列表字段序列化为 JSON 数组文本，基础类型统一为 string/int64/float64/bool/[]byte
// nil 表示 NULL
func Encode(value any, field FieldDefinition) (any, error) {
	if value == nil {
		return nil, nil
	}
	if field.Type == FieldTypeList {
		return encodeList(value, field)
	}
	if !IsPrimitive(field.Type) {
		return nil, errors.Wrapf(ErrUnsupportedType, "field %s: %q", field.Name, field.Type)
	}
	v, err := encodeScalar(value, field.Type)
	if err != nil {
		return nil, errors.WithMessagef(err, "field %s", field.Name)
	}
	return v, nil
}

// Decode 将存储中读出的列值还原为字段值
func Decode(stored any, field FieldDefinition) (any, error) {
	if stored == nil {
		return nil, nil
	}
	if field.Type == FieldTypeList {
		return decodeList(stored, field)
	}
	if !IsPrimitive(field.Type) {
		return nil, errors.Wrapf(ErrUnsupportedType, "field %s: %q", field.Name, field.Type)
	}
	v, err := decodeScalar(stored, field.Type)
	if err != nil {
		return nil, errors.WithMessagef(err, "field %s", field.Name)
	}
	return v, nil
}

func encodeList(value any, field FieldDefinition) (any, error) {
	if !IsPrimitive(field.Elem) {
		return nil, errors.Wrapf(ErrUnsupportedType, "field %s: list of %q", field.Name, field.Elem)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Wrapf(ErrTypeMismatch, "field %s: expected list, got %T", field.Name, value)
	}

	// 空列表编码为 []，不编码为 null
	items := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := encodeScalar(rv.Index(i).Interface(), field.Elem)
		if err != nil {
			return nil, errors.WithMessagef(err, "field %s[%d]", field.Name, i)
		}
		items = append(items, item)
	}

	buf, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrapf(err, "field %s: marshal list", field.Name)
	}
	return string(buf), nil
}

func decodeList(stored any, field FieldDefinition) (any, error) {
	var text []byte
	switch v := stored.(type) {
	case string:
		text = []byte(v)
	case []byte:
		text = v
	default:
		return nil, errors.Wrapf(ErrTypeMismatch, "field %s: expected list text, got %T", field.Name, stored)
	}

	var (
		out any
		err error
	)
	switch field.Elem {
	case FieldTypeString:
		var l []string
		err = json.Unmarshal(text, &l)
		out = l
	case FieldTypeInt:
		var l []int64
		err = json.Unmarshal(text, &l)
		out = l
	case FieldTypeFloat:
		var l []float64
		err = json.Unmarshal(text, &l)
		out = l
	case FieldTypeBool:
		var l []bool
		err = json.Unmarshal(text, &l)
		out = l
	case FieldTypeBytes:
		var l [][]byte
		err = json.Unmarshal(text, &l)
		out = l
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "field %s: list of %q", field.Name, field.Elem)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "field %s: unmarshal list", field.Name)
	}
	return out, nil
}

func encodeScalar(value any, fieldType FieldType) (any, error) {
	switch fieldType {
	case FieldTypeString:
		switch v := value.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case FieldTypeInt:
		if i, ok := toInt64(value); ok {
			return i, nil
		}
	case FieldTypeFloat:
		if f, ok := toFloat64(value); ok {
			return f, nil
		}
	case FieldTypeBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case FieldTypeBytes:
		switch v := value.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%q", fieldType)
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "cannot encode %T as %s", value, fieldType)
}

func decodeScalar(stored any, fieldType FieldType) (any, error) {
	switch fieldType {
	case FieldTypeString:
		switch v := stored.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case FieldTypeInt:
		if i, ok := toInt64(stored); ok {
			return i, nil
		}
		if s, ok := asText(stored); ok {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, nil
			}
		}
	case FieldTypeFloat:
		if f, ok := toFloat64(stored); ok {
			return f, nil
		}
		if s, ok := asText(stored); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, nil
			}
		}
	case FieldTypeBool:
		switch v := stored.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		}
		if s, ok := asText(stored); ok {
			if b, err := strconv.ParseBool(s); err == nil {
				return b, nil
			}
		}
	case FieldTypeBytes:
		switch v := stored.(type) {
		case []byte:
			return append([]byte{}, v...), nil
		case string:
			return []byte(v), nil
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%q", fieldType)
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "cannot decode %T as %s", stored, fieldType)
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	}
	return "", false
}

// toInt64 接受任意整数类型，以及值为整数的浮点数（JSON 解码出的数字）
func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return uintToInt64(uint64(t))
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return uintToInt64(t)
	case float32:
		return floatToInt64(float64(t))
	case float64:
		return floatToInt64(t)
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	}
	return 0, false
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// float64(math.MaxInt64) 即 2^63，已超出 int64 范围
func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
