package rdb

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrInvalidModel    = errors.New("invalid model")
)

// Repository 模型持久化接口
type Repository interface {
	// Save 无主键时插入并回填主键，有主键时按主键更新全部字段
	Save(ctx context.Context, model *TableModel, record *Record) (*Record, error)

	// FindByID 根据主键获取记录，记录不存在时返回 nil, nil
	FindByID(ctx context.Context, model *TableModel, id int64) (*Record, error)

	// Close 关闭连接
	Close() error
}
