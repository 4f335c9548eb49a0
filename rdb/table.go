package rdb

import (
	"context"

	"github.com/pkg/errors"
)

// Model 由业务类型实现，显式地与 Record 互相转换
type Model interface {
	ToRecord() *Record
	FromRecord(record *Record) error
}

// Table 类型化的表访问入口
type Table[T Model] struct {
	repo  Repository
	model *TableModel
	newFn func() T
}

func NewTable[T Model](repo Repository, model *TableModel, newFn func() T) *Table[T] {
	return &Table[T]{
		repo:  repo,
		model: model,
		newFn: newFn,
	}
}

func (t *Table[T]) Model() *TableModel {
	return t.model
}

// Save 保存对象，插入时主键通过 FromRecord 回填到对象中
func (t *Table[T]) Save(ctx context.Context, obj T) error {
	record, err := t.repo.Save(ctx, t.model, obj.ToRecord())
	if err != nil {
		return err
	}
	return errors.WithMessage(obj.FromRecord(record), "FromRecord failed")
}

// FindByID 记录不存在时返回 false 和 nil 错误
func (t *Table[T]) FindByID(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	record, err := t.repo.FindByID(ctx, t.model, id)
	if err != nil {
		return zero, false, err
	}
	if record == nil {
		return zero, false, nil
	}

	obj := t.newFn()
	if err := obj.FromRecord(record); err != nil {
		return zero, false, errors.WithMessage(err, "FromRecord failed")
	}
	return obj, true, nil
}
