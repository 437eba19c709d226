package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotConfigured = errors.New("database not configured")

// Repo 通用仓储，具体 DAO 通过内嵌复用
type Repo[T any] struct {
	Db *gorm.DB
}

func NewRepo[T any](db *gorm.DB) Repo[T] {
	return Repo[T]{Db: db}
}

// Ready 数据库是否可用
func (r *Repo[T]) Ready() bool {
	return r.Db != nil
}

func (r *Repo[T]) conn(ctx context.Context) (*gorm.DB, error) {
	if r.Db == nil {
		return nil, ErrNotConfigured
	}
	return r.Db.WithContext(ctx), nil
}

// IsExist 按条件判断记录是否存在
func (r *Repo[T]) IsExist(ctx context.Context, where string, args ...any) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	err = db.Model(new(T)).Where(where, args...).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *Repo[T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(fn)
}
