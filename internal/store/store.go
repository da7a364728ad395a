// Package store 提供表结构化的记录存储抽象，以及 JSON 文件与 GORM 两种实现。
package store

import (
	"context"
	"errors"
	"fmt"

	"campus-info-go/internal/model"
)

// ErrUnknownTable 表示访问了未登记的数据表。
var ErrUnknownTable = errors.New("unknown table")

// Eq 是一个等值过滤条件。
type Eq struct {
	Field string
	Value interface{}
}

// RecordStore 是所有存储后端需要满足的接口。
// 实现负责分配自增 id 与 created_at/updated_at 时间戳，且必须可并发使用。
type RecordStore interface {
	// Find 返回满足全部等值条件的记录，按 id 升序。
	Find(ctx context.Context, table string, where ...Eq) ([]Record, error)
	// Insert 写入一条新记录并返回生成的 id。
	Insert(ctx context.Context, table string, fields Record) (int64, error)
	// Update 合并字段到指定 id 的记录，返回受影响行数（0 或 1）。
	Update(ctx context.Context, table string, id int64, fields Record) (int64, error)
	// Delete 物理删除指定 id 的记录，返回受影响行数（0 或 1）。
	Delete(ctx context.Context, table string, id int64) (int64, error)
	// Close 释放底层资源。
	Close() error
}

// Query 是一组封闭的类型化查询操作，用来替代拼接 SQL 字符串。
type Query interface {
	table() string
}

// Select 按等值条件读取记录。
type Select struct {
	Table string
	Where []Eq
}

// Insert 写入一条记录。
type Insert struct {
	Table  string
	Fields Record
}

// Update 按 id 更新记录。
type Update struct {
	Table  string
	ID     int64
	Fields Record
}

// Delete 按 id 删除记录。
type Delete struct {
	Table string
	ID    int64
}

func (q Select) table() string { return q.Table }
func (q Insert) table() string { return q.Table }
func (q Update) table() string { return q.Table }
func (q Delete) table() string { return q.Table }

// Result 是一次查询的结果：读操作填充 Records，写操作填充 InsertID / RowsAffected。
type Result struct {
	Records      []Record `json:"records,omitempty"`
	InsertID     int64    `json:"insertId,omitempty"`
	RowsAffected int64    `json:"rowsAffected"`
}

// Exec 在给定存储上执行一个类型化查询。
func Exec(ctx context.Context, s RecordStore, q Query) (*Result, error) {
	switch q := q.(type) {
	case Select:
		records, err := s.Find(ctx, q.Table, q.Where...)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records, RowsAffected: int64(len(records))}, nil
	case Insert:
		id, err := s.Insert(ctx, q.Table, q.Fields)
		if err != nil {
			return nil, err
		}
		return &Result{InsertID: id, RowsAffected: 1}, nil
	case Update:
		n, err := s.Update(ctx, q.Table, q.ID, q.Fields)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: n}, nil
	case Delete:
		n, err := s.Delete(ctx, q.Table, q.ID)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: n}, nil
	default:
		return nil, fmt.Errorf("unsupported query type %T", q)
	}
}

// prepareInsert 校验表名并清理调用方传入的系统字段，缺省的软删除标记置为 true。
func prepareInsert(table string, fields Record) (Record, error) {
	info, ok := model.LookupTable(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	out := fields.Clone()
	delete(out, "id")
	delete(out, "created_at")
	delete(out, "updated_at")
	if !out.Has(info.FlagField) {
		out[info.FlagField] = true
	}
	return out, nil
}

// prepareUpdate 去掉不允许修改的系统字段。
func prepareUpdate(table string, fields Record) (Record, error) {
	if _, ok := model.LookupTable(table); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	out := fields.Clone()
	delete(out, "id")
	delete(out, "created_at")
	delete(out, "updated_at")
	return out, nil
}

func checkTable(table string) error {
	if _, ok := model.LookupTable(table); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}
