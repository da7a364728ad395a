package store

import (
	"context"
	"errors"
	"fmt"

	"campus-info-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// gormTable 把泛化的 Record 操作映射到具体的 GORM 模型。
type gormTable struct {
	newModel func() interface{}
	find     func(tx *gorm.DB) ([]Record, error)
}

func tableFor[T any]() gormTable {
	return gormTable{
		newModel: func() interface{} { return new(T) },
		find: func(tx *gorm.DB) ([]Record, error) {
			var rows []T
			if err := tx.Find(&rows).Error; err != nil {
				return nil, err
			}
			out := make([]Record, 0, len(rows))
			for i := range rows {
				rec, err := RecordOf(&rows[i])
				if err != nil {
					return nil, err
				}
				out = append(out, rec)
			}
			return out, nil
		},
	}
}

var gormTables = map[string]gormTable{
	model.TableUsers:     tableFor[model.User](),
	model.TableSchedules: tableFor[model.Schedule](),
	model.TableMenus:     tableFor[model.MenuItem](),
	model.TableBuses:     tableFor[model.BusRoute](),
	model.TableEvents:    tableFor[model.Event](),
	model.TableUpdates:   tableFor[model.Update](),
	model.TableFAQs:      tableFor[model.FAQ](),
}

// GormStore 是基于 GORM 的关系型存储实现，支持 MySQL 与 SQLite。
type GormStore struct {
	db      *gorm.DB
	schemas map[string]*schema.Schema
}

// NewGormStore 自动迁移所有数据表并返回存储实例。
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	s := &GormStore{db: db, schemas: make(map[string]*schema.Schema, len(gormTables))}
	for name, t := range gormTables {
		m := t.newModel()
		if err := db.AutoMigrate(m); err != nil {
			return nil, fmt.Errorf("auto migrate %s: %w", name, err)
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		s.schemas[name] = stmt.Schema
	}
	return s, nil
}

func (s *GormStore) lookup(table string) (gormTable, *schema.Schema, error) {
	t, ok := gormTables[table]
	if !ok {
		return gormTable{}, nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return t, s.schemas[table], nil
}

// Find 只接受表中存在的列；条件中出现未知列时与 JSON 存储保持一致，返回空结果。
func (s *GormStore) Find(ctx context.Context, table string, where ...Eq) ([]Record, error) {
	t, sch, err := s.lookup(table)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Model(t.newModel())
	for _, cond := range where {
		field := sch.LookUpField(cond.Field)
		if field == nil {
			return []Record{}, nil
		}
		tx = tx.Where(map[string]interface{}{field.DBName: cond.Value})
	}
	records, err := t.find(tx.Order("id"))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", table, err)
	}
	return records, nil
}

// Insert 把记录解码到模型后写入，id 由数据库自增生成。
func (s *GormStore) Insert(ctx context.Context, table string, fields Record) (int64, error) {
	t, _, err := s.lookup(table)
	if err != nil {
		return 0, err
	}
	rec, err := prepareInsert(table, fields)
	if err != nil {
		return 0, err
	}
	obj := t.newModel()
	if err := DecodeRecord(rec, obj); err != nil {
		return 0, fmt.Errorf("decode %s record: %w", table, err)
	}
	if err := s.db.WithContext(ctx).Create(obj).Error; err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return obj.(interface{ GetID() int64 }).GetID(), nil
}

// Update 读出原记录、合并字段后整体保存。
func (s *GormStore) Update(ctx context.Context, table string, id int64, fields Record) (int64, error) {
	t, _, err := s.lookup(table)
	if err != nil {
		return 0, err
	}
	changes, err := prepareUpdate(table, fields)
	if err != nil {
		return 0, err
	}
	obj := t.newModel()
	tx := s.db.WithContext(ctx)
	if err := tx.First(obj, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load %s/%d: %w", table, id, err)
	}
	if err := DecodeRecord(changes, obj); err != nil {
		return 0, fmt.Errorf("decode %s record: %w", table, err)
	}
	if err := tx.Save(obj).Error; err != nil {
		return 0, fmt.Errorf("update %s/%d: %w", table, id, err)
	}
	return 1, nil
}

// Delete 物理删除记录。
func (s *GormStore) Delete(ctx context.Context, table string, id int64) (int64, error) {
	t, _, err := s.lookup(table)
	if err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Delete(t.newModel(), id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s/%d: %w", table, id, res.Error)
	}
	return res.RowsAffected, nil
}

// Close 关闭底层连接池。
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
