// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"errors"
	"fmt"

	"campus-info-go/internal/model"
	"campus-info-go/internal/store"
)

// ErrUserNotFound 表示用户不存在。
var ErrUserNotFound = errors.New("user not found")

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByRegNo(ctx context.Context, regNo string) (*model.User, error)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	FindAll(ctx context.Context) ([]model.User, error)
	FindWithPagination(ctx context.Context, offset, limit int) ([]model.User, int64, error)
}

// userRepository 是 UserRepository 在 RecordStore 上的实现，对三种存储后端通用。
type userRepository struct {
	store store.RecordStore
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(s store.RecordStore) UserRepository {
	return &userRepository{store: s}
}

// Create 写入一个新用户，并回填 id 与时间戳。
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	rec, err := store.RecordOf(user)
	if err != nil {
		return err
	}
	id, err := r.store.Insert(ctx, model.TableUsers, rec)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	created, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where ...store.Eq) (*model.User, error) {
	rows, err := r.store.Find(ctx, model.TableUsers, where...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrUserNotFound
	}
	var user model.User
	if err := store.DecodeRecord(rows[0], &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// FindByRegNo 根据学号/工号查找用户。
func (r *userRepository) FindByRegNo(ctx context.Context, regNo string) (*model.User, error) {
	return r.findOne(ctx, store.Eq{Field: "reg_no", Value: regNo})
}

// FindByID 根据用户 ID 查找用户。
func (r *userRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.findOne(ctx, store.Eq{Field: "id", Value: userID})
}

// Update 整体保存一个已存在的用户记录。
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	rec, err := store.RecordOf(user)
	if err != nil {
		return err
	}
	n, err := r.store.Update(ctx, model.TableUsers, user.ID, rec)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FindAll 检索所有用户记录。
func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.store.Find(ctx, model.TableUsers)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		var u model.User
		if err := store.DecodeRecord(row, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// FindWithPagination 分页检索用户记录，返回当前页与总数。
func (r *userRepository) FindWithPagination(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	users, err := r.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(users))
	if offset >= len(users) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(users) {
		end = len(users)
	}
	return users[offset:end], total, nil
}
