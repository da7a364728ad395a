package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"campus-info-go/internal/model"
	"campus-info-go/internal/repository"
	"campus-info-go/internal/store"
)

// UserListResponse 定义了用户列表 API 的响应结构。
type UserListResponse struct {
	Content       []UserProfile `json:"content"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	Size          int           `json:"size"`
	Number        int           `json:"number"`
}

// TableStats 是一张表的有效与失效记录数。
type TableStats struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Stats 是管理后台的概览数据。
type Stats struct {
	Tables         map[string]TableStats `json:"tables"`
	UsersByRole    map[string]int        `json:"usersByRole"`
	ActiveSessions int                   `json:"activeSessions"`
}

// AdminService 接口定义了所有管理员相关的业务操作。
type AdminService interface {
	ListUsers(ctx context.Context, page, size int) (*UserListResponse, error)
	SetRole(ctx context.Context, userID int64, role string) (*model.User, error)
	SetActive(ctx context.Context, userID int64, active bool) (*model.User, error)
	Stats(ctx context.Context) (*Stats, error)
}

type adminService struct {
	userRepo repository.UserRepository
	store    store.RecordStore
	sessions repository.ChatSessionRepository
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(userRepo repository.UserRepository, s store.RecordStore, sessions repository.ChatSessionRepository) AdminService {
	return &adminService{userRepo: userRepo, store: s, sessions: sessions}
}

// ListUsers 以分页的形式返回用户列表，page 从 1 开始。
func (s *adminService) ListUsers(ctx context.Context, page, size int) (*UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size
	users, total, err := s.userRepo.FindWithPagination(ctx, offset, size)
	if err != nil {
		return nil, err
	}

	content := make([]UserProfile, 0, len(users))
	for i := range users {
		content = append(content, ProfileOf(&users[i]))
	}
	return &UserListResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    int((total + int64(size) - 1) / int64(size)),
		Size:          size,
		Number:        page,
	}, nil
}

func (s *adminService) modify(ctx context.Context, userID int64, apply func(*model.User)) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	apply(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user %d: %w", userID, err)
	}
	return user, nil
}

// SetRole 修改用户角色。
func (s *adminService) SetRole(ctx context.Context, userID int64, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return s.modify(ctx, userID, func(u *model.User) { u.Role = role })
}

// SetActive 启用或停用账号，停用后既有 token 在下次请求时失效。
func (s *adminService) SetActive(ctx context.Context, userID int64, active bool) (*model.User, error) {
	return s.modify(ctx, userID, func(u *model.User) { u.IsActive = active })
}

// Stats 统计各表记录数、各角色用户数与当前会话数。
func (s *adminService) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{Tables: make(map[string]TableStats), UsersByRole: make(map[string]int)}

	names := make([]string, 0, len(model.Tables))
	for name := range model.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows, err := s.store.Find(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		flag := model.Tables[name].FlagField
		var ts TableStats
		for _, r := range rows {
			if active, _ := r.Bool(flag); active {
				ts.Active++
			} else {
				ts.Inactive++
			}
			if name == model.TableUsers {
				out.UsersByRole[r.String("role")]++
			}
		}
		out.Tables[name] = ts
	}

	n, err := s.sessions.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chat sessions: %w", err)
	}
	out.ActiveSessions = n
	return out, nil
}
