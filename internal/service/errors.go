// Package service 包含了应用的业务逻辑层。
package service

import "errors"

// 业务层的哨兵错误，handler 据此映射 HTTP 状态码。
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid token")

	ErrSessionNotFound  = errors.New("chat session not found")
	ErrSessionForbidden = errors.New("chat session belongs to another user")
)
