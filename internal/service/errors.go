package service

import (
	"errors"
)

// Kind 失败分类，决定 API 层的状态码
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthenticated
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error 业务错误；Message 原样返回给调用方
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrNotFound) 匹配任意 NotFound 哨兵
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// 分类哨兵，仅用于 errors.Is
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrStore           = &Error{Kind: KindStore}
)

var (
	ErrEmptyContent       = &Error{Kind: KindValidation, Message: "Post content cannot be empty"}
	ErrEmptyComment       = &Error{Kind: KindValidation, Message: "Comment content cannot be empty"}
	ErrSelfFriendship     = &Error{Kind: KindValidation, Message: "Invalid friend request"}
	ErrInvalidID          = &Error{Kind: KindValidation, Message: "Invalid ID format"}
	ErrInvalidUserID      = &Error{Kind: KindValidation, Message: "Invalid user ID format"}
	ErrInvalidLikeType    = &Error{Kind: KindValidation, Message: "Invalid likeType"}
	ErrSearchTextRequired = &Error{Kind: KindValidation, Message: "Search text is required"}
	ErrEmptyName          = &Error{Kind: KindValidation, Message: "Name cannot be empty"}
	ErrPasswordMismatch   = &Error{Kind: KindValidation, Message: "Passwords do not match"}
	ErrMissingSignupField = &Error{Kind: KindValidation, Message: "Name, email and password are required"}
	ErrEmptyMessage       = &Error{Kind: KindValidation, Message: "Message cannot be empty"}

	ErrUserNotFound    = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrPostNotFound    = &Error{Kind: KindNotFound, Message: "Post not found"}
	ErrCommentNotFound = &Error{Kind: KindNotFound, Message: "Comment not found"}

	ErrDuplicateEmail = &Error{Kind: KindConflict, Message: "Email already in use"}
	ErrAlreadyFriends = &Error{Kind: KindConflict, Message: "Already friends"}
	ErrNotFriends     = &Error{Kind: KindConflict, Message: "Not friends"}

	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "Invalid email or password"}
)

// storeError 包装持久层故障，对外只暴露通用信息
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: KindStore, Message: "store failure", Err: err}
}

// KindOf 取错误分类；非业务错误视为存储故障
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}
