package errors

import (
	stderrors "errors"
	"fmt"
)

// ========== 错误码常量定义 ==========

// 成功码
const (
	CodeSuccess = 200
	CodeCreated = 201
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 业务错误 ==========

// AppError 带错误码的业务错误，Code 即响应的HTTP状态码
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is 按错误码比较，便于 errors.Is(err, ErrConflict)
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithField 附加字段级错误信息
func (e *AppError) WithField(field, message string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// 哨兵错误，仅用于 errors.Is 判断类别
var (
	ErrValidation   = &AppError{Code: CodeInvalidParam}
	ErrNotFound     = &AppError{Code: CodeNotFound}
	ErrConflict     = &AppError{Code: CodeConflict}
	ErrUnauthorized = &AppError{Code: CodeUnauthorized}
	ErrForbidden    = &AppError{Code: CodeForbidden}
)

func New(code int, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation 参数校验失败 (400)
func Validation(format string, args ...interface{}) *AppError {
	return New(CodeInvalidParam, format, args...)
}

// FieldValidation 单字段校验失败 (400)
func FieldValidation(field, message string) *AppError {
	return New(CodeInvalidParam, "%s", message).WithField(field, message)
}

// NotFound 引用的记录不存在 (404)
func NotFound(format string, args ...interface{}) *AppError {
	return New(CodeNotFound, format, args...)
}

// Conflict 引用完整性或业务规则冲突 (409)
func Conflict(format string, args ...interface{}) *AppError {
	return New(CodeConflict, format, args...)
}

func Unauthorized(format string, args ...interface{}) *AppError {
	return New(CodeUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *AppError {
	return New(CodeForbidden, format, args...)
}

// As 提取 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
