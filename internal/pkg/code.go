package pkg

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// AppError 带有错误类别的业务错误，handler 统一映射为 HTTP 状态码
type AppError struct {
	Kind ErrorKind
	Msg  string
}

func (e *AppError) Error() string { return e.Msg }

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func ErrValidation(msg string) error   { return &AppError{Kind: KindValidation, Msg: msg} }
func ErrUnauthorized(msg string) error { return &AppError{Kind: KindUnauthorized, Msg: msg} }
func ErrForbidden(msg string) error    { return &AppError{Kind: KindForbidden, Msg: msg} }
func ErrNotFound(msg string) error     { return &AppError{Kind: KindNotFound, Msg: msg} }
func ErrConflict(msg string) error     { return &AppError{Kind: KindConflict, Msg: msg} }

// KindOf 非 AppError 一律视为 Internal
func KindOf(err error) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Status()
	}
	return http.StatusInternalServerError
}
