// Package errcode provides the layered error codes used across the SDK.
// Code format: MMBBBB (MM = module code, BBBB = business code).
package errcode

import (
	"fmt"
	"net/http"
)

// Module codes. Each package owning errors claims one.
const (
	ModuleCommon    = 10
	ModuleAuth      = 20
	ModuleArticles  = 30
	ModuleAdmin     = 40
	ModuleTransport = 50
	ModuleCache     = 70
)

// LayeredError is the SDK-wide error type: stable code, module name,
// message key, HTTP status mapping, context data and a wrapped cause.
type LayeredError struct {
	module     string
	code       int
	msgKey     string
	msg        string
	httpStatus int
	data       map[string]interface{}
	cause      error
}

// New creates a layered error.
// moduleCode: one of the Module* constants
// businessCode: 1-9999, unique within the module
// module: module name ("articles", "cache", ...)
// msgKey: stable key ("error.cache.miss"), msg: default message
// httpStatus: optional HTTP status (defaults to 200)
func New(moduleCode, businessCode int, module, msgKey, msg string, httpStatus ...int) *LayeredError {
	code := moduleCode*10000 + businessCode
	status := http.StatusOK
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       code,
		msgKey:     msgKey,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]interface{}),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full numeric code (MMBBBB).
func (e *LayeredError) Code() int {
	return e.code
}

// Module returns the owning module name.
func (e *LayeredError) Module() string {
	return e.module
}

// MsgKey returns the stable message key.
func (e *LayeredError) MsgKey() string {
	return e.msgKey
}

// Message returns the current message.
func (e *LayeredError) Message() string {
	return e.msg
}

// HTTPStatus returns the mapped HTTP status code.
func (e *LayeredError) HTTPStatus() int {
	return e.httpStatus
}

// Data returns the attached context data.
func (e *LayeredError) Data() map[string]interface{} {
	return e.data
}

// Cause returns the wrapped cause, if any.
func (e *LayeredError) Cause() error {
	return e.cause
}

// Unwrap supports errors.Is / errors.As chains.
func (e *LayeredError) Unwrap() error {
	return e.cause
}

// WithMsg returns a copy with a replaced message.
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf returns a copy with a formatted message.
func (e *LayeredError) WithMsgf(format string, args ...interface{}) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData returns a copy with one context value attached.
func (e *LayeredError) WithData(key string, value interface{}) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	clone.data[key] = value
	return &clone
}

// WithFields returns a copy with several context values attached.
func (e *LayeredError) WithFields(fields map[string]interface{}) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	for k, v := range fields {
		clone.data[k] = v
	}
	return &clone
}

// Wrap returns a copy carrying cause as the wrapped error.
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Wrapf wraps cause and replaces the message in one step.
func (e *LayeredError) Wrapf(cause error, format string, args ...interface{}) *LayeredError {
	if cause == nil {
		return e.WithMsgf(format, args...)
	}
	clone := *e
	clone.cause = cause
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// Is matches two layered errors by code, so errors.Is works on clones.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *LayeredError) cloneData() map[string]interface{} {
	data := make(map[string]interface{}, len(e.data))
	for k, v := range e.data {
		data[k] = v
	}
	return data
}

// WithHTTPStatus returns a copy with a replaced HTTP status.
func (e *LayeredError) WithHTTPStatus(status int) *LayeredError {
	clone := *e
	clone.httpStatus = status
	return &clone
}

// String is the debug representation.
func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}",
			e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}",
		e.code, e.module, e.msg)
}
