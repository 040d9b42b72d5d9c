package errors

import "errors"

// ErrNotFound 键不存在
var ErrNotFound = errors.New("记录不存在")

// ErrStoreUnavailable 存储后端不可用
var ErrStoreUnavailable = errors.New("存储服务不可用")
