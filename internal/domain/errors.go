package domain

import "errors"

// 存储层返回的错误，具体的存储实现需要把底层错误转换成这些错误
var (
	ErrNotFound       = errors.New("记录不存在")
	ErrConflict       = errors.New("并发冲突")
	ErrAlreadyDeleted = errors.New("排班已被删除")
)
