package errors

import "errors"

// ErrAlreadyFinalized 状态机冲突：凭证/提现单已处于终态，不允许再次流转
var ErrAlreadyFinalized = errors.New("记录已审核完成，不允许重复操作")

// ErrDuplicateCode 推荐码唯一约束冲突，调用方应重新生成后重试
var ErrDuplicateCode = errors.New("推荐码已存在")
