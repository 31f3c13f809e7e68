package service

import (
	"errors"

	"CrewServer/consts"
)

// bizError 业务错误：携带 consts 错误码。
// 网关用 CodeOf 取码后走统一响应，不关心具体错误类型。
type bizError struct {
	code int32
}

func (e *bizError) Error() string {
	return consts.GetMessage(e.code)
}

// BizError 构造一个携带业务码的错误。
func BizError(code int32) error {
	return &bizError{code: code}
}

// CodeOf 提取错误携带的业务码。
// 非业务错误（仓储失败等）统一归为内部错误。
func CodeOf(err error) int32 {
	if err == nil {
		return consts.CodeSuccess
	}
	var be *bizError
	if errors.As(err, &be) {
		return be.code
	}
	return consts.CodeInternalError
}
