package qris

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTLV 载荷的标签/长度结构不一致
	ErrMalformedTLV = errors.New("malformed TLV")
	// ErrEncodingOverflow 值长度超出两位长度字段（最大99字节）
	ErrEncodingOverflow = errors.New("value exceeds 99 bytes")
	// ErrAmountOutOfRange 金额超出业务上下限
	ErrAmountOutOfRange = errors.New("amount out of range")
	// ErrMissingAnchorTag 模板缺少插入锚点标签
	ErrMissingAnchorTag = errors.New("missing anchor tag")
	// ErrMissingRequiredTag 模板缺少必需标签
	ErrMissingRequiredTag = errors.New("missing required tag")
	// ErrInvalidInitiationMethod 发起方式只能是 11 或 12
	ErrInvalidInitiationMethod = errors.New("invalid point of initiation method")
	// ErrInvalidAmountLimits 金额上下限配置非法
	ErrInvalidAmountLimits = errors.New("invalid amount limits")

	// ErrChecksumMissing 载荷末尾没有 6304 校验标签
	ErrChecksumMissing = errors.New("checksum tag missing")
	// ErrChecksumMismatch CRC校验失败
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// TagError 绑定到具体标签的错误
// Offset 为解码时的字节偏移；树编辑、编码阶段的错误 Offset 为 -1
type TagError struct {
	Tag    string
	Offset int
	Err    error
}

func (e *TagError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("tag %q at offset %d: %v", e.Tag, e.Offset, e.Err)
	}
	return fmt.Sprintf("tag %q: %v", e.Tag, e.Err)
}

func (e *TagError) Unwrap() error { return e.Err }

// AmountError 金额越界，携带被违反的边界
type AmountError struct {
	Amount int64
	Min    int64
	Max    int64
}

func (e *AmountError) Error() string {
	if e.Amount < e.Min {
		return fmt.Sprintf("%v: %d is below minimum %d", ErrAmountOutOfRange, e.Amount, e.Min)
	}
	return fmt.Sprintf("%v: %d exceeds maximum %d", ErrAmountOutOfRange, e.Amount, e.Max)
}

func (e *AmountError) Unwrap() error { return ErrAmountOutOfRange }

// Bound 返回被违反的那一侧边界
func (e *AmountError) Bound() int64 {
	if e.Amount < e.Min {
		return e.Min
	}
	return e.Max
}

// IsTemplateError 判断错误是否属于模板配置问题（而非用户输入问题）
func IsTemplateError(err error) bool {
	return errors.Is(err, ErrMissingAnchorTag) ||
		errors.Is(err, ErrMissingRequiredTag) ||
		errors.Is(err, ErrEncodingOverflow)
}

func malformed(tag string, offset int, format string, args ...any) error {
	return &TagError{
		Tag:    tag,
		Offset: offset,
		Err:    fmt.Errorf("%w: "+format, append([]any{ErrMalformedTLV}, args...)...),
	}
}
