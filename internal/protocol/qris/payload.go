package qris

import (
	"fmt"
	"strconv"
)

// EMVCo 根级标签
const (
	TagPayloadFormat    = "00" // 载荷格式指示符
	TagInitiationMethod = "01" // 发起方式 11静态/12动态
	TagMerchantCategory = "52"
	TagCurrency         = "53"
	TagAmount           = "54" // 交易金额
	TagCountry          = "58" // 国家代码，金额插入锚点
	TagMerchantName     = "59"
	TagMerchantCity     = "60"
	TagPostalCode       = "61"
	TagAdditionalData   = "62"
	TagCRC              = "63"
)

// InitiationMethod 发起方式
type InitiationMethod string

const (
	Static  InitiationMethod = "11" // 可重复使用
	Dynamic InitiationMethod = "12" // 单笔交易
)

func (m InitiationMethod) valid() bool { return m == Static || m == Dynamic }

// AmountLimits 交易金额上下限（含边界）
type AmountLimits struct {
	Min int64 `json:"min_amount" yaml:"minAmount"`
	Max int64 `json:"max_amount" yaml:"maxAmount"`
}

// DefaultAmountLimits 默认业务上下限：Rp100 ~ Rp500.000
var DefaultAmountLimits = AmountLimits{Min: 100, Max: 500000}

// Validate 检查上下限本身是否合法
func (a AmountLimits) Validate() error {
	if a.Min < 1 || a.Max < a.Min {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidAmountLimits, a.Min, a.Max)
	}
	if len(strconv.FormatInt(a.Max, 10)) > MaxValueLen {
		return fmt.Errorf("%w: max=%d", ErrInvalidAmountLimits, a.Max)
	}
	return nil
}

// Check 检查金额是否在范围内
func (a AmountLimits) Check(amount int64) error {
	if amount < a.Min || amount > a.Max {
		return &AmountError{Amount: amount, Min: a.Min, Max: a.Max}
	}
	return nil
}

// SetPointOfInitiationMethod 设置发起方式
// 存在 01 时原位替换；不存在时插入到 00 之后；缺少 00 则无法确定插入位置
func SetPointOfInitiationMethod(list List, mode InitiationMethod) (List, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInitiationMethod, mode)
	}

	if i := list.Index(TagInitiationMethod); i >= 0 {
		out := list.Clone()
		out[i] = Leaf(TagInitiationMethod, string(mode))
		return out, nil
	}

	anchor := list.Index(TagPayloadFormat)
	if anchor < 0 {
		return nil, &TagError{Tag: TagPayloadFormat, Offset: -1, Err: ErrMissingRequiredTag}
	}
	return list.Clone().insertAt(anchor+1, Leaf(TagInitiationMethod, string(mode))), nil
}

// SetTransactionAmount 使用默认上下限写入交易金额
func SetTransactionAmount(list List, amount int64) (List, error) {
	return SetTransactionAmountWithin(list, amount, DefaultAmountLimits)
}

// SetTransactionAmountWithin 写入交易金额（标签54）
// 金额先校验，越界时不做任何修改；已有 54 则原位替换，否则插入到 58 之前
func SetTransactionAmountWithin(list List, amount int64, limits AmountLimits) (List, error) {
	if err := limits.Check(amount); err != nil {
		return nil, err
	}

	node := Leaf(TagAmount, strconv.FormatInt(amount, 10))

	if i := list.Index(TagAmount); i >= 0 {
		out := list.Clone()
		out[i] = node
		return out, nil
	}

	anchor := list.Index(TagCountry)
	if anchor < 0 {
		return nil, &TagError{Tag: TagCountry, Offset: -1, Err: ErrMissingAnchorTag}
	}
	return list.Clone().insertAt(anchor, node), nil
}

// AppendChecksum 去掉旧的 63 后编码，并追加新的 CRC
// 校验输入为 编码结果 + "6304"
func AppendChecksum(list List) (string, error) {
	encoded, err := Encode(list.Without(TagCRC))
	if err != nil {
		return "", err
	}
	body := encoded + crcHeader
	return body + ChecksumHex(body), nil
}
