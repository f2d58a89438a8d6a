package qris

import "fmt"

// Generator 基于静态商户模板生成动态载荷
// 模板在构造时解析一次，之后只读；每次生成都在深拷贝上编辑，可并发使用
type Generator struct {
	template List
	limits   AmountLimits
	decode   []DecodeOption
}

// GeneratorOption 生成器选项
type GeneratorOption func(*Generator)

// WithAmountLimits 覆盖默认金额上下限
func WithAmountLimits(limits AmountLimits) GeneratorOption {
	return func(g *Generator) { g.limits = limits }
}

// WithDecodeOptions 模板解码选项（如自定义模板标签集合）
func WithDecodeOptions(opts ...DecodeOption) GeneratorOption {
	return func(g *Generator) { g.decode = append(g.decode, opts...) }
}

// NewGenerator 解析并校验模板
// 模板必须包含 00 与 58；若带 63，则其 CRC 必须正确
func NewGenerator(template string, opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{limits: DefaultAmountLimits}
	for _, opt := range opts {
		opt(g)
	}

	if err := g.limits.Validate(); err != nil {
		return nil, err
	}

	list, err := Decode(template, g.decode...)
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if !list.Has(TagPayloadFormat) {
		return nil, &TagError{Tag: TagPayloadFormat, Offset: -1, Err: ErrMissingRequiredTag}
	}
	if !list.Has(TagCountry) && !list.Has(TagAmount) {
		return nil, &TagError{Tag: TagCountry, Offset: -1, Err: ErrMissingAnchorTag}
	}
	if list.Has(TagCRC) {
		if err := VerifyChecksum(template); err != nil {
			return nil, fmt.Errorf("template checksum: %w", err)
		}
	}
	if _, err := Encode(list); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}

	g.template = list
	return g, nil
}

// Limits 返回金额上下限
func (g *Generator) Limits() AmountLimits { return g.limits }

// Template 返回模板树的副本
func (g *Generator) Template() List { return g.template.Clone() }

// Generate 生成指定金额的动态载荷
// 流水线：写入金额 -> 切换为动态 -> 重新编码 -> 追加CRC
func (g *Generator) Generate(amount int64) (string, error) {
	list, err := SetTransactionAmountWithin(g.template, amount, g.limits)
	if err != nil {
		return "", err
	}
	list, err = SetPointOfInitiationMethod(list, Dynamic)
	if err != nil {
		return "", err
	}
	return AppendChecksum(list)
}

// Static 返回去掉金额、发起方式为静态的载荷
func (g *Generator) Static() (string, error) {
	list, err := SetPointOfInitiationMethod(g.template.Without(TagAmount), Static)
	if err != nil {
		return "", err
	}
	return AppendChecksum(list)
}
