package qris

import (
	"strconv"
)

// MerchantAccount 商户账户信息模板（26-51）
type MerchantAccount struct {
	Tag    string `json:"tag"`
	GUID   string `json:"guid"` // 子标签 00：全局唯一标识（反向域名）
	Fields List   `json:"fields"`
}

// Payload 解析后的载荷视图
type Payload struct {
	Raw              string            `json:"raw"`
	FormatIndicator  string            `json:"format_indicator"`
	InitiationMethod InitiationMethod  `json:"initiation_method,omitempty"`
	MerchantAccounts []MerchantAccount `json:"merchant_accounts,omitempty"`
	MerchantCategory string            `json:"merchant_category,omitempty"`
	Currency         string            `json:"currency,omitempty"`
	Amount           string            `json:"amount,omitempty"`
	Country          string            `json:"country,omitempty"`
	MerchantName     string            `json:"merchant_name,omitempty"`
	MerchantCity     string            `json:"merchant_city,omitempty"`
	PostalCode       string            `json:"postal_code,omitempty"`
	Checksum         string            `json:"checksum,omitempty"`
	ChecksumValid    bool              `json:"checksum_valid"`
	Fields           List              `json:"fields"`
}

// IsDynamic 是否为动态（单笔）载荷
func (p *Payload) IsDynamic() bool { return p.InitiationMethod == Dynamic }

// AmountValue 金额的整数值；无金额或非整数返回 false
func (p *Payload) AmountValue() (int64, bool) {
	if p.Amount == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(p.Amount, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Parse 解析完整载荷并校验 CRC
// 结构错误返回 error；CRC 结果写入 ChecksumValid
func Parse(payload string, opts ...DecodeOption) (*Payload, error) {
	list, err := Decode(payload, opts...)
	if err != nil {
		return nil, err
	}

	p := &Payload{Raw: payload, Fields: list}
	for _, n := range list {
		switch n.Tag {
		case TagPayloadFormat:
			p.FormatIndicator = n.Value
		case TagInitiationMethod:
			p.InitiationMethod = InitiationMethod(n.Value)
		case TagMerchantCategory:
			p.MerchantCategory = n.Value
		case TagCurrency:
			p.Currency = n.Value
		case TagAmount:
			p.Amount = n.Value
		case TagCountry:
			p.Country = n.Value
		case TagMerchantName:
			p.MerchantName = n.Value
		case TagMerchantCity:
			p.MerchantCity = n.Value
		case TagPostalCode:
			p.PostalCode = n.Value
		case TagCRC:
			p.Checksum = n.Value
		default:
			if isMerchantAccountTag(n.Tag) && n.IsTemplate() {
				guid, _ := n.Children.Get("00")
				p.MerchantAccounts = append(p.MerchantAccounts, MerchantAccount{
					Tag:    n.Tag,
					GUID:   guid,
					Fields: n.Children,
				})
			}
		}
	}

	p.ChecksumValid = VerifyChecksum(payload) == nil
	return p, nil
}

func isMerchantAccountTag(tag string) bool {
	n, err := strconv.Atoi(tag)
	return err == nil && n >= 26 && n <= 51
}
