package api

import (
	"strconv"
	"strings"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	usageText = "Gunakan: ?amount=NOMINAL (contoh: ?amount=5000)"
)

// Response 成功响应信封
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应信封，附带用法与金额参数
type ErrorResponse struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Usage      string          `json:"usage,omitempty"`
	Parameters *UsageParameter `json:"parameters,omitempty"`
}

// UsageParameter 金额参数说明
type UsageParameter struct {
	MinAmount     int64 `json:"min_amount"`
	MaxAmount     int64 `json:"max_amount"`
	DefaultAmount int64 `json:"default_amount"`
}

// IssuedData 签发结果
type IssuedData struct {
	ID         string `json:"id"`
	Merchant   string `json:"merchant"`
	Amount     int64  `json:"amount"`
	QRISString string `json:"qris_string"`
	Expiry     string `json:"expiry"` // RFC3339
}

// DecodeRequest 解码请求
type DecodeRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// MerchantData 商户目录条目
type MerchantData struct {
	Name      string `json:"name"`
	Default   bool   `json:"default"`
	MinAmount int64  `json:"min_amount"`
	MaxAmount int64  `json:"max_amount"`
}

// formatRupiah 按印尼习惯用点号分隔千位：500000 -> "Rp500.000"
func formatRupiah(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("Rp")
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
