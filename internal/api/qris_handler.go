package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/qris-server/internal/coremodel"
	"github.com/taoyao-code/qris-server/internal/merchant"
	"github.com/taoyao-code/qris-server/internal/protocol/qris"
	"github.com/taoyao-code/qris-server/internal/service"
)

// QRISHandler QRIS 签发/查询/解码处理器
type QRISHandler struct {
	svc    *service.IssueService
	logger *zap.Logger
}

// NewQRISHandler 创建处理器
func NewQRISHandler(svc *service.IssueService, logger *zap.Logger) *QRISHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QRISHandler{svc: svc, logger: logger}
}

// Generate 签发动态 QRIS
// GET /api/v1/qris?amount=N&merchant=name
func (h *QRISHandler) Generate(c *gin.Context) {
	merchantName := strings.TrimSpace(c.Query("merchant"))

	var amount int64
	if raw := strings.TrimSpace(c.Query("amount")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, merchantName, "Nominal tidak valid: "+raw)
			return
		}
		amount = v
	}

	rec, err := h.svc.Issue(c.Request.Context(), merchantName, amount)
	if err != nil {
		var amountErr *qris.AmountError
		switch {
		case errors.As(err, &amountErr):
			msg := "Nominal minimal " + formatRupiah(amountErr.Min)
			if amountErr.Amount > amountErr.Max {
				msg = "Nominal maksimal " + formatRupiah(amountErr.Max)
			}
			h.respondError(c, http.StatusBadRequest, merchantName, msg)
		case errors.Is(err, merchant.ErrUnknownMerchant):
			h.respondError(c, http.StatusBadRequest, merchantName, err.Error())
		case qris.IsTemplateError(err):
			h.respondError(c, http.StatusInternalServerError, merchantName, "Format QRIS tidak valid")
		default:
			h.logger.Error("issue qris failed", zap.Error(err))
			h.respondError(c, http.StatusInternalServerError, merchantName, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Status:  statusSuccess,
		Message: "QRIS generated successfully",
		Data:    toIssuedData(rec),
	})
}

// GetIssued 查询已签发载荷
// GET /api/v1/qris/:id
func (h *QRISHandler) GetIssued(c *gin.Context) {
	id := coremodel.IssuedID(c.Param("id"))

	rec, err := h.svc.Get(c.Request.Context(), id)
	if errors.Is(err, coremodel.ErrIssuedNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Status: statusError, Message: "QRIS not found or expired"})
		return
	}
	if err != nil {
		h.logger.Error("get issued qris failed", zap.String("id", string(id)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Status: statusError, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Status: statusSuccess, Message: "ok", Data: toIssuedData(rec)})
}

// Decode 解析任意载荷
// POST /api/v1/qris/decode {"payload": "..."}
func (h *QRISHandler) Decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Status: statusError, Message: "invalid request: " + err.Error()})
		return
	}

	p, err := h.svc.Decode(strings.TrimSpace(req.Payload))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Status: statusError, Message: err.Error()})
		return
	}

	msg := "ok"
	if !p.ChecksumValid {
		msg = "checksum mismatch"
	}
	c.JSON(http.StatusOK, Response{Status: statusSuccess, Message: msg, Data: p})
}

// ListMerchants 列出商户目录
// GET /api/v1/merchants
func (h *QRISHandler) ListMerchants(c *gin.Context) {
	catalog := h.svc.Catalog()
	names := catalog.Names()

	items := make([]MerchantData, 0, len(names))
	for _, name := range names {
		gen, _, err := catalog.Lookup(name)
		if err != nil {
			continue
		}
		limits := gen.Limits()
		items = append(items, MerchantData{
			Name:      name,
			Default:   name == catalog.Default(),
			MinAmount: limits.Min,
			MaxAmount: limits.Max,
		})
	}
	c.JSON(http.StatusOK, Response{Status: statusSuccess, Message: "ok", Data: items})
}

func (h *QRISHandler) respondError(c *gin.Context, code int, merchantName, msg string) {
	c.JSON(code, ErrorResponse{
		Status:     statusError,
		Message:    msg,
		Usage:      usageText,
		Parameters: h.usageParameters(merchantName),
	})
}

// usageParameters 未知商户时回退到默认商户的金额参数
func (h *QRISHandler) usageParameters(merchantName string) *UsageParameter {
	catalog := h.svc.Catalog()
	gen, _, err := catalog.Lookup(merchantName)
	if err != nil {
		if gen, _, err = catalog.Lookup(""); err != nil {
			return nil
		}
	}
	limits := gen.Limits()
	return &UsageParameter{
		MinAmount:     limits.Min,
		MaxAmount:     limits.Max,
		DefaultAmount: h.svc.DefaultAmount(),
	}
}

func toIssuedData(rec *coremodel.IssuedPayload) IssuedData {
	return IssuedData{
		ID:         string(rec.ID),
		Merchant:   rec.Merchant,
		Amount:     rec.Amount,
		QRISString: rec.Payload,
		Expiry:     rec.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
