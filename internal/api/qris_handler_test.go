package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/merchant"
	"github.com/taoyao-code/qris-server/internal/protocol/qris"
	"github.com/taoyao-code/qris-server/internal/service"
	"github.com/taoyao-code/qris-server/internal/storage/memory"
)

const dynamic5000 = "00020101021226670016COM.NOBUBANK.WWW01189360050300000879140214210379661725380303UMI" +
	"51440014ID.CO.QRIS.WWW0215ID20253865385780303UMI520454115303360540450005802ID" +
	"5922LUTIFY STORE OK23176316006BEKASI61051711162070703A01630458CA"

var testNow = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := merchant.NewCatalog([]merchant.Entry{
		{Name: "default", Template: cfgpkg.DefaultTemplate},
		{Name: "kecil", Template: cfgpkg.DefaultTemplate, MaxAmount: 1000},
	}, qris.DefaultAmountLimits)
	require.NoError(t, err)

	svc, err := service.NewIssueService(catalog,
		service.IssueConfig{DefaultAmount: 10000, Expiry: time.Hour},
		service.WithStore(memory.NewIssuedStore(func() time.Time { return testNow })),
		service.WithClock(func() time.Time { return testNow }),
		service.WithIDGenerator(func() string { return "fixed-id" }),
	)
	require.NoError(t, err)

	r := gin.New()
	RegisterQRISRoutes(r, svc, zap.NewNop())
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	r := setupRouter(t)

	t.Run("指定金额", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/qris?amount=5000", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Status  string     `json:"status"`
			Message string     `json:"message"`
			Data    IssuedData `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "QRIS generated successfully", resp.Message)
		assert.Equal(t, "fixed-id", resp.Data.ID)
		assert.Equal(t, "default", resp.Data.Merchant)
		assert.Equal(t, int64(5000), resp.Data.Amount)
		assert.Equal(t, dynamic5000, resp.Data.QRISString)
		assert.Equal(t, "2026-05-01T09:00:00Z", resp.Data.Expiry)
	})

	t.Run("根路径默认金额", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"amount":10000`)
		assert.Contains(t, w.Body.String(), "6304529A")
	})

	tests := []struct {
		name    string
		path    string
		message string
		maxAmt  int64
	}{
		{"低于下限", "/api/v1/qris?amount=99", "Nominal minimal Rp100", 500000},
		{"高于上限", "/api/v1/qris?amount=500001", "Nominal maksimal Rp500.000", 500000},
		{"商户上限", "/api/v1/qris?amount=1001&merchant=kecil", "Nominal maksimal Rp1.000", 1000},
		{"非数字", "/api/v1/qris?amount=abc", "Nominal tidak valid: abc", 500000},
		{"未知商户", "/api/v1/qris?merchant=nope", `unknown merchant: "nope"`, 500000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, usageText, resp.Usage)
			require.NotNil(t, resp.Parameters)
			assert.Equal(t, int64(100), resp.Parameters.MinAmount)
			assert.Equal(t, tt.maxAmt, resp.Parameters.MaxAmount)
			assert.Equal(t, int64(10000), resp.Parameters.DefaultAmount)
		})
	}
}

func TestGetIssued(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/qris/fixed-id", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/qris?amount=5000", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/qris/fixed-id", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), dynamic5000)
}

func TestDecode(t *testing.T) {
	r := setupRouter(t)

	t.Run("有效载荷", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/qris/decode", `{"payload":"`+dynamic5000+`"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Status  string       `json:"status"`
			Message string       `json:"message"`
			Data    qris.Payload `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Message)
		assert.True(t, resp.Data.ChecksumValid)
		assert.Equal(t, "5000", resp.Data.Amount)
		assert.Equal(t, qris.Dynamic, resp.Data.InitiationMethod)
		require.Len(t, resp.Data.MerchantAccounts, 2)
		assert.Equal(t, "COM.NOBUBANK.WWW", resp.Data.MerchantAccounts[0].GUID)
	})

	t.Run("校验和错误", func(t *testing.T) {
		bad := dynamic5000[:len(dynamic5000)-4] + "0000"
		w := doRequest(r, http.MethodPost, "/api/v1/qris/decode", `{"payload":"`+bad+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"checksum_valid":false`)
		assert.Contains(t, w.Body.String(), "checksum mismatch")
	})

	t.Run("结构错误", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/qris/decode", `{"payload":"000201019"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("缺少payload", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/qris/decode", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListMerchants(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/merchants", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []MerchantData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, MerchantData{Name: "default", Default: true, MinAmount: 100, MaxAmount: 500000}, resp.Data[0])
	assert.Equal(t, MerchantData{Name: "kecil", MinAmount: 100, MaxAmount: 1000}, resp.Data[1])
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp100", formatRupiah(100))
	assert.Equal(t, "Rp1.000", formatRupiah(1000))
	assert.Equal(t, "Rp500.000", formatRupiah(500000))
	assert.Equal(t, "Rp1.234.567", formatRupiah(1234567))
	assert.Equal(t, "-Rp5.000", formatRupiah(-5000))
}
