package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// 结果标签取值
const (
	ResultOK            = "ok"
	ResultInvalidAmount = "invalid_amount"
	ResultTemplate      = "template_error"
	ResultMalformed     = "malformed"
	ResultBadChecksum   = "bad_checksum"
	ResultError         = "error"
)

// AppMetrics 自定义业务指标
type AppMetrics struct {
	GenerateTotal    *prometheus.CounterVec // labels: merchant, result
	DecodeTotal      *prometheus.CounterVec // labels: result=ok|malformed|bad_checksum
	Amount           prometheus.Histogram   // 成功签发的金额分布
	IssuedStoreTotal *prometheus.CounterVec // labels: op=save|get, result
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		GenerateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qris_generate_total",
			Help: "Dynamic QRIS payload generation attempts.",
		}, []string{"merchant", "result"}),
		DecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qris_decode_total",
			Help: "QRIS payload decode attempts.",
		}, []string{"result"}),
		Amount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qris_amount",
			Help:    "Amounts of issued dynamic payloads.",
			Buckets: []float64{1000, 5000, 10000, 25000, 50000, 100000, 250000, 500000},
		}),
		IssuedStoreTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qris_issued_store_total",
			Help: "Issued payload store operations.",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(m.GenerateTotal, m.DecodeTotal, m.Amount, m.IssuedStoreTotal)
	return m
}
