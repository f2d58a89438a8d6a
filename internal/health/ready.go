package health

import "sync/atomic"

// Readiness 启动阶段就绪标记（/readyz 使用）
type Readiness struct {
	catalogReady atomic.Bool
	httpReady    atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetCatalogReady(v bool) { r.catalogReady.Store(v) }
func (r *Readiness) SetHTTPReady(v bool)    { r.httpReady.Store(v) }

// Ready 商户目录已编译且 HTTP 已开始监听
func (r *Readiness) Ready() bool {
	return r.catalogReady.Load() && r.httpReady.Load()
}
