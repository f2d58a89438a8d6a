package health

import (
	"context"
	"fmt"
	"time"

	"github.com/taoyao-code/qris-server/internal/merchant"
)

// TemplateChecker 检查每个商户模板都能以最低金额生成载荷
type TemplateChecker struct {
	catalog *merchant.Catalog
}

// NewTemplateChecker 创建模板检查器
func NewTemplateChecker(catalog *merchant.Catalog) *TemplateChecker {
	return &TemplateChecker{catalog: catalog}
}

// Name 返回检查器名称
func (c *TemplateChecker) Name() string {
	return "template"
}

// Check 执行健康检查
func (c *TemplateChecker) Check(_ context.Context) CheckResult {
	start := time.Now()

	if c.catalog == nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "merchant catalog not loaded",
			Latency: time.Since(start),
		}
	}

	names := c.catalog.Names()
	failed := make(map[string]interface{})
	for _, name := range names {
		gen, _, err := c.catalog.Lookup(name)
		if err == nil {
			_, err = gen.Generate(gen.Limits().Min)
		}
		if err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("%d of %d templates failed", len(failed), len(names)),
			Details: failed,
			Latency: time.Since(start),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{"merchants": len(names)},
		Latency: time.Since(start),
	}
}
