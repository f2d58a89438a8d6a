package merchant

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/protocol/qris"
)

// ErrUnknownMerchant 目录中不存在该商户
var ErrUnknownMerchant = errors.New("unknown merchant")

// Entry 商户模板条目；金额上下限为 0 时继承全局配置
type Entry struct {
	Name      string `yaml:"name"`
	Template  string `yaml:"template"`
	MinAmount int64  `yaml:"minAmount"`
	MaxAmount int64  `yaml:"maxAmount"`
}

type templatesFile struct {
	Templates []Entry `yaml:"templates"`
}

// LoadFile 读取商户模板 YAML
func LoadFile(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}
	var f templatesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("unmarshal templates file: %w", err)
	}
	return f.Templates, nil
}

// Catalog 商户名 -> 生成器，启动时构建，之后只读
type Catalog struct {
	defaultName string
	generators  map[string]*qris.Generator
}

// NewCatalog 编译所有条目；任一模板非法都会使启动失败
// 第一个条目为默认商户
func NewCatalog(entries []Entry, limits qris.AmountLimits, opts ...qris.DecodeOption) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("merchant catalog is empty")
	}

	c := &Catalog{
		defaultName: entries[0].Name,
		generators:  make(map[string]*qris.Generator, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.New("merchant entry without name")
		}
		if _, dup := c.generators[e.Name]; dup {
			return nil, fmt.Errorf("duplicate merchant %q", e.Name)
		}

		l := limits
		if e.MinAmount > 0 {
			l.Min = e.MinAmount
		}
		if e.MaxAmount > 0 {
			l.Max = e.MaxAmount
		}

		g, err := qris.NewGenerator(e.Template, qris.WithAmountLimits(l), qris.WithDecodeOptions(opts...))
		if err != nil {
			return nil, fmt.Errorf("merchant %q: %w", e.Name, err)
		}
		c.generators[e.Name] = g
	}
	return c, nil
}

// FromConfig 默认商户来自 qris.template，额外商户来自 qris.templatesFile
func FromConfig(cfg cfgpkg.QRISConfig) (*Catalog, error) {
	entries := []Entry{{Name: cfg.MerchantName, Template: cfg.Template}}
	if cfg.TemplatesFile != "" {
		extra, err := LoadFile(cfg.TemplatesFile)
		if err != nil {
			return nil, err
		}
		entries = append(entries, extra...)
	}

	var opts []qris.DecodeOption
	if len(cfg.CompositeTags) > 0 {
		opts = append(opts, qris.WithCompositeTags(cfg.CompositeTags...))
	}
	return NewCatalog(entries, qris.AmountLimits{Min: cfg.MinAmount, Max: cfg.MaxAmount}, opts...)
}

// Lookup 查找商户生成器；name 为空时返回默认商户
func (c *Catalog) Lookup(name string) (*qris.Generator, string, error) {
	if name == "" {
		name = c.defaultName
	}
	g, ok := c.generators[name]
	if !ok {
		return nil, name, fmt.Errorf("%w: %q", ErrUnknownMerchant, name)
	}
	return g, name, nil
}

// Default 默认商户名
func (c *Catalog) Default() string { return c.defaultName }

// Names 按字母序返回所有商户名
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.generators))
	for n := range c.generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
