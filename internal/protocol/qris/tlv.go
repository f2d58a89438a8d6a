package qris

import (
	"strconv"
	"strings"
)

const (
	tagLen    = 2
	lenLen    = 2
	headerLen = tagLen + lenLen

	// MaxValueLen 两位十进制长度字段能表示的最大值
	MaxValueLen = 99
)

// Node 一个 EMVCo TLV 字段
// 叶子字段使用 Value；模板字段（如 26-51 商户账户信息）使用 Children
type Node struct {
	Tag      string `json:"tag"`
	Length   int    `json:"length"` // 解码时的声明长度，编码时重新计算
	Value    string `json:"value,omitempty"`
	Children List   `json:"children,omitempty"`
}

// IsTemplate 是否为嵌套模板字段
func (n Node) IsTemplate() bool { return n.Children != nil }

// Leaf 创建叶子字段
func Leaf(tag, value string) Node {
	return Node{Tag: tag, Length: len(value), Value: value}
}

// Template 创建模板字段
func Template(tag string, children ...Node) Node {
	list := make(List, 0, len(children))
	list = append(list, children...)
	return Node{Tag: tag, Children: list}
}

// clone 深拷贝，子列表不与原节点共享底层数组
func (n Node) clone() Node {
	if n.Children != nil {
		n.Children = n.Children.Clone()
	}
	return n
}

// List 同级字段列表，顺序即序列化顺序
type List []Node

// Index 返回标签所在下标，不存在返回 -1
func (l List) Index(tag string) int {
	for i := range l {
		if l[i].Tag == tag {
			return i
		}
	}
	return -1
}

// Find 查找指定标签的字段
func (l List) Find(tag string) *Node {
	if i := l.Index(tag); i >= 0 {
		return &l[i]
	}
	return nil
}

// Get 获取叶子字段的值
func (l List) Get(tag string) (string, bool) {
	n := l.Find(tag)
	if n == nil || n.IsTemplate() {
		return "", false
	}
	return n.Value, true
}

// Has 是否包含指定标签
func (l List) Has(tag string) bool { return l.Index(tag) >= 0 }

// Clone 深拷贝整棵树
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i := range l {
		out[i] = l[i].clone()
	}
	return out
}

// Without 返回去掉指定标签（所有出现）后的新列表
func (l List) Without(tag string) List {
	out := make(List, 0, len(l))
	for _, n := range l {
		if n.Tag != tag {
			out = append(out, n.clone())
		}
	}
	return out
}

// insertAt 在下标 i 处插入，返回新列表
func (l List) insertAt(i int, n Node) List {
	out := make(List, 0, len(l)+1)
	out = append(out, l[:i]...)
	out = append(out, n)
	out = append(out, l[i:]...)
	return out
}

// CompositeFunc 判断某个根级标签的值是否应按嵌套 TLV 解码
type CompositeFunc func(tag string) bool

// DefaultComposite 商户账户信息 26-51、附加数据 62、语言模板 64
func DefaultComposite(tag string) bool {
	if !isDigits(tag) || len(tag) != tagLen {
		return false
	}
	n, _ := strconv.Atoi(tag)
	return (n >= 26 && n <= 51) || n == 62 || n == 64
}

type decodeConfig struct {
	composite CompositeFunc
}

// DecodeOption 解码选项
type DecodeOption func(*decodeConfig)

// WithCompositeTags 使用给定的标签集合替换默认的模板标签集合
func WithCompositeTags(tags ...string) DecodeOption {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return func(c *decodeConfig) {
		c.composite = func(tag string) bool {
			_, ok := set[tag]
			return ok
		}
	}
}

// WithComposite 自定义模板判定函数
func WithComposite(fn CompositeFunc) DecodeOption {
	return func(c *decodeConfig) {
		if fn != nil {
			c.composite = fn
		}
	}
}

// Decode 解析 EMVCo TLV 字符串
// 单遍从左到右：2位标签 + 2位十进制长度 + 值；模板字段的值递归解析为子列表
func Decode(text string, opts ...DecodeOption) (List, error) {
	cfg := decodeConfig{composite: DefaultComposite}
	for _, opt := range opts {
		opt(&cfg)
	}
	return decodeList(text, 0, cfg.composite)
}

// decodeList 解析一个同级作用域；composite 为 nil 时不再向下递归
func decodeList(text string, base int, composite CompositeFunc) (List, error) {
	list := List{}
	seen := make(map[string]struct{})
	offset := 0

	for offset < len(text) {
		if len(text)-offset < headerLen {
			return nil, malformed("", base+offset,
				"need %d header bytes, got %d", headerLen, len(text)-offset)
		}

		tag := text[offset : offset+tagLen]
		if !isDigits(tag) {
			return nil, malformed(tag, base+offset, "tag is not two digits")
		}

		lengthStr := text[offset+tagLen : offset+headerLen]
		if !isDigits(lengthStr) {
			return nil, malformed(tag, base+offset, "invalid length %q", lengthStr)
		}
		length, _ := strconv.Atoi(lengthStr)

		valueStart := offset + headerLen
		if valueStart+length > len(text) {
			return nil, malformed(tag, base+offset,
				"declared length %d exceeds remaining %d", length, len(text)-valueStart)
		}

		if _, dup := seen[tag]; dup {
			return nil, malformed(tag, base+offset, "duplicate tag")
		}
		seen[tag] = struct{}{}

		value := text[valueStart : valueStart+length]
		node := Node{Tag: tag, Length: length}

		if composite != nil && composite(tag) {
			children, err := decodeList(value, base+valueStart, nil)
			if err != nil {
				return nil, err
			}
			node.Children = children
		} else {
			node.Value = value
		}

		list = append(list, node)
		offset = valueStart + length
	}

	return list, nil
}

// Encode 序列化为规范字符串
// 长度字段总是按序列化后的值重新计算；根级 63 (CRC) 总是放在最后
func Encode(list List) (string, error) {
	var b strings.Builder
	if err := encodeList(&b, list, true); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeList(b *strings.Builder, list List, root bool) error {
	var trailer []Node
	for _, n := range list {
		if root && n.Tag == TagCRC {
			trailer = append(trailer, n)
			continue
		}
		if err := encodeNode(b, n); err != nil {
			return err
		}
	}
	for _, n := range trailer {
		if err := encodeNode(b, n); err != nil {
			return err
		}
	}
	return nil
}

func encodeNode(b *strings.Builder, n Node) error {
	if len(n.Tag) != tagLen || !isDigits(n.Tag) {
		return malformed(n.Tag, -1, "tag is not two digits")
	}

	value := n.Value
	if n.IsTemplate() {
		var sub strings.Builder
		if err := encodeList(&sub, n.Children, false); err != nil {
			return err
		}
		value = sub.String()
	}

	if len(value) > MaxValueLen {
		return &TagError{Tag: n.Tag, Offset: -1, Err: ErrEncodingOverflow}
	}

	b.WriteString(n.Tag)
	b.WriteString(formatLength(len(value)))
	b.WriteString(value)
	return nil
}

func formatLength(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
