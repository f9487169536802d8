package utl

import (
	"bytes"
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// OrderedMap 保持声明顺序的字符串键映射，零值可直接使用
type OrderedMap[V any] struct {
	keys  []string
	items map[string]V
}

// NewOrderedMap 创建空映射
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{items: make(map[string]V)}
}

// Set 写入键值，已存在的键保持原有位置
func (my *OrderedMap[V]) Set(key string, val V) {
	if my.items == nil {
		my.items = make(map[string]V)
	}
	if _, ok := my.items[key]; !ok {
		my.keys = append(my.keys, key)
	}
	my.items[key] = val
}

func (my *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := my.items[key]
	return v, ok
}

func (my *OrderedMap[V]) Has(key string) bool {
	_, ok := my.items[key]
	return ok
}

func (my *OrderedMap[V]) Len() int {
	return len(my.keys)
}

// Keys 返回键的副本
func (my *OrderedMap[V]) Keys() []string {
	return append([]string(nil), my.keys...)
}

// All 按声明顺序遍历
func (my *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range my.keys {
			if !yield(k, my.items[k]) {
				return
			}
		}
	}
}

// UnmarshalYAML 从映射节点解码并记录键顺序
func (my *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	my.keys, my.items = nil, make(map[string]V)
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("第%d行: 需要映射类型", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if my.Has(key) {
			return fmt.Errorf("第%d行: 重复的键 %s", node.Content[i].Line, key)
		}
		var v V
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		my.Set(key, v)
	}
	return nil
}

// MarshalJSON 按声明顺序输出JSON对象
func (my OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range my.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(my.items[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
