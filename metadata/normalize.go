package metadata

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/duke-git/lancet/v2/strutil"
	"github.com/ichaly/entschema/log"
	"github.com/samber/lo"
)

// Option 规范化选项
type Option func(*options)

type options struct {
	naming   NamingStrategy
	resolver func(reflect.Type) (string, bool)
}

// WithNaming 替换默认命名规则
func WithNaming(n NamingStrategy) Option {
	return func(o *options) {
		if n != nil {
			o.naming = n
		}
	}
}

// WithHandleResolver 为未在实体上声明 target 的运行时类型提供实体名
func WithHandleResolver(fn func(reflect.Type) (string, bool)) Option {
	return func(o *options) {
		o.resolver = fn
	}
}

func newOptions(opts []Option) *options {
	o := &options{naming: DefaultNaming{}}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Normalize 校验并规范化单个实体，all 为用于交叉引用的全部实体。
// 入参不会被修改，失败时返回汇总了全部问题的 *ConfigurationError。
func Normalize(raw *Schema, all []*Schema, opts ...Option) (*Schema, error) {
	if raw == nil {
		return nil, errors.New("实体不能为空")
	}
	a := newArena(all, raw, newOptions(opts))
	out, c := a.normalize(raw.Name)
	if err := c.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeAll 规范化完整的实体集合，结果与输入顺序一致
func NormalizeAll(all []*Schema, opts ...Option) ([]*Schema, error) {
	a := newArena(all, nil, newOptions(opts))

	var issues []Issue
	for _, name := range lo.Uniq(a.duplicates) {
		c := &collector{entity: name}
		c.add(ErrDuplicateSchema, "name", "实体 %s 重复定义", name)
		issues = append(issues, c.issues...)
	}

	result := make([]*Schema, 0, len(a.names))
	for _, name := range a.names {
		out, c := a.normalize(name)
		issues = append(issues, c.issues...)
		result = append(result, out)
	}
	if len(issues) > 0 {
		return nil, &ConfigurationError{Issues: issues}
	}
	return result, nil
}

// normalizer 单个实体的规范化过程
type normalizer struct {
	*arena
	c            *collector
	out          *Schema
	treeParent   string
	treeChildren string
}

func (my *arena) normalize(name string) (*Schema, *collector) {
	c := &collector{entity: name}
	if strutil.IsBlank(name) {
		c.add(ErrInvalidValue, "name", "实体名不能为空")
		return nil, c
	}

	base, fail := my.merged(name)
	if fail != nil {
		c.add(fail.kind, "extends", "%s", fail.msg)
		return nil, c
	}

	n := &normalizer{arena: my, c: c, out: deepCopy(base)}
	n.table()
	n.columns()
	n.relations()

	log.Debug().
		Str("entity", name).
		Int("columns", n.out.Columns.Len()).
		Int("relations", n.out.Relations.Len()).
		Int("issues", len(c.issues)).
		Msg("实体规范化完成")
	return n.out, c
}

func (my *normalizer) table() {
	t := &my.out.Table
	checkStruct(my.c, "table", t)
	if t.Name == "" {
		t.Name = my.out.Name
	}
	if t.OrderBy != "" && !my.out.Columns.Has(t.OrderBy) {
		my.c.add(ErrUnknownColumn, "table.orderBy", "排序列 %s 不存在%s", t.OrderBy, hint(t.OrderBy, my.out.Columns.Keys()))
	}
	my.primaryKeys()
}

// primaryKeys 两种主键声明方式必须一致，规范化后同时体现在 primaryKeys 和列标记上
func (my *normalizer) primaryKeys() {
	t := &my.out.Table
	var flagged []string
	for k, col := range my.out.Columns.All() {
		if col != nil && col.Primary {
			flagged = append(flagged, k)
		}
	}

	if len(t.PrimaryKeys) == 0 {
		t.PrimaryKeys = flagged
	} else {
		for i, k := range t.PrimaryKeys {
			if !my.out.Columns.Has(k) {
				my.c.add(ErrUnknownColumn, fmt.Sprintf("table.primaryKeys[%d]", i),
					"主键列 %s 不存在%s", k, hint(k, my.out.Columns.Keys()))
			}
		}
		if dup := lo.FindDuplicates(t.PrimaryKeys); len(dup) > 0 {
			my.c.add(ErrInvalidValue, "table.primaryKeys", "主键列重复: %v", dup)
		}
		if len(flagged) > 0 {
			if l, r := lo.Difference(t.PrimaryKeys, flagged); len(l)+len(r) > 0 {
				my.c.add(ErrPrimaryKeyConflict, "table.primaryKeys",
					"primaryKeys %v 与 primary 列 %v 不一致", t.PrimaryKeys, flagged)
			}
		}
		for _, k := range t.PrimaryKeys {
			if col, ok := my.out.Columns.Get(k); ok && col != nil {
				col.Primary = true
			}
		}
	}

	if len(t.PrimaryKeys) == 0 && t.Type != "" && t.Type.RequiresPrimaryKey() {
		my.c.add(ErrMissingPrimaryKey, "table.primaryKeys", "%s 类型的表必须声明主键", t.Type)
	}
}
