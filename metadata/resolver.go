package metadata

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/huandu/go-clone"
	"github.com/ichaly/entschema/utl"
	"github.com/samber/lo"
)

func init() {
	// 运行时类型只复制引用，保证句柄比较仍然成立
	clone.MarkAsScalar(reflect.TypeOf(reflect.TypeOf(0)))
}

func deepCopy(s *Schema) *Schema {
	return clone.Slowly(s).(*Schema)
}

// failure 继承链解析失败
type failure struct {
	kind *Kind
	msg  string
}

type resolution struct {
	schema *Schema
	fail   *failure
}

// arena 已知实体的索引，负责继承合并与目标查找
type arena struct {
	opts       *options
	byName     map[string]*Schema
	names      []string
	duplicates []string
	cache      map[string]*resolution
}

func newArena(all []*Schema, override *Schema, opts *options) *arena {
	a := &arena{
		opts:   opts,
		byName: make(map[string]*Schema, len(all)+1),
		cache:  make(map[string]*resolution),
	}
	for _, s := range all {
		if s == nil {
			continue
		}
		if _, ok := a.byName[s.Name]; ok {
			a.duplicates = append(a.duplicates, s.Name)
			continue
		}
		a.byName[s.Name] = s
		a.names = append(a.names, s.Name)
	}
	if override != nil {
		if _, ok := a.byName[override.Name]; !ok {
			a.names = append(a.names, override.Name)
		}
		a.byName[override.Name] = override
	}
	return a
}

// merged 返回沿继承链合并后的副本，结果按名称缓存
func (my *arena) merged(name string) (*Schema, *failure) {
	if r, ok := my.cache[name]; ok {
		return r.schema, r.fail
	}
	s, f := my.inherit(name)
	my.cache[name] = &resolution{schema: s, fail: f}
	return s, f
}

func (my *arena) inherit(name string) (*Schema, *failure) {
	cur, ok := my.byName[name]
	if !ok {
		return nil, &failure{ErrUnknownSchema, fmt.Sprintf("未知的实体 %s%s", name, hint(name, my.names))}
	}
	chain := []*Schema{cur}
	seen := map[string]bool{name: true}
	for cur.Extends != "" {
		parent, ok := my.byName[cur.Extends]
		if !ok {
			return nil, &failure{ErrUnknownSchema, fmt.Sprintf(
				"%s 继承的实体 %s 不存在%s", cur.Name, cur.Extends, hint(cur.Extends, my.names),
			)}
		}
		if seen[cur.Extends] {
			path := append(lo.Map(chain, func(s *Schema, _ int) string { return s.Name }), cur.Extends)
			return nil, &failure{ErrCyclicExtends, fmt.Sprintf("继承链存在循环: %s", strings.Join(path, " -> "))}
		}
		seen[cur.Extends] = true
		chain = append(chain, parent)
		cur = parent
	}

	out := deepCopy(chain[len(chain)-1])
	for i := len(chain) - 2; i >= 0; i-- {
		out = extend(out, chain[i])
	}
	return out, nil
}

// extend 父级表配置作为默认值，同名列和关系整体以子级为准
func extend(parent, child *Schema) *Schema {
	out := deepCopy(child)
	t, p := &out.Table, parent.Table
	t.Name = lo.Ternary(t.Name != "", t.Name, p.Name)
	t.Type = lo.Ternary(t.Type != "", t.Type, p.Type)
	t.OrderBy = lo.Ternary(t.OrderBy != "", t.OrderBy, p.OrderBy)
	if len(t.PrimaryKeys) == 0 {
		t.PrimaryKeys = append([]string(nil), p.PrimaryKeys...)
	}
	out.Columns = mergeEntries(parent.Columns, out.Columns)
	out.Relations = mergeEntries(parent.Relations, out.Relations)
	return out
}

func mergeEntries[V any](parent, child utl.OrderedMap[V]) utl.OrderedMap[V] {
	var merged utl.OrderedMap[V]
	for k, v := range parent.All() {
		if cv, ok := child.Get(k); ok {
			v = cv
		}
		merged.Set(k, v)
	}
	for k, v := range child.All() {
		if !merged.Has(k) {
			merged.Set(k, v)
		}
	}
	return merged
}

// lookup 将关系目标解析为已知实体名
func (my *arena) lookup(t Target) (string, bool) {
	if t.Name != "" {
		_, ok := my.byName[t.Name]
		return t.Name, ok
	}
	if t.Type == nil {
		return "", false
	}
	for _, n := range my.names {
		if my.byName[n].Target == t.Type {
			return n, true
		}
	}
	if my.opts.resolver != nil {
		if n, ok := my.opts.resolver(t.Type); ok {
			_, known := my.byName[n]
			return n, known
		}
	}
	return "", false
}

// refersTo 判断目标是否指向给定实体
func (my *arena) refersTo(t Target, name string) bool {
	n, ok := my.lookup(t)
	return ok && n == name
}

// primaryKeysOf 未规范化实体的主键：显式声明优先，否则取 primary 列
func primaryKeysOf(s *Schema) []string {
	if len(s.Table.PrimaryKeys) > 0 {
		return s.Table.PrimaryKeys
	}
	var keys []string
	for k, c := range s.Columns.All() {
		if c != nil && c.Primary {
			keys = append(keys, k)
		}
	}
	return keys
}
