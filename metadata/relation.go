package metadata

import (
	"strings"

	"github.com/samber/lo"
)

var relationTypes = []RelationType{OneToOne, OneToMany, ManyToOne, ManyToMany}

// peer 关系的目标实体
type peer struct {
	name   string
	schema *Schema // 继承合并后的目标，未绑定实体的运行时类型为nil
}

func (my peer) resolved() bool {
	return my.schema != nil
}

func (my *normalizer) relations() {
	for key, r := range my.out.Relations.All() {
		p := joinPath("relations", key)
		if r == nil {
			my.c.add(ErrInvalidValue, p, "关系定义不能为空")
			continue
		}
		my.relation(p, key, r)
	}
}

func (my *normalizer) relation(p, key string, r *Relation) {
	checkStruct(my.c, p, r)
	target, ok := my.target(p, r)
	if r.Nullable == nil {
		r.Nullable = lo.ToPtr(true)
	}
	my.cascade(p, r)
	if !lo.Contains(relationTypes, r.Type) {
		return
	}

	if r.JoinTable != nil && r.Type != ManyToMany {
		my.c.add(ErrMisplacedJoin, joinPath(p, "joinTable"), "joinTable 只能用于 many-to-many，当前为 %s", r.Type)
	}
	if r.JoinColumn != nil && r.Type != ManyToOne && r.Type != OneToOne {
		my.c.add(ErrMisplacedJoin, joinPath(p, "joinColumn"), "joinColumn 只能用于 many-to-one 或 one-to-one，当前为 %s", r.Type)
	}
	my.tree(p, key, r, target)
	if !ok {
		return
	}

	other := my.pair(p, key, r, target)
	my.ownership(p, r, target, other)
	my.expand(p, key, r, target)
	my.onDelete(p, r)

	if r.OldColumnName != "" {
		current := key
		if r.JoinColumn != nil {
			current = r.JoinColumn.Name
		}
		if r.OldColumnName == current {
			my.c.add(ErrRedundantOldName, joinPath(p, "oldColumnName"), "oldColumnName 与当前列名 %s 相同", current)
		}
	}
}

// target 解析关系目标，按类型命中已知实体时补全实体名
func (my *normalizer) target(p string, r *Relation) (peer, bool) {
	if r.Target.IsZero() {
		my.c.add(ErrInvalidValue, joinPath(p, "target"), "不能为空")
		return peer{}, false
	}
	name, ok := my.lookup(r.Target)
	if !ok {
		if r.Target.Name != "" {
			my.c.add(ErrUnknownRelationTarget, joinPath(p, "target"),
				"未知的关系目标 %s%s", r.Target.Name, hint(r.Target.Name, my.names))
			return peer{}, false
		}
		// 未绑定实体的运行时类型按不透明引用接受
		return peer{}, true
	}
	r.Target.Name = name
	schema, fail := my.merged(name)
	if fail != nil {
		my.c.add(ErrUnknownRelationTarget, joinPath(p, "target"), "关系目标 %s 无法解析: %s", name, fail.msg)
		return peer{}, false
	}
	return peer{name: name, schema: schema}, true
}

func (my *normalizer) tree(p, key string, r *Relation, target peer) {
	if !r.IsTreeParent && !r.IsTreeChildren {
		return
	}
	if r.IsTreeParent && r.IsTreeChildren {
		my.c.add(ErrIllegalCombination, p, "isTreeParent 与 isTreeChildren 不能同时声明")
	}
	if r.IsTreeParent {
		if r.Type != ManyToOne {
			my.c.add(ErrTreeIncompatible, joinPath(p, "isTreeParent"), "isTreeParent 只能用于 many-to-one，当前为 %s", r.Type)
		}
		if my.treeParent != "" {
			my.c.add(ErrDuplicateRole, joinPath(p, "isTreeParent"), "树父关系已由 %s 声明", my.treeParent)
		} else {
			my.treeParent = key
		}
	}
	if r.IsTreeChildren {
		if r.Type != OneToMany {
			my.c.add(ErrTreeIncompatible, joinPath(p, "isTreeChildren"), "isTreeChildren 只能用于 one-to-many，当前为 %s", r.Type)
		}
		if my.treeChildren != "" {
			my.c.add(ErrDuplicateRole, joinPath(p, "isTreeChildren"), "树子关系已由 %s 声明", my.treeChildren)
		} else {
			my.treeChildren = key
		}
	}
	if !my.out.Table.Type.IsTree() {
		my.c.add(ErrTreeIncompatible, p, "树关系要求表类型为 closure，当前为 %s", my.out.Table.Type)
	}
	if target.name != "" && target.name != my.out.Name {
		my.c.add(ErrTreeIncompatible, joinPath(p, "target"), "树关系必须指向实体自身，当前为 %s", target.name)
	}
}

// cascade 展开 cascadeAll，显式的 false 与之矛盾
func (my *normalizer) cascade(p string, r *Relation) {
	flags := []struct {
		name string
		val  **bool
	}{
		{"cascadeInsert", &r.CascadeInsert},
		{"cascadeUpdate", &r.CascadeUpdate},
		{"cascadeRemove", &r.CascadeRemove},
	}
	all := lo.FromPtr(r.CascadeAll)
	for _, f := range flags {
		if all && *f.val != nil && !**f.val {
			my.c.add(ErrCascadeConflict, joinPath(p, f.name), "cascadeAll 为 true 时 %s 不能为 false", f.name)
		}
		*f.val = lo.ToPtr(all || lo.FromPtr(*f.val))
	}
	r.CascadeAll = lo.ToPtr(*r.CascadeInsert && *r.CascadeUpdate && *r.CascadeRemove)
}

// pair 找到双向关系的另一侧，并在本侧补全 inverseSide
func (my *normalizer) pair(p, key string, r *Relation, target peer) *Relation {
	if !target.resolved() {
		return nil
	}
	owner := my.out.Name
	self := func(k string) bool { return target.name == owner && k == key }

	var other *Relation
	if r.InverseSide != "" {
		rel, ok := target.schema.Relation(r.InverseSide)
		if !ok || rel == nil {
			my.c.add(ErrUnknownInverseSide, joinPath(p, "inverseSide"), "%s 上不存在关系 %s%s",
				target.name, r.InverseSide, hint(r.InverseSide, target.schema.Relations.Keys()))
			return nil
		}
		if self(r.InverseSide) {
			my.c.add(ErrIllegalCombination, joinPath(p, "inverseSide"), "关系不能以自身为另一侧")
			return nil
		}
		other = rel
	} else {
		// 另一侧通过 inverseSide 指向本关系
		candidates := my.candidates(target, func(k string, rel *Relation) bool {
			return !self(k) && rel.InverseSide == key && my.refersTo(rel.Target, owner)
		})
		// 推导：树子关系对应树父关系，一对多对应目标上指回本实体的多对一
		if len(candidates) == 0 {
			switch {
			case r.IsTreeChildren:
				candidates = my.candidates(target, func(k string, rel *Relation) bool {
					return !self(k) && rel.IsTreeParent
				})
			case r.IsTreeParent:
				candidates = my.candidates(target, func(k string, rel *Relation) bool {
					return !self(k) && rel.IsTreeChildren
				})
			case r.Type == OneToMany:
				candidates = my.candidates(target, func(k string, rel *Relation) bool {
					return !self(k) && rel.Type == ManyToOne && !rel.IsTreeParent && rel.InverseSide == "" && my.refersTo(rel.Target, owner)
				})
			case r.Type == ManyToOne && my.soleManyToOne(target.name):
				candidates = my.candidates(target, func(k string, rel *Relation) bool {
					return !self(k) && rel.Type == OneToMany && !rel.IsTreeChildren && rel.InverseSide == "" && my.refersTo(rel.Target, owner)
				})
			}
		}
		switch len(candidates) {
		case 0:
			if r.Type == OneToMany {
				my.c.add(ErrUnknownInverseSide, joinPath(p, "inverseSide"),
					"one-to-many 需要 %s 上存在指向 %s 的 many-to-one", target.name, owner)
			}
			return nil
		case 1:
		default:
			my.c.add(ErrAmbiguousOwnership, joinPath(p, "inverseSide"), "存在多个可能的另一侧 %v，请声明 inverseSide", candidates)
			return nil
		}
		r.InverseSide = candidates[0]
		other, _ = target.schema.Relation(candidates[0])
	}

	if !my.refersTo(other.Target, owner) {
		my.c.add(ErrUnknownInverseSide, joinPath(p, "inverseSide"), "%s.%s 的目标不是 %s", target.name, r.InverseSide, owner)
		return nil
	}
	if other.Type != r.Type.Reciprocal() {
		my.c.add(ErrIllegalCombination, joinPath(p, "inverseSide"),
			"%s 与另一侧 %s.%s 的类型 %s 不匹配", r.Type, target.name, r.InverseSide, other.Type)
		return nil
	}
	if other.InverseSide != "" && other.InverseSide != key {
		my.c.add(ErrUnknownInverseSide, joinPath(p, "inverseSide"),
			"另一侧 %s.%s 的 inverseSide 为 %s", target.name, r.InverseSide, other.InverseSide)
		return nil
	}
	return other
}

// soleManyToOne 本实体指向目标且未声明 inverseSide 的多对一是否唯一，与一对多的推导保持对称
func (my *normalizer) soleManyToOne(target string) bool {
	base, fail := my.merged(my.out.Name)
	if fail != nil {
		return false
	}
	count := 0
	for _, rel := range base.Relations.All() {
		if rel != nil && rel.Type == ManyToOne && !rel.IsTreeParent && rel.InverseSide == "" && my.refersTo(rel.Target, target) {
			count++
		}
	}
	return count == 1
}

func (my *normalizer) candidates(target peer, match func(string, *Relation) bool) []string {
	var keys []string
	for k, rel := range target.schema.Relations.All() {
		if rel != nil && match(k, rel) {
			keys = append(keys, k)
		}
	}
	return keys
}

// ownership 一对一和多对多必须恰好一侧持有连接结构，多对一总是持有外键
func (my *normalizer) ownership(p string, r *Relation, target peer, other *Relation) {
	switch r.Type {
	case ManyToOne:
		if r.JoinColumn == nil {
			r.JoinColumn = &JoinColumn{}
		}
	case OneToOne:
		my.owner(p, "joinColumn", r.JoinColumn != nil, other != nil && other.JoinColumn != nil, r, other)
	case ManyToMany:
		my.owner(p, "joinTable", r.JoinTable != nil, other != nil && other.JoinTable != nil, r, other)
	}
}

func (my *normalizer) owner(p, construct string, mine, theirs bool, r, other *Relation) {
	switch {
	case mine && theirs:
		my.c.add(ErrAmbiguousOwnership, joinPath(p, construct), "双向 %s 关系的两侧都声明了 %s", r.Type, construct)
	case !mine && other != nil && !theirs:
		my.c.add(ErrAmbiguousOwnership, joinPath(p, construct), "双向 %s 关系的两侧都没有声明 %s", r.Type, construct)
	case !mine && other == nil && r.InverseSide == "":
		my.c.add(ErrAmbiguousOwnership, joinPath(p, construct), "单向 %s 关系必须声明 %s", r.Type, construct)
	}
}

// expand 为持有方补全连接列和中间表的默认名称
func (my *normalizer) expand(p, key string, r *Relation, target peer) {
	naming := my.opts.naming
	if jc := r.JoinColumn; jc != nil && (r.Type == ManyToOne || r.Type == OneToOne) {
		if jc.Name == "" {
			jc.Name = naming.JoinColumnName(key)
		}
		my.reference(joinPath(p, "joinColumn"), jc, target)
	}

	jt := r.JoinTable
	if jt == nil || r.Type != ManyToMany {
		return
	}
	jp := joinPath(p, "joinTable")
	ownerTable := my.out.Table.Name
	if !target.resolved() {
		if jt.Name == "" || jt.InverseJoinColumn == nil || jt.InverseJoinColumn.Name == "" {
			my.c.add(ErrAmbiguousReference, jp, "目标 %s 未绑定实体，中间表需要完整声明", r.Target)
		}
	}
	targetTable := ""
	if target.resolved() {
		targetTable = target.schema.TableName()
	}
	if jt.Name == "" && target.resolved() {
		jt.Name = naming.JoinTableName(ownerTable, key, targetTable)
	}
	if jt.JoinColumn == nil {
		jt.JoinColumn = &JoinColumn{}
	}
	if jt.JoinColumn.Name == "" {
		jt.JoinColumn.Name = naming.JoinTableColumnName(ownerTable)
	}
	my.reference(joinPath(jp, "joinColumn"), jt.JoinColumn, peer{name: my.out.Name, schema: my.out})

	if jt.InverseJoinColumn == nil {
		jt.InverseJoinColumn = &JoinColumn{}
	}
	if jt.InverseJoinColumn.Name == "" && target.resolved() {
		name := naming.JoinTableColumnName(targetTable)
		if name == jt.JoinColumn.Name {
			name = naming.InverseJoinTableColumnName(key)
		}
		jt.InverseJoinColumn.Name = name
	}
	my.reference(joinPath(jp, "inverseJoinColumn"), jt.InverseJoinColumn, target)

	if jt.JoinColumn.Name == jt.InverseJoinColumn.Name {
		my.c.add(ErrIllegalCombination, jp, "中间表的两个连接列同名 %s", jt.JoinColumn.Name)
	}
}

// reference 确认或推导连接列引用的目标列
func (my *normalizer) reference(p string, jc *JoinColumn, side peer) {
	if !side.resolved() {
		if jc.ReferencedColumnName == "" {
			my.c.add(ErrAmbiguousReference, joinPath(p, "referencedColumnName"), "目标未绑定实体，需要显式声明引用列")
		}
		return
	}
	if jc.ReferencedColumnName != "" {
		if !side.schema.Columns.Has(jc.ReferencedColumnName) {
			my.c.add(ErrUnknownColumn, joinPath(p, "referencedColumnName"), "%s 上不存在列 %s%s",
				side.name, jc.ReferencedColumnName, hint(jc.ReferencedColumnName, side.schema.Columns.Keys()))
		}
		return
	}
	switch pks := primaryKeysOf(side.schema); len(pks) {
	case 0:
		my.c.add(ErrAmbiguousReference, joinPath(p, "referencedColumnName"), "%s 没有主键，需要显式声明引用列", side.name)
	case 1:
		jc.ReferencedColumnName = pks[0]
	default:
		my.c.add(ErrAmbiguousReference, joinPath(p, "referencedColumnName"), "%s 为复合主键 %v，需要显式声明引用列", side.name, pks)
	}
}

// onDelete 规范化引用动作，只有持有外键的一侧可以声明
func (my *normalizer) onDelete(p string, r *Relation) {
	if r.OnDelete == "" {
		return
	}
	path := joinPath(p, "onDelete")
	action := strings.ToUpper(strings.Join(strings.Fields(strings.ReplaceAll(r.OnDelete, "_", " ")), " "))
	if !lo.Contains(onDeleteActions, action) {
		my.c.add(ErrInvalidValue, path, "不支持的 onDelete %s，可选 %v", r.OnDelete, onDeleteActions)
		return
	}
	r.OnDelete = action
	if !r.IsOwning() {
		my.c.add(ErrIllegalCombination, path, "onDelete 只能声明在持有外键的一侧")
	}
	if action == "SET NULL" && !lo.FromPtr(r.Nullable) {
		my.c.add(ErrIllegalCombination, path, "nullable 为 false 时不能使用 SET NULL")
	}
}
