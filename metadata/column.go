package metadata

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

func (my *normalizer) columns() {
	tree := my.out.Table.Type.IsTree()
	roles := make(map[ColumnRole]string)
	physical := make(map[string]string)

	for key, col := range my.out.Columns.All() {
		p := joinPath("columns", key)
		if col == nil {
			my.c.add(ErrInvalidValue, p, "列定义不能为空")
			continue
		}
		checkStruct(my.c, p, col)

		declared := col.Roles()
		if len(declared) > 1 {
			my.c.add(ErrIllegalCombination, p, "一个列只能承担一种特殊用途，当前为 %v", declared)
		}
		for _, r := range lo.Without(declared, RolePrimary) {
			if prev, ok := roles[r]; ok {
				my.c.add(ErrDuplicateRole, joinPath(p, string(r)), "%s 已由列 %s 承担", r, prev)
				continue
			}
			roles[r] = key
		}
		if (col.TreeLevel || col.TreeChildrenCount) && !tree {
			my.c.add(ErrTreeIncompatible, p, "%s 列要求表类型为 closure", col.Role())
		}
		if col.Primary && col.Nullable {
			my.c.add(ErrIllegalCombination, joinPath(p, "nullable"), "主键列不能为空值")
		}

		if col.Name == "" {
			col.Name = my.opts.naming.ColumnName(key)
		}
		if prev, ok := physical[col.Name]; ok {
			my.c.add(ErrIllegalCombination, joinPath(p, "name"), "与列 %s 映射到同一物理列 %s", prev, col.Name)
		} else {
			physical[col.Name] = key
		}
		if col.OldColumnName != "" && col.OldColumnName == col.Name {
			my.c.add(ErrRedundantOldName, joinPath(p, "oldColumnName"), "oldColumnName 与当前列名 %s 相同", col.Name)
		}

		// columnDefinition 完全接管列类型
		if col.ColumnDefinition == "" {
			my.columnShape(p, col)
		}
	}
}

// columnShape 列类型与长度、精度、自增、特殊用途的一致性
func (my *normalizer) columnShape(p string, col *Column) {
	col.Type = strings.ToLower(strings.TrimSpace(col.Type))
	if col.Type == "" {
		return
	}
	if !lo.Contains(columnTypes, col.Type) {
		my.c.add(ErrInvalidValue, joinPath(p, "type"), "不支持的列类型 %s%s", col.Type, hint(col.Type, columnTypes))
		return
	}

	integer := lo.Contains(integerTypes, col.Type)
	decimal := lo.Contains(decimalTypes, col.Type)
	if (col.Precision != 0 || col.Scale != 0) && !decimal {
		my.c.add(ErrIllegalCombination, joinPath(p, "precision"), "precision/scale 只适用于 decimal 类型，当前为 %s", col.Type)
	} else if col.Precision > 0 && col.Scale > col.Precision {
		my.c.add(ErrInvalidValue, joinPath(p, "scale"), "scale %d 不能大于 precision %d", col.Scale, col.Precision)
	}
	if col.Generated && !integer {
		my.c.add(ErrIllegalCombination, joinPath(p, "generated"), "generated 只适用于整数类型，当前为 %s", col.Type)
	}
	if col.Length != "" {
		if !lo.Contains(stringTypes, col.Type) {
			my.c.add(ErrIllegalCombination, joinPath(p, "length"), "length 只适用于字符串类型，当前为 %s", col.Type)
		} else if n, err := strconv.Atoi(col.Length); err != nil || n <= 0 {
			my.c.add(ErrInvalidValue, joinPath(p, "length"), "length 必须是正整数: %s", col.Length)
		}
	}

	for _, r := range col.Roles() {
		switch r {
		case RoleCreateDate, RoleUpdateDate:
			if !lo.Contains(dateTypes, col.Type) {
				my.c.add(ErrIllegalCombination, joinPath(p, "type"), "%s 列必须是日期类型 %v", r, dateTypes)
			}
		case RoleVersion, RoleTreeLevel, RoleTreeChildrenCount:
			if !integer {
				my.c.add(ErrIllegalCombination, joinPath(p, "type"), "%s 列必须是整数类型 %v", r, integerTypes)
			}
		}
	}
}
