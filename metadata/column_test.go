package metadata

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entity 生成只包含主键和给定列的实体文档
func entity(tableType, columns string) string {
	return fmt.Sprintf(`
name: Thing
table: {type: %s}
columns:
  id: {type: int, primary: true}
%s`, tableType, columns)
}

func TestColumn_Rules(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns string
		kind    *Kind
		path    string
	}{
		{"precision只适用于decimal", "regular", "  price: {type: varchar, precision: 10}", ErrIllegalCombination, "columns.price.precision"},
		{"scale不能大于precision", "regular", "  price: {type: decimal, precision: 4, scale: 6}", ErrInvalidValue, "columns.price.scale"},
		{"generated只适用于整数", "regular", "  code: {type: varchar, generated: true}", ErrIllegalCombination, "columns.code.generated"},
		{"length只适用于字符串", "regular", `  age: {type: int, length: "3"}`, ErrIllegalCombination, "columns.age.length"},
		{"length必须是正整数", "regular", `  nick: {type: varchar, length: "abc"}`, ErrInvalidValue, "columns.nick.length"},
		{"未知类型", "regular", "  nick: {type: varchr}", ErrInvalidValue, "columns.nick.type"},
		{"缺少类型", "regular", "  nick: {nullable: true}", ErrInvalidValue, "columns.nick.type"},
		{"树列要求树表", "regular", "  depth: {type: int, treeLevel: true}", ErrTreeIncompatible, "columns.depth"},
		{"一个列多个角色", "regular", "  stamp: {type: datetime, createDate: true, updateDate: true}", ErrIllegalCombination, "columns.stamp"},
		{"版本列必须是整数", "regular", "  rev: {type: varchar, version: true}", ErrIllegalCombination, "columns.rev.type"},
		{"创建时间必须是日期", "regular", "  created: {type: int, createDate: true}", ErrIllegalCombination, "columns.created.type"},
		{"主键不能为空值", "regular", "  code: {type: int, primary: true, nullable: true}", ErrIllegalCombination, "columns.code.nullable"},
		{"旧列名与当前列名相同", "regular", "  nick: {type: varchar, oldColumnName: nick}", ErrRedundantOldName, "columns.nick.oldColumnName"},
		{"旧列名与覆盖后的列名相同", "regular", "  nick: {type: varchar, name: nick_name, oldColumnName: nick_name}", ErrRedundantOldName, "columns.nick.oldColumnName"},
		{"物理列名重复", "regular", "  a: {type: int, name: b}\n  b: {type: int}", ErrIllegalCombination, "columns.b.name"},
		{"负数精度", "regular", "  price: {type: decimal, precision: -1}", ErrInvalidValue, "columns.price.precision"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := normalizeErr(t, entity(tt.table, tt.columns))
			found := issuesOf(issues, tt.kind)
			require.NotEmpty(t, found, "问题列表: %v", issues)
			assert.Equal(t, tt.path, found[0].Path)
		})
	}
}

func TestColumn_SingletonRoles(t *testing.T) {
	issues := normalizeErr(t, entity("closure", `
  v1: {type: int, version: true}
  v2: {type: int, version: true}
  level: {type: int, treeLevel: true}
  depth: {type: int, treeLevel: true}
`))
	found := issuesOf(issues, ErrDuplicateRole)
	require.Len(t, found, 2)
	assert.Equal(t, "columns.v2.version", found[0].Path)
	assert.Contains(t, found[0].Message, "v1")
	assert.Equal(t, "columns.depth.treeLevel", found[1].Path)
}

func TestColumn_ColumnDefinitionSkipsTypeChecks(t *testing.T) {
	out := normalizeOK(t, entity("regular", `
  location: {columnDefinition: "geometry(Point, 4326)", precision: 8}
  counter: {type: serial, columnDefinition: "serial", generated: true}
`))
	loc, _ := out[0].Column("location")
	assert.Equal(t, "geometry(Point, 4326)", loc.ColumnDefinition)
	counter, _ := out[0].Column("counter")
	assert.Equal(t, "serial", counter.Type)

	t.Run("角色检查仍然生效", func(t *testing.T) {
		issues := normalizeErr(t, entity("regular", `
  a: {columnDefinition: "timestamp", createDate: true}
  b: {columnDefinition: "timestamp", createDate: true}
`))
		assert.Len(t, issuesOf(issues, ErrDuplicateRole), 1)
	})
}

func TestColumn_Canonical(t *testing.T) {
	out := normalizeOK(t, entity("closure", `
  title: {type: VarChar, length: "20", collation: utf8mb4_bin}
  level: {type: INT, treeLevel: true}
  price: {type: decimal, precision: 10, scale: 2}
`))
	title, _ := out[0].Column("title")
	assert.Equal(t, "varchar", title.Type)
	assert.Equal(t, "utf8mb4_bin", title.Collation, "collation 原样保留")
	assert.Equal(t, RoleNone, title.Role())

	level, _ := out[0].Column("level")
	assert.Equal(t, RoleTreeLevel, level.Role())
	assert.Equal(t, "int", level.Type)

	id, _ := out[0].Column("id")
	assert.Equal(t, []ColumnRole{RolePrimary}, id.Roles())
}

func TestColumn_OrderByMustExist(t *testing.T) {
	issues := normalizeErr(t, `
name: Thing
table: {type: regular, orderBy: createdAt}
columns:
  id: {type: int, primary: true}
  created: {type: datetime}
`)
	found := issuesOf(issues, ErrUnknownColumn)
	require.Len(t, found, 1)
	assert.Equal(t, "table.orderBy", found[0].Path)
}
