package metadata

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userRoles = `
- name: User
  table: {type: regular}
  columns:
    id: {type: int, primary: true, generated: true}
    name: {type: varchar}
  relations:
    roles: {type: many-to-many, target: Role, joinTable: true}
- name: Role
  table: {type: regular}
  columns:
    id: {type: int, primary: true}
    title: {type: varchar, length: "64"}
`

func TestNormalize_DerivedPrimaryKey(t *testing.T) {
	out := normalizeOK(t, userRoles)
	user := find(out, "User")
	require.NotNil(t, user)

	assert.Equal(t, []string{"id"}, user.Table.PrimaryKeys)
	assert.Equal(t, "User", user.Table.Name, "表名默认为实体名")
	assert.Equal(t, []string{"id", "name"}, user.Columns.Keys(), "列顺序应保持声明顺序")

	name, _ := user.Column("name")
	assert.Equal(t, "name", name.Name, "列物理名默认为键名")
}

func TestNormalize_JoinTableShorthand(t *testing.T) {
	out := normalizeOK(t, userRoles)
	roles, ok := find(out, "User").Relation("roles")
	require.True(t, ok)
	require.NotNil(t, roles.JoinTable)

	assert.Equal(t, "user_roles_role", roles.JoinTable.Name)
	assert.Equal(t, &JoinColumn{Name: "userId", ReferencedColumnName: "id"}, roles.JoinTable.JoinColumn)
	assert.Equal(t, &JoinColumn{Name: "roleId", ReferencedColumnName: "id"}, roles.JoinTable.InverseJoinColumn)
	assert.Equal(t, "Role", roles.Target.Name)
}

func TestNormalize_TreeChildrenOnRegularTable(t *testing.T) {
	issues := normalizeErr(t, `
name: Node
table: {type: regular}
columns:
  id: {type: int, primary: true}
relations:
  children: {type: one-to-many, target: Node, isTreeChildren: true}
`)
	assert.NotEmpty(t, issuesOf(issues, ErrTreeIncompatible))
}

func TestNormalize_PrimaryKeyStyles(t *testing.T) {
	t.Run("两种方式一致", func(t *testing.T) {
		out := normalizeOK(t, `
name: Membership
table: {type: junction, primaryKeys: [userId, groupId]}
columns:
  groupId: {type: int, primary: true}
  userId: {type: int, primary: true}
`)
		assert.Equal(t, []string{"userId", "groupId"}, out[0].Table.PrimaryKeys, "显式声明的顺序优先")
	})

	t.Run("只声明primaryKeys时补全列标记", func(t *testing.T) {
		out := normalizeOK(t, `
name: Membership
table: {type: junction, primaryKeys: [userId, groupId]}
columns:
  userId: {type: int}
  groupId: {type: int}
`)
		for _, k := range []string{"userId", "groupId"} {
			col, _ := out[0].Column(k)
			assert.True(t, col.Primary, k)
		}
	})

	t.Run("两种方式冲突", func(t *testing.T) {
		issues := normalizeErr(t, `
name: Membership
table: {type: junction, primaryKeys: [userId]}
columns:
  userId: {type: int}
  groupId: {type: int, primary: true}
`)
		assert.Len(t, issuesOf(issues, ErrPrimaryKeyConflict), 1)
	})

	t.Run("主键列不存在", func(t *testing.T) {
		issues := normalizeErr(t, `
name: Membership
table: {type: junction, primaryKeys: [userid]}
columns:
  userId: {type: int}
`)
		found := issuesOf(issues, ErrUnknownColumn)
		require.Len(t, found, 1)
		assert.Equal(t, "table.primaryKeys[0]", found[0].Path)
		assert.Contains(t, found[0].Message, "userId", "应提示相近的列名")
	})

	t.Run("缺少主键", func(t *testing.T) {
		issues := normalizeErr(t, `
name: Log
table: {type: regular}
columns:
  message: {type: text}
`)
		assert.Len(t, issuesOf(issues, ErrMissingPrimaryKey), 1)
	})

	t.Run("抽象表可以没有主键", func(t *testing.T) {
		normalizeOK(t, `
name: Base
table: {type: abstract}
columns:
  createdAt: {type: datetime, createDate: true}
`)
	})
}

func TestNormalize_Cascade(t *testing.T) {
	const tpl = `
- name: Photo
  table: {type: regular}
  columns:
    id: {type: int, primary: true}
  relations:
    album: {type: many-to-one, target: Album, %s}
- name: Album
  table: {type: regular}
  columns:
    id: {type: int, primary: true}
`
	t.Run("展开cascadeAll", func(t *testing.T) {
		out := normalizeOK(t, fmt.Sprintf(tpl, "cascadeAll: true"))
		r, _ := find(out, "Photo").Relation("album")
		assert.True(t, *r.CascadeInsert)
		assert.True(t, *r.CascadeUpdate)
		assert.True(t, *r.CascadeRemove)
		assert.True(t, *r.CascadeAll)
	})

	t.Run("未声明时为false", func(t *testing.T) {
		out := normalizeOK(t, fmt.Sprintf(tpl, "cascadeInsert: true"))
		r, _ := find(out, "Photo").Relation("album")
		assert.True(t, *r.CascadeInsert)
		assert.False(t, *r.CascadeUpdate)
		assert.False(t, *r.CascadeAll)
	})

	t.Run("与cascadeAll矛盾", func(t *testing.T) {
		issues := normalizeErr(t, fmt.Sprintf(tpl, "cascadeAll: true, cascadeRemove: false"))
		found := issuesOf(issues, ErrCascadeConflict)
		require.Len(t, found, 1)
		assert.Equal(t, "relations.album.cascadeRemove", found[0].Path)
	})
}

func TestNormalize_CollectsAllIssues(t *testing.T) {
	_, err := NormalizeAll(parse(t, `
- name: Broken
  table: {type: regular}
  columns:
    id: {type: int, primary: true}
    price: {type: varchar, precision: 10}
    created: {type: datetime, createDate: true}
    created2: {type: datetime, createDate: true}
  relations:
    owner: {type: many-to-one, target: Usr}
`))
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrIllegalCombination))
	assert.True(t, errors.Is(err, ErrDuplicateRole))
	assert.True(t, errors.Is(err, ErrUnknownRelationTarget))
	assert.False(t, errors.Is(err, ErrCyclicExtends))

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Issues, 3)
	for _, i := range ce.Issues {
		assert.Equal(t, "Broken", i.Entity)
		assert.NotEmpty(t, i.Path)
		assert.NotEmpty(t, i.Code)
	}
	assert.Contains(t, err.Error(), "Broken.relations.owner.target")
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	list := parse(t, userRoles)
	before := deepCopy(list[0])

	_, err := Normalize(list[0], list)
	require.NoError(t, err)
	assert.Equal(t, before, list[0])

	roles, _ := list[0].Relation("roles")
	assert.Equal(t, &JoinTable{}, roles.JoinTable, "简写在输入中保持未展开")
}

func TestNormalize_Idempotent(t *testing.T) {
	const src = `
- name: Base
  table: {type: abstract}
  columns:
    id: {type: int, primary: true, generated: true}
    createdAt: {type: datetime, createDate: true}
    version: {type: int, version: true}
- name: User
  extends: Base
  table: {type: regular, name: users}
  columns:
    email: {type: VARCHAR, length: "128", unique: true}
  relations:
    roles: {type: many-to-many, target: Role, joinTable: true, cascadeAll: true}
    profile: {type: one-to-one, target: Profile, joinColumn: true, onDelete: set_null}
    posts: {type: one-to-many, target: Post}
    friends: {type: many-to-many, target: User, joinTable: true}
- name: Role
  extends: Base
  table: {type: regular}
  relations:
    users: {type: many-to-many, target: User, inverseSide: roles}
- name: Profile
  extends: Base
  table: {type: regular}
  relations:
    user: {type: one-to-one, target: User, inverseSide: profile}
- name: Post
  extends: Base
  table: {type: regular}
  columns:
    title: {type: varchar}
    price: {type: decimal, precision: 10, scale: 2}
  relations:
    author: {type: many-to-one, target: User, nullable: false, onDelete: cascade}
- name: Category
  table: {type: closure}
  columns:
    id: {type: int, primary: true}
    level: {type: int, treeLevel: true}
  relations:
    parent: {type: many-to-one, target: Category, isTreeParent: true}
    children: {type: one-to-many, target: Category, isTreeChildren: true}
`
	raws := parse(t, src)
	once, err := NormalizeAll(raws)
	require.NoError(t, err)

	t.Run("逐个实体", func(t *testing.T) {
		for _, s := range once {
			twice, err := Normalize(s, raws)
			require.NoError(t, err, s.Name)
			assert.Equal(t, s, twice, s.Name)
		}
	})

	t.Run("整个集合", func(t *testing.T) {
		twice, err := NormalizeAll(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})
}

func TestNormalize_Options(t *testing.T) {
	out, err := NormalizeAll(parse(t, userRoles), WithNaming(upperNaming{}))
	require.NoError(t, err)

	roles, _ := find(out, "User").Relation("roles")
	assert.Equal(t, "USER_ROLES_ROLE", roles.JoinTable.Name)
}

type upperNaming struct {
	DefaultNaming
}

func (upperNaming) JoinTableName(owner, relation, target string) string {
	return strings.ToUpper(DefaultNaming{}.JoinTableName(owner, relation, target))
}

func TestNormalize_NilInput(t *testing.T) {
	_, err := Normalize(nil, nil)
	assert.Error(t, err)
}

func TestNormalize_DuplicateSchema(t *testing.T) {
	issues := normalizeErr(t, `
- name: User
  table: {type: regular}
  columns: {id: {type: int, primary: true}}
- name: User
  table: {type: regular}
  columns: {id: {type: int, primary: true}}
`)
	assert.Len(t, issuesOf(issues, ErrDuplicateSchema), 1)
}
