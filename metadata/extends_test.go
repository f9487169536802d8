package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtends_ChildOverridesWholeEntry(t *testing.T) {
	out := normalizeOK(t, `
- name: Base
  table: {type: abstract, orderBy: createdAt}
  columns:
    id: {type: int, primary: true, generated: true}
    title: {type: varchar, length: "32", nullable: true, comment: base}
    createdAt: {type: datetime, createDate: true}
- name: Article
  extends: Base
  table: {type: regular}
  columns:
    title: {type: text}
    body: {type: text}
`)
	article := find(out, "Article")
	require.NotNil(t, article)

	assert.Equal(t, []string{"id", "title", "createdAt", "body"}, article.Columns.Keys())
	title, _ := article.Column("title")
	assert.Equal(t, &Column{Type: "text", Name: "title"}, title, "同名列整体以子级为准，不做字段级合并")

	assert.Equal(t, "createdAt", article.Table.OrderBy, "父级表配置作为默认值")
	assert.Equal(t, TableRegular, article.Table.Type)
	assert.Equal(t, "Article", article.Table.Name)
	assert.Equal(t, []string{"id"}, article.Table.PrimaryKeys)
}

func TestExtends_MultiLevel(t *testing.T) {
	out := normalizeOK(t, `
- name: C
  table: {type: abstract}
  columns:
    id: {type: int, primary: true}
    c: {type: int}
- name: B
  extends: C
  table: {type: abstract}
  columns:
    b: {type: int}
    c: {type: bigint}
- name: A
  extends: B
  table: {type: regular}
  columns:
    a: {type: int}
`)
	a := find(out, "A")
	assert.Equal(t, []string{"id", "c", "b", "a"}, a.Columns.Keys())
	c, _ := a.Column("c")
	assert.Equal(t, "bigint", c.Type)
}

func TestExtends_Cycle(t *testing.T) {
	issues := normalizeErr(t, `
- name: A
  extends: B
  table: {type: regular}
  columns: {id: {type: int, primary: true}}
- name: B
  extends: C
  table: {type: regular}
- name: C
  extends: A
  table: {type: regular}
`)
	found := issuesOf(issues, ErrCyclicExtends)
	require.Len(t, found, 3, "循环上的每个实体都应报告")
	assert.Equal(t, "extends", found[0].Path)
	assert.Contains(t, found[0].Message, "A -> B -> C -> A")
}

func TestExtends_SelfCycle(t *testing.T) {
	issues := normalizeErr(t, `
name: A
extends: A
table: {type: regular}
`)
	assert.Len(t, issuesOf(issues, ErrCyclicExtends), 1)
}

func TestExtends_UnknownParent(t *testing.T) {
	list := parse(t, `
- name: Base
  table: {type: abstract}
- name: User
  extends: Bases
  table: {type: regular}
  columns: {id: {type: int, primary: true}}
`)
	_, err := Normalize(list[1], list)
	require.ErrorIs(t, err, ErrUnknownSchema)
	assert.Contains(t, err.Error(), "是否是 Base")
}

func TestExtends_RelationTargetWithBrokenChain(t *testing.T) {
	issues := normalizeErr(t, `
- name: Post
  table: {type: regular}
  columns: {id: {type: int, primary: true}}
  relations:
    tag: {type: many-to-one, target: Tag}
- name: Tag
  extends: Tag
  table: {type: regular}
`)
	targets := issuesOf(issues, ErrUnknownRelationTarget)
	require.Len(t, targets, 1)
	assert.Equal(t, "Post", targets[0].Entity)
}
