package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Current())
	_, ok := r.Get("User")
	assert.False(t, ok)

	var published []string
	r.OnChange(func(s *Snapshot) {
		published = append(published, s.Version)
	})

	first, err := r.Load(parse(t, userRoles))
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Role"}, first.Names())
	assert.Same(t, first, r.Current())

	user, ok := r.Get("User")
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, user.Table.PrimaryKeys)

	t.Run("失败时保留原快照", func(t *testing.T) {
		_, err := r.Load(parse(t, "name: Broken\ntable: {type: regular}\n"))
		require.ErrorIs(t, err, ErrMissingPrimaryKey)
		assert.Same(t, first, r.Current())
		assert.Len(t, published, 1)
	})

	t.Run("成功后整体替换", func(t *testing.T) {
		second, err := r.Load(parse(t, "name: Tag\ntable: {type: regular}\ncolumns:\n  id: {type: int, primary: true}\n"))
		require.NoError(t, err)
		assert.NotEqual(t, first.Version, second.Version)
		assert.Same(t, second, r.Current())
		assert.Equal(t, []string{first.Version, second.Version}, published)

		_, ok := r.Get("User")
		assert.False(t, ok, "旧集合中的实体不再可见")
		assert.Len(t, first.Schemas(), 2, "旧快照不受影响")
	})
}

func TestRegistry_LoadPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.yml"), []byte(userRoles), 0o644))

	r := NewRegistry(WithNaming(upperNaming{}))
	snap, err := r.LoadPaths(dir)
	require.NoError(t, err)

	user, ok := snap.Get("User")
	require.True(t, ok)
	roles, _ := user.Relation("roles")
	assert.Equal(t, "USER_ROLES_ROLE", roles.JoinTable.Name, "选项传递给规范化")

	_, err = r.LoadPaths(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Same(t, snap, r.Current())
}
