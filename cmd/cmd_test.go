package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ichaly/entschema/utl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		_ = normalizeCmd.Flags().Set(outputFlag, "")
		_ = rootCmd.PersistentFlags().Set(configFlag, "")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	t.Run("示例实体通过校验", func(t *testing.T) {
		out, err := execute(t, "check", filepath.Join(utl.Root(), "schemas"))
		require.NoError(t, err)
		assert.Contains(t, out, "共 5 个实体")
	})

	t.Run("列出全部问题", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "bad.yml")
		require.NoError(t, os.WriteFile(file, []byte(`
name: Post
table: {type: regular}
columns:
  title: {type: varchr}
relations:
  author: {type: many-to-one, target: User}
`), 0o644))
		out, err := execute(t, "check", file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3 个问题")
		assert.Contains(t, out, "Post.columns.title.type")
		assert.Contains(t, out, "[unknown_relation_target]")
	})

	t.Run("从配置读取路径", func(t *testing.T) {
		_, err := execute(t, "check", "-c", filepath.Join(utl.Root(), "cfg", "config.yml"))
		require.NoError(t, err)
	})
}

func TestNormalize(t *testing.T) {
	dir := filepath.Join(utl.Root(), "schemas")

	t.Run("标准输出", func(t *testing.T) {
		out, err := execute(t, "normalize", dir)
		require.NoError(t, err)
		var list []map[string]interface{}
		require.NoError(t, utl.UnmarshalJSON([]byte(out), &list))
		require.Len(t, list, 5)
		assert.Equal(t, "Base", list[0]["name"])
		assert.Contains(t, out, `"name": "users_roles_roles"`, "中间表名使用表名推导")
	})

	t.Run("写入文件", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "out.json")
		out, err := execute(t, "normalize", dir, "-o", output)
		require.NoError(t, err)
		assert.Empty(t, out)
		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"joinColumn"`)
	})
}
