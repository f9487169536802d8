package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) []*Schema {
	t.Helper()
	list, err := Parse([]byte(src), t.Name())
	require.NoError(t, err)
	return list
}

func find(list []*Schema, name string) *Schema {
	for _, s := range list {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// normalizeOK 规范化全部实体并要求成功
func normalizeOK(t *testing.T, src string) []*Schema {
	t.Helper()
	out, err := NormalizeAll(parse(t, src))
	require.NoError(t, err)
	return out
}

// normalizeErr 规范化全部实体并要求失败，返回问题列表
func normalizeErr(t *testing.T, src string) []Issue {
	t.Helper()
	_, err := NormalizeAll(parse(t, src))
	require.Error(t, err)
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce), "应返回 *ConfigurationError: %v", err)
	return ce.Issues
}

// issuesOf 过滤指定种类的问题
func issuesOf(issues []Issue, kind *Kind) []Issue {
	var list []Issue
	for _, i := range issues {
		if errors.Is(i, kind) {
			list = append(list, i)
		}
	}
	return list
}
