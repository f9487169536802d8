package metadata

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jinzhu/inflection"
)

// suggest 为拼写错误的名称寻找最接近的候选
func suggest(name string, candidates []string) string {
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	best, score := "", 3
	for _, c := range candidates {
		cl := strings.ToLower(c)
		// 大小写或单复数差异
		if cl == lower || inflection.Singular(cl) == inflection.Singular(lower) {
			return c
		}
		if d := levenshtein.ComputeDistance(lower, cl); d < score {
			best, score = c, d
		}
	}
	return best
}

// hint 生成“是否是 xxx”的提示后缀
func hint(name string, candidates []string) string {
	if s := suggest(name, candidates); s != "" {
		return "，是否是 " + s + "?"
	}
	return ""
}
