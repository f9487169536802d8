package utl

import (
	"strings"
)

// JoinString 连接多个字符串
func JoinString(elem ...string) string {
	if len(elem) == 0 {
		return ""
	}

	// 预计算总长度以优化内存分配
	totalLen := 0
	for _, e := range elem {
		totalLen += len(e)
	}

	b := strings.Builder{}
	b.Grow(totalLen)
	for _, e := range elem {
		b.WriteString(e)
	}
	return b.String()
}

// HasAnySuffix 检查字符串是否以给定的任一后缀结束
func HasAnySuffix(s string, list ...string) bool {
	for _, p := range list {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}
