package metadata

import (
	"fmt"
	"strings"
)

// Kind 问题种类，可通过 errors.Is 匹配
type Kind struct {
	code string
	text string
}

func (my *Kind) Error() string { return my.text }

// Code 机器可读的问题编码
func (my *Kind) Code() string { return my.code }

var (
	ErrUnknownSchema         = &Kind{"unknown_schema", "未知的实体"}
	ErrDuplicateSchema       = &Kind{"duplicate_schema", "实体重复定义"}
	ErrCyclicExtends         = &Kind{"cyclic_extends", "继承存在循环"}
	ErrUnknownRelationTarget = &Kind{"unknown_relation_target", "未知的关系目标"}
	ErrUnknownColumn         = &Kind{"unknown_column", "未知的列"}
	ErrUnknownInverseSide    = &Kind{"unknown_inverse_side", "无法确定关系的另一侧"}
	ErrPrimaryKeyConflict    = &Kind{"primary_key_conflict", "主键声明冲突"}
	ErrMissingPrimaryKey     = &Kind{"missing_primary_key", "缺少主键"}
	ErrIllegalCombination    = &Kind{"illegal_combination", "非法的配置组合"}
	ErrDuplicateRole         = &Kind{"duplicate_role", "特殊列重复"}
	ErrTreeIncompatible      = &Kind{"tree_incompatible", "树结构配置不兼容"}
	ErrCascadeConflict       = &Kind{"cascade_conflict", "级联配置矛盾"}
	ErrMisplacedJoin         = &Kind{"misplaced_join", "连接配置与关系类型不匹配"}
	ErrAmbiguousOwnership    = &Kind{"ambiguous_ownership", "无法确定关系的维护方"}
	ErrAmbiguousReference    = &Kind{"ambiguous_reference", "无法推导引用列"}
	ErrRedundantOldName      = &Kind{"redundant_old_name", "旧列名与当前列名相同"}
	ErrInvalidValue          = &Kind{"invalid_value", "无效的取值"}
)

// Issue 一条配置问题，Path 为实体内的字段路径
type Issue struct {
	Entity  string `json:"entity"`
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	kind    *Kind
}

func (my Issue) Error() string {
	loc := my.Entity
	if my.Path != "" {
		loc += "." + my.Path
	}
	return fmt.Sprintf("%s: %s", loc, my.Message)
}

func (my Issue) Unwrap() error {
	return my.kind
}

// Kind 返回问题种类
func (my Issue) Kind() *Kind {
	return my.kind
}

// ConfigurationError 一次规范化过程中收集到的全部问题
type ConfigurationError struct {
	Issues []Issue
}

func (my *ConfigurationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "实体配置错误(%d):", len(my.Issues))
	for _, i := range my.Issues {
		sb.WriteString("\n  - ")
		sb.WriteString(i.Error())
	}
	return sb.String()
}

func (my *ConfigurationError) Unwrap() []error {
	errs := make([]error, len(my.Issues))
	for i, v := range my.Issues {
		errs[i] = v
	}
	return errs
}

// collector 按实体收集问题
type collector struct {
	entity string
	issues []Issue
}

func (my *collector) add(kind *Kind, path, format string, args ...any) {
	msg := kind.text
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	my.issues = append(my.issues, Issue{
		Entity:  my.entity,
		Path:    path,
		Code:    kind.code,
		Message: msg,
		kind:    kind,
	})
}

func (my *collector) ok() bool {
	return len(my.issues) == 0
}

func (my *collector) err() error {
	if my.ok() {
		return nil
	}
	return &ConfigurationError{Issues: my.issues}
}
