package metadata

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var (
	stringTypes  = []string{"string", "varchar", "char"}
	integerTypes = []string{"number", "int", "integer", "smallint", "bigint"}
	decimalTypes = []string{"decimal", "numeric"}
	dateTypes    = []string{"date", "datetime", "timestamp"}
	columnTypes  = lo.Flatten([][]string{
		stringTypes, integerTypes, decimalTypes, dateTypes,
		{"text", "float", "double", "real", "boolean", "time", "json", "jsonb", "simple_array", "uuid", "blob"},
	})
	onDeleteActions = []string{"RESTRICT", "CASCADE", "SET NULL", "NO ACTION", "SET DEFAULT"}
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 使用yaml字段名作为问题路径
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// checkStruct 将结构体校验结果转换为问题，prefix 为该结构体在实体中的路径
func checkStruct(c *collector, prefix string, v any) {
	err := structValidator().Struct(v)
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return
	}
	for _, e := range errs {
		// 去掉顶层结构体名
		ns := e.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		c.add(ErrInvalidValue, joinPath(prefix, ns), "%s", describe(e))
	}
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without":
		return "不能为空"
	case "oneof":
		return "取值必须是 [" + e.Param() + "] 之一"
	case "gte":
		return "不能小于 " + e.Param()
	}
	return "不满足规则 " + e.Tag()
}

func joinPath(parts ...string) string {
	return strings.Join(lo.Compact(parts), ".")
}
