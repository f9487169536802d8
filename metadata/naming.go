package metadata

import (
	"github.com/iancoleman/strcase"
	"github.com/ichaly/entschema/utl"
	"github.com/jinzhu/inflection"
)

// NamingStrategy 默认名称的生成规则
type NamingStrategy interface {
	// ColumnName 列的物理名
	ColumnName(key string) string
	// JoinColumnName 多对一/一对一外键列名
	JoinColumnName(relation string) string
	// JoinTableName 多对多中间表名
	JoinTableName(ownerTable, relation, targetTable string) string
	// JoinTableColumnName 中间表中指向某张表的列名
	JoinTableColumnName(table string) string
	// InverseJoinTableColumnName 自引用多对多时反向列名
	InverseJoinTableColumnName(relation string) string
}

// DefaultNaming 默认命名规则，如 user_roles_role、userId
type DefaultNaming struct{}

func (DefaultNaming) ColumnName(key string) string {
	return key
}

func (DefaultNaming) JoinColumnName(relation string) string {
	return utl.JoinString(relation, "Id")
}

func (DefaultNaming) JoinTableName(ownerTable, relation, targetTable string) string {
	return strcase.ToSnake(utl.JoinString(ownerTable, "_", relation, "_", targetTable))
}

func (DefaultNaming) JoinTableColumnName(table string) string {
	return utl.JoinString(strcase.ToLowerCamel(table), "Id")
}

func (DefaultNaming) InverseJoinTableColumnName(relation string) string {
	return utl.JoinString(strcase.ToLowerCamel(inflection.Singular(relation)), "Id")
}
