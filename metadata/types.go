package metadata

import (
	"reflect"

	"github.com/ichaly/entschema/utl"
)

// TableType 表类型
type TableType string

const (
	TableRegular          TableType = "regular"
	TableAbstract         TableType = "abstract"
	TableJunction         TableType = "junction"
	TableClosure          TableType = "closure"
	TableClosureJunction  TableType = "closure-junction"
	TableEmbeddable       TableType = "embeddable"
	TableSingleTableChild TableType = "single-table-child"
	TableClassTableChild  TableType = "class-table-child"
)

// IsTree 闭包表是唯一的树表类型
func (my TableType) IsTree() bool {
	return my == TableClosure
}

// RequiresPrimaryKey 抽象表和嵌入表可以没有主键
func (my TableType) RequiresPrimaryKey() bool {
	return my != TableAbstract && my != TableEmbeddable
}

// RelationType 关系类型
type RelationType string

const (
	OneToOne   RelationType = "one-to-one"
	OneToMany  RelationType = "one-to-many"
	ManyToOne  RelationType = "many-to-one"
	ManyToMany RelationType = "many-to-many"
)

// Reciprocal 返回另一侧应有的关系类型
func (my RelationType) Reciprocal() RelationType {
	switch my {
	case OneToMany:
		return ManyToOne
	case ManyToOne:
		return OneToMany
	}
	return my
}

// ColumnRole 列的特殊用途
type ColumnRole string

const (
	RoleNone              ColumnRole = ""
	RolePrimary           ColumnRole = "primary"
	RoleCreateDate        ColumnRole = "createDate"
	RoleUpdateDate        ColumnRole = "updateDate"
	RoleVersion           ColumnRole = "version"
	RoleTreeChildrenCount ColumnRole = "treeChildrenCount"
	RoleTreeLevel         ColumnRole = "treeLevel"
)

// Schema 实体的声明式映射描述
type Schema struct {
	Extends   string                    `yaml:"extends" json:"extends,omitempty"`
	Target    reflect.Type              `yaml:"-" json:"-"`
	Name      string                    `yaml:"name" json:"name"`
	Table     Table                     `yaml:"table" json:"table"`
	Columns   utl.OrderedMap[*Column]   `yaml:"columns" json:"columns"`
	Relations utl.OrderedMap[*Relation] `yaml:"relations" json:"relations"`
}

// Table 表级别配置
type Table struct {
	Name        string    `yaml:"name" json:"name,omitempty"`
	Type        TableType `yaml:"type" json:"type" validate:"required,oneof=regular abstract junction closure closure-junction embeddable single-table-child class-table-child"`
	PrimaryKeys []string  `yaml:"primaryKeys" json:"primaryKeys,omitempty"`
	OrderBy     string    `yaml:"orderBy" json:"orderBy,omitempty"`
}

// Column 列配置，角色标记平铺声明，通过 Roles 读取
type Column struct {
	Primary           bool   `yaml:"primary" json:"primary,omitempty"`
	CreateDate        bool   `yaml:"createDate" json:"createDate,omitempty"`
	UpdateDate        bool   `yaml:"updateDate" json:"updateDate,omitempty"`
	Version           bool   `yaml:"version" json:"version,omitempty"`
	TreeChildrenCount bool   `yaml:"treeChildrenCount" json:"treeChildrenCount,omitempty"`
	TreeLevel         bool   `yaml:"treeLevel" json:"treeLevel,omitempty"`
	Type              string `yaml:"type" json:"type,omitempty" validate:"required_without=ColumnDefinition"`
	Name              string `yaml:"name" json:"name,omitempty"`
	Length            string `yaml:"length" json:"length,omitempty"`
	Generated         bool   `yaml:"generated" json:"generated,omitempty"`
	Unique            bool   `yaml:"unique" json:"unique,omitempty"`
	Nullable          bool   `yaml:"nullable" json:"nullable,omitempty"`
	ColumnDefinition  string `yaml:"columnDefinition" json:"columnDefinition,omitempty"`
	Comment           string `yaml:"comment" json:"comment,omitempty"`
	OldColumnName     string `yaml:"oldColumnName" json:"oldColumnName,omitempty"`
	Precision         int    `yaml:"precision" json:"precision,omitempty" validate:"gte=0"`
	Scale             int    `yaml:"scale" json:"scale,omitempty" validate:"gte=0"`
	Collation         string `yaml:"collation" json:"collation,omitempty"`
}

// Roles 返回列声明的全部角色
func (my *Column) Roles() []ColumnRole {
	var roles []ColumnRole
	for _, r := range []struct {
		on   bool
		role ColumnRole
	}{
		{my.Primary, RolePrimary},
		{my.CreateDate, RoleCreateDate},
		{my.UpdateDate, RoleUpdateDate},
		{my.Version, RoleVersion},
		{my.TreeChildrenCount, RoleTreeChildrenCount},
		{my.TreeLevel, RoleTreeLevel},
	} {
		if r.on {
			roles = append(roles, r.role)
		}
	}
	return roles
}

// Role 返回列的唯一角色，多个角色时返回第一个
func (my *Column) Role() ColumnRole {
	if roles := my.Roles(); len(roles) > 0 {
		return roles[0]
	}
	return RoleNone
}

// Target 关系目标，按实体名或运行时类型引用
type Target struct {
	Name string
	Type reflect.Type
}

// ByName 按实体名引用
func ByName(name string) Target {
	return Target{Name: name}
}

// ByType 按运行时类型引用
func ByType(t reflect.Type) Target {
	return Target{Type: t}
}

func (my Target) IsZero() bool {
	return my.Name == "" && my.Type == nil
}

func (my Target) String() string {
	if my.Name != "" {
		return my.Name
	}
	if my.Type != nil {
		return my.Type.String()
	}
	return ""
}

// JoinColumn 外键列
type JoinColumn struct {
	Name                 string `yaml:"name" json:"name"`
	ReferencedColumnName string `yaml:"referencedColumnName" json:"referencedColumnName"`
}

// JoinTable 多对多的中间表
type JoinTable struct {
	Name              string      `yaml:"name" json:"name"`
	JoinColumn        *JoinColumn `yaml:"joinColumn" json:"joinColumn"`
	InverseJoinColumn *JoinColumn `yaml:"inverseJoinColumn" json:"inverseJoinColumn"`
}

// Relation 关系配置，JoinTable/JoinColumn 为nil表示未声明
type Relation struct {
	Target         Target       `yaml:"target" json:"target"`
	Type           RelationType `yaml:"type" json:"type" validate:"required,oneof=one-to-one one-to-many many-to-one many-to-many"`
	InverseSide    string       `yaml:"inverseSide" json:"inverseSide,omitempty"`
	JoinTable      *JoinTable   `yaml:"-" json:"joinTable,omitempty"`
	JoinColumn     *JoinColumn  `yaml:"-" json:"joinColumn,omitempty"`
	IsTreeParent   bool         `yaml:"isTreeParent" json:"isTreeParent,omitempty"`
	IsTreeChildren bool         `yaml:"isTreeChildren" json:"isTreeChildren,omitempty"`
	CascadeAll     *bool        `yaml:"cascadeAll" json:"cascadeAll,omitempty"`
	CascadeInsert  *bool        `yaml:"cascadeInsert" json:"cascadeInsert,omitempty"`
	CascadeUpdate  *bool        `yaml:"cascadeUpdate" json:"cascadeUpdate,omitempty"`
	CascadeRemove  *bool        `yaml:"cascadeRemove" json:"cascadeRemove,omitempty"`
	OldColumnName  string       `yaml:"oldColumnName" json:"oldColumnName,omitempty"`
	Nullable       *bool        `yaml:"nullable" json:"nullable,omitempty"`
	OnDelete       string       `yaml:"onDelete" json:"onDelete,omitempty"`
}

// IsOwning 规范化后持有连接结构的一侧
func (my *Relation) IsOwning() bool {
	return my.JoinTable != nil || my.JoinColumn != nil
}

// Column 按键名查找列
func (my *Schema) Column(name string) (*Column, bool) {
	return my.Columns.Get(name)
}

// Relation 按键名查找关系
func (my *Schema) Relation(name string) (*Relation, bool) {
	return my.Relations.Get(name)
}

// TableName 声明的表名，未声明时使用实体名
func (my *Schema) TableName() string {
	if my.Table.Name != "" {
		return my.Table.Name
	}
	return my.Name
}
