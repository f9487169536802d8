package metadata

import (
	"fmt"

	"github.com/ichaly/entschema/utl"
	"gopkg.in/yaml.v3"
)

// UnmarshalYAML 目标只支持按名称声明，运行时类型需通过代码绑定
func (my *Target) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("第%d行: target 必须是实体名", node.Line)
	}
	my.Name, my.Type = node.Value, nil
	return nil
}

func (my Target) MarshalJSON() ([]byte, error) {
	return utl.MarshalJSON(my.String())
}

// UnmarshalYAML 处理 joinTable/joinColumn 的布尔简写
func (my *Relation) UnmarshalYAML(node *yaml.Node) error {
	type plain Relation
	if err := node.Decode((*plain)(my)); err != nil {
		return err
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var err error
		switch val := node.Content[i+1]; node.Content[i].Value {
		case "joinTable":
			my.JoinTable, err = decodeShorthand[JoinTable](val)
		case "joinColumn":
			my.JoinColumn, err = decodeShorthand[JoinColumn](val)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", node.Content[i].Value, err)
		}
	}
	return nil
}

// decodeShorthand true 解码为空对象，false/null 解码为nil
func decodeShorthand[T any](node *yaml.Node) (*T, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		var on bool
		if err := node.Decode(&on); err != nil {
			return nil, fmt.Errorf("第%d行: 只能是布尔值或对象", node.Line)
		}
		if !on {
			return nil, nil
		}
		return new(T), nil
	case yaml.MappingNode:
		v := new(T)
		if err := node.Decode(v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("第%d行: 只能是布尔值或对象", node.Line)
}
