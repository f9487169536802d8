package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ichaly/entschema/log"
	"github.com/ichaly/entschema/utl"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".yml", ".yaml", ".json"}

// Parse 解析YAML或JSON文档，文档可以是单个实体或实体列表，支持多文档
func Parse(data []byte, source string) ([]*Schema, error) {
	var list []*Schema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("解析 %s 失败: %w", source, err)
		}
		if len(doc.Content) == 0 {
			continue
		}
		root := doc.Content[0]
		switch root.Kind {
		case yaml.MappingNode:
			s := new(Schema)
			if err := root.Decode(s); err != nil {
				return nil, fmt.Errorf("解析 %s 失败: %w", source, err)
			}
			list = append(list, s)
		case yaml.SequenceNode:
			var items []*Schema
			if err := root.Decode(&items); err != nil {
				return nil, fmt.Errorf("解析 %s 失败: %w", source, err)
			}
			list = append(list, items...)
		case yaml.ScalarNode:
			if root.Tag != "!!null" {
				return nil, fmt.Errorf("%s 第%d行: 文档必须是实体或实体列表", source, root.Line)
			}
		default:
			return nil, fmt.Errorf("%s 第%d行: 文档必须是实体或实体列表", source, root.Line)
		}
	}
	return list, nil
}

// LoadFile 读取单个实体文件
func LoadFile(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取实体文件失败: %w", err)
	}
	return Parse(data, path)
}

// LoadDir 递归读取目录中的实体文件，按路径排序保证顺序稳定
func LoadDir(root string) ([]*Schema, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isSchemaFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历实体目录失败: %w", err)
	}
	sort.Strings(files)

	var list []*Schema
	for _, f := range files {
		items, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", f).Int("count", len(items)).Msg("实体文件已加载")
		list = append(list, items...)
	}
	return list, nil
}

// Load 按顺序加载多个文件或目录
func Load(paths ...string) ([]*Schema, error) {
	var list []*Schema
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("实体路径不可用: %w", err)
		}
		var items []*Schema
		if info.IsDir() {
			items, err = LoadDir(p)
		} else {
			items, err = LoadFile(p)
		}
		if err != nil {
			return nil, err
		}
		list = append(list, items...)
	}
	return list, nil
}

func isSchemaFile(path string) bool {
	return utl.HasAnySuffix(filepath.Ext(path), extensions...)
}
