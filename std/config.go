package std

import (
	"net"
	"path/filepath"
	"strconv"
	"time"
)

// Config 表示标准配置
type Config struct {
	Mode   string       `mapstructure:"mode"`
	App    AppConfig    `mapstructure:"app"`
	Log    LogConfig    `mapstructure:"log"`
	Schema SchemaConfig `mapstructure:"schema"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LogConfig 日志配置，File 为空时输出到控制台
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max-size"`
	MaxAge     int    `mapstructure:"max-age"`
	MaxBackups int    `mapstructure:"max-backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SchemaConfig 实体文件来源
type SchemaConfig struct {
	Paths    []string      `mapstructure:"paths"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

var defaults = map[string]interface{}{
	"app.name":        "entschema",
	"app.host":        "",
	"app.port":        8080,
	"log.level":       "info",
	"log.max-size":    100,
	"log.max-age":     30,
	"log.max-backups": 10,
	"schema.paths":    []string{"schemas"},
	"schema.watch":    false,
	"schema.debounce": "200ms",
}

func NewConfig(k *Konfig) (*Config, error) {
	if err := k.SetDefaults(defaults); err != nil {
		return nil, err
	}
	c := &Config{}
	if err := k.Unmarshal(c); err != nil {
		return nil, err
	}
	// 相对路径以配置文件所在目录为基准
	if f := k.FilePath(); f != "" {
		base := filepath.Dir(f)
		for i, p := range c.Schema.Paths {
			if !filepath.IsAbs(p) {
				c.Schema.Paths[i] = filepath.Join(base, p)
			}
		}
	}
	return c, nil
}

// IsDebug 判断是否为开发模式
func (my *Config) IsDebug() bool {
	return my.Mode == "development" || my.Mode == "dev"
}

// Addr 服务监听地址
func (my *Config) Addr() string {
	return net.JoinHostPort(my.App.Host, strconv.Itoa(my.App.Port))
}
