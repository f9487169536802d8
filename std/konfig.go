package std

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ichaly/entschema/log"
	"github.com/ichaly/entschema/utl"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Konfig 配置管理器，包装了koanf.Koanf
type Konfig struct {
	k       atomic.Pointer[koanf.Koanf]
	options *konfigOptions
}

// KonfigOption 定义配置选项函数类型
type KonfigOption func(*konfigOptions)

type konfigOptions struct {
	configType string
	envPrefix  string
	filePath   string
	delim      string
}

// WithFilePath 设置配置文件路径
func WithFilePath(filePath string) KonfigOption {
	return func(options *konfigOptions) {
		if filePath != "" {
			options.filePath = filePath
			options.configType = strings.TrimPrefix(filepath.Ext(filePath), ".")
		}
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) KonfigOption {
	return func(options *konfigOptions) {
		options.envPrefix = prefix
	}
}

// WithDelimiter 设置配置项分隔符
func WithDelimiter(delim string) KonfigOption {
	return func(options *konfigOptions) {
		options.delim = delim
	}
}

// NewKonfig 依次加载 .env、配置文件、profile 配置和环境变量
func NewKonfig(opts ...KonfigOption) (*Konfig, error) {
	options := &konfigOptions{
		configType: "yaml",
		envPrefix:  "APP",
		delim:      ".",
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("加载环境变量文件: %w", err)
	}

	k := koanf.New(options.delim)
	k.Set("mode", "dev")
	k.Set("profiles.active", "")

	if options.filePath != "" {
		if err := loadConfigFile(k, options.filePath, options); err != nil {
			return nil, err
		}
		path := filepath.Dir(options.filePath)
		name := strings.TrimSuffix(filepath.Base(options.filePath), filepath.Ext(options.filePath))
		if err := mergeProfiles(k, path, name, options); err != nil {
			return nil, fmt.Errorf("合并环境配置失败: %w", err)
		}
	}

	envProvider := env.Provider(options.envPrefix+"_", options.delim, func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, options.envPrefix+"_")), "_", options.delim, -1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("加载环境变量失败: %w", err)
	}

	konfig := &Konfig{options: options}
	konfig.k.Store(k)
	return konfig, nil
}

// loadEnvFile 加载环境变量文件(可选)
func loadEnvFile() error {
	envFile := filepath.Join(utl.Root(), ".env")
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("加载.env文件失败: %w", err)
	}
	return nil
}

func parserOf(configType string) (koanf.Parser, error) {
	switch configType {
	case "yaml", "yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("不支持的配置文件类型: %s", configType)
	}
}

func loadConfigFile(k *koanf.Koanf, filePath string, options *konfigOptions) error {
	parser, err := parserOf(options.configType)
	if err != nil {
		return err
	}
	if err := k.Load(file.Provider(filePath), parser); err != nil {
		return fmt.Errorf("加载配置文件失败: %w", err)
	}
	log.Info().Str("file", filePath).Msg("配置文件已加载")
	return nil
}

// mergeProfiles 合并 <name>-<profile>.<ext> 形式的profile配置
func mergeProfiles(k *koanf.Koanf, path, name string, options *konfigOptions) error {
	for _, profile := range activeProfiles(k) {
		profileFilePath := filepath.Join(path, utl.JoinString(name, "-", profile, ".", options.configType))
		if _, err := os.Stat(profileFilePath); os.IsNotExist(err) {
			log.Debug().Str("profile", profile).Str("file", profileFilePath).Msg("配置文件不存在，跳过")
			continue
		}
		parser, err := parserOf(options.configType)
		if err != nil {
			return err
		}
		if err := k.Load(file.Provider(profileFilePath), parser); err != nil {
			return fmt.Errorf("合并profile配置文件失败: %w", err)
		}
		log.Info().Str("profile", profile).Str("file", profileFilePath).Msg("配置文件已合并")
	}
	return nil
}

// activeProfiles profiles.active 中的profile在前，mode 在后
func activeProfiles(k *koanf.Koanf) []string {
	var profiles []string
	for _, p := range strings.Split(k.String("profiles.active"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			profiles = append(profiles, p)
		}
	}
	if mode := k.String("mode"); mode != "" {
		profiles = append(profiles, mode)
	}
	return profiles
}

func (my *Konfig) current() *koanf.Koanf {
	return my.k.Load()
}

// FilePath 配置文件路径，未使用配置文件时为空
func (my *Konfig) FilePath() string {
	return my.options.filePath
}

func (my *Konfig) Get(path string) interface{} {
	return my.current().Get(path)
}

func (my *Konfig) Set(path string, value interface{}) {
	my.current().Set(path, value)
}

func (my *Konfig) IsSet(path string) bool {
	return my.current().Exists(path)
}

func (my *Konfig) GetString(path string) string {
	return my.current().String(path)
}

func (my *Konfig) GetBool(path string) bool {
	return my.current().Bool(path)
}

func (my *Konfig) GetInt(path string) int {
	return my.current().Int(path)
}

func (my *Konfig) GetDuration(path string) time.Duration {
	return my.current().Duration(path)
}

func (my *Konfig) GetStringSlice(path string) []string {
	return my.current().Strings(path)
}

// Unmarshal 将配置解析到结构体
func (my *Konfig) Unmarshal(val interface{}) error {
	return my.UnmarshalKey("", val)
}

// UnmarshalKey 将配置键解析到结构体
func (my *Konfig) UnmarshalKey(path string, val interface{}) error {
	err := my.current().UnmarshalWithConf(path, val, koanf.UnmarshalConf{
		Tag: "mapstructure",
	})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("配置解析失败")
	}
	return err
}

// SetDefault 仅在配置项不存在时设置
func (my *Konfig) SetDefault(path string, value interface{}) {
	if !my.IsSet(path) {
		my.Set(path, value)
	}
}

// SetDefaults 批量设置默认值，已存在的配置项不会被覆盖
func (my *Konfig) SetDefaults(defaults map[string]interface{}) error {
	k := koanf.New(my.options.delim)
	if err := k.Load(confmap.Provider(defaults, my.options.delim), nil); err != nil {
		log.Error().Err(err).Msg("批量加载默认值失败")
		return err
	}
	if err := k.Merge(my.current()); err != nil {
		return err
	}
	my.k.Store(k)
	log.Debug().Int("count", len(defaults)).Msg("批量加载默认值成功")
	return nil
}
