package cmd

import (
	"fmt"
	"os"

	"github.com/ichaly/entschema/std"
	"github.com/spf13/cobra"
)

const configFlag = "config"

var rootCmd = &cobra.Command{
	Use:           "entschema",
	Short:         "声明式实体映射的校验与规范化工具",
	Version:       std.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP(configFlag, "c", "", "配置文件路径")
}

// schemaPaths 命令行参数优先，否则读取配置中的 schema.paths
func schemaPaths(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	configFile, _ := cmd.Flags().GetString(configFlag)
	k, err := std.NewKonfig(std.WithFilePath(configFile))
	if err != nil {
		return nil, err
	}
	c, err := std.NewConfig(k)
	if err != nil {
		return nil, err
	}
	return c.Schema.Paths, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
