package cmd

import (
	"path/filepath"

	"github.com/ichaly/entschema/ioc"
	"github.com/ichaly/entschema/utl"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start", "run", "s"},
	Short:   "启动实体注册服务",
	Run: func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString(configFlag)
		if configFile == "" {
			configFile = filepath.Join(utl.Root(), "cfg", "config.yml")
		}
		fx.New(
			ioc.Get(),
			fx.Supply(configFile),
		).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
